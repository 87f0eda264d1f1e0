package parser

const pageSize = 64 << 10

// PagedWriter collects output in fixed size pages so that a large AST dump
// is not copied over and over while it grows.
type PagedWriter struct {
	pages [][]byte
	last  []byte
	size  int
}

func NewPagedWriter() *PagedWriter {
	return &PagedWriter{}
}

func (p *PagedWriter) Write(b []byte) (n int, err error) {
	n = len(b)
	for len(b) > 0 {
		if len(p.last) == cap(p.last) {
			if p.last != nil {
				p.pages = append(p.pages, p.last)
			}
			p.last = make([]byte, 0, pageSize)
		}
		room := cap(p.last) - len(p.last)
		if room > len(b) {
			room = len(b)
		}
		p.last = append(p.last, b[:room]...)
		b = b[room:]
	}
	p.size += n
	return
}

func (p *PagedWriter) Len() int {
	return p.size
}

// Bytes returns everything written so far as one slice.
func (p *PagedWriter) Bytes() []byte {
	ret := make([]byte, 0, p.size)
	for _, page := range p.pages {
		ret = append(ret, page...)
	}
	return append(ret, p.last...)
}
