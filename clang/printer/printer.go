package printer

import (
	"bytes"
	"strings"

	"github.com/ngkaho1234/c99-to-c89/clang/token"
)

// -----------------------------------------------------------------------------

type printer struct {
	w       *bytes.Buffer
	line    int
	empty   bool // nothing written on the current line yet
	inserts bool // last token was synthetic
}

func (p *printer) newlines(line int) {
	for p.line < line {
		p.w.WriteByte('\n')
		p.line++
		p.empty = true
	}
}

func (p *printer) text(s string) {
	p.w.WriteString(s)
	if n := strings.Count(s, "\n"); n > 0 {
		p.line += n
	}
	if s != "" {
		p.empty = false
	}
}

func (p *printer) original(t token.Token) {
	switch {
	case t.Pos.Line > p.line:
		p.newlines(t.Pos.Line)
		p.w.WriteString(t.Space)
	case p.inserts && t.BOL && !p.empty:
		p.w.WriteByte(' ')
	default:
		p.w.WriteString(t.Space)
	}
	p.text(t.Text)
	p.inserts = false
}

func (p *printer) synthetic(t token.Token) {
	switch {
	case t.Pos.Line > p.line:
		p.newlines(t.Pos.Line)
		p.w.WriteString(t.Space)
	case p.empty:
		p.w.WriteString(t.Space)
	default:
		p.w.WriteByte(' ')
	}
	p.text(t.Text)
	p.inserts = true
}

// Bytes renders toks. Original tokens keep their line and the whitespace in
// front of them, so every line of the input stays on the same line of the
// output. Synthetic tokens go on the line of the token they are anchored to,
// separated by single spaces.
func Bytes(toks []token.Token) []byte {
	var buf bytes.Buffer
	p := &printer{w: &buf, line: 1, empty: true}
	for _, t := range toks {
		if t.Synthetic {
			p.synthetic(t)
		} else {
			p.original(t)
		}
	}
	b := bytes.TrimRight(buf.Bytes(), " \t\r\n")
	return append(b, '\n')
}

// -----------------------------------------------------------------------------
