package scanner

import (
	"errors"
	"fmt"

	"github.com/ngkaho1234/c99-to-c89/clang/token"
)

// MaxFileSize limits the size of a single source file.
const MaxFileSize = 1 << 30

var ErrTooLarge = errors.New("source file too large")

// -----------------------------------------------------------------------------

type Error struct {
	Pos token.Pos
	Msg string
}

func (p *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", p.Pos.Line, p.Pos.Col, p.Msg)
}

// -----------------------------------------------------------------------------

// Scanner splits C source into tokens. Comments and preprocessor directives are
// kept as single tokens so the source can be printed back unchanged.
type Scanner struct {
	src   []byte
	base  int64
	off   int
	line  int
	col   int
	bol   bool
	space []byte

	inDirective bool
}

func (s *Scanner) Init(src []byte) {
	s.src = src
	s.base = 0
	s.off = 0
	s.line, s.col = 1, 1
	s.bol = true
	s.space = s.space[:0]
}

// Scan tokenizes src.
func Scan(src []byte) (toks []token.Token, err error) {
	if len(src) > MaxFileSize {
		return nil, ErrTooLarge
	}
	var s Scanner
	s.Init(src)
	return s.scanAll()
}

// ScanDirective splits the text of a directive token into the tokens it is
// made of. Positions are those of the directive's source file.
func ScanDirective(d token.Token) ([]token.Token, error) {
	var s Scanner
	s.Init([]byte(d.Text))
	s.base = d.Pos.Offset
	s.line, s.col = d.Pos.Line, d.Pos.Col
	s.bol = d.BOL
	s.inDirective = true
	return s.scanAll()
}

// Flatten replaces every directive in toks by the tokens it is made of.
func Flatten(toks []token.Token) ([]token.Token, error) {
	ret := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind != token.DIRECTIVE {
			ret = append(ret, t)
			continue
		}
		sub, err := ScanDirective(t)
		if err != nil {
			return nil, err
		}
		ret = append(ret, sub...)
	}
	return ret, nil
}

func (s *Scanner) scanAll() (toks []token.Token, err error) {
	for {
		tok, ok, e := s.Next()
		if e != nil {
			return nil, e
		}
		if !ok {
			return
		}
		toks = append(toks, tok)
	}
}

func (s *Scanner) peek(n int) byte {
	if s.off+n < len(s.src) {
		return s.src[s.off+n]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.src[s.off] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.off++
}

func (s *Scanner) pos() token.Pos {
	return token.Pos{Line: s.line, Col: s.col, Offset: s.base + int64(s.off)}
}

func (s *Scanner) errorf(pos token.Pos, format string, args ...interface{}) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (s *Scanner) skipSpace() {
	for s.off < len(s.src) {
		switch c := s.src[s.off]; c {
		case '\n':
			s.advance()
			s.bol = true
			s.space = s.space[:0]
		case ' ', '\t', '\r', '\f', '\v':
			s.space = append(s.space, c)
			s.advance()
		case '\\':
			if s.peek(1) == '\n' {
				s.advance()
				s.advance()
				s.space = s.space[:0]
				continue
			}
			return
		default:
			return
		}
	}
}

// Next returns the next token. ok is false at the end of input.
func (s *Scanner) Next() (tok token.Token, ok bool, err error) {
	s.skipSpace()
	if s.off >= len(s.src) {
		return
	}
	start := s.off
	pos := s.pos()
	tok.Pos, tok.BOL, tok.Space = pos, s.bol, string(s.space)

	c := s.src[s.off]
	switch {
	case c == '#' && s.bol && !s.inDirective:
		tok.Kind = token.DIRECTIVE
		err = s.scanDirective()
	case c == '/' && s.peek(1) == '/':
		tok.Kind = token.COMMENT
		for s.off < len(s.src) && s.src[s.off] != '\n' {
			s.advance()
		}
	case c == '/' && s.peek(1) == '*':
		tok.Kind = token.COMMENT
		err = s.scanBlockComment(pos)
	case isLetter(c):
		if q := s.literalPrefix(); q != 0 {
			tok.Kind = quoteKind(q)
			err = s.scanQuoted(pos, q)
			break
		}
		for s.off < len(s.src) && isIdentChar(s.src[s.off]) {
			s.advance()
		}
		tok.Kind = token.IDENT
		if token.IsKeyword(string(s.src[start:s.off])) {
			tok.Kind = token.KEYWORD
		}
	case isDigit(c) || (c == '.' && isDigit(s.peek(1))):
		tok.Kind = token.NUMBER
		s.scanNumber()
	case c == '\'' || c == '"':
		tok.Kind = quoteKind(c)
		s.advance()
		err = s.scanQuoted(pos, c)
	default:
		tok.Kind = token.PUNCT
		n := punctLen(s.src[s.off:])
		if n == 0 {
			tok.Kind, n = token.ILLEGAL, 1
		}
		for i := 0; i < n; i++ {
			s.advance()
		}
	}
	if err != nil {
		return
	}
	tok.Text = string(s.src[start:s.off])
	s.bol = false
	s.space = s.space[:0]
	return tok, true, nil
}

func (s *Scanner) scanDirective() error {
	for s.off < len(s.src) {
		switch c := s.src[s.off]; {
		case c == '\n':
			return nil
		case c == '\\' && s.peek(1) == '\n':
			s.advance()
			s.advance()
		case c == '/' && s.peek(1) == '*':
			if err := s.scanBlockComment(s.pos()); err != nil {
				return err
			}
		default:
			s.advance()
		}
	}
	return nil
}

func (s *Scanner) scanBlockComment(pos token.Pos) error {
	s.advance()
	s.advance()
	for s.off < len(s.src) {
		if s.src[s.off] == '*' && s.peek(1) == '/' {
			s.advance()
			s.advance()
			return nil
		}
		s.advance()
	}
	return s.errorf(pos, "comment not terminated")
}

// literalPrefix consumes an encoding prefix (L, u, U, u8) of a character or
// string literal and returns the opening quote, or 0 if there is none.
func (s *Scanner) literalPrefix() byte {
	n := 0
	switch s.src[s.off] {
	case 'L', 'U':
		n = 1
	case 'u':
		n = 1
		if s.peek(1) == '8' {
			n = 2
		}
	default:
		return 0
	}
	q := s.peek(n)
	if q != '\'' && q != '"' {
		return 0
	}
	for i := 0; i <= n; i++ {
		s.advance()
	}
	return q
}

func (s *Scanner) scanQuoted(pos token.Pos, q byte) error {
	for s.off < len(s.src) {
		switch c := s.src[s.off]; c {
		case '\\':
			s.advance()
			if s.off < len(s.src) {
				s.advance()
			}
		case '\n':
			return s.errorf(pos, "literal not terminated")
		default:
			s.advance()
			if c == q {
				return nil
			}
		}
	}
	return s.errorf(pos, "literal not terminated")
}

func (s *Scanner) scanNumber() {
	for s.off < len(s.src) {
		c := s.src[s.off]
		switch {
		case (c == '+' || c == '-') && s.off > 0 && isExp(s.src[s.off-1]):
		case isIdentChar(c) || c == '.':
		default:
			return
		}
		s.advance()
	}
}

// -----------------------------------------------------------------------------

var (
	puncts3 = []string{"<<=", ">>=", "..."}
	puncts2 = []string{
		"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
		"*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=", "##",
	}
)

const puncts1 = "[](){}.&*+-~!/%<>^|?:;=,#"

func punctLen(b []byte) int {
	for _, p := range puncts3 {
		if len(b) >= 3 && string(b[:3]) == p {
			return 3
		}
	}
	for _, p := range puncts2 {
		if len(b) >= 2 && string(b[:2]) == p {
			return 2
		}
	}
	for i := 0; i < len(puncts1); i++ {
		if b[0] == puncts1[i] {
			return 1
		}
	}
	return 0
}

func quoteKind(q byte) token.Kind {
	if q == '\'' {
		return token.CHAR
	}
	return token.STRING
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c)
}

func isExp(c byte) bool {
	return c == 'e' || c == 'E' || c == 'p' || c == 'P'
}

// -----------------------------------------------------------------------------
