package token

import (
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------

type Kind int

const (
	ILLEGAL Kind = iota
	IDENT
	KEYWORD
	PUNCT
	NUMBER
	CHAR
	STRING
	COMMENT
	DIRECTIVE
)

var kindNames = [...]string{
	ILLEGAL:   "ILLEGAL",
	IDENT:     "IDENT",
	KEYWORD:   "KEYWORD",
	PUNCT:     "PUNCT",
	NUMBER:    "NUMBER",
	CHAR:      "CHAR",
	STRING:    "STRING",
	COMMENT:   "COMMENT",
	DIRECTIVE: "DIRECTIVE",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsCode reports whether tokens of this kind take part in C syntax.
func (k Kind) IsCode() bool {
	return k != COMMENT && k != DIRECTIVE
}

// -----------------------------------------------------------------------------

// Pos is a source position. Line and Col are 1-based, Col counts bytes.
type Pos struct {
	Line   int
	Col    int
	Offset int64
}

type Token struct {
	Kind Kind
	Text string
	Pos  Pos

	// BOL is set when the token is the first one on its source line.
	BOL bool

	// Space holds the whitespace between the previous token on the same line
	// (or the start of the line) and this token.
	Space string

	// Synthetic tokens do not come from the source; Pos is the position of the
	// original token they were anchored to.
	Synthetic bool
}

func (t Token) Is(text string) bool {
	return t.Text == text && t.Kind != STRING && t.Kind != CHAR
}

// End returns the position right after the token.
func (t Token) End() Pos {
	end := Pos{Line: t.Pos.Line, Col: t.Pos.Col, Offset: t.Pos.Offset + int64(len(t.Text))}
	if n := strings.Count(t.Text, "\n"); n > 0 {
		end.Line += n
		end.Col = len(t.Text) - strings.LastIndexByte(t.Text, '\n')
	} else {
		end.Col += len(t.Text)
	}
	return end
}

// Synth creates a synthetic token anchored at the position of anchor.
func Synth(anchor Token, kind Kind, text string) Token {
	return Token{Kind: kind, Text: text, Pos: anchor.Pos, BOL: anchor.BOL, Space: anchor.Space, Synthetic: true}
}

// Copy returns a synthetic copy of t anchored at anchor.
func Copy(anchor, t Token) Token {
	return Synth(anchor, t.Kind, t.Text)
}

// -----------------------------------------------------------------------------

// Concat joins the spellings of toks[from] .. toks[to] (inclusive) with single
// spaces.
func Concat(toks []Token, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to >= len(toks) {
		to = len(toks) - 1
	}
	var b strings.Builder
	for i := from; i <= to; i++ {
		if i > from {
			b.WriteByte(' ')
		}
		b.WriteString(toks[i].Text)
	}
	return b.String()
}

func Join(toks []Token) string {
	return Concat(toks, 0, len(toks)-1)
}

// Search returns the index of the token starting at offset, or -1.
// toks must be sorted by offset.
func Search(toks []Token, offset int64) int {
	i := sort.Search(len(toks), func(i int) bool {
		return toks[i].Pos.Offset >= offset
	})
	if i < len(toks) && toks[i].Pos.Offset == offset {
		return i
	}
	return -1
}

// Range returns the tokens starting within [begin, end].
func Range(toks []Token, begin, end int64) []Token {
	lo := sort.Search(len(toks), func(i int) bool {
		return toks[i].Pos.Offset >= begin
	})
	hi := sort.Search(len(toks), func(i int) bool {
		return toks[i].Pos.Offset > end
	})
	if lo >= hi {
		return nil
	}
	return toks[lo:hi]
}

// Code filters out comments and directives.
func Code(toks []Token) []Token {
	ret := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind.IsCode() {
			ret = append(ret, t)
		}
	}
	return ret
}

// -----------------------------------------------------------------------------

var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true,
	"_Bool": true, "_Complex": true, "_Imaginary": true, "_Atomic": true,
	"_Alignas": true, "_Alignof": true, "_Noreturn": true, "_Static_assert": true,
	"_Thread_local": true,
	"__const": true, "__restrict": true, "__inline": true, "__volatile__": true,
	"__extension__": true, "__attribute__": true, "__typeof__": true, "typeof": true,
	"__signed__": true, "__int128": true,
}

func IsKeyword(s string) bool {
	return keywords[s]
}

// -----------------------------------------------------------------------------
