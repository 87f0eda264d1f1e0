package printer

import (
	"testing"

	"github.com/ngkaho1234/c99-to-c89/clang/scanner"
	"github.com/ngkaho1234/c99-to-c89/clang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, src string) []token.Token {
	toks, err := scanner.Scan([]byte(src))
	require.NoError(t, err)
	return toks
}

func synth(anchor token.Token, texts ...string) []token.Token {
	ret := make([]token.Token, len(texts))
	for i, s := range texts {
		ret[i] = token.Synth(anchor, token.PUNCT, s)
	}
	return ret
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"int a;\n\n  b = 1;\n",
		"#include <stdio.h>\n/* x\n   y */\nint main() {\n\treturn 0; // done\n}\n",
		"#define A \\\n  1\nint x = A;\n",
	}
	for _, src := range cases {
		assert.Equal(t, src, string(Bytes(scan(t, src))))
	}
}

func TestTrailingNewline(t *testing.T) {
	assert.Equal(t, "int a;\n", string(Bytes(scan(t, "int a;"))))
	assert.Equal(t, "int a;\n", string(Bytes(scan(t, "int a;\n\n\n"))))
	assert.Equal(t, "\n", string(Bytes(nil)))
}

func TestInsert(t *testing.T) {
	toks := scan(t, "void f() {\n  x = 1;\n}\n")
	// void f ( ) { x = 1 ; }
	x, rbrace := toks[5], toks[9]
	var out []token.Token
	out = append(out, toks[:5]...)
	out = append(out, synth(x, "{", "int", "t", ";")...)
	out = append(out, toks[5:9]...)
	out = append(out, synth(rbrace, "}")...)
	out = append(out, toks[9:]...)
	assert.Equal(t, "void f() {\n  { int t ; x = 1;\n} }\n", string(Bytes(out)))
}

func TestInsertAfter(t *testing.T) {
	toks := scan(t, "if (a)\n  f();\nelse\n  g();\n")
	// if ( a ) f ( ) ; else g ( ) ;
	f, semi := toks[4], toks[7]
	var out []token.Token
	out = append(out, toks[:4]...)
	out = append(out, synth(f, "{")...)
	out = append(out, toks[4:8]...)
	out = append(out, synth(semi, "}")...)
	out = append(out, toks[8:]...)
	assert.Equal(t, "if (a)\n  { f(); }\nelse\n  g();\n", string(Bytes(out)))
}

func TestSubstitute(t *testing.T) {
	toks := scan(t, "  x = (T){1, 2};\n")
	// x = ( T ) { 1 , 2 } ;
	var out []token.Token
	out = append(out, toks[:2]...)
	out = append(out, token.Synth(toks[2], token.IDENT, "tmp"))
	out = append(out, toks[10])
	assert.Equal(t, "  x = tmp;\n", string(Bytes(out)))
}
