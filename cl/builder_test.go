package cl

import (
	"strconv"
	"strings"
	"testing"

	"github.com/ngkaho1234/c99-to-c89/clang/ast"
	"github.com/ngkaho1234/c99-to-c89/clang/printer"
	"github.com/ngkaho1234/c99-to-c89/clang/scanner"
	"github.com/ngkaho1234/c99-to-c89/clang/token"
	"github.com/ngkaho1234/c99-to-c89/clang/tu"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

const testFile = "test.c"

// testUnit builds clang-like ASTs for a piece of source. Nodes are located by
// the text they span: the nth occurrence of text in the source.
type testUnit struct {
	t    *testing.T
	src  string
	toks []token.Token
	ids  int
}

func newTestUnit(t *testing.T, src string) *testUnit {
	toks, err := scanner.Scan([]byte(src))
	require.NoError(t, err)
	toks, err = scanner.Flatten(toks)
	require.NoError(t, err)
	return &testUnit{t: t, src: src, toks: toks}
}

func (u *testUnit) offset(text string, nth int) int {
	off := -1
	for i := 0; i <= nth; i++ {
		j := strings.Index(u.src[off+1:], text)
		require.GreaterOrEqual(u.t, j, 0, "%q #%d not found", text, nth)
		off += j + 1
	}
	return off
}

func (u *testUnit) loc(t token.Token) ast.Loc {
	return ast.Loc{
		Offset: t.Pos.Offset, File: testFile, Line: t.Pos.Line, Col: t.Pos.Col, TokLen: len(t.Text),
	}
}

// tokens returns the tokens the nth occurrence of text is made of.
func (u *testUnit) tokens(text string, nth int) []token.Token {
	off := int64(u.offset(text, nth))
	toks := token.Range(u.toks, off, off+int64(len(text))-1)
	require.NotEmpty(u.t, toks, "no tokens in %q", text)
	return toks
}

func (u *testUnit) rng(text string, nth int) *ast.Range {
	toks := u.tokens(text, nth)
	return &ast.Range{Begin: u.loc(toks[0]), End: u.loc(toks[len(toks)-1])}
}

func (u *testUnit) newID() ast.ID {
	u.ids++
	return ast.ID("0x" + strconv.FormatInt(int64(u.ids), 16))
}

func (u *testUnit) node(kind ast.Kind, text string, nth int, inner ...*ast.Node) *ast.Node {
	return &ast.Node{ID: u.newID(), Kind: kind, Range: u.rng(text, nth), Inner: inner}
}

// decl creates a named declaration; its location is the last token spelled
// like name within text.
func (u *testUnit) decl(kind ast.Kind, name, text string, nth int, inner ...*ast.Node) *ast.Node {
	n := u.node(kind, text, nth, inner...)
	n.Name = name
	toks := u.tokens(text, nth)
	for i := len(toks) - 1; i >= 0; i-- {
		if toks[i].Text == name {
			loc := u.loc(toks[i])
			n.Loc = &loc
			break
		}
	}
	return n
}

func (u *testUnit) op(kind ast.Kind, opcode, text string, nth int, inner ...*ast.Node) *ast.Node {
	n := u.node(kind, text, nth, inner...)
	n.OpCode = ast.OpCode(opcode)
	return n
}

// macroRange is the range of a literal written in a macro definition and
// expanded where the nth occurrence of name is.
func (u *testUnit) macroRange(body string, name string, nth int, arg bool) *ast.Range {
	def := u.tokens(body, 0)
	exp := u.loc(u.tokens(name, nth)[0])
	b, e := u.loc(def[0]), u.loc(def[len(def)-1])
	return &ast.Range{
		Begin: ast.Loc{SpellingLoc: &b, ExpansionLoc: &exp, IsMacroArgExpansion: arg},
		End:   ast.Loc{SpellingLoc: &e, ExpansionLoc: &exp, IsMacroArgExpansion: arg},
	}
}

// expanded creates a node spelled as body in a macro definition, or in a
// macro argument if arg is set, and expanded where the nth occurrence of
// name is.
func (u *testUnit) expanded(kind ast.Kind, body, name string, nth int, arg bool, inner ...*ast.Node) *ast.Node {
	return &ast.Node{ID: u.newID(), Kind: kind, Range: u.macroRange(body, name, nth, arg), Inner: inner}
}

// call creates a call of fn spelled as the nth occurrence of text.
func (u *testUnit) call(fn, text string, nth int, args ...*ast.Node) *ast.Node {
	inner := append([]*ast.Node{leaf(ast.ImplicitCastExpr, ref(fn))}, args...)
	return u.node(ast.CallExpr, text, nth, inner...)
}

// body creates the compound statement opened by the first `{` after the nth
// occurrence of text.
func (u *testUnit) body(text string, nth int, inner ...*ast.Node) *ast.Node {
	off := int64(u.offset(text, nth) + len(text))
	for i, t := range u.toks {
		if t.Pos.Offset < off || !t.Is("{") {
			continue
		}
		j := matchBrace(u.toks, i)
		require.Greater(u.t, j, i, "unbalanced block after %q", text)
		return &ast.Node{
			ID: u.newID(), Kind: ast.CompoundStmt, Inner: inner,
			Range: &ast.Range{Begin: u.loc(u.toks[i]), End: u.loc(u.toks[j])},
		}
	}
	u.t.Fatalf("no block after %q", text)
	return nil
}

// fn creates a function definition; sig is its first line.
func (u *testUnit) fn(name, sig string, body *ast.Node) *ast.Node {
	return u.decl(ast.FunctionDecl, name, sig, 0, body)
}

// literal creates a compound literal spelled as the nth occurrence of text.
func (u *testUnit) literal(text string, nth int, inits ...*ast.Node) *ast.Node {
	return u.node(ast.CompoundLiteralExpr, text, nth, leaf(ast.InitListExpr, inits...))
}

// record creates a complete struct definition whose fields are all declared
// with the type of the first one, e.g. `struct P { int x, y; }`.
func (u *testUnit) record(name string, typ string, fields ...string) *ast.Node {
	decl := "struct " + name + " { " + typ + " " + strings.Join(fields, ", ") + "; }"
	inner := make([]*ast.Node, len(fields))
	for i, f := range fields {
		inner[i] = u.decl(ast.FieldDecl, f, typ+" "+strings.Join(fields[:i+1], ", "), 0)
	}
	n := u.decl(ast.RecordDecl, name, decl, 0, inner...)
	n.TagUsed, n.CompleteDefinition = "struct", true
	return n
}

func (u *testUnit) root(decls ...*ast.Node) *ast.Node {
	return &ast.Node{ID: u.newID(), Kind: ast.TranslationUnitDecl, Inner: decls}
}

func (u *testUnit) unit(root *ast.Node) *tu.Unit {
	unit, err := tu.New(testFile, []byte(u.src), root)
	require.NoError(u.t, err)
	return unit
}

func (u *testUnit) rewrite(root *ast.Node) (string, error) {
	toks, err := Rewrite(u.unit(root), nil)
	if err != nil {
		return "", err
	}
	return string(printer.Bytes(toks)), nil
}

// -----------------------------------------------------------------------------

func leaf(kind ast.Kind, inner ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: kind, Inner: inner}
}

func ref(name string) *ast.Node {
	return &ast.Node{Kind: ast.DeclRefExpr, ReferencedDecl: &ast.Node{Kind: ast.VarDecl, Name: name}}
}

func intLit(v int) *ast.Node {
	return &ast.Node{Kind: ast.IntegerLiteral, Value: strconv.Itoa(v)}
}

// compact drops all white space, so outputs can be compared regardless of
// how synthesized tokens are spaced.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// -----------------------------------------------------------------------------
