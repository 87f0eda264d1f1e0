package cl

import (
	"testing"

	"github.com/ngkaho1234/c99-to-c89/clang/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func enumDecl(name string, consts ...*ast.Node) *ast.Node {
	return &ast.Node{ID: ast.ID("enum_" + name), Kind: ast.EnumDecl, Name: name, Inner: consts}
}

func enumConst(name string, init ...*ast.Node) *ast.Node {
	return &ast.Node{ID: ast.ID("const_" + name), Kind: ast.EnumConstantDecl, Name: name, Inner: init}
}

func constExpr(inner *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.ConstantExpr, Inner: []*ast.Node{inner}}
}

func binary(op string, x, y *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.BinaryOperator, OpCode: ast.OpCode(op), Inner: []*ast.Node{x, y}}
}

func unary(op string, x *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.UnaryOperator, OpCode: ast.OpCode(op), Inner: []*ast.Node{x}}
}

func TestEnumSequence(t *testing.T) {
	syms := NewSymbolTable(nil)
	e, err := syms.RegisterEnum(enumDecl("color", enumConst("RED"), enumConst("GREEN"), enumConst("BLUE")))
	require.NoError(t, err)
	require.Len(t, e.Members, 3)
	for i, name := range []string{"RED", "GREEN", "BLUE"} {
		assert.Equal(t, name, e.Members[i].Name)
		assert.EqualValues(t, i, e.Members[i].Value)
	}

	_, err = syms.RegisterEnum(enumDecl("level",
		enumConst("LOW", constExpr(intLit(5))), enumConst("MID"), enumConst("HIGH")))
	require.NoError(t, err)
	for name, want := range map[string]int64{"LOW": 5, "MID": 6, "HIGH": 7} {
		v, err := syms.EnumValue(name)
		require.NoError(t, err)
		assert.Equal(t, want, v, name)
	}

	_, err = syms.EnumValue("ULTRA")
	assert.True(t, IsKind(err, ErrLookup))
}

func TestEnumRefs(t *testing.T) {
	syms := NewSymbolTable(nil)
	_, err := syms.RegisterEnum(enumDecl("",
		enumConst("A", constExpr(intLit(1))),
		enumConst("B", constExpr(binary("+", leaf(ast.ImplicitCastExpr, ref("A")), intLit(2)))),
		enumConst("C", constExpr(unary("-", leaf(ast.ParenExpr, ref("B"))))),
		enumConst("D"),
		enumConst("E", constExpr(unary("~", intLit(0)))),
	))
	require.NoError(t, err)
	for name, want := range map[string]int64{"A": 1, "B": 3, "C": -3, "D": -2, "E": -1} {
		v, err := syms.EnumValue(name)
		require.NoError(t, err)
		assert.Equal(t, want, v, name)
	}
}

func TestEnumFolded(t *testing.T) {
	syms := NewSymbolTable(nil)
	size := &ast.Node{Kind: ast.ConstantExpr, Value: "4", Inner: []*ast.Node{leaf(ast.UnaryExprOrTypeTraitExpr)}}
	char := &ast.Node{Kind: ast.CharacterLiteral, Value: float64('A')}
	_, err := syms.RegisterEnum(enumDecl("", enumConst("SIZE", size), enumConst("CH", char), enumConst("NEXT")))
	require.NoError(t, err)
	for name, want := range map[string]int64{"SIZE": 4, "CH": 65, "NEXT": 66} {
		v, err := syms.EnumValue(name)
		require.NoError(t, err)
		assert.Equal(t, want, v, name)
	}
}

func TestEnumArith(t *testing.T) {
	cases := []struct {
		op      string
		x, y    int
		want    int64
		errKind ErrorKind
	}{
		{op: "+", x: 2, y: 3, want: 5},
		{op: "-", x: 2, y: 3, want: -1},
		{op: "*", x: 4, y: 3, want: 12},
		{op: "/", x: 8, y: 3, want: 2},
		{op: "%", x: 7, y: 3, want: 1},
		{op: "&", x: 6, y: 3, want: 2},
		{op: "|", x: 6, y: 3, want: 7},
		{op: "^", x: 6, y: 3, want: 5},
		{op: "<<", x: 1, y: 4, want: 16},
		{op: ">>", x: 16, y: 2, want: 4},
		{op: "/", x: 1, y: 0, errKind: ErrUnsupported},
		{op: "%", x: 1, y: 0, errKind: ErrUnsupported},
		{op: "<<", x: 1, y: 64, errKind: ErrUnsupported},
		{op: "==", x: 1, y: 1, errKind: ErrUnsupported},
	}
	for _, c := range cases {
		t.Run(c.op, func(t *testing.T) {
			syms := NewSymbolTable(nil)
			_, err := syms.RegisterEnum(enumDecl("", enumConst("X", constExpr(binary(c.op, intLit(c.x), intLit(c.y))))))
			if c.errKind != 0 {
				assert.True(t, IsKind(err, c.errKind), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			v, err := syms.EnumValue("X")
			require.NoError(t, err)
			assert.Equal(t, c.want, v)
		})
	}
}

func TestEnumUndefined(t *testing.T) {
	syms := NewSymbolTable(nil)
	_, err := syms.RegisterEnum(enumDecl("e", enumConst("A", constExpr(binary("+", ref("MISSING"), intLit(1))))))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrLookup))
	assert.Contains(t, err.Error(), "MISSING")
}

func TestEnumIdempotent(t *testing.T) {
	syms := NewSymbolTable(nil)
	n := enumDecl("e", enumConst("A"), enumConst("B"))
	e1, err := syms.RegisterEnum(n)
	require.NoError(t, err)
	e2, err := syms.RegisterEnum(n)
	require.NoError(t, err)
	assert.Same(t, e1, e2)

	dup := enumDecl("e", enumConst("C"))
	dup.ID = "another"
	e3, err := syms.RegisterEnum(dup)
	require.NoError(t, err)
	assert.Same(t, e1, e3)
	assert.Len(t, syms.Enums, 1)
	assert.Len(t, e1.Members, 2)
}

// -----------------------------------------------------------------------------

const structSrc = `enum { N = 3 };
#define LEN 16
struct P {
	int *p[4];
	int a, b;
	const char *name;
	long v[N];
	char buf[LEN];
	int const c;
	char *const q;
};
struct P;
struct Q;
struct Q { unsigned int x; };
`

func TestRegisterStruct(t *testing.T) {
	u := newTestUnit(t, structSrc)
	p := u.decl(ast.RecordDecl, "P", "struct P {", 0,
		u.decl(ast.FieldDecl, "p", "int *p[4]", 0),
		u.decl(ast.FieldDecl, "a", "int a", 0),
		u.decl(ast.FieldDecl, "b", "int a, b", 0),
		u.decl(ast.FieldDecl, "name", "const char *name", 0),
		u.decl(ast.FieldDecl, "v", "long v[N]", 0),
		u.decl(ast.FieldDecl, "buf", "char buf[LEN]", 0),
		u.decl(ast.FieldDecl, "c", "int const c", 0),
		u.decl(ast.FieldDecl, "q", "char *const q", 0),
	)
	p.Inner[5].Type = &ast.Type{QualType: "char[16]"}
	p.TagUsed, p.CompleteDefinition = "struct", true
	fwdP := u.decl(ast.RecordDecl, "P", "struct P", 1)
	fwdP.TagUsed = "struct"
	fwdQ := u.decl(ast.RecordDecl, "Q", "struct Q", 0)
	fwdQ.TagUsed = "struct"
	q := u.decl(ast.RecordDecl, "Q", "struct Q { unsigned int x; }", 0,
		u.decl(ast.FieldDecl, "x", "unsigned int x", 0))
	q.TagUsed, q.CompleteDefinition = "struct", true
	e := enumDecl("", enumConst("N", constExpr(intLit(3))))

	syms := NewSymbolTable(u.unit(nil))
	require.NoError(t, syms.Load(u.root(e, p, fwdP, fwdQ, q)))
	require.Len(t, syms.Structs, 2)

	s, ok := syms.LookupStruct("P")
	require.True(t, ok)
	want := []StructMember{
		{Name: "p", Type: "int", NPtrs: 1, ArrayLen: 4},
		{Name: "a", Type: "int"},
		{Name: "b", Type: "int"},
		{Name: "name", Type: "const char", NPtrs: 1},
		{Name: "v", Type: "long", ArrayLen: 3},
		{Name: "buf", Type: "char", ArrayLen: 16},
		{Name: "c", Type: "int const"},
		{Name: "q", Type: "char", NPtrs: 1},
	}
	require.Len(t, s.Members, len(want))
	for i, m := range s.Members {
		w := want[i]
		w.Node = m.Node
		assert.Equal(t, w, *m, m.Name)
	}

	again, err := syms.RegisterStruct(p)
	require.NoError(t, err)
	assert.Same(t, s, again)
	assert.Len(t, syms.Structs, 2)
	assert.Len(t, s.Members, 8)

	sq, ok := syms.LookupStruct("Q")
	require.True(t, ok)
	require.Len(t, sq.Members, 1)
	assert.Equal(t, "unsigned int", sq.Members[0].Type)
	assert.Equal(t, fwdQ.ID, sq.Node)
}

func TestRegisterStructQualType(t *testing.T) {
	syms := NewSymbolTable(nil)
	n := &ast.Node{ID: "s", Kind: ast.RecordDecl, Name: "S", TagUsed: "struct", CompleteDefinition: true, Inner: []*ast.Node{
		{ID: "f1", Kind: ast.FieldDecl, Name: "names", Type: &ast.Type{QualType: "const char **[8]"}},
		{ID: "f2", Kind: ast.FieldDecl, Name: "cb", Type: &ast.Type{QualType: "void (*)(int)"}},
	}}
	s, err := syms.RegisterStruct(n)
	require.NoError(t, err)
	require.Len(t, s.Members, 2)
	assert.Equal(t, "const char", s.Members[0].Type)
	assert.Equal(t, 2, s.Members[0].NPtrs)
	assert.EqualValues(t, 8, s.Members[0].ArrayLen)
	assert.Equal(t, "void (*)(int)", s.Members[1].Type)
}

// -----------------------------------------------------------------------------

const typedefSrc = `struct P { int x; };
typedef struct P P;
typedef int vec[4];
typedef unsigned long size;
typedef struct { int y; } anon;
`

func TestRegisterTypedef(t *testing.T) {
	u := newTestUnit(t, typedefSrc)
	p := u.decl(ast.RecordDecl, "P", "struct P { int x; }", 0, u.decl(ast.FieldDecl, "x", "int x", 0))
	p.TagUsed, p.CompleteDefinition = "struct", true
	tdP := u.decl(ast.TypedefDecl, "P", "typedef struct P P", 0, leaf(ast.ElaboratedType,
		&ast.Node{Kind: ast.RecordType, Decl: &ast.Node{ID: p.ID, Kind: ast.RecordDecl, Name: "P"}}))
	vec := u.decl(ast.TypedefDecl, "vec", "typedef int vec[4]", 0)
	size := u.decl(ast.TypedefDecl, "size", "typedef unsigned long size", 0)
	rec := u.node(ast.RecordDecl, "struct { int y; }", 0, u.decl(ast.FieldDecl, "y", "int y", 0))
	rec.TagUsed, rec.CompleteDefinition = "struct", true
	anon := u.decl(ast.TypedefDecl, "anon", "typedef struct { int y; } anon", 0,
		&ast.Node{Kind: ast.ElaboratedType, OwnedTagDecl: &ast.Node{ID: rec.ID, Kind: ast.RecordDecl}})

	syms := NewSymbolTable(u.unit(nil))
	require.NoError(t, syms.Load(u.root(p, tdP, vec, size, rec, anon)))
	require.Len(t, syms.Typedefs, 4)

	sp, _ := syms.LookupStruct("P")
	td, ok := syms.LookupTypedef("P")
	require.True(t, ok)
	assert.Same(t, sp, td.Struct)
	assert.Empty(t, td.Proxy)

	td, ok = syms.LookupTypedef("vec")
	require.True(t, ok)
	assert.Equal(t, "int", td.Proxy)
	assert.Equal(t, "[ 4 ]", td.Suffix)

	td, ok = syms.LookupTypedef("size")
	require.True(t, ok)
	assert.Equal(t, "unsigned long", td.Proxy)
	assert.Empty(t, td.Suffix)

	td, ok = syms.LookupTypedef("anon")
	require.True(t, ok)
	require.NotNil(t, td.Struct)
	assert.Equal(t, "y", td.Struct.Members[0].Name)

	again, err := syms.RegisterTypedef(vec)
	require.NoError(t, err)
	assert.Equal(t, "vec", again.Name)
	assert.Len(t, syms.Typedefs, 4)
}

func TestRegisterTypedefMacro(t *testing.T) {
	syms := NewSymbolTable(nil)
	here := ast.Loc{File: "a.h", Offset: 10}
	n := &ast.Node{
		ID: "td", Kind: ast.TypedefDecl, Name: "buf",
		Range: &ast.Range{Begin: ast.Loc{SpellingLoc: &here, ExpansionLoc: &here}, End: ast.Loc{SpellingLoc: &here, ExpansionLoc: &here}},
		Type:  &ast.Type{QualType: "char [16]"},
	}
	td, err := syms.RegisterTypedef(n)
	require.NoError(t, err)
	assert.Equal(t, "char", td.Proxy)
	assert.Equal(t, "[16]", td.Suffix)
}

func TestParseIntLit(t *testing.T) {
	cases := map[string]int64{"10": 10, "0x10": 16, "010": 8, "4u": 4, "7UL": 7, "0xffffffffffffffff": -1}
	for in, want := range cases {
		v, err := parseIntLit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, v, in)
	}
	_, err := parseIntLit("1.5")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------
