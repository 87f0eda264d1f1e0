package cl

import (
	"math"
	"strings"

	"github.com/ngkaho1234/c99-to-c89/clang/ast"
	"github.com/ngkaho1234/c99-to-c89/clang/token"
	"github.com/qiniu/x/log"
)

// -----------------------------------------------------------------------------

// Role is the syntactic position of a compound literal.
type Role int

const (
	RoleOperand       Role = iota // any other sub-expression, e.g. &(T){...}
	RoleValue                     // right side of an assignment, variable initializer
	RoleCallArgument              // f((T){...})
	RoleReturnOperand             // return (T){...};
	RoleIndexedBase               // (T[]){...}[i], (T){...}.x
	RoleDesignated                // element of a variable's initializer list
	RoleNested                    // element of another literal's initializer list
)

var roleNames = [...]string{
	RoleOperand:       "OPERAND",
	RoleValue:         "VALUE_ASSIGNMENT",
	RoleCallArgument:  "CALL_ARGUMENT",
	RoleReturnOperand: "RETURN_OPERAND",
	RoleIndexedBase:   "INDEXED_BASE",
	RoleDesignated:    "DESIGNATED",
	RoleNested:        "NESTED",
}

func (r Role) String() string {
	if r >= 0 && int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "Role(?)"
}

type TypeKind int

const (
	ScalarType TypeKind = iota
	StructType
	EnumType
	TypedefType
)

// LiteralType is the type name of a compound literal, split the way a
// declaration of a variable of that type needs it: Spec Decl <name> Dims.
type LiteralType struct {
	Kind    TypeKind
	Struct  *StructDecl  // StructType, nil for a definition written inline
	Enum    *EnumDecl    // EnumType, nil for a definition written inline
	Typedef *TypedefDecl // TypedefType
	Spec    []token.Token
	Decl    []token.Token // `*` and qualifiers
	Dims    []token.Token // `[2]`, `[]`
	NPtrs   int
}

func (t *LiteralType) String() string {
	var parts []string
	for _, toks := range [][]token.Token{t.Spec, t.Decl, t.Dims} {
		if len(toks) > 0 {
			parts = append(parts, token.Join(toks))
		}
	}
	return strings.Join(parts, " ")
}

// Site is a compound literal to hoist.
type Site struct {
	Node  *ast.Node
	Role  Role
	Type  *LiteralType
	Outer *Site // literal whose initializer holds this one

	// Begin and End delimit the tokens of the literal in the main token
	// stream. A literal produced by an object-like macro is the macro name.
	Begin, End int

	// Macro is set for a literal produced by a macro; Init then holds the
	// initializer tokens from the macro definition.
	Macro bool
	Init  []token.Token

	Name string // temporary, set by the rewriter

	init        [2]int // initializer span in the main token stream
	inner       []*Site
	substituted bool
}

// Target is a statement that holds compound literals. Block is the compound
// statement it is an item of, or nil when the statement is the body of a
// control statement or a labeled statement and is wrapped in place.
type Target struct {
	Stmt  *ast.Node
	Block *ast.Node
	Sites []*Site // inner before outer, left to right
}

// -----------------------------------------------------------------------------

type classifier struct {
	syms    *SymbolTable
	src     Provider
	file    string
	toks    []token.Token
	files   map[string][]token.Token
	targets []*Target
}

// Classify finds the compound literals in the function bodies of the main
// file and the statements they have to be hoisted to.
func Classify(src Provider, syms *SymbolTable) ([]*Target, error) {
	p := &classifier{
		syms: syms, src: src, file: src.File(), toks: src.Tokens(),
		files: make(map[string][]token.Token),
	}
	for _, decl := range src.Root().Inner {
		if decl.IsImplicit || !p.inMainFile(decl) {
			continue
		}
		if decl.Kind == ast.FunctionDecl {
			if body := funcBody(decl); body != nil {
				if err := p.stmt(body, nil, nil); err != nil {
					return nil, err
				}
			}
			continue
		}
		if lit := findLiteral(decl); lit != nil {
			return nil, unsupported(lit, "compound literal at file scope")
		}
	}
	targets := p.targets[:0]
	for _, t := range p.targets {
		if len(t.Sites) > 0 {
			targets = append(targets, t)
		}
	}
	return targets, nil
}

func (p *classifier) inMainFile(n *ast.Node) bool {
	return n.Range != nil && n.Range.Begin.Expansion().InFile(p.file)
}

func funcBody(fn *ast.Node) *ast.Node {
	if n := len(fn.Inner); n > 0 && fn.Inner[n-1].Kind == ast.CompoundStmt {
		return fn.Inner[n-1]
	}
	return nil
}

func findLiteral(n *ast.Node) *ast.Node {
	if n.Kind == ast.CompoundLiteralExpr {
		return n
	}
	for _, c := range n.Inner {
		if lit := findLiteral(c); lit != nil {
			return lit
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// isSubStmt reports whether the i-th child of a statement is a statement of
// its own rather than part of the statement's header.
func isSubStmt(stmt *ast.Node, i int) bool {
	last := i == len(stmt.Inner)-1
	switch stmt.Kind {
	case ast.IfStmt:
		return i > 0
	case ast.WhileStmt, ast.SwitchStmt, ast.CaseStmt, ast.DefaultStmt, ast.LabelStmt:
		return last
	case ast.DoStmt:
		return i == 0
	case ast.ForStmt:
		return i == 4
	}
	return false
}

// fromMacro reports whether a statement starts inside a macro expansion.
func fromMacro(n *ast.Node) bool {
	return n.Range != nil && n.Range.Begin.IsMacro()
}

// stmt collects the literals of a statement. A statement produced by a macro
// has no tokens of its own in the main file to place a declaration between,
// so it is hoisted as a whole, together with every statement of the same
// expansion below it: owner is that target.
func (p *classifier) stmt(n *ast.Node, block *ast.Node, owner *Target) error {
	if n.Kind == "" {
		return nil
	}
	if !fromMacro(n) {
		owner = nil
	} else if owner == nil {
		owner = &Target{Stmt: n, Block: block}
		p.targets = append(p.targets, owner)
		if debugClassify {
			log.Println("==> macro statement", n.Kind, nodePos(n))
		}
	}
	if n.Kind == ast.CompoundStmt {
		for _, item := range n.Inner {
			if err := p.stmt(item, n, owner); err != nil {
				return err
			}
		}
		return nil
	}
	t := owner
	if t == nil {
		t = &Target{Stmt: n, Block: block}
		p.targets = append(p.targets, t)
	}
	parents := []*ast.Node{n}
	for i, c := range n.Inner {
		var err error
		if isSubStmt(n, i) {
			err = p.stmt(c, nil, owner)
		} else {
			err = p.expr(c, t, parents, nil)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *classifier) expr(n *ast.Node, t *Target, parents []*ast.Node, outer *Site) error {
	switch n.Kind {
	case "":
		return nil
	case ast.CompoundLiteralExpr:
		site, err := p.newSite(n, parents, outer)
		if err != nil {
			return err
		}
		parents = append(parents, n)
		for _, c := range n.Inner {
			if err = p.expr(c, t, parents, site); err != nil {
				return err
			}
		}
		if outer != nil {
			outer.inner = append(outer.inner, site)
		}
		t.Sites = append(t.Sites, site)
		return nil
	case ast.StmtExpr:
		if lit := findLiteral(n); lit != nil {
			return unsupported(lit, "compound literal inside a statement expression")
		}
		return nil
	}
	parents = append(parents, n)
	for _, c := range n.Inner {
		if err := p.expr(c, t, parents, outer); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (p *classifier) newSite(n *ast.Node, parents []*ast.Node, outer *Site) (*Site, error) {
	if n.FileScope {
		return nil, unsupported(n, "compound literal at file scope")
	}
	for _, a := range parents {
		if a.Kind == ast.VarDecl && (a.StorageClass == ast.Static || a.StorageClass == ast.Extern) {
			return nil, unsupported(n, "compound literal in the initializer of %s variable %s", a.StorageClass, a.Name)
		}
	}
	if n.Range == nil {
		return nil, lookupError(n, "compound literal without source range")
	}
	role, op := literalRole(n, parents)
	site := &Site{Node: n, Role: role, Outer: outer}
	typeToks, err := p.span(site, outer)
	if err != nil {
		return nil, err
	}
	if site.Type, err = p.literalType(n, typeToks); err != nil {
		return nil, err
	}
	if role == RoleIndexedBase && !p.addressable(site.Type, op) {
		return nil, unsupported(n, "operator %s applied to compound literal of type %v", op, site.Type)
	}
	if debugClassify {
		log.Println("==> literal", site.Type, "-", role, nodePos(n))
	}
	return site, nil
}

// literalRole inspects the nearest ancestor that is not an implicit cast or
// a parenthesis. op is "[" or "." for RoleIndexedBase.
func literalRole(n *ast.Node, parents []*ast.Node) (role Role, op string) {
	child := n
	for i := len(parents) - 1; i >= 0; i-- {
		a := parents[i]
		switch a.Kind {
		case ast.ImplicitCastExpr, ast.ParenExpr:
			child = a
			continue
		case ast.BinaryOperator, ast.CompoundAssignOperator:
			if (a.Kind == ast.CompoundAssignOperator || a.OpCode == "=") && len(a.Inner) == 2 && a.Inner[1] == child {
				return RoleValue, ""
			}
		case ast.VarDecl:
			return RoleValue, ""
		case ast.CallExpr:
			if len(a.Inner) > 0 && a.Inner[0] != child {
				return RoleCallArgument, ""
			}
		case ast.ReturnStmt:
			return RoleReturnOperand, ""
		case ast.ArraySubscriptExpr:
			if len(a.Inner) > 0 && a.Inner[0] == child {
				return RoleIndexedBase, "["
			}
		case ast.MemberExpr:
			if !a.IsArrow {
				return RoleIndexedBase, "."
			}
		case ast.InitListExpr:
			j := i - 1
			for j >= 0 && parents[j].Kind == ast.InitListExpr {
				j--
			}
			if j >= 0 {
				switch parents[j].Kind {
				case ast.CompoundLiteralExpr:
					return RoleNested, ""
				case ast.VarDecl:
					return RoleDesignated, ""
				}
			}
		}
		break
	}
	return RoleOperand, ""
}

// -----------------------------------------------------------------------------

// span locates the tokens of a literal and returns the tokens of its type
// name.
func (p *classifier) span(site *Site, outer *Site) (typeToks []token.Token, err error) {
	n := site.Node
	b, e := &n.Range.Begin, &n.Range.End
	switch {
	case !b.IsMacro() && !e.IsMacro():
		return p.mainSpan(site, b, e)
	case b.IsMacroArgExpansion && e.IsMacroArgExpansion:
		return p.mainSpan(site, b.Source(), e.Source())
	case b.IsMacro() && e.IsMacro() && !b.IsMacroArgExpansion && !e.IsMacroArgExpansion:
		if outer != nil && outer.Macro {
			return nil, unsupported(n, "nested compound literal inside a macro")
		}
		return p.macroSpan(site, b, e)
	}
	return nil, unsupported(n, "compound literal partially produced by a macro")
}

func (p *classifier) mainSpan(site *Site, b, e *ast.Loc) ([]token.Token, error) {
	n, toks := site.Node, p.toks
	if !b.InFile(p.file) || !e.InFile(p.file) {
		return nil, unsupported(n, "compound literal not written in %s", p.file)
	}
	bi, ei := token.Search(toks, b.Offset), token.Search(toks, e.Offset)
	if bi < 0 || ei < 0 {
		return nil, lookupError(n, "no token at offset %d or %d", b.Offset, e.Offset)
	}
	rp := matchParen(toks, bi)
	lb := nextCode(toks, rp)
	if !toks[bi].Is("(") || rp < 0 || lb < 0 || lb > ei || !toks[lb].Is("{") || !toks[ei].Is("}") {
		return nil, lookupError(n, "unexpected tokens %s", token.Concat(toks, bi, ei))
	}
	for i := bi; i <= ei; i++ {
		if toks[i].Kind == token.DIRECTIVE {
			return nil, unsupported(n, "preprocessor directive inside compound literal")
		}
	}
	site.Begin, site.End = bi, ei
	site.init = [2]int{lb, ei}
	return token.Code(toks[bi+1 : rp]), nil
}

// macroSpan handles a literal that is the whole body of an object-like macro:
//
//	#define NAME (Type){...}
//
// The macro name is replaced, type and initializer come from the definition.
func (p *classifier) macroSpan(site *Site, b, e *ast.Loc) ([]token.Token, error) {
	n, toks := site.Node, p.toks
	eb, ee := b.Expansion(), e.Expansion()
	if !eb.InFile(p.file) || !ee.InFile(p.file) || eb.Offset != ee.Offset {
		return nil, unsupported(n, "compound literal crosses a macro invocation")
	}
	k := token.Search(toks, eb.Offset)
	if k < 0 || toks[k].Kind != token.IDENT {
		return nil, lookupError(n, "no macro name at offset %d", eb.Offset)
	}
	name := toks[k].Text
	if next := nextCode(toks, k); next >= 0 && toks[next].Is("(") {
		return nil, unsupported(n, "compound literal produced by function-like macro %s", name)
	}
	sb, se := b.Spelling(), e.Spelling()
	if !ast.SameFile(sb.File, se.File) || sb.Offset > se.Offset {
		return nil, unsupported(n, "compound literal spread over macro %s", name)
	}
	all, err := p.fileTokens(sb.File)
	if err != nil {
		return nil, err
	}
	bi, ei := token.Search(all, sb.Offset), token.Search(all, se.Offset)
	if bi < 3 || ei < bi || all[bi-1].Text != name || !all[bi-2].Is("define") || !all[bi-3].Is("#") ||
		(ei+1 < len(all) && !all[ei+1].BOL) {
		return nil, unsupported(n, "macro %s is more than a compound literal", name)
	}
	def := all[bi : ei+1]
	rp := matchParen(def, 0)
	if rp < 0 || rp+1 >= len(def) || !def[rp+1].Is("{") || !def[len(def)-1].Is("}") {
		return nil, lookupError(n, "unexpected tokens in macro %s: %s", name, token.Join(def))
	}
	site.Begin, site.End = k, k
	site.Macro = true
	site.Init = def[rp+1:]
	return def[1:rp], nil
}

// fileTokens returns the code tokens of a whole file, directives split up.
func (p *classifier) fileTokens(file string) ([]token.Token, error) {
	if toks, ok := p.files[file]; ok {
		return toks, nil
	}
	toks, err := p.src.Tokenize(file, 0, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	p.files[file] = toks
	return toks, nil
}

// matchParen returns the index of the `)` closing the `(` at toks[i].
func matchParen(toks []token.Token, i int) int {
	if i < 0 || i >= len(toks) || !toks[i].Is("(") {
		return -1
	}
	depth := 0
	for ; i < len(toks); i++ {
		if !toks[i].Kind.IsCode() {
			continue
		}
		switch {
		case toks[i].Is("("):
			depth++
		case toks[i].Is(")"):
			if depth--; depth == 0 {
				return i
			}
		}
	}
	return -1
}

// nextCode returns the index of the first code token after toks[i].
func nextCode(toks []token.Token, i int) int {
	if i < 0 {
		return -1
	}
	for i++; i < len(toks); i++ {
		if toks[i].Kind.IsCode() {
			return i
		}
	}
	return -1
}

// -----------------------------------------------------------------------------

// literalType splits and resolves the type name of a literal.
func (p *classifier) literalType(n *ast.Node, toks []token.Token) (*LiteralType, error) {
	t := &LiteralType{}
	i := 0
	for ; i < len(toks); i++ {
		tok := toks[i]
		if tok.Is("{") {
			if i = matchBrace(toks, i); i < 0 {
				return nil, lookupError(n, "unbalanced type name %s", token.Join(toks))
			}
			continue
		}
		if tok.Is("*") || tok.Is("[") || tok.Is("(") {
			break
		}
	}
	t.Spec = toks[:i]
	j := i
	for ; j < len(toks) && !toks[j].Is("["); j++ {
		switch {
		case toks[j].Is("*"):
			t.NPtrs++
		case toks[j].Is("("):
			return nil, unsupported(n, "compound literal of type %s", token.Join(toks))
		}
	}
	t.Decl, t.Dims = toks[i:j], toks[j:]

	var words []token.Token
	inline := false
	for _, tok := range t.Spec {
		if tok.Is("{") {
			inline = true
			break
		}
		if !isQualifier(tok.Text) {
			words = append(words, tok)
		}
	}
	if len(words) == 0 {
		return nil, lookupError(n, "compound literal without a type")
	}
	switch w := words[0].Text; {
	case w == "struct" || w == "union":
		t.Kind = StructType
		if !inline {
			if len(words) != 2 {
				return nil, lookupError(n, "unknown type %s", token.Join(t.Spec))
			}
			s, ok := p.syms.LookupStruct(words[1].Text)
			if !ok {
				return nil, lookupError(n, "%s %s not found", w, words[1].Text)
			}
			t.Struct = s
		}
	case w == "enum":
		t.Kind = EnumType
		if !inline {
			if len(words) != 2 {
				return nil, lookupError(n, "unknown type %s", token.Join(t.Spec))
			}
			e, ok := p.syms.LookupEnum(words[1].Text)
			if !ok {
				return nil, lookupError(n, "enum %s not found", words[1].Text)
			}
			t.Enum = e
		}
	case len(words) == 1 && words[0].Kind == token.IDENT:
		td, ok := p.syms.LookupTypedef(w)
		if !ok {
			return nil, lookupError(n, "type %s not found", w)
		}
		t.Kind, t.Typedef = TypedefType, td
	default:
		for _, tok := range words {
			if tok.Kind != token.KEYWORD {
				return nil, lookupError(n, "unknown type %s", token.Join(t.Spec))
			}
		}
		t.Kind = ScalarType
	}
	return t, nil
}

func matchBrace(toks []token.Token, i int) int {
	depth := 0
	for ; i < len(toks); i++ {
		switch {
		case toks[i].Is("{"):
			depth++
		case toks[i].Is("}"):
			if depth--; depth == 0 {
				return i
			}
		}
	}
	return -1
}

// addressable reports whether op ("[" or ".") can be applied to a variable
// of type t.
func (p *classifier) addressable(t *LiteralType, op string) bool {
	if op == "[" {
		if len(t.Dims) > 0 || t.NPtrs > 0 {
			return true
		}
		if t.Kind == TypedefType {
			td := p.syms.underlying(t.Typedef)
			return td.Suffix != "" || strings.Contains(td.Proxy, "*")
		}
		return false
	}
	if len(t.Dims) > 0 || t.NPtrs > 0 {
		return false
	}
	switch t.Kind {
	case StructType:
		return true
	case TypedefType:
		td := p.syms.underlying(t.Typedef)
		if td.Struct != nil {
			return true
		}
		proxy := strings.TrimSpace(td.Proxy)
		return td.Suffix == "" && (strings.HasPrefix(proxy, "struct ") || strings.HasPrefix(proxy, "union "))
	}
	return false
}

// underlying follows typedefs of typedefs.
func (p *SymbolTable) underlying(td *TypedefDecl) *TypedefDecl {
	for i := 0; i < 16 && td.Proxy != "" && td.Suffix == ""; i++ {
		next, ok := p.typedefs[strings.TrimSpace(td.Proxy)]
		if !ok || next == td {
			break
		}
		td = next
	}
	return td
}

// -----------------------------------------------------------------------------
