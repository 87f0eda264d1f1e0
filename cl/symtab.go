package cl

import (
	"strconv"
	"strings"

	"github.com/ngkaho1234/c99-to-c89/clang/ast"
	"github.com/ngkaho1234/c99-to-c89/clang/token"
	"github.com/qiniu/x/log"
)

// -----------------------------------------------------------------------------

type StructMember struct {
	Name     string
	Type     string // base type, e.g. "unsigned int" for `unsigned int *p[4]`
	NPtrs    int    // number of `*` right before the name
	ArrayLen int64  // 0 if not an array
	Node     ast.ID
}

type StructDecl struct {
	Name     string // empty if anonymous
	TagUsed  string // struct | union
	Members  []*StructMember
	Node     ast.ID
	complete bool
}

type EnumMember struct {
	Name  string
	Value int64
	Node  ast.ID
}

type EnumDecl struct {
	Name    string
	Members []*EnumMember
	Node    ast.ID
}

// TypedefDecl aliases exactly one of a struct, an enum, or a proxy type text.
type TypedefDecl struct {
	Name   string
	Struct *StructDecl
	Enum   *EnumDecl
	Proxy  string // type text between `typedef` and the name
	Suffix string // declarator text after the name, e.g. "[ 4 ]"
	Node   ast.ID
}

// -----------------------------------------------------------------------------

type Tokenizer interface {
	// Tokenize returns the code tokens of file starting within [begin, end].
	Tokenize(file string, begin, end int64) ([]token.Token, error)
}

// SymbolTable holds the struct, enum and typedef declarations of a
// translation unit. Registries are append-only; for a name the first
// registration wins.
type SymbolTable struct {
	Structs  []*StructDecl
	Enums    []*EnumDecl
	Typedefs []*TypedefDecl

	src        Tokenizer
	structs    map[string]*StructDecl
	structByID map[ast.ID]*StructDecl
	enums      map[string]*EnumDecl
	enumByID   map[ast.ID]*EnumDecl
	typedefs   map[string]*TypedefDecl
	consts     map[string]*EnumMember
}

func NewSymbolTable(src Tokenizer) *SymbolTable {
	return &SymbolTable{
		src:        src,
		structs:    make(map[string]*StructDecl),
		structByID: make(map[ast.ID]*StructDecl),
		enums:      make(map[string]*EnumDecl),
		enumByID:   make(map[ast.ID]*EnumDecl),
		typedefs:   make(map[string]*TypedefDecl),
		consts:     make(map[string]*EnumMember),
	}
}

// Load registers every declaration below root, top to bottom.
func (p *SymbolTable) Load(root *ast.Node) error {
	for _, decl := range root.Inner {
		if decl.IsImplicit {
			continue
		}
		switch decl.Kind {
		case ast.RecordDecl:
			if _, err := p.RegisterStruct(decl); err != nil {
				return err
			}
		case ast.EnumDecl:
			if _, err := p.RegisterEnum(decl); err != nil {
				return err
			}
			continue
		case ast.TypedefDecl:
			if _, err := p.RegisterTypedef(decl); err != nil {
				return err
			}
			continue
		}
		if err := p.Load(decl); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// RegisterStruct registers a struct or union. A name that is already known
// returns the existing entry; if that entry was only forward declared it is
// completed in place.
func (p *SymbolTable) RegisterStruct(n *ast.Node) (*StructDecl, error) {
	if s, ok := p.structByID[n.ID]; ok {
		return s, nil
	}
	s, ok := p.structs[n.Name]
	if ok && n.Name != "" {
		p.structByID[n.ID] = s
		if s.complete || !n.CompleteDefinition {
			return s, nil
		}
	} else {
		s = &StructDecl{Name: n.Name, TagUsed: n.TagUsed, Node: n.ID}
		p.Structs = append(p.Structs, s)
		p.structByID[n.ID] = s
		if n.Name != "" {
			p.structs[n.Name] = s
		}
	}
	if debugRegister {
		log.Println(n.TagUsed, n.Name, "-", n.ID)
	}
	var prev *StructMember
	for _, field := range n.Inner {
		if field.Kind != ast.FieldDecl {
			continue
		}
		m, err := p.fieldShape(s, field, prev)
		if err != nil {
			return nil, err
		}
		if debugRegister {
			log.Println("  => field", m.Name, "-", m.Type, m.NPtrs, m.ArrayLen)
		}
		s.Members = append(s.Members, m)
		prev = m
	}
	s.complete = n.CompleteDefinition || len(s.Members) > 0
	return s, nil
}

// fieldShape reads the declarator of a field: `Type **name[N]`.
func (p *SymbolTable) fieldShape(s *StructDecl, field *ast.Node, prev *StructMember) (*StructMember, error) {
	m := &StructMember{Name: field.Name, Node: field.ID}
	if field.Name == "" || !plainRange(field) {
		m.Type, m.NPtrs, m.ArrayLen = parseQualType(qualType(field))
		return m, nil
	}
	r := field.Range
	toks, err := p.src.Tokenize(r.Begin.File, r.Begin.Offset, r.End.Offset)
	if err != nil {
		return nil, err
	}
	idx := nameIndex(toks, field)
	if idx < 0 {
		return nil, lookupError(field, "field %s of %s: name not found", field.Name, structName(s))
	}
	if idx+1 < len(toks) && toks[idx+1].Is("[") {
		m.ArrayLen = p.arrayLen(toks[idx+1:], field)
	}
	j := idx - 1
	for ; j >= 0; j-- {
		if t := toks[j]; t.Is("*") {
			m.NPtrs++
		} else if !isQualifier(t.Text) {
			break
		}
	}
	switch {
	case j < 0 || toks[j].Is(","):
		if prev == nil {
			return nil, lookupError(field, "field %s of %s: no base type", field.Name, structName(s))
		}
		m.Type = prev.Type
	case toks[j].Is("("):
		m.Type, m.NPtrs, m.ArrayLen = parseQualType(qualType(field))
	default:
		// `int const x`: qualifiers before the first `*` belong to the base type
		k := j + 1
		for k < idx && isQualifier(toks[k].Text) {
			k++
		}
		m.Type = token.Concat(toks, 0, k-1)
	}
	return m, nil
}

// arrayLen reads `[ N ]`. Anything more complex than a number or an enum
// constant is taken from the type clang computed.
func (p *SymbolTable) arrayLen(toks []token.Token, field *ast.Node) int64 {
	if len(toks) >= 3 && toks[2].Is("]") {
		switch t := toks[1]; t.Kind {
		case token.NUMBER:
			if v, err := parseIntLit(t.Text); err == nil {
				return v
			}
		case token.IDENT:
			if m, ok := p.consts[t.Text]; ok {
				return m.Value
			}
		}
	}
	_, _, n := parseQualType(qualType(field))
	return n
}

func structName(s *StructDecl) string {
	if s.Name == "" {
		return "anonymous " + s.TagUsed
	}
	return s.TagUsed + " " + s.Name
}

// -----------------------------------------------------------------------------

// RegisterEnum registers an enum and the values of its constants.
func (p *SymbolTable) RegisterEnum(n *ast.Node) (*EnumDecl, error) {
	if e, ok := p.enumByID[n.ID]; ok {
		return e, nil
	}
	e, ok := p.enums[n.Name]
	if ok && n.Name != "" {
		p.enumByID[n.ID] = e
		if len(e.Members) > 0 {
			return e, nil
		}
	} else {
		e = &EnumDecl{Name: n.Name, Node: n.ID}
		p.Enums = append(p.Enums, e)
		p.enumByID[n.ID] = e
		if n.Name != "" {
			p.enums[n.Name] = e
		}
	}
	if debugRegister {
		log.Println("enum", n.Name, "-", n.ID)
	}
	next := int64(0)
	for _, c := range n.Inner {
		if c.Kind != ast.EnumConstantDecl {
			continue
		}
		v, err := p.enumConstValue(c, next)
		if err != nil {
			return nil, err
		}
		if debugRegister {
			log.Println("  =>", c.Name, "=", v)
		}
		m := &EnumMember{Name: c.Name, Value: v, Node: c.ID}
		e.Members = append(e.Members, m)
		if _, ok := p.consts[c.Name]; !ok {
			p.consts[c.Name] = m
		}
		next = v + 1
	}
	return e, nil
}

// EnumValue returns the value of an enum constant.
func (p *SymbolTable) EnumValue(name string) (int64, error) {
	if m, ok := p.consts[name]; ok {
		return m.Value, nil
	}
	return 0, &Error{Kind: ErrLookup, Msg: "enum constant " + name + " not found"}
}

// -----------------------------------------------------------------------------

// RegisterTypedef registers a typedef. It refers to a struct or an enum when
// it aliases one, otherwise it keeps the aliased type as text.
func (p *SymbolTable) RegisterTypedef(n *ast.Node) (*TypedefDecl, error) {
	if td, ok := p.typedefs[n.Name]; ok {
		return td, nil
	}
	td := &TypedefDecl{Name: n.Name, Node: n.ID}
	if tag := aliasedTag(n); tag != nil {
		switch tag.Kind {
		case ast.RecordDecl:
			td.Struct = p.structByID[tag.ID]
			if td.Struct == nil && tag.Name != "" {
				td.Struct = p.structs[tag.Name]
			}
		case ast.EnumDecl:
			td.Enum = p.enumByID[tag.ID]
			if td.Enum == nil && tag.Name != "" {
				td.Enum = p.enums[tag.Name]
			}
		}
	}
	if td.Struct == nil && td.Enum == nil {
		proxy, suffix, err := p.typedefProxy(n)
		if err != nil {
			return nil, err
		}
		td.Proxy, td.Suffix = proxy, suffix
	}
	if debugRegister {
		log.Println("typedef", n.Name, "-", td.Proxy, td.Suffix)
	}
	p.Typedefs = append(p.Typedefs, td)
	p.typedefs[n.Name] = td
	return td, nil
}

// aliasedTag returns the struct or enum declaration a typedef names directly.
func aliasedTag(n *ast.Node) *ast.Node {
	if len(n.Inner) == 0 {
		return nil
	}
	t := n.Inner[0]
	for t.Kind == ast.ElaboratedType {
		if t.OwnedTagDecl != nil {
			return t.OwnedTagDecl
		}
		if len(t.Inner) == 0 {
			return nil
		}
		t = t.Inner[0]
	}
	if t.Kind == ast.RecordType || t.Kind == ast.EnumType {
		return t.Decl
	}
	return nil
}

func (p *SymbolTable) typedefProxy(n *ast.Node) (proxy, suffix string, err error) {
	if !plainRange(n) {
		proxy, suffix = splitQualType(qualType(n))
		return
	}
	r := n.Range
	toks, err := p.src.Tokenize(r.Begin.File, r.Begin.Offset, r.End.Offset)
	if err != nil {
		return
	}
	ti := -1
	for i, t := range toks {
		if t.Is("typedef") {
			ti = i
			break
		}
	}
	ni := nameIndex(toks, n)
	if ti < 0 || ni <= ti+1 {
		proxy, suffix = splitQualType(qualType(n))
		return
	}
	for _, t := range toks[ti+1 : ni] {
		if t.Is(",") || t.Is("(") {
			proxy, suffix = splitQualType(qualType(n))
			return
		}
	}
	proxy = token.Concat(toks, ti+1, ni-1)
	if ni+1 < len(toks) {
		suffix = token.Concat(toks, ni+1, len(toks)-1)
	}
	return
}

// -----------------------------------------------------------------------------

func (p *SymbolTable) LookupStruct(name string) (*StructDecl, bool) {
	s, ok := p.structs[name]
	return s, ok
}

func (p *SymbolTable) LookupEnum(name string) (*EnumDecl, bool) {
	e, ok := p.enums[name]
	return e, ok
}

func (p *SymbolTable) LookupTypedef(name string) (*TypedefDecl, bool) {
	td, ok := p.typedefs[name]
	return td, ok
}

// -----------------------------------------------------------------------------

// plainRange reports whether the extent of n is written in a file, not
// produced by a macro.
func plainRange(n *ast.Node) bool {
	r := n.Range
	return r != nil && !r.Begin.IsMacro() && !r.End.IsMacro() &&
		r.Begin.File != "" && ast.SameFile(r.Begin.File, r.End.File)
}

// nameIndex finds the token declaring the name of n: the one at n's location,
// else the last token spelled like the name.
func nameIndex(toks []token.Token, n *ast.Node) int {
	if n.Loc != nil && !n.Loc.IsMacro() {
		if i := token.Search(toks, n.Loc.Offset); i >= 0 && toks[i].Text == n.Name {
			return i
		}
	}
	for i := len(toks) - 1; i >= 0; i-- {
		if toks[i].Kind == token.IDENT && toks[i].Text == n.Name {
			return i
		}
	}
	return -1
}

func qualType(n *ast.Node) string {
	if n.Type == nil {
		return ""
	}
	return n.Type.QualType
}

// parseQualType splits a type clang printed, e.g. "const char *[4]".
func parseQualType(qt string) (base string, nptrs int, arrayLen int64) {
	if strings.Contains(qt, "(") {
		return qt, 0, 0
	}
	i := strings.IndexAny(qt, "*[")
	if i < 0 {
		return strings.TrimSpace(qt), 0, 0
	}
	base, decl := strings.TrimSpace(qt[:i]), qt[i:]
	if j := strings.IndexByte(decl, '['); j >= 0 {
		if k := strings.IndexByte(decl[j:], ']'); k > 0 {
			arrayLen, _ = parseIntLit(strings.TrimSpace(decl[j+1 : j+k]))
		}
		decl = decl[:j]
	}
	nptrs = strings.Count(decl, "*")
	return
}

func splitQualType(qt string) (proxy, suffix string) {
	if !strings.Contains(qt, "(") {
		if i := strings.IndexByte(qt, '['); i >= 0 {
			return strings.TrimSpace(qt[:i]), qt[i:]
		}
	}
	return qt, ""
}

var qualifiers = map[string]bool{
	"const": true, "volatile": true, "restrict": true,
	"__const": true, "__restrict": true, "__volatile__": true, "_Atomic": true,
}

func isQualifier(s string) bool {
	return qualifiers[s]
}

// parseIntLit parses a C integer literal, suffixes included.
func parseIntLit(s string) (int64, error) {
	s = strings.TrimRight(s, "uUlL")
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	return int64(v), err
}

// -----------------------------------------------------------------------------
