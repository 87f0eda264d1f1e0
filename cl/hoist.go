package cl

import (
	"math"
	"strconv"

	"github.com/ngkaho1234/c99-to-c89/clang/ast"
	"github.com/ngkaho1234/c99-to-c89/clang/token"
	"github.com/qiniu/x/log"
)

// DefaultTempPrefix prefixes the names of the temporaries.
const DefaultTempPrefix = "c89lit"

// -----------------------------------------------------------------------------

type rewriter struct {
	file   string
	toks   []token.Token
	before map[int][]token.Token
	after  map[int][]token.Token
	subs   map[int]*Site

	prefix string
	idx    int
	names  map[string]bool
}

// Hoist rewrites the main token stream of src: every literal of targets is
// declared as a temporary in a new scope opened before its statement, and
// replaced by the temporary's name.
//
// For a statement that is an item of a block, the new scopes are closed right
// before the block's `}`, so the statements that follow are nested inside
// them. A statement that is the body of a control statement or of a label is
// wrapped in place.
func Hoist(src Provider, targets []*Target, prefix string) ([]token.Token, error) {
	if prefix == "" {
		prefix = DefaultTempPrefix
	}
	p := &rewriter{
		file:   src.File(),
		toks:   src.Tokens(),
		before: make(map[int][]token.Token),
		after:  make(map[int][]token.Token),
		subs:   make(map[int]*Site),
		prefix: prefix,
		names:  make(map[string]bool),
	}
	all, err := src.Tokenize(p.file, 0, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.Kind == token.IDENT {
			p.names[t.Text] = true
		}
	}
	for _, t := range targets {
		if err = p.hoist(t); err != nil {
			return nil, err
		}
	}
	out, err := p.render()
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		for _, s := range t.Sites {
			if !s.substituted {
				return nil, unsupported(s.Node, "compound literal %v was not rewritten", s.Type)
			}
		}
	}
	return out, nil
}

func (p *rewriter) newName() string {
	for {
		name := p.prefix + strconv.Itoa(p.idx)
		p.idx++
		if !p.names[name] {
			p.names[name] = true
			return name
		}
	}
}

func (p *rewriter) hoist(t *Target) error {
	begin, err := p.index(t.Stmt, &t.Stmt.Range.Begin)
	if err != nil {
		return err
	}
	var end int
	if t.Block != nil {
		end, err = p.index(t.Block, &t.Block.Range.End)
	} else {
		end, err = p.stmtEnd(t.Stmt)
	}
	if err != nil {
		return err
	}
	if end <= begin {
		return unsupported(t.Stmt, "%s and its scope end at the same token %s", t.Stmt.Kind, p.toks[begin].Text)
	}

	anchor := p.toks[begin]
	var decls []token.Token
	for _, s := range t.Sites {
		s.Name = p.newName()
		init, err := p.initializer(s, anchor)
		if err != nil {
			return err
		}
		decls = append(decls, token.Synth(anchor, token.PUNCT, "{"))
		decls = appendCopy(decls, anchor, s.Type.Spec)
		decls = appendCopy(decls, anchor, s.Type.Decl)
		decls = append(decls, token.Synth(anchor, token.IDENT, s.Name))
		decls = appendCopy(decls, anchor, s.Type.Dims)
		decls = append(decls, token.Synth(anchor, token.PUNCT, "="))
		decls = append(decls, init...)
		decls = append(decls, token.Synth(anchor, token.PUNCT, ";"))
		if s.Outer == nil {
			p.subs[s.Begin] = s
		}
		if debugHoist {
			log.Println("==> hoist", s.Name, s.Type, "-", s.Role, nodePos(s.Node))
		}
	}
	p.before[begin] = append(p.before[begin], decls...)
	if t.Block != nil {
		p.before[end] = append(p.before[end], closing(p.toks[end], len(t.Sites))...)
	} else {
		p.after[end] = append(p.after[end], closing(p.toks[end], len(t.Sites))...)
	}
	return nil
}

// initializer copies the initializer of a literal, with the literals nested
// in it replaced by their temporaries.
func (p *rewriter) initializer(s *Site, anchor token.Token) ([]token.Token, error) {
	if s.Macro {
		return appendCopy(nil, anchor, s.Init), nil
	}
	inner := make(map[int]*Site, len(s.inner))
	for _, in := range s.inner {
		inner[in.Begin] = in
	}
	var ret []token.Token
	for i := s.init[0]; i <= s.init[1]; i++ {
		if in, ok := inner[i]; ok {
			ret = append(ret, token.Synth(anchor, token.IDENT, in.Name))
			in.substituted = true
			i = in.End
			continue
		}
		switch t := p.toks[i]; t.Kind {
		case token.COMMENT:
		case token.DIRECTIVE:
			return nil, unsupported(s.Node, "preprocessor directive inside compound literal")
		default:
			ret = append(ret, token.Copy(anchor, t))
		}
	}
	return ret, nil
}

func appendCopy(ret []token.Token, anchor token.Token, toks []token.Token) []token.Token {
	for _, t := range toks {
		ret = append(ret, token.Copy(anchor, t))
	}
	return ret
}

func closing(anchor token.Token, n int) []token.Token {
	ret := make([]token.Token, n)
	for i := range ret {
		ret[i] = token.Synth(anchor, token.PUNCT, "}")
	}
	return ret
}

// -----------------------------------------------------------------------------

// index returns the index of the main stream token at loc.
func (p *rewriter) index(n *ast.Node, loc *ast.Loc) (int, error) {
	exp := loc.Expansion()
	if !exp.InFile(p.file) {
		return -1, unsupported(n, "%s not written in %s", n.Kind, p.file)
	}
	i := token.Search(p.toks, exp.Offset)
	if i < 0 {
		return -1, lookupError(n, "no token at offset %d", exp.Offset)
	}
	return i, nil
}

// stmtEnd returns the index of the last token of a statement, its `;`
// included.
func (p *rewriter) stmtEnd(stmt *ast.Node) (int, error) {
	if stmt.Range.End.IsMacro() {
		return p.invocationEnd(stmt)
	}
	switch stmt.Kind {
	case ast.CompoundStmt, ast.DeclStmt, ast.NullStmt:
		return p.index(stmt, &stmt.Range.End)
	case ast.IfStmt, ast.WhileStmt, ast.ForStmt, ast.SwitchStmt,
		ast.CaseStmt, ast.DefaultStmt, ast.LabelStmt:
		if n := len(stmt.Inner); n > 0 {
			return p.stmtEnd(stmt.Inner[n-1])
		}
	}
	i, err := p.index(stmt, &stmt.Range.End)
	if err != nil {
		return -1, err
	}
	for ; i < len(p.toks); i++ {
		if p.toks[i].Kind.IsCode() && p.toks[i].Is(";") {
			return i, nil
		}
	}
	return -1, lookupError(stmt, "no `;` after %s", stmt.Kind)
}

// invocationEnd returns the last token of the macro invocation a statement
// ends in: its `)` for a function-like macro, followed by a `;` if any.
func (p *rewriter) invocationEnd(stmt *ast.Node) (int, error) {
	i, err := p.index(stmt, &stmt.Range.End)
	if err != nil {
		return -1, err
	}
	name := p.toks[i].Text
	if next := nextCode(p.toks, i); next >= 0 && p.toks[next].Is("(") {
		if i = matchParen(p.toks, next); i < 0 {
			return -1, lookupError(stmt, "unbalanced arguments of macro %s", name)
		}
	}
	if next := nextCode(p.toks, i); next >= 0 && p.toks[next].Is(";") {
		i = next
	}
	return i, nil
}

func (p *rewriter) render() ([]token.Token, error) {
	toks := p.toks
	out := make([]token.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		out = append(out, p.before[i]...)
		if s, ok := p.subs[i]; ok {
			// the name takes over the position of the literal
			t := toks[i]
			t.Kind, t.Text = token.IDENT, s.Name
			out = append(out, t)
			s.substituted = true
			for j := i + 1; j <= s.End; j++ {
				if len(p.before[j]) > 0 || len(p.after[j]) > 0 {
					return nil, unsupported(s.Node, "statement inside compound literal")
				}
			}
			i = s.End
		} else {
			out = append(out, toks[i])
		}
		out = append(out, p.after[i]...)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
