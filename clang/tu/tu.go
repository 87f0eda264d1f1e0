package tu

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ngkaho1234/c99-to-c89/clang/ast"
	"github.com/ngkaho1234/c99-to-c89/clang/parser"
	"github.com/ngkaho1234/c99-to-c89/clang/scanner"
	"github.com/ngkaho1234/c99-to-c89/clang/token"
	"github.com/qiniu/x/errors"
)

// CacheSize is the number of other files (headers) whose tokens are kept.
const CacheSize = 64

// Unit is a translation unit: the AST of a main file together with its token
// stream. Tokens of the other files the AST refers to are read on demand.
type Unit struct {
	file  string
	src   []byte
	root  *ast.Node
	toks  []token.Token
	flat  []token.Token
	cache *lru.Cache[string, []token.Token]
}

// Load parses filename with the compiler described by conf.
func Load(filename string, conf *parser.Config) (*Unit, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewWith(err, `os.ReadFile(filename)`, -2, "os.ReadFile", filename)
	}
	root, _, err := parser.ParseFile(filename, conf)
	if err != nil {
		return nil, errors.NewWith(err, `parser.ParseFile(filename, conf)`, -2, "parser.ParseFile", filename, conf)
	}
	return New(filename, src, root)
}

// New creates a translation unit from an already decoded AST.
func New(filename string, src []byte, root *ast.Node) (*Unit, error) {
	toks, err := scanner.Scan(src)
	if err != nil {
		return nil, err
	}
	flat, err := scanner.Flatten(toks)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, []token.Token](CacheSize)
	if err != nil {
		return nil, err
	}
	return &Unit{
		file: filename, src: src, root: root, toks: toks, flat: flat,
		cache: cache,
	}, nil
}

func (p *Unit) File() string {
	return p.file
}

func (p *Unit) Root() *ast.Node {
	return p.root
}

func (p *Unit) Source() []byte {
	return p.src
}

// Tokens returns every token of the main file, comments and directives
// included.
func (p *Unit) Tokens() []token.Token {
	return p.toks
}

func scanFlat(src []byte) ([]token.Token, error) {
	toks, err := scanner.Scan(src)
	if err != nil {
		return nil, err
	}
	return scanner.Flatten(toks)
}

// fileTokens returns the tokens of file with directives split up, so that
// macro definitions can be read token by token.
func (p *Unit) fileTokens(file string) ([]token.Token, error) {
	if ast.SameFile(file, p.file) {
		return p.flat, nil
	}
	if toks, ok := p.cache.Get(file); ok {
		return toks, nil
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.NewWith(err, `os.ReadFile(file)`, -2, "os.ReadFile", file)
	}
	toks, err := scanFlat(src)
	if err != nil {
		return nil, err
	}
	p.cache.Add(file, toks)
	return toks, nil
}

// Tokenize returns the code tokens of file starting within [begin, end]. The
// tokens of preprocessor directives are included.
func (p *Unit) Tokenize(file string, begin, end int64) ([]token.Token, error) {
	toks, err := p.fileTokens(file)
	if err != nil {
		return nil, err
	}
	return token.Code(token.Range(toks, begin, end)), nil
}

// -----------------------------------------------------------------------------
