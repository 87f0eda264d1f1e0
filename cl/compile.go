package cl

import (
	"github.com/ngkaho1234/c99-to-c89/clang/ast"
	"github.com/ngkaho1234/c99-to-c89/clang/token"
	"github.com/qiniu/x/log"
)

const (
	DbgFlagRegister = 1 << iota
	DbgFlagClassify
	DbgFlagHoist
	DbgFlagAll = DbgFlagRegister | DbgFlagClassify | DbgFlagHoist
)

var (
	debugRegister bool
	debugClassify bool
	debugHoist    bool
)

func SetDebug(flags int) {
	debugRegister = (flags & DbgFlagRegister) != 0
	debugClassify = (flags & DbgFlagClassify) != 0
	debugHoist = (flags & DbgFlagHoist) != 0
}

// -----------------------------------------------------------------------------

// Provider supplies a translation unit: its AST, the tokens of its main file,
// and the tokens of any source extent.
type Provider interface {
	Tokenizer

	// File returns the name of the main file, as it appears in AST locations.
	File() string

	// Root returns the TranslationUnitDecl.
	Root() *ast.Node

	// Tokens returns every token of the main file, comments and directives
	// included.
	Tokens() []token.Token
}

type Config struct {
	// TempPrefix prefixes the names of the temporaries.
	// If TempPrefix is empty, DefaultTempPrefix is used.
	TempPrefix string
}

// Rewrite hoists the compound literals of a translation unit and returns the
// resulting token stream of its main file.
func Rewrite(src Provider, conf *Config) (toks []token.Token, err error) {
	if conf == nil {
		conf = new(Config)
	}
	root := src.Root()
	if root == nil || root.Kind != ast.TranslationUnitDecl {
		return nil, &Error{Kind: ErrUnsupported, Msg: "not a translation unit"}
	}
	syms := NewSymbolTable(src)
	if err = syms.Load(root); err != nil {
		return
	}
	targets, err := Classify(src, syms)
	if err != nil {
		return
	}
	if debugHoist {
		log.Println("==> Rewrite:", src.File(), "-", len(targets), "statements")
	}
	if len(targets) == 0 {
		return src.Tokens(), nil
	}
	return Hoist(src, targets, conf.TempPrefix)
}

// -----------------------------------------------------------------------------
