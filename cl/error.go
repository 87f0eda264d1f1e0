package cl

import (
	"errors"
	"fmt"

	"github.com/ngkaho1234/c99-to-c89/clang/ast"
)

// -----------------------------------------------------------------------------

type ErrorKind int

const (
	// ErrLookup: a referenced token, enum constant or type is not found.
	ErrLookup ErrorKind = iota + 1
	// ErrResource: input too large to hold.
	ErrResource
	// ErrUnsupported: an expression or declarator shape that can not be
	// handled, or a compound literal in a place it can not be hoisted from.
	ErrUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case ErrLookup:
		return "lookup failure"
	case ErrResource:
		return "resource exhausted"
	case ErrUnsupported:
		return "unsupported construct"
	}
	return "unknown error"
}

type Error struct {
	Kind ErrorKind
	Pos  string // file:line:col, empty if unknown
	Msg  string
	Err  error // underlying error, if any
}

func (p *Error) Error() string {
	msg := p.Kind.String() + ": " + p.Msg
	if p.Pos != "" {
		msg = p.Pos + ": " + msg
	}
	if p.Err != nil {
		msg += ": " + p.Err.Error()
	}
	return msg
}

func (p *Error) Unwrap() error {
	return p.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newError(kind ErrorKind, n *ast.Node, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: nodePos(n), Msg: fmt.Sprintf(format, args...)}
}

func lookupError(n *ast.Node, format string, args ...interface{}) *Error {
	return newError(ErrLookup, n, format, args...)
}

func unsupported(n *ast.Node, format string, args ...interface{}) *Error {
	return newError(ErrUnsupported, n, format, args...)
}

func nodePos(n *ast.Node) string {
	if n == nil || n.Range == nil {
		return ""
	}
	loc := n.Range.Begin.Expansion()
	if loc.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
}

// -----------------------------------------------------------------------------
