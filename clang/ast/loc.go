package ast

import (
	"path/filepath"
)

// -----------------------------------------------------------------------------

type decompressCtx struct {
	file string
	line int
}

// clang writes file and line only when they differ from the previously
// written location. decompress fills them back in.
func (l *Loc) decompress(last *decompressCtx) {
	if l == nil {
		return
	}
	l.SpellingLoc.decompress(last)
	l.ExpansionLoc.decompress(last)
	if l.SpellingLoc != nil || l.ExpansionLoc != nil {
		return
	}
	if l.TokLen == 0 && l.Offset == 0 && l.File == "" {
		return // invalid location
	}
	if l.File == "" {
		l.File = last.file
	} else {
		last.file = l.File
	}
	if l.Line == 0 {
		l.Line = last.line
	} else {
		last.line = l.Line
	}
}

func (n *Node) decompressLocs(last *decompressCtx) {
	if n == nil {
		return
	}
	n.Loc.decompress(last)
	if n.Range != nil {
		n.Range.Begin.decompress(last)
		n.Range.End.decompress(last)
	}
	for _, child := range n.ArrayFiller {
		child.decompressLocs(last)
	}
	for _, child := range n.Inner {
		child.decompressLocs(last)
	}
}

// DecompressLocs restores the file and line fields of every location below n.
// It must be called once, right after decoding.
func (n *Node) DecompressLocs() {
	n.decompressLocs(&decompressCtx{})
}

// -----------------------------------------------------------------------------

// IsMacro reports whether l comes from a macro expansion.
func (l *Loc) IsMacro() bool {
	return l != nil && (l.SpellingLoc != nil || l.ExpansionLoc != nil)
}

// Spelling returns where the token at l is written.
func (l *Loc) Spelling() *Loc {
	if l.SpellingLoc != nil {
		return l.SpellingLoc
	}
	return l
}

// Expansion returns where the token at l appears after preprocessing.
func (l *Loc) Expansion() *Loc {
	if l.ExpansionLoc != nil {
		return l.ExpansionLoc
	}
	return l
}

// Source returns the location of l in the file being read: the spelling
// location for a plain token or a macro argument, nil for a token that comes
// from a macro body.
func (l *Loc) Source() *Loc {
	if !l.IsMacro() {
		return l
	}
	if l.IsMacroArgExpansion {
		return l.Spelling()
	}
	return nil
}

// InFile reports whether l is written in file.
func (l *Loc) InFile(file string) bool {
	return l != nil && l.File != "" && SameFile(l.File, file)
}

func SameFile(a, b string) bool {
	return a == b || filepath.Clean(a) == filepath.Clean(b)
}

// -----------------------------------------------------------------------------
