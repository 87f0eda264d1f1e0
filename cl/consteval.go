package cl

import (
	"strconv"

	"github.com/ngkaho1234/c99-to-c89/clang/ast"
)

// -----------------------------------------------------------------------------

// enumConstValue computes the value of an enumerator. Without an initializer
// it is next: 0 for the first member, else the previous value + 1.
func (p *SymbolTable) enumConstValue(c *ast.Node, next int64) (int64, error) {
	if len(c.Inner) == 0 {
		return next, nil
	}
	init := c.Inner[0]
	vals, err := p.evalConst(init)
	if err != nil {
		return 0, err
	}
	switch len(vals) {
	case 1:
		return vals[0], nil
	case 0:
		if init.Kind == ast.ConstantExpr {
			if v, ok := constValue(init.Value); ok {
				return v, nil
			}
		}
		return next, nil
	}
	return 0, unsupported(c, "enum constant %s: %d values in one expression", c.Name, len(vals))
}

// evalConst evaluates a constant expression. Kinds that are not understood
// yield no value.
func (p *SymbolTable) evalConst(n *ast.Node) ([]int64, error) {
	switch n.Kind {
	case ast.IntegerLiteral, ast.CharacterLiteral:
		v, ok := constValue(n.Value)
		if !ok {
			return nil, unsupported(n, "bad literal %v", n.Value)
		}
		return []int64{v}, nil
	case ast.DeclRefExpr:
		name := n.Name
		if n.ReferencedDecl != nil {
			name = n.ReferencedDecl.Name
		}
		v, ok := p.consts[name]
		if !ok {
			return nil, lookupError(n, "enum constant %s not found", name)
		}
		return []int64{v.Value}, nil
	case ast.BinaryOperator:
		vals, err := p.evalChildren(n)
		if err != nil {
			return nil, err
		}
		if len(vals) != 2 {
			return nil, unsupported(n, "operator %s with %d operands", n.OpCode, len(vals))
		}
		v, err := binaryOp(n, vals[0], vals[1])
		if err != nil {
			return nil, err
		}
		return []int64{v}, nil
	case ast.UnaryOperator:
		vals, err := p.evalChildren(n)
		if err != nil {
			return nil, err
		}
		if len(vals) != 1 {
			return nil, unsupported(n, "operator %s with %d operands", n.OpCode, len(vals))
		}
		switch x := vals[0]; n.OpCode {
		case "-":
			return []int64{-x}, nil
		case "+":
			return []int64{x}, nil
		case "~":
			return []int64{^x}, nil
		}
		return nil, unsupported(n, "operator %s in constant expression", n.OpCode)
	case ast.ConstantExpr, ast.ImplicitCastExpr, ast.ParenExpr, ast.CStyleCastExpr:
		return p.evalChildren(n)
	}
	return nil, nil
}

func (p *SymbolTable) evalChildren(n *ast.Node) (vals []int64, err error) {
	for _, c := range n.Inner {
		v, err := p.evalConst(c)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v...)
	}
	return
}

func binaryOp(n *ast.Node, x, y int64) (int64, error) {
	switch n.OpCode {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/", "%":
		if y == 0 {
			return 0, unsupported(n, "division by zero in constant expression")
		}
		if n.OpCode == "/" {
			return x / y, nil
		}
		return x % y, nil
	case "&":
		return x & y, nil
	case "|":
		return x | y, nil
	case "^":
		return x ^ y, nil
	case "<<":
		if y < 0 || y > 63 {
			return 0, unsupported(n, "shift count %d out of range", y)
		}
		return x << uint(y), nil
	case ">>":
		if y < 0 || y > 63 {
			return 0, unsupported(n, "shift count %d out of range", y)
		}
		return x >> uint(y), nil
	}
	return 0, unsupported(n, "operator %s in constant expression", n.OpCode)
}

// constValue converts the value clang attaches to literals and folded
// expressions: a decimal string for integers, a number for characters.
func constValue(v interface{}) (int64, bool) {
	switch v := v.(type) {
	case string:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i, true
		}
		if u, err := strconv.ParseUint(v, 10, 64); err == nil {
			return int64(u), true
		}
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// -----------------------------------------------------------------------------
