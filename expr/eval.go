package expr

import (
	"fmt"
	"strings"
)

// ArityError is raised when a built-in function is called with the wrong
// number of arguments.
type ArityError struct {
	Func string
	Want string
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("function %q expects %s arguments, got %d", e.Func, e.Want, e.Got)
}

// Eval walks the AST and produces a Value. Undefined references resolve
// to Null rather than erroring (spec.md §4.1); syntax/arity problems
// returned by Parse or by function calls are hard errors.
func Eval(node Node, ctx *Context) (Value, error) {
	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil

	case *ArrayNode:
		vals := make([]Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := Eval(e, ctx)
			if err != nil {
				return Null, err
			}
			vals[i] = v
		}
		return Array(vals), nil

	case *ObjectNode:
		m := make(map[string]Value, len(n.Keys))
		for i, k := range n.Keys {
			v, err := Eval(n.Values[i], ctx)
			if err != nil {
				return Null, err
			}
			m[k] = v
		}
		return Object(m, append([]string{}, n.Keys...)), nil

	case *UnaryNode:
		return evalUnary(n, ctx)

	case *BinaryNode:
		return evalBinary(n, ctx)

	case *TernaryNode:
		cond, err := Eval(n.Cond, ctx)
		if err != nil {
			return Null, err
		}
		if cond.Truthy() {
			return Eval(n.Then, ctx)
		}
		return Eval(n.Else, ctx)

	case *ReferenceNode:
		return evalReference(n, ctx)
	}
	return Null, fmt.Errorf("expr: unhandled node type %T", node)
}

func evalUnary(n *UnaryNode, ctx *Context) (Value, error) {
	v, err := Eval(n.Operand, ctx)
	if err != nil {
		return Null, err
	}
	switch n.Op {
	case TokNot:
		return Bool(!v.Truthy()), nil
	case TokMinus:
		num, _ := v.AsNumber()
		return Number(-num), nil
	}
	return Null, fmt.Errorf("expr: unknown unary operator %v", n.Op)
}

func evalBinary(n *BinaryNode, ctx *Context) (Value, error) {
	// Short-circuit && and ||.
	if n.Op == TokAnd {
		left, err := Eval(n.Left, ctx)
		if err != nil {
			return Null, err
		}
		if !left.Truthy() {
			return Bool(false), nil
		}
		right, err := Eval(n.Right, ctx)
		if err != nil {
			return Null, err
		}
		return Bool(right.Truthy()), nil
	}
	if n.Op == TokOr {
		left, err := Eval(n.Left, ctx)
		if err != nil {
			return Null, err
		}
		if left.Truthy() {
			return Bool(true), nil
		}
		right, err := Eval(n.Right, ctx)
		if err != nil {
			return Null, err
		}
		return Bool(right.Truthy()), nil
	}

	left, err := Eval(n.Left, ctx)
	if err != nil {
		return Null, err
	}
	right, err := Eval(n.Right, ctx)
	if err != nil {
		return Null, err
	}

	switch n.Op {
	case TokEq:
		return Bool(valuesEqual(left, right)), nil
	case TokNe:
		return Bool(!valuesEqual(left, right)), nil
	case TokLt, TokLe, TokGt, TokGe:
		return Bool(compareOrdered(left, right, n.Op)), nil
	case TokPlus:
		return arith(left, right, n.Op)
	case TokMinus, TokStar, TokSlash, TokPercent:
		return arith(left, right, n.Op)
	}
	return Null, fmt.Errorf("expr: unknown binary operator %v", n.Op)
}

// arith implements +, -, *, /, %. '+' adds numerically when both sides
// coerce to numbers (numeric strings included) and otherwise concatenates
// the two sides' string forms; the other operators yield Null unless both
// sides coerce to numbers.
func arith(left, right Value, op TokenKind) (Value, error) {
	if op == TokPlus && left.Kind() == KindString && right.Kind() == KindString {
		if _, lok := left.AsNumber(); !lok {
			return String(left.String() + right.String()), nil
		}
	}
	ln, lok := left.AsNumber()
	rn, rok := right.AsNumber()
	if !lok || !rok {
		if op == TokPlus {
			return String(left.String() + right.String()), nil
		}
		return Null, nil
	}
	switch op {
	case TokPlus:
		return Number(ln + rn), nil
	case TokMinus:
		return Number(ln - rn), nil
	case TokStar:
		return Number(ln * rn), nil
	case TokSlash:
		if rn == 0 {
			return Null, nil
		}
		return Number(ln / rn), nil
	case TokPercent:
		if rn == 0 {
			return Null, nil
		}
		return Number(float64(int64(ln) % int64(rn))), nil
	}
	return Null, nil
}

// valuesEqual implements the coercion rules from spec.md §4.1.
func valuesEqual(a, b Value) bool {
	if a.Kind() == KindNull || b.Kind() == KindNull {
		return a.Kind() == KindNull && b.Kind() == KindNull
	}
	if a.Kind() == KindBool || b.Kind() == KindBool {
		return a.Truthy() == b.Truthy()
	}
	if a.Kind() == KindNumber || b.Kind() == KindNumber {
		an, aok := a.AsNumber()
		bn, bok := b.AsNumber()
		if aok && bok {
			return an == bn
		}
		return strings.EqualFold(a.String(), b.String())
	}
	if a.Kind() == KindString && b.Kind() == KindString {
		// numeric strings compare numerically, else case-insensitively.
		an, aok := a.AsNumber()
		bn, bok := b.AsNumber()
		if aok && bok {
			return an == bn
		}
		return strings.EqualFold(a.s, b.s)
	}
	return deepEqual(a, b)
}

func deepEqual(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !valuesEqual(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, v := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !valuesEqual(v, bv) {
				return false
			}
		}
		return true
	}
	return a.String() == b.String()
}

// compareOrdered implements <, <=, >, >= with numeric-first coercion,
// falling back to case-insensitive string compare.
func compareOrdered(a, b Value, op TokenKind) bool {
	an, aok := a.AsNumber()
	bn, bok := b.AsNumber()
	if aok && bok {
		switch op {
		case TokLt:
			return an < bn
		case TokLe:
			return an <= bn
		case TokGt:
			return an > bn
		case TokGe:
			return an >= bn
		}
	}
	as, bs := strings.ToLower(a.String()), strings.ToLower(b.String())
	switch op {
	case TokLt:
		return as < bs
	case TokLe:
		return as <= bs
	case TokGt:
		return as > bs
	case TokGe:
		return as >= bs
	}
	return false
}

func evalReference(n *ReferenceNode, ctx *Context) (Value, error) {
	// A bare identifier with a trailing call part is a function invocation;
	// otherwise it's a namespace lookup.
	if len(n.Parts) > 0 && n.Parts[0].Kind == "call" {
		args := make([]Value, len(n.Parts[0].Args))
		for i, a := range n.Parts[0].Args {
			v, err := Eval(a, ctx)
			if err != nil {
				return Null, err
			}
			args[i] = v
		}
		result, err := CallFunction(n.Root, args, ctx)
		if err != nil {
			return Null, err
		}
		return evalTrailingParts(result, n.Parts[1:], ctx)
	}

	// Namespace lookup: root + the path of field/index segments, stopping
	// if a "call" part appears mid-chain (not meaningful for namespaces).
	var segs []PathSegment
	i := 0
	for ; i < len(n.Parts); i++ {
		part := n.Parts[i]
		if part.Kind == "call" {
			break
		}
		if part.Kind == "field" {
			segs = append(segs, PathSegment{Field: part.Field})
		} else {
			idxVal, err := Eval(part.Index, ctx)
			if err != nil {
				return Null, err
			}
			segs = append(segs, PathSegment{Key: idxVal, IsKey: true})
		}
	}
	val := ctx.Lookup(n.Root, segs)
	return evalTrailingParts(val, n.Parts[i:], ctx)
}

// evalTrailingParts applies any call/field/index parts that follow a
// function result or namespace root, e.g. `split(a,',')[0]`.
func evalTrailingParts(val Value, parts []AccessPart, ctx *Context) (Value, error) {
	cur := val
	for _, part := range parts {
		switch part.Kind {
		case "field":
			v, ok := MapNamespace{Root: cur}.Get([]PathSegment{{Field: part.Field}})
			if !ok {
				return Null, nil
			}
			cur = v
		case "index":
			idxVal, err := Eval(part.Index, ctx)
			if err != nil {
				return Null, err
			}
			v, ok := MapNamespace{Root: cur}.Get([]PathSegment{{Key: idxVal, IsKey: true}})
			if !ok {
				return Null, nil
			}
			cur = v
		case "call":
			return Null, fmt.Errorf("expr: chained function calls are not supported")
		}
	}
	return cur, nil
}
