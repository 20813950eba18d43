package value

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Op identifies one binary operator. The evaluator maps AST operator tokens
// onto these before calling Compute; this package never sees source syntax.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpConcat // ++

	OpLt
	OpLte
	OpGt
	OpGte
	OpEq
	OpNeq
	OpIn
	OpNotIn
	OpRegexMatch
	OpRegexNotMatch
	OpStartsWith
	OpEndsWith

	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
)

// OpError reports an operator failure naming both operand types, grounded on
// the "cannot compare INTEGER with %s"-style messages used throughout the
// teacher's value algebra.
type OpError struct {
	Op   Op
	Lhs  Kind
	Rhs  Kind
	Span Span
}

func (e *OpError) Error() string {
	return fmt.Sprintf("unsupported operation %v between %s and %s", e.Op, e.Lhs, e.Rhs)
}

func newOpError(op Op, lhs, rhs Value) error {
	return &OpError{Op: op, Lhs: lhs.Kind(), Rhs: rhs.Kind(), Span: lhs.Span()}
}

// RegexCache compiles and memoizes patterns for the `=~`/`!~` operators; the
// engine owns one instance and passes it in so compiled regexes survive
// across calls within a turn (the evaluator "consults the engine for
// compiled-regex caching" per the expression-evaluator spec).
type RegexCache struct {
	compiled map[string]*regexp.Regexp
}

func NewRegexCache() *RegexCache { return &RegexCache{compiled: make(map[string]*regexp.Regexp)} }

func (c *RegexCache) get(pattern string) (*regexp.Regexp, error) {
	if re, ok := c.compiled[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	c.compiled[pattern] = re
	return re, nil
}

// Compute dispatches a binary operator over two already-evaluated operands.
// It never consumes the cancellation flag; callers poll it independently.
func Compute(op Op, lhs, rhs Value, regexes *RegexCache, span Span) (Value, error) {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpFloorDiv, OpMod, OpPow:
		return computeMath(op, lhs, rhs, span)
	case OpConcat:
		return computeConcat(lhs, rhs, span)
	case OpLt, OpLte, OpGt, OpGte, OpEq, OpNeq:
		return computeComparison(op, lhs, rhs, span)
	case OpIn, OpNotIn:
		return computeContainment(op, lhs, rhs, span)
	case OpRegexMatch, OpRegexNotMatch:
		return computeRegex(op, lhs, rhs, regexes, span)
	case OpStartsWith, OpEndsWith:
		return computeStringEdge(op, lhs, rhs, span)
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr:
		return computeBits(op, lhs, rhs, span)
	default:
		return nil, newOpError(op, lhs, rhs)
	}
}

func asNumeric(v Value) (f float64, isFloat bool, ok bool) {
	switch n := v.(type) {
	case Int:
		return float64(n.Val), false, true
	case Float:
		return n.Val, true, true
	case Filesize:
		return float64(n.Bytes), false, true
	case Duration:
		return float64(n.Nanos), false, true
	default:
		return 0, false, false
	}
}

func computeMath(op Op, lhs, rhs Value, span Span) (Value, error) {
	// String concatenation via `+` is handled like Concat for convenience,
	// mirroring how DWScript's `+` overload for strings behaves.
	if op == OpAdd {
		if ls, ok := lhs.(String); ok {
			if rs, ok2 := rhs.(String); ok2 {
				return NewString(ls.Val+rs.Val, span), nil
			}
		}
	}

	lf, lFloat, lok := asNumeric(lhs)
	rf, rFloat, rok := asNumeric(rhs)
	if !lok || !rok {
		return nil, newOpError(op, lhs, rhs)
	}

	resultFloat := lFloat || rFloat
	// Filesize/Duration combinations preserve their unit kind when both
	// sides agree; mixed numeric kinds fall back to plain Int/Float.
	unitKind := KindInt
	if _, ok := lhs.(Filesize); ok {
		if _, ok2 := rhs.(Filesize); ok2 {
			unitKind = KindFilesize
		}
	}
	if _, ok := lhs.(Duration); ok {
		if _, ok2 := rhs.(Duration); ok2 {
			unitKind = KindDuration
		}
	}

	var out float64
	switch op {
	case OpAdd:
		out = lf + rf
	case OpSub:
		out = lf - rf
	case OpMul:
		out = lf * rf
	case OpDiv:
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		out = lf / rf
		resultFloat = true
	case OpFloorDiv:
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		out = math.Floor(lf / rf)
	case OpMod:
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		out = math.Mod(lf, rf)
	case OpPow:
		out = math.Pow(lf, rf)
		resultFloat = resultFloat || out != math.Trunc(out)
	}

	if resultFloat {
		return NewFloat(out, span), nil
	}
	switch unitKind {
	case KindFilesize:
		return NewFilesize(int64(out), span), nil
	case KindDuration:
		return NewDuration(int64(out), span), nil
	default:
		return NewInt(int64(out), span), nil
	}
}

func computeConcat(lhs, rhs Value, span Span) (Value, error) {
	if ll, ok := lhs.(List); ok {
		if rl, ok2 := rhs.(List); ok2 {
			items := make([]Value, 0, len(ll.Items)+len(rl.Items))
			items = append(items, ll.Items...)
			items = append(items, rl.Items...)
			return NewList(items, span), nil
		}
	}
	return NewString(lhs.Display()+rhs.Display(), span), nil
}

func computeComparison(op Op, lhs, rhs Value, span Span) (Value, error) {
	cmp, comparable := compareValues(lhs, rhs)
	if !comparable {
		if op == OpEq {
			return NewBool(false, span), nil
		}
		if op == OpNeq {
			return NewBool(true, span), nil
		}
		return nil, newOpError(op, lhs, rhs)
	}
	var result bool
	switch op {
	case OpLt:
		result = cmp < 0
	case OpLte:
		result = cmp <= 0
	case OpGt:
		result = cmp > 0
	case OpGte:
		result = cmp >= 0
	case OpEq:
		result = cmp == 0
	case OpNeq:
		result = cmp != 0
	}
	return NewBool(result, span), nil
}

// compareValues returns (-1/0/1, true) when lhs and rhs are ordered relative
// to each other, or (0, false) when they are not comparable.
func compareValues(lhs, rhs Value) (int, bool) {
	if lf, _, lok := asNumeric(lhs); lok {
		if rf, _, rok := asNumeric(rhs); rok {
			switch {
			case lf < rf:
				return -1, true
			case lf > rf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if ls, ok := lhs.(String); ok {
		if rs, ok2 := rhs.(String); ok2 {
			return strings.Compare(ls.Val, rs.Val), true
		}
		return 0, false
	}
	if lb, ok := lhs.(Bool); ok {
		if rb, ok2 := rhs.(Bool); ok2 {
			if lb.Val == rb.Val {
				return 0, true
			}
			if !lb.Val {
				return -1, true
			}
			return 1, true
		}
		return 0, false
	}
	if ld, ok := lhs.(Date); ok {
		if rd, ok2 := rhs.(Date); ok2 {
			switch {
			case ld.UnixNanos < rd.UnixNanos:
				return -1, true
			case ld.UnixNanos > rd.UnixNanos:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if lhs.Kind() == KindNothing && rhs.Kind() == KindNothing {
		return 0, true
	}
	return 0, false
}

func computeContainment(op Op, lhs, rhs Value, span Span) (Value, error) {
	found := false
	switch container := rhs.(type) {
	case List:
		for _, item := range container.Items {
			if cmp, ok := compareValues(lhs, item); ok && cmp == 0 {
				found = true
				break
			}
		}
	case String:
		if needle, ok := lhs.(String); ok {
			found = strings.Contains(container.Val, needle.Val)
		} else {
			return nil, newOpError(op, lhs, rhs)
		}
	case Range:
		n, isFloat, ok := asNumeric(lhs)
		if !ok {
			return nil, newOpError(op, lhs, rhs)
		}
		found = rangeContains(container, n, isFloat)
	default:
		return nil, newOpError(op, lhs, rhs)
	}
	if op == OpNotIn {
		found = !found
	}
	return NewBool(found, span), nil
}

func rangeContains(r Range, n float64, _ bool) bool {
	if r.From != nil {
		if fromF, _, ok := asNumeric(r.From); ok && n < fromF {
			return false
		}
	}
	if r.To != nil {
		toF, _, ok := asNumeric(r.To)
		if !ok {
			return true
		}
		if r.Op == RangeInclusive {
			if n > toF {
				return false
			}
		} else if n >= toF {
			return false
		}
	}
	return true
}

func computeRegex(op Op, lhs, rhs Value, regexes *RegexCache, span Span) (Value, error) {
	ls, ok := lhs.(String)
	if !ok {
		return nil, newOpError(op, lhs, rhs)
	}
	rs, ok := rhs.(String)
	if !ok {
		return nil, newOpError(op, lhs, rhs)
	}
	if regexes == nil {
		regexes = NewRegexCache()
	}
	re, err := regexes.get(rs.Val)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", rs.Val, err)
	}
	matched := re.MatchString(ls.Val)
	if op == OpRegexNotMatch {
		matched = !matched
	}
	return NewBool(matched, span), nil
}

func computeStringEdge(op Op, lhs, rhs Value, span Span) (Value, error) {
	ls, ok := lhs.(String)
	if !ok {
		return nil, newOpError(op, lhs, rhs)
	}
	rs, ok := rhs.(String)
	if !ok {
		return nil, newOpError(op, lhs, rhs)
	}
	var result bool
	if op == OpStartsWith {
		result = strings.HasPrefix(ls.Val, rs.Val)
	} else {
		result = strings.HasSuffix(ls.Val, rs.Val)
	}
	return NewBool(result, span), nil
}

func computeBits(op Op, lhs, rhs Value, span Span) (Value, error) {
	li, ok := lhs.(Int)
	if !ok {
		return nil, newOpError(op, lhs, rhs)
	}
	ri, ok := rhs.(Int)
	if !ok {
		return nil, newOpError(op, lhs, rhs)
	}
	var out int64
	switch op {
	case OpBitAnd:
		out = li.Val & ri.Val
	case OpBitOr:
		out = li.Val | ri.Val
	case OpBitXor:
		out = li.Val ^ ri.Val
	case OpShl:
		out = li.Val << uint64(ri.Val)
	case OpShr:
		out = li.Val >> uint64(ri.Val)
	}
	return NewInt(out, span), nil
}

// Boolean operators are kept out of Compute because And/Or are
// short-circuit at the expression-evaluator level: the evaluator must not
// evaluate the rhs expression at all when the lhs already decides the
// result, so those two operators cannot be plain two-Value functions and
// live in the evaluator. Only Xor is exposed here.

// Xor evaluates both sides (it cannot short-circuit) and requires booleans.
func Xor(lhs, rhs Value, span Span) (Value, error) {
	lb, ok := lhs.(Bool)
	if !ok {
		return nil, newOpError(OpEq, lhs, rhs)
	}
	rb, ok := rhs.(Bool)
	if !ok {
		return nil, newOpError(OpEq, lhs, rhs)
	}
	return NewBool(lb.Val != rb.Val, span), nil
}

// Not implements UnaryNot, which requires a Bool operand.
func Not(v Value, span Span) (Value, error) {
	b, ok := v.(Bool)
	if !ok {
		return nil, fmt.Errorf("type mismatch: expected bool, got %s", v.Kind())
	}
	return NewBool(!b.Val, span), nil
}
