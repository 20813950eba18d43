package value_test

import (
	"testing"

	"github.com/cwbudde/quill/internal/value"
)

func compute(t *testing.T, op value.Op, lhs, rhs value.Value) value.Value {
	t.Helper()
	got, err := value.Compute(op, lhs, rhs, value.NewRegexCache(), value.Unknown)
	if err != nil {
		t.Fatalf("Compute(%v) failed: %v", op, err)
	}
	return got
}

func TestComputeArithmetic(t *testing.T) {
	got := compute(t, value.OpAdd, value.NewInt(1, value.Unknown), value.NewInt(2, value.Unknown))
	if i, ok := got.(value.Int); !ok || i.Val != 3 {
		t.Fatalf("1+2 = %v, want Int(3)", got)
	}

	got = compute(t, value.OpMul, value.NewFloat(1.5, value.Unknown), value.NewInt(2, value.Unknown))
	if f, ok := got.(value.Float); !ok || f.Val != 3.0 {
		t.Fatalf("1.5*2 = %v, want Float(3)", got)
	}
}

func TestComputeAddStringsConcatenates(t *testing.T) {
	got := compute(t, value.OpAdd, value.NewString("foo", value.Unknown), value.NewString("bar", value.Unknown))
	s, ok := got.(value.String)
	if !ok || s.Val != "foobar" {
		t.Fatalf("got %v, want String(foobar)", got)
	}
}

func TestComputeDivisionByZero(t *testing.T) {
	_, err := value.Compute(value.OpDiv, value.NewInt(1, value.Unknown), value.NewInt(0, value.Unknown), nil, value.Unknown)
	if err == nil {
		t.Fatal("expected division-by-zero error, got nil")
	}
}

func TestComputeComparison(t *testing.T) {
	got := compute(t, value.OpLt, value.NewInt(1, value.Unknown), value.NewInt(2, value.Unknown))
	if b, ok := got.(value.Bool); !ok || !b.Val {
		t.Fatalf("1<2 = %v, want Bool(true)", got)
	}

	got = compute(t, value.OpEq, value.NewString("a", value.Unknown), value.NewInt(1, value.Unknown))
	if b, ok := got.(value.Bool); !ok || b.Val {
		t.Fatalf("incomparable Eq = %v, want Bool(false)", got)
	}
}

func TestComputeContainmentList(t *testing.T) {
	list := value.NewList([]value.Value{
		value.NewInt(1, value.Unknown),
		value.NewInt(2, value.Unknown),
	}, value.Unknown)

	got := compute(t, value.OpIn, value.NewInt(2, value.Unknown), list)
	if b, ok := got.(value.Bool); !ok || !b.Val {
		t.Fatalf("2 in [1 2] = %v, want true", got)
	}

	got = compute(t, value.OpNotIn, value.NewInt(3, value.Unknown), list)
	if b, ok := got.(value.Bool); !ok || !b.Val {
		t.Fatalf("3 not-in [1 2] = %v, want true", got)
	}
}

func TestComputeRegexMatch(t *testing.T) {
	cache := value.NewRegexCache()
	got, err := value.Compute(value.OpRegexMatch, value.NewString("hello", value.Unknown), value.NewString("^he", value.Unknown), cache, value.Unknown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := got.(value.Bool); !ok || !b.Val {
		t.Fatalf("got %v, want Bool(true)", got)
	}
}

func TestComputeStringEdge(t *testing.T) {
	got := compute(t, value.OpStartsWith, value.NewString("hello", value.Unknown), value.NewString("he", value.Unknown))
	if b, ok := got.(value.Bool); !ok || !b.Val {
		t.Fatalf("starts-with = %v, want true", got)
	}
	got = compute(t, value.OpEndsWith, value.NewString("hello", value.Unknown), value.NewString("lo", value.Unknown))
	if b, ok := got.(value.Bool); !ok || !b.Val {
		t.Fatalf("ends-with = %v, want true", got)
	}
}

func TestComputeBitwise(t *testing.T) {
	got := compute(t, value.OpBitAnd, value.NewInt(0b110, value.Unknown), value.NewInt(0b011, value.Unknown))
	if i, ok := got.(value.Int); !ok || i.Val != 0b010 {
		t.Fatalf("0b110 & 0b011 = %v, want 2", got)
	}
	got = compute(t, value.OpShl, value.NewInt(1, value.Unknown), value.NewInt(4, value.Unknown))
	if i, ok := got.(value.Int); !ok || i.Val != 16 {
		t.Fatalf("1 << 4 = %v, want 16", got)
	}
}

func TestXorShortCircuitsNever(t *testing.T) {
	got, err := value.Xor(value.NewBool(true, value.Unknown), value.NewBool(true, value.Unknown), value.Unknown)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := got.(value.Bool); !ok || b.Val {
		t.Fatalf("true xor true = %v, want false", got)
	}
}

func TestNotRequiresBool(t *testing.T) {
	_, err := value.Not(value.NewInt(1, value.Unknown), value.Unknown)
	if err == nil {
		t.Fatal("expected a type-mismatch error, got nil")
	}
}
