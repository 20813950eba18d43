package eval_test

import (
	"testing"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/astbuild"
	"github.com/cwbudde/quill/internal/eval"
	"github.com/cwbudde/quill/internal/value"
)

// Property 1: literal identity — eval_expression(L) yields a Value equal to
// L with the literal's span.
func TestLiteralIdentity(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(3, 7)

	cases := []struct {
		name string
		expr ast.Expr
		want value.Value
	}{
		{"bool", astbuild.BoolLit(true, span), value.NewBool(true, span)},
		{"int", astbuild.IntLit(42, span), value.NewInt(42, span)},
		{"float", astbuild.FloatLit(1.5, span), value.NewFloat(1.5, span)},
		{"string", astbuild.StringLit("hi", span), value.NewString("hi", span)},
		{"nothing", astbuild.NothingLit(span), value.NewNothing(span)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := eval.EvalExpression(st, stk, c.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind() != c.want.Kind() {
				t.Fatalf("kind = %v, want %v", got.Kind(), c.want.Kind())
			}
			if got.Span() != span {
				t.Fatalf("span = %+v, want %+v", got.Span(), span)
			}
			if got.Display() != c.want.Display() {
				t.Fatalf("display = %q, want %q", got.Display(), c.want.Display())
			}
		})
	}
}

// Property 2: deterministic evaluation — evaluating the same expression
// twice against the same state/stack yields the same result.
func TestDeterministicEvaluation(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)
	expr := astbuild.BinaryValueOp(astbuild.IntLit(2, span), astbuild.IntLit(3, span), value.OpMul, span)

	a, err := eval.EvalExpression(st, stk, expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := eval.EvalExpression(st, stk, expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Display() != b.Display() {
		t.Fatalf("non-deterministic: %q vs %q", a.Display(), b.Display())
	}
}

// Property 4 / scenario 4: a record literal with a repeated column name
// keeps one entry per name, last write wins, first-seen order preserved.
func TestRecordUniqueness(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	rec := astbuild.Record([]ast.RecordPair{
		astbuild.Pair(astbuild.StringLit("a", span), astbuild.IntLit(1, span)),
		astbuild.Pair(astbuild.StringLit("b", span), astbuild.IntLit(2, span)),
		astbuild.Pair(astbuild.StringLit("a", span), astbuild.IntLit(9, span)),
	}, span)

	got, err := eval.EvalExpression(st, stk, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, ok := got.(value.Record)
	if !ok {
		t.Fatalf("expected Record, got %T", got)
	}
	if len(r.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d (%v)", len(r.Columns), r.Columns)
	}
	if r.Columns[0] != "a" || r.Columns[1] != "b" {
		t.Fatalf("column order = %v, want [a b]", r.Columns)
	}
	av, ok := r.Get("a")
	if !ok {
		t.Fatalf("missing column a")
	}
	if av.(value.Int).Val != 9 {
		t.Fatalf("a = %v, want 9 (last write wins)", av)
	}
	bv, _ := r.Get("b")
	if bv.(value.Int).Val != 2 {
		t.Fatalf("b = %v, want 2", bv)
	}
}

// Scenario 1: `1 + 2 * 3` evaluated left-to-right per the built tree (the
// tree itself encodes precedence since no parser exists here) yields 7 when
// built as 1 + (2 * 3).
func TestScenarioArithmeticPrecedence(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)
	mul := astbuild.BinaryValueOp(astbuild.IntLit(2, span), astbuild.IntLit(3, span), value.OpMul, span)
	add := astbuild.BinaryValueOp(astbuild.IntLit(1, span), mul, value.OpAdd, span)

	got, err := eval.EvalExpression(st, stk, add)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := got.(value.Int)
	if !ok || i.Val != 7 {
		t.Fatalf("got %v, want Int(7)", got)
	}
}

// Scenario 8: `2kb + 1kib` = Filesize(2000 + 1024) = Filesize(3024).
func TestScenarioUnitFilesizeArithmetic(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)
	kb := withUnit(astbuild.IntLit(2, span), "kb", span)
	kib := withUnit(astbuild.IntLit(1, span), "KiB", span)
	add := astbuild.BinaryValueOp(kb, kib, value.OpAdd, span)

	got, err := eval.EvalExpression(st, stk, add)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := got.(value.Filesize)
	if !ok {
		t.Fatalf("got %T, want Filesize", got)
	}
	if f.Bytes != 3024 {
		t.Fatalf("bytes = %d, want 3024", f.Bytes)
	}
}

// Scenario 9: `1min` = Duration(60_000_000_000).
func TestScenarioUnitDuration(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)
	expr := withUnit(astbuild.IntLit(1, span), "min", span)

	got, err := eval.EvalExpression(st, stk, expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := got.(value.Duration)
	if !ok {
		t.Fatalf("got %T, want Duration", got)
	}
	if d.Nanos != 60_000_000_000 {
		t.Fatalf("nanos = %d, want 60000000000", d.Nanos)
	}
}

// withUnit builds a ValueWithUnitExpr node directly: astbuild has no
// dedicated constructor for unit literals since this file is the only
// place in the test suite that builds this shape.
func withUnit(inner ast.Expr, unitName string, sp value.Span) ast.Expr {
	return &ast.ValueWithUnitExpr{ast.NewExprBase(sp), inner, unitName}
}
