package eval_test

import (
	"testing"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/astbuild"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/eval"
	"github.com/cwbudde/quill/internal/value"
)

// Property 3: in `a and b`, if a is false, b is not evaluated; symmetric
// for `or` with true.
func TestShortCircuitAnd(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	var calls int
	probeID := st.Decls.Register("probe", countingDecl{calls: &calls})
	probeCall := astbuild.CallExpr(probeID, nil, nil, span)

	expr := astbuild.BinaryBoolOp(astbuild.BoolLit(false, span), probeCall, ast.BoolAnd, span)
	got, err := eval.EvalExpression(st, stk, expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := got.(value.Bool); !ok || b.Val {
		t.Fatalf("false and probe() = %v, want false", got)
	}
	if calls != 0 {
		t.Fatalf("probe called %d times, want 0 (short-circuit)", calls)
	}
}

func TestShortCircuitOr(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	var calls int
	probeID := st.Decls.Register("probe", countingDecl{calls: &calls})
	probeCall := astbuild.CallExpr(probeID, nil, nil, span)

	expr := astbuild.BinaryBoolOp(astbuild.BoolLit(true, span), probeCall, ast.BoolOr, span)
	got, err := eval.EvalExpression(st, stk, expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b, ok := got.(value.Bool); !ok || !b.Val {
		t.Fatalf("true or probe() = %v, want true", got)
	}
	if calls != 0 {
		t.Fatalf("probe called %d times, want 0 (short-circuit)", calls)
	}
}

func TestAndEvaluatesRhsWhenLhsTrue(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	var calls int
	probeID := st.Decls.Register("probe", countingDecl{calls: &calls})
	probeCall := astbuild.CallExpr(probeID, nil, nil, span)

	expr := astbuild.BinaryBoolOp(astbuild.BoolLit(true, span), probeCall, ast.BoolAnd, span)
	if _, err := eval.EvalExpression(st, stk, expr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("probe called %d times, want 1", calls)
	}
}

// Scenario 2: `let x = 5; $x + 1` (x declared immutable) ⟹ Int(6).
func TestScenarioImmutableLetThenRead(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)
	xID := declareVar(st, "x", false)

	block := astbuild.NewBlockBuilder().
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(
			astbuild.Assign(astbuild.VarDecl(xID, span), astbuild.IntLit(5, span), false, 0, span), span))).
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(
			astbuild.BinaryValueOp(astbuild.VarExpr(xID, span), astbuild.IntLit(1, span), value.OpAdd, span), span))).
		Build()

	out, err := eval.EvalBlock(st, stk, block, engine.Empty(), false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.IntoValue(span)
	if i, ok := got.(value.Int); !ok || i.Val != 6 {
		t.Fatalf("got %v, want Int(6)", got)
	}
}

// Scenario 3: `mut x = 1; $x = $x + 2; $x` ⟹ Int(3).
func TestScenarioMutableReassignment(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)
	xID := declareVar(st, "x", true)

	block := astbuild.NewBlockBuilder().
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(
			astbuild.Assign(astbuild.VarDecl(xID, span), astbuild.IntLit(1, span), false, 0, span), span))).
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(
			astbuild.Assign(astbuild.VarExpr(xID, span),
				astbuild.BinaryValueOp(astbuild.VarExpr(xID, span), astbuild.IntLit(2, span), value.OpAdd, span),
				false, 0, span), span))).
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(astbuild.VarExpr(xID, span), span))).
		Build()

	out, err := eval.EvalBlock(st, stk, block, engine.Empty(), false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.IntoValue(span)
	if i, ok := got.(value.Int); !ok || i.Val != 3 {
		t.Fatalf("got %v, want Int(3)", got)
	}
}

// Reassigning an immutable variable through a plain Var lhs fails with
// AssignmentRequiresMutableVar.
func TestAssignToImmutableVarFails(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)
	xID := declareVar(st, "x", false)
	stk.SetVar(xID, value.NewInt(1, span))

	expr := astbuild.Assign(astbuild.VarExpr(xID, span), astbuild.IntLit(2, span), false, 0, span)
	_, err := eval.EvalExpression(st, stk, expr)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
