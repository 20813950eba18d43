package eval_test

import (
	"testing"

	"github.com/cwbudde/quill/internal/astbuild"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/eval"
	"github.com/cwbudde/quill/internal/value"
)

// Scenario 7: `$env.FOO = "bar"; $env.FOO` ⟹ String("bar").
func TestScenarioEnvRoundTrip(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	target := astbuild.FullCellPath(astbuild.VarExpr(engine.EnvVariableID, span),
		[]value.PathMember{{Name: "FOO", IsName: true}}, span)

	block := astbuild.NewBlockBuilder().
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(
			astbuild.Assign(target, astbuild.StringLit("bar", span), false, 0, span), span))).
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(target, span))).
		Build()

	out, err := eval.EvalBlock(st, stk, block, engine.Empty(), false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.IntoValue(span)
	s, ok := got.(value.String)
	if !ok || s.Val != "bar" {
		t.Fatalf("got %v, want String(bar)", got)
	}
}

// $nu's record carries a "scope" column once a ScopeBuilder is wired in
// (newTestEngine wires scope.Build), and its column names are unique.
func TestNuRecordHasScopeColumn(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	got, err := eval.EvalVariable(st, stk, engine.NuVariableID, span)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, ok := got.(value.Record)
	if !ok {
		t.Fatalf("got %T, want Record", got)
	}
	if _, ok := rec.Get("scope"); !ok {
		t.Fatal(`$nu record has no "scope" column`)
	}
	seen := make(map[string]bool, len(rec.Columns))
	for _, c := range rec.Columns {
		if seen[c] {
			t.Fatalf("duplicate column %q in $nu record", c)
		}
		seen[c] = true
	}
}

// Reading an undeclared variable fails with VariableNotFound.
func TestEvalVariableUnknownFails(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	_, err := eval.EvalVariable(st, stk, value.VarID(99999), span)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}
