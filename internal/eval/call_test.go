package eval_test

import (
	"testing"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/astbuild"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/eval"
	"github.com/cwbudde/quill/internal/value"
)

// Property 5: invoking a command taking n required positionals and rest
// with n+k positionals produces a rest list of exactly k items, in order.
func TestRestBinding(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	xID := declareVar(st, "x", false)
	restID := declareVar(st, "rest", false)

	block := astbuild.NewBlockBuilder().
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(astbuild.VarExpr(restID, span), span))).
		Build()
	blockID := st.Blocks.Register(block)

	sig := engine.Signature{
		Required: []engine.PositionalParam{{Name: "x", VarID: xID}},
		Rest:     &engine.PositionalParam{Name: "rest", VarID: restID, Rest: true},
	}
	declID := st.Decls.Register("restful", userBlockDecl{sig: sig, block: blockID})

	call := astbuild.CallExpr(declID, []ast.Expr{
		astbuild.IntLit(1, span),
		astbuild.IntLit(2, span),
		astbuild.IntLit(3, span),
		astbuild.IntLit(4, span),
	}, nil, span)

	got, err := eval.EvalExpression(st, stk, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := got.(value.List)
	if !ok {
		t.Fatalf("got %T, want List", got)
	}
	if len(list.Items) != 3 {
		t.Fatalf("rest len = %d, want 3", len(list.Items))
	}
	for i, want := range []int64{2, 3, 4} {
		if list.Items[i].(value.Int).Val != want {
			t.Fatalf("rest[%d] = %v, want %d", i, list.Items[i], want)
		}
	}
}

// Scenario 6: `def f [x, y=10, ...rest] { [$x $y $rest] }; f 1 2 3 4` ⟹
// List[1, 2, List[3,4]].
func TestScenarioOptionalAndRestBinding(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	xID := declareVar(st, "x", false)
	yID := declareVar(st, "y", false)
	restID := declareVar(st, "rest", false)

	body := astbuild.List([]ast.Expr{
		astbuild.VarExpr(xID, span),
		astbuild.VarExpr(yID, span),
		astbuild.VarExpr(restID, span),
	}, span)
	block := astbuild.NewBlockBuilder().
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(body, span))).
		Build()
	blockID := st.Blocks.Register(block)

	sig := engine.Signature{
		Required: []engine.PositionalParam{{Name: "x", VarID: xID}},
		Optional: []engine.PositionalParam{{Name: "y", VarID: yID, Default: astbuild.IntLit(10, span)}},
		Rest:     &engine.PositionalParam{Name: "rest", VarID: restID, Rest: true},
	}
	declID := st.Decls.Register("f", userBlockDecl{sig: sig, block: blockID})

	call := astbuild.CallExpr(declID, []ast.Expr{
		astbuild.IntLit(1, span),
		astbuild.IntLit(2, span),
		astbuild.IntLit(3, span),
		astbuild.IntLit(4, span),
	}, nil, span)

	got, err := eval.EvalExpression(st, stk, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := got.(value.List)
	if !ok || len(list.Items) != 3 {
		t.Fatalf("got %v, want a 3-item list", got)
	}
	if list.Items[0].(value.Int).Val != 1 {
		t.Fatalf("items[0] = %v, want 1", list.Items[0])
	}
	if list.Items[1].(value.Int).Val != 2 {
		t.Fatalf("items[1] = %v, want 2", list.Items[1])
	}
	rest, ok := list.Items[2].(value.List)
	if !ok || len(rest.Items) != 2 {
		t.Fatalf("rest = %v, want a 2-item list", list.Items[2])
	}
	if rest.Items[0].(value.Int).Val != 3 || rest.Items[1].(value.Int).Val != 4 {
		t.Fatalf("rest = %v, want [3 4]", rest.Items)
	}
}

// Scenario 6 (default branch): omitting the optional positional binds its
// declared default.
func TestOptionalPositionalDefault(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	yID := declareVar(st, "y", false)
	block := astbuild.NewBlockBuilder().
		Pipeline(astbuild.Pipeline(astbuild.ExprElement(astbuild.VarExpr(yID, span), span))).
		Build()
	blockID := st.Blocks.Register(block)

	sig := engine.Signature{
		Optional: []engine.PositionalParam{{Name: "y", VarID: yID, Default: astbuild.IntLit(10, span)}},
	}
	declID := st.Decls.Register("withdefault", userBlockDecl{sig: sig, block: blockID})

	call := astbuild.CallExpr(declID, nil, nil, span)
	got, err := eval.EvalExpression(st, stk, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i, ok := got.(value.Int); !ok || i.Val != 10 {
		t.Fatalf("got %v, want Int(10)", got)
	}
}

// Property 8: setting ctrlc before dispatching a call returns Nothing at the
// call head without invoking the declaration's run.
func TestCancellationSkipsRun(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(2, 5)

	var calls int
	declID := st.Decls.Register("probe", countingDecl{calls: &calls})
	st.Cancel()

	call := ast.Call{Head: span, DeclID: declID, CallSpan: span}
	out, err := eval.EvalCall(st, stk, call, engine.Empty(), false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.IntoValue(span)
	if got.Kind() != value.KindNothing {
		t.Fatalf("got %v, want Nothing", got)
	}
	if got.Span() != span {
		t.Fatalf("span = %+v, want %+v", got.Span(), span)
	}
	if calls != 0 {
		t.Fatalf("probe called %d times, want 0", calls)
	}
}

func TestResetCancelAllowsFurtherCalls(t *testing.T) {
	st, stk := newTestEngine(t)
	span := astbuild.Sp(0, 1)

	var calls int
	declID := st.Decls.Register("probe", countingDecl{calls: &calls})
	st.Cancel()
	st.ResetCancel()

	call := ast.Call{Head: span, DeclID: declID, CallSpan: span}
	if _, err := eval.EvalCall(st, stk, call, engine.Empty(), false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("probe called %d times, want 1", calls)
	}
}
