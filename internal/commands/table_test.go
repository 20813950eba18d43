package commands_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/astbuild"
	"github.com/cwbudde/quill/internal/commands"
	"github.com/cwbudde/quill/internal/config"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/eval"
	"github.com/cwbudde/quill/internal/value"
)

// The `table` command's rendered output is deterministic pretty-printed JSON,
// so it is snapshotted directly rather than re-checked field by field.
func TestTableRendersRecord(t *testing.T) {
	st := engine.NewState(config.Default())
	commands.Register(st.Decls)
	stk := engine.NewRootStack("/tmp")
	span := astbuild.Sp(0, 1)

	declID, ok := st.Decls.FindDecl("table", nil)
	if !ok {
		t.Fatal("table is not registered")
	}
	call := ast.Call{Head: span, DeclID: declID, CallSpan: span}

	rec := value.NewRecord([]string{"a", "b"}, []value.Value{
		value.NewInt(1, span), value.NewInt(2, span),
	}, span)
	input := engine.FromValue(rec)

	out, err := eval.EvalCall(st, stk, call, input, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.IntoValue(span)
	rendered, ok := got.(value.String)
	if !ok {
		t.Fatalf("got %T, want String", got)
	}
	snaps.MatchSnapshot(t, rendered.Val)
}

// A `--field` projection narrows the rendered document to one gjson path.
func TestTableFieldProjection(t *testing.T) {
	st := engine.NewState(config.Default())
	commands.Register(st.Decls)
	stk := engine.NewRootStack("/tmp")
	span := astbuild.Sp(0, 1)

	declID, ok := st.Decls.FindDecl("table", nil)
	if !ok {
		t.Fatal("table is not registered")
	}
	named := []ast.NamedArg{{LongFlag: "field", Value: astbuild.StringLit("a", span)}}
	call := ast.Call{Head: span, DeclID: declID, CallSpan: span, Named: named}

	rec := value.NewRecord([]string{"a", "b"}, []value.Value{
		value.NewInt(1, span), value.NewInt(2, span),
	}, span)
	input := engine.FromValue(rec)

	out, err := eval.EvalCall(st, stk, call, input, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.IntoValue(span)
	rendered, ok := got.(value.String)
	if !ok {
		t.Fatalf("got %T, want String", got)
	}
	snaps.MatchSnapshot(t, rendered.Val)
}
