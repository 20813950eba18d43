package eval

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// EvalExternal implements §4.3: an external call carries no declaration id
// of its own, so it is rewritten into a call against the host's
// "run-external" declaration, passing the head and each argument through
// as positionals and the caller's redirect intent as named switches.
func EvalExternal(st *engine.State, stk *engine.Stack, e *ast.ExternalCallExpr, input engine.PipelineData, redirectStdout, redirectStderr bool) (engine.PipelineData, error) {
	if st.Cancelled() {
		return engine.FromValue(value.NewNothing(e.Span())), nil
	}

	declID, ok := st.Decls.FindDecl("run-external", nil)
	if !ok {
		return engine.Empty(), evalerr.ExternalUnsupported(e.Span())
	}

	positional := make([]ast.Expr, 0, len(e.Args)+1)
	positional = append(positional, e.Head)
	positional = append(positional, e.Args...)

	var named []ast.NamedArg
	addSwitch := func(name string, set bool) {
		if set {
			named = append(named, ast.NamedArg{LongFlag: name, Span: e.Span()})
		}
	}
	addSwitch("redirect-stdout", redirectStdout || e.IsSubexpression)
	addSwitch("redirect-stderr", redirectStderr)
	addSwitch("trim-end-newline", e.IsSubexpression)

	call := ast.Call{
		Head:       e.Span(),
		DeclID:     declID,
		Positional: positional,
		Named:      named,
		CallSpan:   e.Span(),
	}

	return EvalCall(st, stk, call, input, redirectStdout, redirectStderr)
}
