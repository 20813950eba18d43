package commands

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/eval"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// Host commands receive their call's argument expressions unevaluated —
// only a user-defined block's parameters get bound by the call dispatcher
// (§4.2 step 4). Every command in this package evaluates its own
// positional/named expressions against the caller's stack via these
// helpers.

func evalArgValue(st *engine.State, stk *engine.Stack, expr ast.Expr) (value.Value, error) {
	return eval.EvalExpression(st, stk, expr)
}

func evalArgString(st *engine.State, stk *engine.Stack, expr ast.Expr) (string, error) {
	v, err := evalArgValue(st, stk, expr)
	if err != nil {
		return "", err
	}
	s, ok := v.(value.String)
	if !ok {
		return "", evalerr.TypeMismatchf(expr.Span(), "type mismatch: expected string, got %s", v.Kind())
	}
	return s.Val, nil
}

func positional(call ast.Call, n int) (ast.Expr, bool) {
	if n < 0 || n >= len(call.Positional) {
		return nil, false
	}
	return call.Positional[n], true
}
