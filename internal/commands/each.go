package commands

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/eval"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// newEachCommand implements `each`: iterate a list through a closure,
// exercising call-dispatch-into-user-block from a host command's Run.
func newEachCommand() engine.Declaration {
	return decl{
		usage: "Run a closure on each element of the input.",
		signature: engine.Signature{
			Required: []engine.PositionalParam{{Name: "closure"}},
		},
		examples: []engine.Example{
			{Description: "double every element", Code: "[1 2 3] | each {|x| $x * 2}"},
		},
		run: runEach,
	}
}

func runEach(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	closureExpr, ok := positional(call, 0)
	if !ok {
		return engine.Empty(), evalerr.Newf(evalerr.GenericError, call.Head, "each requires a closure argument")
	}
	closureVal, err := evalArgValue(st, stk, closureExpr)
	if err != nil {
		return engine.Empty(), err
	}
	closure, ok := closureVal.(value.Closure)
	if !ok {
		return engine.Empty(), evalerr.TypeMismatchf(closureExpr.Span(), "type mismatch: expected closure, got %s", closureVal.Kind())
	}

	v := input.IntoValue(call.Head)
	list, ok := v.(value.List)
	if !ok {
		return engine.Empty(), evalerr.TypeMismatchf(call.Head, "type mismatch: expected list, got %s", v.Kind())
	}

	out := make([]value.Value, len(list.Items))
	for i, item := range list.Items {
		result, err := eval.EvalClosureCall(st, stk, closure, []value.Value{item}, engine.FromValue(item))
		if err != nil {
			return engine.Empty(), err
		}
		out[i] = result
	}

	return engine.FromValue(value.NewList(out, call.Head)), nil
}
