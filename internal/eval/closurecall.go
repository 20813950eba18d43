package eval

import (
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// EvalClosureCall invokes a Closure value outside the declaration registry
// (the path `each`, `where` and similar iteration commands need): a fresh
// frame is seeded from the closure's own capture snapshot, its declared
// parameters are bound positionally from args, and the body runs through
// the same early-return boundary a user-defined command call does.
func EvalClosureCall(st *engine.State, callerStack *engine.Stack, closure value.Closure, args []value.Value, input engine.PipelineData) (value.Value, error) {
	block, ok := st.Blocks.Get(closure.Block)
	if !ok {
		return nil, evalerr.Newf(evalerr.GenericError, closure.Span(), "unknown block %d", closure.Block)
	}

	calleeStack := engine.NewStackFromCaptures(closure.Captures, callerStack.Cwd, make(map[string]string))

	for i, paramID := range block.Params {
		var v value.Value = value.NewNothing(closure.Span())
		if i < len(args) {
			v = args[i]
		}
		calleeStack.SetVar(paramID, v)
	}

	out, err := EvalBlockWithEarlyReturn(st, calleeStack, block, input, false, false)
	if err != nil {
		return nil, err
	}
	return out.IntoValue(closure.Span()), nil
}
