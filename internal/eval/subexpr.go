package eval

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// EvalSubexpression implements §4.6: eval_block with redirect_stdout=true,
// redirect_stderr=false, and no intermediate-pipeline draining — the last
// pipeline's result flows directly out of the enclosing expression.
func EvalSubexpression(st *engine.State, stk *engine.Stack, blockID value.BlockID, input engine.PipelineData) (engine.PipelineData, error) {
	block, ok := st.Blocks.Get(blockID)
	if !ok {
		return engine.Empty(), evalerr.Newf(evalerr.GenericError, value.Span{}, "unknown block %d", blockID)
	}
	return evalBlockNoDraining(st, stk, block, input, true, false)
}

// evalBlockNoDraining mirrors EvalBlock but skips the inter-pipeline
// drain-to-terminal step, since a subexpression's whole point is to carry
// its last pipeline's value out undisturbed.
func evalBlockNoDraining(st *engine.State, stk *engine.Stack, block *ast.Block, input engine.PipelineData, redirectStdout, redirectStderr bool) (engine.PipelineData, error) {
	if block.Recursive {
		if stk.EnterRecursive() {
			return engine.Empty(), evalerr.RecursionLimit(block.Span, engine.RecursionLimit)
		}
	}
	for _, pipeline := range block.Pipelines {
		out, err := evalPipeline(st, stk, pipeline, input, redirectStdout, redirectStderr)
		if err != nil {
			return engine.Empty(), err
		}
		input = out
	}
	return input, nil
}
