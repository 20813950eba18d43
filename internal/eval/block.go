package eval

import (
	"errors"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/hostenv"
	"github.com/cwbudde/quill/internal/value"
)

// EvalBlock implements §4.5. Intermediate pipelines (every one but the
// last) are drained to a terminal value before the next pipeline starts;
// the final pipeline's result flows out untouched.
func EvalBlock(st *engine.State, stk *engine.Stack, block *ast.Block, input engine.PipelineData, redirectStdout, redirectStderr bool) (engine.PipelineData, error) {
	if block.Recursive {
		if stk.EnterRecursive() {
			return engine.Empty(), evalerr.RecursionLimit(block.Span, engine.RecursionLimit)
		}
	}

	for pi, pipeline := range block.Pipelines {
		out, err := evalPipeline(st, stk, pipeline, input, redirectStdout, redirectStderr)
		if err != nil {
			return engine.Empty(), err
		}
		input = out

		if pi < len(block.Pipelines)-1 {
			input, err = drainBetweenPipelines(st, stk, input)
			if err != nil {
				return engine.Empty(), err
			}
		}
	}

	return input, nil
}

func evalPipeline(st *engine.State, stk *engine.Stack, pipeline ast.Pipeline, input engine.PipelineData, redirectStdout, redirectStderr bool) (engine.PipelineData, error) {
	for i, elem := range pipeline.Elements {
		stdoutFlag := redirectStdout || (i < len(pipeline.Elements)-1 && nextWantsStdout(pipeline.Elements, i))
		stderrFlag := redirectStderr || nextWantsStderr(pipeline.Elements, i)

		out, externalFailed, err := EvalElementWithInput(st, stk, elem, input, stdoutFlag, stderrFlag)
		if err != nil {
			if stderrFlag {
				return engine.FromValue(errorToValue(err, elem.ElemSpan())), nil
			}
			return engine.Empty(), err
		}
		if externalFailed {
			return out, nil
		}
		input = out
	}
	return input, nil
}

func nextWantsStdout(elems []ast.PipelineElement, i int) bool {
	if i+1 >= len(elems) {
		return false
	}
	return mightConsumeExternalResult(elems[i+1])
}

// mightConsumeExternalResult is the §9 extension seam: it decides whether
// the element after a given position could read the previous element's
// stdout, and therefore whether that stdout must be captured rather than
// inherited straight to the terminal. Today that's any expression/connector
// element, or an explicit stdout-targeting redirection; a future element
// kind (e.g. a pipe-aware command form) would extend this switch, not the
// callers that consult it.
func mightConsumeExternalResult(elem ast.PipelineElement) bool {
	switch next := elem.(type) {
	case *ast.ExpressionElement, *ast.AndElement, *ast.OrElement:
		return true
	case *ast.RedirectionElement:
		return next.Kind == ast.RedirectStdout || next.Kind == ast.RedirectStdoutAndStderr
	}
	return false
}

func nextWantsStderr(elems []ast.PipelineElement, i int) bool {
	if i+1 >= len(elems) {
		return false
	}
	r, ok := elems[i+1].(*ast.RedirectionElement)
	if !ok {
		return false
	}
	return r.Kind == ast.RedirectStderr || r.Kind == ast.RedirectStdoutAndStderr
}

func errorToValue(err error, sp value.Span) value.Value {
	return value.NewError(err, sp)
}

// drainBetweenPipelines implements §4.5 step 3: collapse input to a
// terminal value (via `table` when registered, else per-item Display),
// publishing $env.LAST_EXIT_CODE for an ExternalStream input.
func drainBetweenPipelines(st *engine.State, stk *engine.Stack, input engine.PipelineData) (engine.PipelineData, error) {
	switch input.Kind {
	case engine.PDEmpty:
		return engine.Empty(), nil

	case engine.PDExternalStream:
		exitCode := 0
		if input.External != nil && input.External.ExitCode != nil {
			if code, ok := <-input.External.ExitCode; ok {
				exitCode = code
			}
		}
		if err := renderViaTable(st, stk, input); err != nil {
			return engine.Empty(), err
		}
		stk.SetEnv("LAST_EXIT_CODE", value.NewInt(int64(exitCode), input.External.Span))
		return engine.Empty(), nil

	default:
		if err := renderViaTable(st, stk, input); err != nil {
			return engine.Empty(), err
		}
		return engine.Empty(), nil
	}
}

func renderViaTable(st *engine.State, stk *engine.Stack, input engine.PipelineData) error {
	tableID, ok := st.Decls.FindDecl("table", nil)
	if !ok {
		if st.Terminal != nil {
			return writeStringified(st.Terminal, input)
		}
		return nil
	}
	call := ast.Call{DeclID: tableID}
	_, err := EvalCall(st, stk, call, input, false, false)
	return err
}

// writeStringified is the table-unregistered fallback of §4.5 step 3: each
// item displayed on its own line.
func writeStringified(term *hostenv.TerminalWriter, input engine.PipelineData) error {
	switch input.Kind {
	case engine.PDListStream:
		if input.List == nil {
			return nil
		}
		for {
			v, ok := input.List.Next()
			if !ok {
				break
			}
			if err := term.WriteAllAndFlush(v.Display() + "\n"); err != nil {
				return err
			}
		}
		return nil
	default:
		return term.WriteAllAndFlush(input.IntoValue(value.Span{}).Display() + "\n")
	}
}

// EvalBlockWithEarlyReturn catches the Return sentinel at the function-call
// boundary and converts it into a successful value result, per §7.
func EvalBlockWithEarlyReturn(st *engine.State, stk *engine.Stack, block *ast.Block, input engine.PipelineData, redirectStdout, redirectStderr bool) (engine.PipelineData, error) {
	out, err := EvalBlock(st, stk, block, input, redirectStdout, redirectStderr)
	if err == nil {
		return out, nil
	}
	var ret *evalerr.ReturnSignal
	if errors.As(err, &ret) {
		return engine.FromValue(ret.Value), nil
	}
	return engine.Empty(), err
}
