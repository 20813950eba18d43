package eval

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
)

// EvalElementWithInput implements §4.4. The second return reports whether
// the element was an external call whose process exited nonzero — that is
// not a Go error, just a signal for the block executor to stop the chain.
func EvalElementWithInput(st *engine.State, stk *engine.Stack, elem ast.PipelineElement, input engine.PipelineData, redirectStdout, redirectStderr bool) (engine.PipelineData, bool, error) {
	switch el := elem.(type) {
	case *ast.ExpressionElement:
		return evalExpressionElement(st, stk, el.Expr, input, redirectStdout, redirectStderr)

	case *ast.RedirectionElement:
		return evalRedirection(st, stk, el, input)

	case *ast.AndElement:
		return evalExpressionElement(st, stk, el.Expr, input, redirectStdout, redirectStderr)

	case *ast.OrElement:
		return evalExpressionElement(st, stk, el.Expr, input, redirectStdout, redirectStderr)

	default:
		return engine.Empty(), false, evalerr.Newf(evalerr.GenericError, elem.ElemSpan(), "unhandled pipeline element %T", elem)
	}
}

func evalExpressionElement(st *engine.State, stk *engine.Stack, expr ast.Expr, input engine.PipelineData, redirectStdout, redirectStderr bool) (engine.PipelineData, bool, error) {
	switch e := expr.(type) {
	case *ast.CallExpr:
		pd, err := EvalCall(st, stk, e.Call, input, redirectStdout, redirectStderr)
		if err != nil {
			return engine.Empty(), false, err
		}
		pd, failed := peekExternalFailure(pd)
		return pd, failed, nil

	case *ast.ExternalCallExpr:
		pd, err := EvalExternal(st, stk, e, input, redirectStdout, redirectStderr)
		if err != nil {
			return engine.Empty(), false, err
		}
		pd, failed := peekExternalFailure(pd)
		return pd, failed, nil

	default:
		v, err := EvalExpression(st, stk, expr)
		if err != nil {
			return engine.Empty(), false, err
		}
		return engine.FromValue(v), false, nil
	}
}

// peekExternalFailure reads the exit code off the stream's one-shot exit
// channel and reports whether it was nonzero, returning a PipelineData
// whose ExitCode channel replays the same value for the block executor's
// own later read (§4.5 step 3) — the value can only be sent once by the
// producer, so this caches it rather than draining it away.
func peekExternalFailure(pd engine.PipelineData) (engine.PipelineData, bool) {
	if pd.Kind != engine.PDExternalStream || pd.External == nil || pd.External.ExitCode == nil {
		return pd, false
	}
	code, ok := <-pd.External.ExitCode
	if !ok {
		return pd, false
	}
	replay := make(chan int, 1)
	replay <- code
	close(replay)
	es := *pd.External
	es.ExitCode = replay
	pd.External = &es
	return pd, code != 0
}

// evalRedirection rewrites input per the redirection kind, then invokes the
// registered save command with `<target> --raw --force`.
func evalRedirection(st *engine.State, stk *engine.Stack, el *ast.RedirectionElement, input engine.PipelineData) (engine.PipelineData, bool, error) {
	rewritten := rewriteForRedirection(el.Kind, input)

	saveID, ok := st.Decls.FindDecl("save", nil)
	if !ok {
		return engine.Empty(), false, evalerr.CmdNotFound(el.ElemSpan(), "save")
	}

	call := ast.Call{
		Head:       el.ElemSpan(),
		DeclID:     saveID,
		Positional: []ast.Expr{el.Target},
		Named: []ast.NamedArg{
			{LongFlag: "raw", Span: el.ElemSpan()},
			{LongFlag: "force", Span: el.ElemSpan()},
		},
		CallSpan: el.ElemSpan(),
	}
	pd, err := EvalCall(st, stk, call, rewritten, false, false)
	if err != nil {
		return engine.Empty(), false, err
	}
	return pd, false, nil
}

func rewriteForRedirection(kind ast.RedirectKind, input engine.PipelineData) engine.PipelineData {
	if input.Kind != engine.PDExternalStream || input.External == nil {
		return input
	}
	es := input.External
	switch kind {
	case ast.RedirectStderr:
		return engine.FromExternalStream(&engine.ExternalStream{
			Stdout:         es.Stderr,
			Stderr:         nil,
			ExitCode:       es.ExitCode,
			Span:           es.Span,
			Metadata:       es.Metadata,
			TrimEndNewline: es.TrimEndNewline,
		})
	case ast.RedirectStdoutAndStderr:
		return engine.FromExternalStream(&engine.ExternalStream{
			Stdout:         concatChunks(es.Stdout, es.Stderr),
			Stderr:         nil,
			ExitCode:       es.ExitCode,
			Span:           es.Span,
			Metadata:       es.Metadata,
			TrimEndNewline: es.TrimEndNewline,
		})
	default: // RedirectStdout: no rewrite needed.
		return input
	}
}

// concatChunks drains a then b in order onto a single channel, matching
// the "stdout then stderr" ordering §4.4 requires.
func concatChunks(a, b <-chan engine.ByteChunk) <-chan engine.ByteChunk {
	out := make(chan engine.ByteChunk)
	go func() {
		defer close(out)
		if a != nil {
			for c := range a {
				out <- c
			}
		}
		if b != nil {
			for c := range b {
				out <- c
			}
		}
	}()
	return out
}
