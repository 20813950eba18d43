package eval

import (
	"strings"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// EvalCall implements §4.2. It never looks at input's concrete shape
// beyond handing it to whichever declaration ends up running.
func EvalCall(st *engine.State, callerStack *engine.Stack, call ast.Call, input engine.PipelineData, redirectStdout, redirectStderr bool) (engine.PipelineData, error) {
	if st.Cancelled() {
		return engine.FromValue(value.NewNothing(call.Head)), nil
	}

	decl, ok := st.Decls.GetDecl(call.DeclID)
	if !ok {
		return engine.Empty(), evalerr.CmdNotFound(call.Head, "<unresolved>")
	}

	// Implicit help: an external-runner declaration passes --help through
	// to the spawned process instead of rendering internal help.
	if !decl.IsKnownExternal() {
		if help, asked := wantsHelp(call); asked {
			_ = help
			return engine.FromValue(value.NewString(renderHelp(decl), call.Head)), nil
		}
	}

	if blockID, isUserBlock := decl.GetBlockID(); isUserBlock {
		return evalUserCall(st, callerStack, call, decl, blockID, input, redirectStdout, redirectStderr)
	}

	return decl.Run(st, callerStack, call, input)
}

func wantsHelp(call ast.Call) (string, bool) {
	for _, n := range call.Named {
		if n.LongFlag == "help" {
			return "help", true
		}
	}
	return "", false
}

func renderHelp(decl engine.Declaration) string {
	var b strings.Builder
	b.WriteString(decl.Usage())
	if extra := decl.ExtraUsage(); extra != "" {
		b.WriteString("\n\n")
		b.WriteString(extra)
	}
	for _, ex := range decl.Examples() {
		b.WriteString("\n\n")
		b.WriteString(ex.Description)
		b.WriteString("\n  > ")
		b.WriteString(ex.Code)
	}
	return b.String()
}

func evalUserCall(
	st *engine.State,
	callerStack *engine.Stack,
	call ast.Call,
	decl engine.Declaration,
	blockID value.BlockID,
	input engine.PipelineData,
	redirectStdout, redirectStderr bool,
) (engine.PipelineData, error) {
	block, ok := st.Blocks.Get(blockID)
	if !ok {
		return engine.Empty(), evalerr.Newf(evalerr.GenericError, call.Head, "unknown block %d", blockID)
	}

	calleeStack := callerStack.NewCalleeStack(block.Captures)

	if err := bindArguments(st, callerStack, calleeStack, decl.Signature(), call); err != nil {
		return engine.Empty(), err
	}

	result, err := EvalBlockWithEarlyReturn(st, calleeStack, block, input, redirectStdout, redirectStderr)
	if err != nil {
		return engine.Empty(), err
	}

	if block.RedirectEnv {
		engine.RedirectEnvInto(callerStack, calleeStack)
	}

	return result, nil
}

// bindArguments implements the positional/rest/named binding rules of
// §4.2 step 3, writing bound values into calleeStack.
func bindArguments(st *engine.State, callerStack, calleeStack *engine.Stack, sig engine.Signature, call ast.Call) error {
	pos := 0

	bindOne := func(p engine.PositionalParam) error {
		var v value.Value
		var err error
		switch {
		case pos < len(call.Positional):
			v, err = EvalExpression(st, callerStack, call.Positional[pos])
			pos++
		case p.Default != nil:
			v, err = EvalExpression(st, callerStack, p.Default)
		default:
			v = value.NewNothing(call.Head)
		}
		if err != nil {
			return err
		}
		calleeStack.SetVar(p.VarID, v)
		return nil
	}

	for _, p := range sig.Required {
		if err := bindOne(p); err != nil {
			return err
		}
	}
	for _, p := range sig.Optional {
		if err := bindOne(p); err != nil {
			return err
		}
	}

	if sig.Rest != nil {
		rest := []value.Value{}
		restSpan := call.Head
		for pos < len(call.Positional) {
			v, err := EvalExpression(st, callerStack, call.Positional[pos])
			if err != nil {
				return err
			}
			if len(rest) == 0 {
				restSpan = call.Positional[pos].Span()
			}
			rest = append(rest, v)
			pos++
		}
		calleeStack.SetVar(sig.Rest.VarID, value.NewList(rest, restSpan))
	}

	for _, np := range sig.Named {
		arg, found := findNamedArg(call.Named, np)
		var v value.Value
		var err error
		switch {
		case found && np.TakesArg && arg.Value != nil:
			v, err = EvalExpression(st, callerStack, arg.Value)
		case found && !np.TakesArg:
			v = value.NewBool(true, arg.Span)
		case found:
			// Present but takes an argument the caller omitted: treat as a
			// bare switch bound true, matching common flag ergonomics.
			v = value.NewBool(true, arg.Span)
		case !np.TakesArg:
			v = value.NewBool(false, call.Head)
		case np.Default != nil:
			v, err = EvalExpression(st, callerStack, np.Default)
		default:
			v = value.NewNothing(call.Head)
		}
		if err != nil {
			return err
		}
		calleeStack.SetVar(np.VarID, v)
	}

	return nil
}

func findNamedArg(args []ast.NamedArg, np engine.NamedParam) (ast.NamedArg, bool) {
	for _, a := range args {
		if a.LongFlag != "" && a.LongFlag == np.Long {
			return a, true
		}
		if np.Short != 0 && a.ShortFlag == np.Short {
			return a, true
		}
	}
	return ast.NamedArg{}, false
}
