package commands

import (
	"strings"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// newStrCommand implements `str`: a handful of scalar string conversions
// selected by its first positional (upcase/downcase/trim/length/reverse),
// matching the
// subcommand-as-argument shape simpler than a full subcommand registry.
func newStrCommand() engine.Declaration {
	return decl{
		usage: "Apply a string transformation to the input.",
		signature: engine.Signature{
			Required: []engine.PositionalParam{{Name: "operation"}},
		},
		examples: []engine.Example{
			{Description: "upcase a string", Code: `"hi" | str upcase`},
		},
		run: runStr,
	}
}

func runStr(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	opExpr, ok := positional(call, 0)
	if !ok {
		return engine.Empty(), evalerr.Newf(evalerr.GenericError, call.Head, "str requires an operation name")
	}
	op, err := evalArgString(st, stk, opExpr)
	if err != nil {
		return engine.Empty(), err
	}

	v := input.IntoValue(call.Head)
	s, ok := v.(value.String)
	if !ok {
		return engine.Empty(), evalerr.TypeMismatchf(call.Head, "type mismatch: expected string, got %s", v.Kind())
	}

	var out string
	switch op {
	case "upcase":
		out = strings.ToUpper(s.Val)
	case "downcase":
		out = strings.ToLower(s.Val)
	case "trim":
		out = strings.TrimSpace(s.Val)
	case "length":
		return engine.FromValue(value.NewInt(int64(len([]rune(s.Val))), call.Head)), nil
	case "reverse":
		runes := []rune(s.Val)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		out = string(runes)
	default:
		return engine.Empty(), evalerr.Newf(evalerr.GenericError, opExpr.Span(), "unknown str operation %q", op)
	}

	return engine.FromValue(value.NewString(out, call.Head)), nil
}
