package commands

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// newLengthCommand implements `length`: the size of a list, string or
// record input.
func newLengthCommand() engine.Declaration {
	return decl{
		usage:     "Count the elements of the input.",
		signature: engine.Signature{},
		examples: []engine.Example{
			{Description: "count a list", Code: "[1 2 3] | length"},
		},
		run: runLength,
	}
}

func runLength(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	v := input.IntoValue(call.Head)
	switch t := v.(type) {
	case value.List:
		return engine.FromValue(value.NewInt(int64(len(t.Items)), call.Head)), nil
	case value.String:
		return engine.FromValue(value.NewInt(int64(len([]rune(t.Val))), call.Head)), nil
	case value.Record:
		return engine.FromValue(value.NewInt(int64(len(t.Columns)), call.Head)), nil
	default:
		return engine.Empty(), evalerr.TypeMismatchf(call.Head, "type mismatch: length expects list, string or record, got %s", v.Kind())
	}
}
