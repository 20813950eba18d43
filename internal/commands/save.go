package commands

import (
	"os"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/value"
)

// newSaveCommand implements `save`: writes the input's raw bytes to a file,
// honoring `--raw --force` the way §4.4's redirection rewrite invokes it.
func newSaveCommand() engine.Declaration {
	return decl{
		usage: "Save the input to a file.",
		signature: engine.Signature{
			Required: []engine.PositionalParam{{Name: "filename"}},
			Named: []engine.NamedParam{
				{Long: "raw"},
				{Long: "force"},
			},
		},
		examples: []engine.Example{
			{Description: "redirect stdout to a file", Code: "^ls o> out.txt"},
		},
		run: runSave,
	}
}

func runSave(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	targetExpr, ok := positional(call, 0)
	if !ok {
		return engine.Empty(), evalerr.Newf(evalerr.GenericError, call.Head, "save requires a filename")
	}
	target, err := evalArgString(st, stk, targetExpr)
	if err != nil {
		return engine.Empty(), err
	}

	_, force := namedArg(call, "force")
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		return engine.Empty(), evalerr.Generic(call.Head, "failed to open file for writing", err.Error(), "")
	}
	defer f.Close()

	if err := writeRaw(f, input); err != nil {
		return engine.Empty(), evalerr.Generic(call.Head, "failed to write file", err.Error(), "")
	}

	return engine.FromValue(value.NewNothing(call.Head)), nil
}

func writeRaw(f *os.File, input engine.PipelineData) error {
	if input.Kind == engine.PDExternalStream && input.External != nil && input.External.Stdout != nil {
		for chunk := range input.External.Stdout {
			if chunk.Err != nil {
				return chunk.Err
			}
			if _, err := f.Write(chunk.Data); err != nil {
				return err
			}
		}
		return nil
	}
	v := input.IntoValue(value.Span{})
	_, err := f.WriteString(v.Display())
	return err
}
