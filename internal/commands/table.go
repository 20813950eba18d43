package commands

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/value"
)

// newTableCommand implements the `table` declaration: render a
// PipelineData as pretty-printed JSON. An optional `--field` flag narrows
// the rendered document to one gjson path, exercising structured field
// access the way a real table renderer's column-projection flag would.
func newTableCommand() engine.Declaration {
	return decl{
		usage: "Render the input as a table.",
		signature: engine.Signature{
			Named: []engine.NamedParam{
				{Long: "field", Short: 'f', TakesArg: true},
			},
		},
		examples: []engine.Example{
			{Description: "render a list of records", Code: "[[a b]; [1 2]] | table"},
		},
		run: runTable,
	}
}

func runTable(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	v := input.IntoValue(call.Head)

	doc, err := toJSON(v)
	if err != nil {
		return engine.Empty(), err
	}

	if field, ok := namedArg(call, "field"); ok && field.Value != nil {
		path, err := evalArgString(st, stk, field.Value)
		if err != nil {
			return engine.Empty(), err
		}
		doc = gjson.Get(doc, path).Raw
	}

	rendered := string(pretty.Pretty([]byte(doc)))
	if st.Terminal != nil {
		if err := st.Terminal.WriteAllAndFlush(rendered); err != nil {
			return engine.Empty(), err
		}
	}
	return engine.FromValue(value.NewString(rendered, call.Head)), nil
}
