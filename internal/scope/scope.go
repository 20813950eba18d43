// Package scope builds the Record returned by $nu.scope: declaration and
// variable names visible in the current engine state, sorted for stable
// display.
package scope

import (
	"github.com/maruel/natural"

	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/value"
)

// Build constructs the scope record: every registered declaration name and
// every variable name currently bound on stk, both sorted for stable
// display.
func Build(st *engine.State, stk *engine.Stack, sp value.Span) value.Value {
	sortedDecls := st.Decls.Names()
	natural.Sort(sortedDecls)

	boundVars := stk.AllVars()
	varNames := make([]string, 0, len(boundVars))
	for id := range boundVars {
		if info, ok := st.Vars.Get(id); ok {
			varNames = append(varNames, info.Name)
		}
	}
	natural.Sort(varNames)

	declItems := make([]value.Value, len(sortedDecls))
	for i, n := range sortedDecls {
		declItems[i] = value.NewString(n, sp)
	}
	varItems := make([]value.Value, len(varNames))
	for i, n := range varNames {
		varItems[i] = value.NewString(n, sp)
	}

	return value.NewRecord(
		[]string{"commands", "vars"},
		[]value.Value{value.NewList(declItems, sp), value.NewList(varItems, sp)},
		sp,
	)
}
