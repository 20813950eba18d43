package commands

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/value"
)

// newCtrlcProbeCommand implements `ctrlc-probe`: a test-only command that
// flips the engine's cancellation flag, used to exercise cooperative
// cancellation (§8 property 8) without a real signal handler.
func newCtrlcProbeCommand() engine.Declaration {
	return decl{
		usage:      "Trip the cancellation flag (test-only).",
		extraUsage: "Exists only to drive cooperative-cancellation tests.",
		run:        runCtrlcProbe,
	}
}

func runCtrlcProbe(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	st.Cancel()
	return engine.FromValue(value.NewNothing(call.Head)), nil
}
