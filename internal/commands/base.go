// Package commands is a small, real declaration registry exercising
// internal/eval's call dispatcher: table/save/run-external/each/length/str
// plus a test-only ctrlc-probe. It is deliberately minimal — the surface
// needed to drive spec.md's end-to-end scenarios, not a command library.
package commands

import (
	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/value"
)

// runFunc is a host command's implementation, matching engine.Declaration's
// Run method signature exactly.
type runFunc func(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error)

// decl is the shared engine.Declaration implementation every command in
// this package wraps itself in; only Signature/Usage/Run differ per
// command.
type decl struct {
	signature     engine.Signature
	examples      []engine.Example
	usage         string
	extraUsage    string
	knownExternal bool
	run           runFunc
}

func (d decl) Signature() engine.Signature { return d.signature }
func (d decl) Examples() []engine.Example  { return d.examples }
func (d decl) Usage() string               { return d.usage }
func (d decl) ExtraUsage() string          { return d.extraUsage }
func (d decl) IsKnownExternal() bool       { return d.knownExternal }
func (d decl) IsParserKeyword() bool       { return false }
func (d decl) GetBlockID() (value.BlockID, bool) {
	return 0, false
}
func (d decl) Run(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	return d.run(st, stk, call, input)
}

// Register wires every command this package implements into decls, the
// minimum surface spec.md §8's end-to-end scenarios exercise.
func Register(decls *engine.DeclRegistry) {
	decls.Register("table", newTableCommand())
	decls.Register("save", newSaveCommand())
	decls.Register("run-external", newRunExternalCommand())
	decls.Register("each", newEachCommand())
	decls.Register("length", newLengthCommand())
	decls.Register("str", newStrCommand())
	decls.Register("ctrlc-probe", newCtrlcProbeCommand())
}

func namedArg(call ast.Call, long string) (ast.NamedArg, bool) {
	for _, n := range call.Named {
		if n.LongFlag == long {
			return n, true
		}
	}
	return ast.NamedArg{}, false
}
