package eval_test

import (
	"testing"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/astbuild"
	"github.com/cwbudde/quill/internal/commands"
	"github.com/cwbudde/quill/internal/config"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/eval"
	"github.com/cwbudde/quill/internal/scope"
	"github.com/cwbudde/quill/internal/value"
)

// newTestEngine builds a State with the demo command registry wired in and a
// fresh root Stack, the same setup cmd/quillrun's run command performs.
func newTestEngine(t *testing.T) (*engine.State, *engine.Stack) {
	t.Helper()
	st := engine.NewState(config.Default())
	commands.Register(st.Decls)
	eval.SetScopeBuilder(scope.Build)
	stk := engine.NewRootStack("/tmp")
	return st, stk
}

// testVarCounter hands out fresh VarIDs across the whole package's tests;
// each test builds its own State, so collisions across tests don't matter,
// only collisions within one test's fixture.
var testVarCounter value.VarID = 1

// declareVar registers a fresh VarID under name on st, returning the id so
// tests can build Var/VarDecl expressions that resolve through EvalVariable.
func declareVar(st *engine.State, name string, mutable bool) value.VarID {
	testVarCounter++
	id := testVarCounter
	st.Vars.Declare(id, name, mutable)
	return id
}

// countingDecl is a test-only engine.Declaration that records how many times
// Run was invoked, used to verify short-circuit and external-abort behavior
// without depending on a real external process.
type countingDecl struct {
	calls *int
}

func (countingDecl) Signature() engine.Signature       { return engine.Signature{} }
func (countingDecl) Examples() []engine.Example        { return nil }
func (countingDecl) Usage() string                     { return "test-only counting probe" }
func (countingDecl) ExtraUsage() string                { return "" }
func (countingDecl) IsKnownExternal() bool             { return false }
func (countingDecl) IsParserKeyword() bool             { return false }
func (countingDecl) GetBlockID() (value.BlockID, bool) { return 0, false }
func (d countingDecl) Run(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	*d.calls++
	return engine.FromValue(value.NewBool(true, call.Head)), nil
}

// fakeExternalDecl returns a synthetic ExternalStream carrying the
// configured exit code without spawning a real process, so the
// external-abort property (§8 property 9) is deterministic and hermetic.
type fakeExternalDecl struct {
	exitCode int
}

func (fakeExternalDecl) Signature() engine.Signature       { return engine.Signature{} }
func (fakeExternalDecl) Examples() []engine.Example        { return nil }
func (fakeExternalDecl) Usage() string                     { return "test-only fake external command" }
func (fakeExternalDecl) ExtraUsage() string                { return "" }
func (fakeExternalDecl) IsKnownExternal() bool             { return true }
func (fakeExternalDecl) IsParserKeyword() bool             { return false }
func (fakeExternalDecl) GetBlockID() (value.BlockID, bool) { return 0, false }
func (d fakeExternalDecl) Run(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	exitCh := make(chan int, 1)
	exitCh <- d.exitCode
	close(exitCh)
	stdoutCh := make(chan engine.ByteChunk)
	close(stdoutCh)
	return engine.FromExternalStream(&engine.ExternalStream{
		Stdout:   stdoutCh,
		ExitCode: exitCh,
		Span:     call.Head,
	}), nil
}

func sp() value.Span { return astbuild.Sp(0, 0) }

// userBlockDecl wraps a block id as an engine.Declaration, the shape a
// `def` statement would produce if a parser built one; tests construct it
// directly since building declarations is otherwise a parser concern.
type userBlockDecl struct {
	sig   engine.Signature
	block value.BlockID
}

func (d userBlockDecl) Signature() engine.Signature       { return d.sig }
func (userBlockDecl) Examples() []engine.Example          { return nil }
func (userBlockDecl) Usage() string                       { return "test-only user-defined command" }
func (userBlockDecl) ExtraUsage() string                  { return "" }
func (userBlockDecl) IsKnownExternal() bool               { return false }
func (userBlockDecl) IsParserKeyword() bool               { return false }
func (d userBlockDecl) GetBlockID() (value.BlockID, bool) { return d.block, true }
func (userBlockDecl) Run(st *engine.State, stk *engine.Stack, call ast.Call, input engine.PipelineData) (engine.PipelineData, error) {
	panic("userBlockDecl.Run should never be invoked: GetBlockID routes dispatch through evalUserCall")
}
