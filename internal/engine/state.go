// Package engine holds the two structures the evaluator runs against: the
// read-mostly EngineState snapshot and the per-turn mutable Stack, plus the
// narrow collaborator interfaces (declarations, blocks, variables, config)
// the evaluator reaches through rather than owning.
package engine

import (
	"sync/atomic"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/hostenv"
	"github.com/cwbudde/quill/internal/value"
)

// Reserved variable ids, mirroring nu-protocol's well-known ids for `$nu`
// and `$env`. Neither is ever stored in Stack.vars.
const (
	NuVariableID  value.VarID = -1
	EnvVariableID value.VarID = -2
)

// VarInfo is what the variable registry knows about a VarID.
type VarInfo struct {
	Mutable bool
	Name    string
}

// VarRegistry answers get_var(VarId) lookups.
type VarRegistry struct {
	infos map[value.VarID]VarInfo
}

func NewVarRegistry() *VarRegistry {
	return &VarRegistry{infos: make(map[value.VarID]VarInfo)}
}

func (r *VarRegistry) Declare(id value.VarID, name string, mutable bool) {
	r.infos[id] = VarInfo{Mutable: mutable, Name: name}
}

func (r *VarRegistry) Get(id value.VarID) (VarInfo, bool) {
	info, ok := r.infos[id]
	return info, ok
}

// BlockRegistry answers get_block(BlockId) lookups.
type BlockRegistry struct {
	blocks map[value.BlockID]*ast.Block
	nextID value.BlockID
}

func NewBlockRegistry() *BlockRegistry {
	return &BlockRegistry{blocks: make(map[value.BlockID]*ast.Block)}
}

// Register assigns the next free BlockID to b (if it doesn't already carry
// one) and stores it, returning the id to embed in Closure/Block/Subexpression
// expressions.
func (r *BlockRegistry) Register(b *ast.Block) value.BlockID {
	if b.ID == 0 && r.nextID == 0 {
		r.nextID = 1
	}
	if b.ID == 0 {
		b.ID = r.nextID
		r.nextID++
	} else if b.ID >= r.nextID {
		r.nextID = b.ID + 1
	}
	r.blocks[b.ID] = b
	return b.ID
}

func (r *BlockRegistry) Get(id value.BlockID) (*ast.Block, bool) {
	b, ok := r.blocks[id]
	return b, ok
}

// SpanSource answers get_span_contents(Span) -> bytes, backed by the
// original source text. It is optional: a nil source means diagnostics
// cannot recover literal text but evaluation proceeds normally.
type SpanSource interface {
	Contents(sp value.Span) []byte
}

// StringSpanSource is the simplest SpanSource: the whole program text.
type StringSpanSource string

func (s StringSpanSource) Contents(sp value.Span) []byte {
	if sp.Start < 0 || sp.End > len(s) || sp.Start > sp.End {
		return nil
	}
	return []byte(s[sp.Start:sp.End])
}

// State is the immutable-during-a-turn snapshot the evaluator reads from.
type State struct {
	Decls   *DeclRegistry
	Blocks  *BlockRegistry
	Vars    *VarRegistry
	Config  Config
	Spans   SpanSource
	Regexes *value.RegexCache

	// Terminal is the sink intermediate pipeline results drain into when no
	// `table` command is registered to render them (§4.5 step 3). Nil is
	// valid: draining then just discards the stringified output.
	Terminal *hostenv.TerminalWriter

	// ctrlc is the shared cancellation flag polled at the top of every call
	// dispatch and AST node evaluation.
	ctrlc atomic.Bool
}

func NewState(cfg Config) *State {
	return &State{
		Decls:   NewDeclRegistry(),
		Blocks:  NewBlockRegistry(),
		Vars:    NewVarRegistry(),
		Config:  cfg,
		Regexes: value.NewRegexCache(),
	}
}

// Cancelled reports whether ctrlc has been set.
func (s *State) Cancelled() bool { return s.ctrlc.Load() }

// Cancel sets ctrlc; used by host commands (e.g. SIGINT handling) and by
// tests exercising cooperative cancellation.
func (s *State) Cancel() { s.ctrlc.Store(true) }

// ResetCancel clears ctrlc, used between independent evaluation turns.
func (s *State) ResetCancel() { s.ctrlc.Store(false) }
