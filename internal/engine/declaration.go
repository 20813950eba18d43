package engine

import (
	"strings"

	"github.com/cwbudde/quill/internal/ast"
	"github.com/cwbudde/quill/internal/value"
)

// PositionalParam is one required, optional, or rest positional parameter.
type PositionalParam struct {
	Name    string
	VarID   value.VarID
	Default ast.Expr // nil for required / rest params
	Rest    bool
}

// NamedParam is one declared flag. Switch flags (no value) bind true/false;
// value flags bind their default (or Nothing) when absent.
type NamedParam struct {
	Long     string
	Short    rune
	TakesArg bool
	Default  ast.Expr
	VarID    value.VarID
}

// Signature describes a declaration's call shape, per §6.
type Signature struct {
	Required []PositionalParam
	Optional []PositionalParam
	Rest     *PositionalParam
	Named    []NamedParam
}

// Example documents one usage sample; rendered by implicit help.
type Example struct {
	Description string
	Code        string
}

// Declaration is the narrow interface the call dispatcher invokes through,
// matching §6's collaborator list exactly. A Declaration is either a host
// command (GetBlockID returns false) or a user-defined block (true).
type Declaration interface {
	Signature() Signature
	Examples() []Example
	Usage() string
	ExtraUsage() string
	IsKnownExternal() bool
	IsParserKeyword() bool
	GetBlockID() (value.BlockID, bool)
	Run(st *State, stack *Stack, call ast.Call, input PipelineData) (PipelineData, error)
}

// DeclRegistry answers find_decl/get_decl.
type DeclRegistry struct {
	byName map[string]value.DeclID
	byID   map[value.DeclID]Declaration
	nextID value.DeclID
}

func NewDeclRegistry() *DeclRegistry {
	return &DeclRegistry{
		byName: make(map[string]value.DeclID),
		byID:   make(map[value.DeclID]Declaration),
		nextID: 1,
	}
}

// Register assigns a DeclID to decl under name and returns it. The registry
// keeps a single flat namespace: FindDecl accepts overlays for interface
// parity with §6 but ignores them (overlay resolution is an out-of-scope
// parser/runtime concern).
func (r *DeclRegistry) Register(name string, decl Declaration) value.DeclID {
	id := r.nextID
	r.nextID++
	r.byName[strings.ToLower(name)] = id
	r.byID[id] = decl
	return id
}

func (r *DeclRegistry) FindDecl(name string, _ []string) (value.DeclID, bool) {
	id, ok := r.byName[strings.ToLower(name)]
	return id, ok
}

func (r *DeclRegistry) GetDecl(id value.DeclID) (Declaration, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Names lists every registered declaration name, used by $nu.scope.
func (r *DeclRegistry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	return out
}
