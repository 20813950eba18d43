package engine

import (
	"sort"

	"github.com/cwbudde/quill/internal/value"
)

// RecursionLimit is the per-stack cap on self-calls into blocks flagged
// `recursive` (§4.5 property 7).
const RecursionLimit = 50

// Stack is the mutable execution frame exclusively owned by the active
// evaluator. A fresh Stack is spawned per user-defined call by copying the
// caller's captured bindings; it is discarded when the call returns except
// that env deltas propagate back when the callee block has redirect_env
// set (§4.7).
type Stack struct {
	vars map[value.VarID]value.Value

	// envLayers is a newest-wins layered stack of environment-variable
	// deltas; index 0 is the oldest (base) layer.
	envLayers []map[string]value.Value

	recursionCount int

	// Cwd is the current working directory used to expand Filepath /
	// Directory / GlobPattern literals; a per-frame override so that a
	// callee's `cd` inside a closure does not leak unless the caller
	// chooses to read it back explicitly.
	Cwd string

	configOverrides map[string]string
}

// NewRootStack creates the outermost stack with a single base env layer.
func NewRootStack(cwd string) *Stack {
	return &Stack{
		vars:            make(map[value.VarID]value.Value),
		envLayers:       []map[string]value.Value{make(map[string]value.Value)},
		Cwd:             cwd,
		configOverrides: make(map[string]string),
	}
}

// NewCalleeStack builds a fresh frame for a user-defined call, copying in
// exactly the captures named by the callee block from the caller's stack,
// per the call-dispatcher's positional/named binding step.
func (s *Stack) NewCalleeStack(captures []value.VarID) *Stack {
	callee := &Stack{
		vars:            make(map[value.VarID]value.Value, len(captures)),
		envLayers:       append(append([]map[string]value.Value{}, s.envLayers...), make(map[string]value.Value)),
		recursionCount:  s.recursionCount,
		Cwd:             s.Cwd,
		configOverrides: s.configOverrides,
	}
	for _, id := range captures {
		if v, ok := s.vars[id]; ok {
			callee.vars[id] = v
		}
	}
	return callee
}

// NewStackFromCaptures builds a frame for invoking a Closure value: unlike
// NewCalleeStack, the source of truth is the snapshot the closure captured
// at creation time, not the stack invoking it now.
func NewStackFromCaptures(captures map[value.VarID]value.Value, cwd string, configOverrides map[string]string) *Stack {
	vars := make(map[value.VarID]value.Value, len(captures))
	for id, v := range captures {
		vars[id] = v
	}
	return &Stack{
		vars:            vars,
		envLayers:       []map[string]value.Value{make(map[string]value.Value)},
		Cwd:             cwd,
		configOverrides: configOverrides,
	}
}

// CaptureSnapshot copies exactly the requested variable ids out of the
// stack, used when a Closure value is created so it owns its own snapshot
// independent of later mutation.
func (s *Stack) CaptureSnapshot(ids []value.VarID) map[value.VarID]value.Value {
	out := make(map[value.VarID]value.Value, len(ids))
	for _, id := range ids {
		if v, ok := s.vars[id]; ok {
			out[id] = v
		}
	}
	return out
}

func (s *Stack) GetVar(id value.VarID) (value.Value, bool) {
	v, ok := s.vars[id]
	return v, ok
}

// AllVars copies every variable currently bound on this stack, used by
// $nu.scope to list visible variable names.
func (s *Stack) AllVars() map[value.VarID]value.Value {
	out := make(map[value.VarID]value.Value, len(s.vars))
	for id, v := range s.vars {
		out[id] = v
	}
	return out
}

func (s *Stack) SetVar(id value.VarID, v value.Value) {
	s.vars[id] = v
}

// ---- Recursion guard (§4.5 step 1, §8 property 7) ----

// EnterRecursive increments the recursion counter and reports whether the
// limit has been reached; on reaching the limit the counter is reset to
// zero so a caught error does not leave it permanently pinned.
func (s *Stack) EnterRecursive() (exceeded bool) {
	s.recursionCount++
	if s.recursionCount > RecursionLimit {
		s.recursionCount = 0
		return true
	}
	return false
}

func (s *Stack) RecursionCount() int { return s.recursionCount }

// ---- Environment variable deltas ----

// topEnvLayer is the innermost (most recently pushed) layer, where writes
// and new-frame deltas land.
func (s *Stack) topEnvLayer() map[string]value.Value {
	return s.envLayers[len(s.envLayers)-1]
}

// GetEnv searches layers newest-to-oldest, returning the first match.
func (s *Stack) GetEnv(name string) (value.Value, bool) {
	for i := len(s.envLayers) - 1; i >= 0; i-- {
		if v, ok := s.envLayers[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetEnv writes into the top (innermost) layer, newest-wins.
func (s *Stack) SetEnv(name string, v value.Value) {
	s.topEnvLayer()[name] = v
}

// MergedEnvRecord synthesizes the `$env` record: every visible name across
// all layers, newest-wins, columns sorted lexicographically ascending.
func (s *Stack) MergedEnvRecord(sp value.Span) value.Record {
	merged := make(map[string]value.Value)
	for _, layer := range s.envLayers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	names := make([]string, 0, len(merged))
	for k := range merged {
		names = append(names, k)
	}
	sort.Strings(names)
	vals := make([]value.Value, len(names))
	for i, n := range names {
		vals[i] = merged[n]
	}
	return value.NewRecord(names, vals, sp)
}

// envNamesVisible lists every name visible from this stack (all layers),
// used by environment redirection to detect names the callee "hid".
func (s *Stack) envNamesVisible() map[string]bool {
	out := make(map[string]bool)
	for _, layer := range s.envLayers {
		for k := range layer {
			out[k] = true
		}
	}
	return out
}

// RedirectEnvInto folds callee's env deltas into caller (self), per §4.7:
// names visible in caller but absent from callee are removed; every name
// in callee's env is added to caller.
func RedirectEnvInto(caller, callee *Stack) {
	callerNames := caller.envNamesVisible()
	calleeNames := callee.envNamesVisible()
	top := caller.topEnvLayer()
	for name := range callerNames {
		if !calleeNames[name] {
			delete(top, name)
			for _, layer := range caller.envLayers {
				delete(layer, name)
			}
		}
	}
	for name := range calleeNames {
		if v, ok := callee.GetEnv(name); ok {
			caller.SetEnv(name, v)
		}
	}
}

func (s *Stack) ConfigOverride(key string) (string, bool) {
	v, ok := s.configOverrides[key]
	return v, ok
}

func (s *Stack) SetConfigOverride(key, v string) {
	s.configOverrides[key] = v
}
