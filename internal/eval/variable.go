package eval

import (
	"fmt"
	"os"
	"runtime"

	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/evalerr"
	"github.com/cwbudde/quill/internal/hostenv"
	"github.com/cwbudde/quill/internal/value"
)

// ScopeBuilder is the external collaborator referenced by §4.8/§6:
// create_scope(engine, stack, span) -> Value. The concrete implementation
// lives in internal/scope; it is injected here through SetScopeBuilder
// rather than imported, so this package does not depend on internal/scope.
type ScopeBuilder func(st *engine.State, stk *engine.Stack, sp value.Span) value.Value

// scopeBuilder is package-level so EvalVariable's signature stays the one
// named in §6; callers wire a builder once at engine construction via
// SetScopeBuilder.
var scopeBuilder ScopeBuilder

func SetScopeBuilder(b ScopeBuilder) { scopeBuilder = b }

// EvalVariable implements §4.8: reserved-id synthesis for $nu and $env,
// otherwise a plain stack lookup.
func EvalVariable(st *engine.State, stk *engine.Stack, id value.VarID, sp value.Span) (value.Value, error) {
	switch id {
	case engine.NuVariableID:
		return buildNuRecord(st, stk, sp), nil
	case engine.EnvVariableID:
		return stk.MergedEnvRecord(sp), nil
	default:
		v, ok := stk.GetVar(id)
		if !ok {
			info, known := st.Vars.Get(id)
			name := fmt.Sprintf("$%d", id)
			if known {
				name = info.Name
			}
			return nil, evalerr.VarNotFound(sp, name)
		}
		return v, nil
	}
}

// buildNuRecord assembles $nu's metadata record. Entries whose sources
// cannot resolve are silently omitted, per §4.8.
func buildNuRecord(st *engine.State, stk *engine.Stack, sp value.Span) value.Value {
	cols := []string{}
	vals := []value.Value{}

	add := func(name, v string, ok bool) {
		if !ok || v == "" {
			return
		}
		cols = append(cols, name)
		vals = append(vals, value.NewString(v, sp))
	}

	configDir := hostenv.ConfigDir()
	add("config-path", configDir, configDir != "")

	if p, ok := st.Config.ConfigPath("env-path"); ok {
		add("env-path", p, true)
	}

	historyName := "history.txt"
	if st.Config.HistoryFileFormat() == engine.HistorySQLite {
		historyName = "history.sqlite3"
	}
	if configDir != "" {
		add("history-path", configDir+string(os.PathSeparator)+historyName, true)
	}

	if p, ok := st.Config.ConfigPath("loginshell-path"); ok {
		add("loginshell-path", p, true)
	}
	if p, ok := st.Config.ConfigPath("plugin-path"); ok {
		add("plugin-path", p, true)
	}

	if scopeBuilder != nil {
		cols = append(cols, "scope")
		vals = append(vals, scopeBuilder(st, stk, sp))
	}

	home := hostenv.HomeDir()
	add("home-path", home, home != "")
	add("temp-path", os.TempDir(), true)
	add("pid", fmt.Sprintf("%d", os.Getpid()), true)
	add("os-info", runtime.GOOS+"/"+runtime.GOARCH, true)

	return value.NewRecord(cols, vals, sp)
}
