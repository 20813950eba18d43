package engine

// HistoryFormat selects the file-name convention for $nu.history-path.
type HistoryFormat int

const (
	HistoryPlaintext HistoryFormat = iota
	HistorySQLite
)

// Config is the narrow read-only view over engine configuration the
// evaluator consults ($nu resolution, path utilities). Its concrete source
// (a YAML file, in this module — see internal/config) lives outside the
// evaluator.
type Config interface {
	HistoryFileFormat() HistoryFormat
	ConfigPath(key string) (string, bool)
}
