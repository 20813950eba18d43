// Package hostenv supplies the small set of OS-facing collaborators the
// evaluator reaches through but never owns: current directory, home/config
// directories, path expansion, and a flush-on-write terminal sink. None of
// the retrieved pack carries a dedicated path-expansion library, so this
// package stays on the standard library — see DESIGN.md.
package hostenv

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CurrentDirStr returns the process's current working directory, falling
// back to "." if it cannot be determined.
func CurrentDirStr() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// HomeDir returns the user's home directory, or "" if unknown.
func HomeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return dir
}

// ConfigDir returns the user's configuration directory, or "" if unknown.
func ConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir
}

// ExpandPathWith resolves path relative to cwd, expanding a leading `~`
// to the home directory first. A Directory literal equal to "-" is
// preserved verbatim, per spec: its meaning (previous working directory)
// belongs to the `cd`-like consumer, not to path expansion.
func ExpandPathWith(path, cwd string) string {
	if path == "-" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home := HomeDir()
		if home != "" {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(cwd, path))
}

// TerminalWriter is the write_all_and_flush sink the block executor drains
// intermediate pipeline results into.
type TerminalWriter struct {
	w *bufio.Writer
}

func NewTerminalWriter(w io.Writer) *TerminalWriter {
	return &TerminalWriter{w: bufio.NewWriter(w)}
}

func (t *TerminalWriter) WriteAllAndFlush(s string) error {
	if _, err := t.w.WriteString(s); err != nil {
		return err
	}
	return t.w.Flush()
}
