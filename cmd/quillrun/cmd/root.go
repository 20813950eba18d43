package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "quillrun",
	Short: "Evaluator demo for the quill pipeline engine",
	Long: `quillrun drives the quill tree-walking evaluator against a fixture
program built with internal/astbuild, without implying a parser exists.

It registers the small real command set under internal/commands (table,
save, run-external, each, length, str, ctrlc-probe), loads a YAML fixture
describing a block, and evaluates it end to end.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
