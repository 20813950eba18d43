package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/quill/internal/astbuild"
	"github.com/cwbudde/quill/internal/commands"
	"github.com/cwbudde/quill/internal/config"
	"github.com/cwbudde/quill/internal/engine"
	"github.com/cwbudde/quill/internal/eval"
	"github.com/cwbudde/quill/internal/hostenv"
	"github.com/cwbudde/quill/internal/scope"
	"github.com/cwbudde/quill/internal/value"
)

var (
	configPath string
	dumpResult bool
)

var runCmd = &cobra.Command{
	Use:   "run <fixture.yaml>",
	Short: "Evaluate a YAML fixture block end to end",
	Long: `Loads a fixture built with internal/astbuild's YAML format, runs it
through the quill evaluator with the internal/commands registry wired in,
and prints the final pipeline result.

Example:
  quillrun run testdata/hello.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runFixture,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults to built-in defaults)")
	runCmd.Flags().BoolVar(&dumpResult, "dump-result", false, "print the Go representation of the final value as well")
}

func runFixture(_ *cobra.Command, args []string) error {
	fixturePath := args[0]

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
		cfg = loaded
	}

	st := engine.NewState(cfg)
	st.Terminal = hostenv.NewTerminalWriter(os.Stdout)
	commands.Register(st.Decls)
	eval.SetScopeBuilder(scope.Build)

	block, err := astbuild.LoadFixtureFile(st, fixturePath)
	if err != nil {
		return fmt.Errorf("failed to load fixture %s: %w", fixturePath, err)
	}

	stk := engine.NewRootStack(hostenv.CurrentDirStr())

	if verbose {
		fmt.Fprintf(os.Stderr, "[evaluating block %d from %s]\n", block.ID, fixturePath)
	}

	out, err := eval.EvalBlockWithEarlyReturn(st, stk, block, engine.Empty(), false, false)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	result := out.IntoValue(value.Unknown)
	if errVal, ok := result.(value.Error); ok {
		return fmt.Errorf("runtime error: %w", errVal.Err)
	}

	fmt.Println(result.Display())
	if dumpResult {
		fmt.Printf("%#v\n", result)
	}
	return nil
}
