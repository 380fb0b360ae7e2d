package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"wheelhouse/pkg/console"
	"wheelhouse/pkg/pydist"
)

var rootCmd = &cobra.Command{
	Use:   "wheelhouse",
	Short: "Build and publish helper for Python packages",
	Long: `wheelhouse wraps the usual setup.py / pip / twine dance behind a handful of
commands. It resolves the package name and version from setup.py, knows which
artifacts a build produces and skips work that is already done.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "always execute the passed steps even if they don't have to run")
}

// Execute runs the CLI and exits with the code of the first failed command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		console.PrintError(err.Error())
	}

	os.Exit(pydist.ExitCode(err))
}
