package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"wheelhouse/pkg/buildsys"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the sdist and wheel artifacts",
	Long: `Runs setup.py sdist and setup.py bdist_wheel. Both steps are skipped when
the artifacts in the dist directory are newer than the project sources.`,
	RunE: taskRunner("build"),
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Builds the wheel and installs it with pip install --user",
	RunE:  taskRunner("install"),
}

var systeminstallCmd = &cobra.Command{
	Use:   "systeminstall",
	Short: "Builds the wheel and installs it into the system environment",
	RunE:  taskRunner("systeminstall"),
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstalls the package with pip uninstall -y",
	RunE:  taskRunner("uninstall"),
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Builds both artifacts and uploads them with twine",
	RunE:  taskRunner("upload"),
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Removes the dist directory and other build leftovers",
	RunE:  taskRunner("clean"),
}

var taskCmd = &cobra.Command{
	Use:     "task [name...]",
	Aliases: []string{"tasks"},
	Short:   "Runs the named tasks, including those declared in tasks.star",
	Long: `Without arguments, lists the available tasks. Arguments of the form
KEY=VALUE override configure options for this invocation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, force, err := runFlags(cmd)
		if err != nil {
			return err
		}

		taskArgs := make([]string, 0, len(args))
		overrides := make(map[string]string)
		for _, part := range args {
			pos := strings.Index(part, "=")
			if pos > -1 {
				overrides[part[:pos]] = part[pos+1:]
			} else {
				taskArgs = append(taskArgs, part)
			}
		}

		ctx := newContext()
		proj, err := openProject(ctx, overrides)
		if err != nil {
			return err
		}

		if len(taskArgs) == 0 {
			printTaskList(proj)
			return nil
		}

		for _, name := range taskArgs {
			err = buildsys.RunTask(ctx, proj.root, name, proj.tasks, dryRun, force)
			if err != nil {
				return err
			}
		}

		return nil
	},
}

func printTaskList(proj *project) {
	fmt.Println("Available tasks:")

	maxNameLen := 0
	sortedNames := make([]string, 0, len(proj.tasks))
	for _, task := range proj.tasks {
		if task.Hidden {
			continue
		}

		if len(task.Short) > maxNameLen {
			maxNameLen = len(task.Short)
		}
		sortedNames = append(sortedNames, task.Short)
	}

	sort.Strings(sortedNames)

	lineFmt := fmt.Sprintf(" * %%-%ds %%s\n", maxNameLen+3)
	for _, name := range sortedNames {
		fmt.Printf(lineFmt, name+":", proj.tasks[name].Desc)
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(systeminstallCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(taskCmd)
}
