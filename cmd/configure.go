package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"wheelhouse/pkg/buildsys"
	"wheelhouse/pkg/console"
)

var configureCmd = &cobra.Command{
	Use:   "configure [KEY=VALUE...]",
	Short: "Stores build options for later invocations",
	Long: `Options are persisted in .wheelhouse.cache at the project root and applied
to every following command. An empty value (KEY=) removes the stored option.
Without arguments, the stored options and the options declared by tasks.star
are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newContext()
		root, err := findRoot()
		if err != nil {
			return err
		}

		cachePath := filepath.Join(root, cacheName)
		options, err := buildsys.ReadOptionCache(cachePath)
		if err != nil {
			return err
		}

		for _, arg := range args {
			pos := strings.Index(arg, "=")
			if pos < 1 {
				return eris.Errorf("%s is not a KEY=VALUE pair", arg)
			}

			key := arg[:pos]
			value := arg[pos+1:]
			if value == "" {
				delete(options, key)
			} else {
				options[key] = value
			}
		}

		if len(args) > 0 {
			err = buildsys.WriteOptionCache(cachePath, options)
			if err != nil {
				return err
			}
		}

		return printOptions(ctx, root, options)
	},
}

// printOptions lists the stored options followed by the options a tasks.star
// script declares, including their defaults.
func printOptions(ctx context.Context, root string, options map[string]string) error {
	if len(options) > 0 {
		console.PrintTask("Stored options")
		names := make([]string, 0, len(options))
		for name := range options {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			console.PrintSubtask(fmt.Sprintf("%s=%s", name, options[name]))
		}
	} else {
		console.PrintTask("No stored options")
	}

	scriptPath := filepath.Join(root, buildsys.ScriptName)
	_, err := os.Stat(scriptPath)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return nil
		}
		return eris.Wrapf(err, "Failed to check %s", scriptPath)
	}

	_, declared, err := buildsys.RunScript(ctx, scriptPath, root, options, nil, false)
	if err != nil {
		return err
	}

	if len(declared) > 0 {
		console.PrintTask("Options declared by " + buildsys.ScriptName)
		names := make([]string, 0, len(declared))
		for name := range declared {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			option := declared[name]
			msg := fmt.Sprintf("%s (default %q)", name, option.Default())
			if option.Help != "" {
				msg += "  " + option.Help
			}
			console.PrintSubtask(msg)
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
