package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.starlark.net/starlark"

	"wheelhouse/pkg/buildsys"
	"wheelhouse/pkg/console"
	"wheelhouse/pkg/pydist"
)

// cacheName is the option cache written by the configure command.
const cacheName = ".wheelhouse.cache"

type project struct {
	root    string
	cfg     *pydist.Config
	id      pydist.Identity
	tasks   buildsys.TaskList
	options map[string]string
}

func newContext() context.Context {
	logger := zerolog.New(NewConsoleWriter())
	return buildsys.WithLogger(context.Background(), &logger)
}

// findRoot locates the project root relative to the working directory.
func findRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", eris.Wrap(err, "Failed to retrieve the current working directory")
	}

	return console.FindProjectRoot(wd)
}

// openProject resolves everything the task commands need: the project root,
// the effective config, the package identity and the merged task list. The
// overrides take precedence over the cached configure options for this
// invocation only.
func openProject(ctx context.Context, overrides map[string]string) (*project, error) {
	root, err := findRoot()
	if err != nil {
		return nil, err
	}

	options, err := buildsys.ReadOptionCache(filepath.Join(root, cacheName))
	if err != nil {
		return nil, err
	}

	for key, value := range overrides {
		options[key] = value
	}

	cfg, err := pydist.LoadConfig(root)
	if err != nil {
		return nil, err
	}
	cfg.ApplyOptions(options)

	id, err := pydist.NewResolver(cfg.Python, root).Resolve(ctx)
	if err != nil {
		return nil, err
	}

	tasks := pydist.Tasks(root, id, cfg)

	scriptPath := filepath.Join(root, buildsys.ScriptName)
	_, err = os.Stat(scriptPath)
	if err == nil {
		scriptTasks, _, err := buildsys.RunScript(ctx, scriptPath, root, options, scriptGlobals(root, id, cfg), true)
		if err != nil {
			return nil, err
		}

		for name, task := range scriptTasks {
			if _, taken := tasks[name]; taken {
				return nil, eris.Errorf("%s declares the task %s which is already a built-in task", buildsys.ScriptName, name)
			}
			tasks[name] = task
		}
	} else if !eris.Is(err, os.ErrNotExist) {
		return nil, eris.Wrapf(err, "Failed to check %s", scriptPath)
	}

	return &project{
		root:    root,
		cfg:     cfg,
		id:      id,
		tasks:   tasks,
		options: options,
	}, nil
}

// scriptGlobals exposes the resolved package identity and artifact paths to
// tasks.star scripts.
func scriptGlobals(root string, id pydist.Identity, cfg *pydist.Config) starlark.StringDict {
	return starlark.StringDict{
		"PKG_NAME":    starlark.String(id.Name),
		"PKG_VERSION": starlark.String(id.Version),
		"SDIST":       buildsys.StarlarkPath(filepath.Join(root, id.SdistPath(cfg.DistDir))),
		"WHEEL":       buildsys.StarlarkPath(filepath.Join(root, id.WheelPath(cfg.DistDir, cfg.WheelTag))),
	}
}

func runFlags(cmd *cobra.Command) (dryRun, force bool, err error) {
	dryRun, err = cmd.Flags().GetBool("dry")
	if err != nil {
		return false, false, err
	}

	force, err = cmd.Flags().GetBool("force")
	return dryRun, force, err
}

// taskRunner builds the RunE function shared by all task commands.
func taskRunner(name string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		dryRun, force, err := runFlags(cmd)
		if err != nil {
			return err
		}

		ctx := newContext()
		proj, err := openProject(ctx, nil)
		if err != nil {
			return err
		}

		return buildsys.RunTask(ctx, proj.root, name, proj.tasks, dryRun, force)
	}
}
