package pydist

import (
	"fmt"
	"strings"

	"wheelhouse/pkg/buildsys"
)

// Tasks assembles the built-in packaging tasks for the given project. The
// returned list is merged with the tasks a project declares in tasks.star.
func Tasks(projectRoot string, id Identity, cfg *Config) buildsys.TaskList {
	sdistPath := id.SdistPath(cfg.DistDir)
	wheelPath := id.WheelPath(cfg.DistDir, cfg.WheelTag)

	inputs := append([]string{"setup.py"}, cfg.Sources...)

	sdist := &buildsys.Task{
		Short:   "sdist",
		Desc:    "Builds the source distribution",
		Base:    projectRoot,
		Inputs:  inputs,
		Outputs: []string{sdistPath},
		Env:     map[string]string{},
		Cmds: []buildsys.TaskCmd{
			script("sdist", 0, "%s setup.py sdist", cfg.Python),
		},
	}

	wheel := &buildsys.Task{
		Short:   "wheel",
		Desc:    "Builds the wheel distribution",
		Base:    projectRoot,
		Inputs:  inputs,
		Outputs: []string{wheelPath},
		Env:     map[string]string{},
		Cmds: []buildsys.TaskCmd{
			script("wheel", 0, "%s setup.py bdist_wheel", cfg.Python),
		},
	}

	build := &buildsys.Task{
		Short: "build",
		Desc:  "Builds the sdist and wheel artifacts",
		Base:  projectRoot,
		Deps:  []string{"sdist", "wheel"},
		Env:   map[string]string{},
	}

	install := &buildsys.Task{
		Short: "install",
		Desc:  "Installs the wheel into the user environment",
		Base:  projectRoot,
		Deps:  []string{"build"},
		Env:   map[string]string{},
		Cmds: []buildsys.TaskCmd{
			script("install", 0, "%s -m pip install --user %s", cfg.Python, wheelPath),
		},
	}

	systeminstall := &buildsys.Task{
		Short: "systeminstall",
		Desc:  "Installs the wheel into the system environment",
		Base:  projectRoot,
		Deps:  []string{"build"},
		Env:   map[string]string{},
		Cmds: []buildsys.TaskCmd{
			script("systeminstall", 0, "%s -m pip install %s", cfg.Python, wheelPath),
		},
	}

	uninstall := &buildsys.Task{
		Short: "uninstall",
		Desc:  "Uninstalls the package by name",
		Base:  projectRoot,
		Env:   map[string]string{},
		Cmds: []buildsys.TaskCmd{
			script("uninstall", 0, "%s -m pip uninstall -y %s", cfg.Python, id.Name),
		},
	}

	uploadCmd := fmt.Sprintf("%s -m twine upload", cfg.Python)
	if cfg.Repository != "" {
		uploadCmd += " --repository " + cfg.Repository
	}
	uploadCmd += fmt.Sprintf(" %s %s", sdistPath, wheelPath)

	upload := &buildsys.Task{
		Short: "upload",
		Desc:  "Uploads both artifacts to the package index",
		Base:  projectRoot,
		Deps:  []string{"build"},
		Env:   map[string]string{},
		Cmds: []buildsys.TaskCmd{
			buildsys.TaskCmdScript{TaskName: "upload", Content: uploadCmd},
		},
	}

	clean := &buildsys.Task{
		Short: "clean",
		Desc:  "Removes the build output and metadata scratch directories",
		Base:  projectRoot,
		Env:   map[string]string{},
		Cmds: []buildsys.TaskCmd{
			script("clean", 0, "rm -rf %s", strings.Join(scratchDirs(id, cfg), " ")),
		},
	}

	tasks := buildsys.TaskList{}
	for _, task := range []*buildsys.Task{sdist, wheel, build, install, systeminstall, uninstall, upload, clean} {
		tasks[task.Short] = task
	}
	return tasks
}

// scratchDirs lists everything clean removes: the dist output, the build
// scratch directory and the egg-info metadata (setuptools has used both the
// raw and the normalized name for it over the years).
func scratchDirs(id Identity, cfg *Config) []string {
	dirs := []string{cfg.DistDir, "build", id.Normalized() + ".egg-info"}
	if id.Name != id.Normalized() {
		dirs = append(dirs, id.Name+".egg-info")
	}
	return dirs
}

func script(task string, idx int, format string, args ...interface{}) buildsys.TaskCmd {
	return buildsys.TaskCmdScript{
		TaskName: task,
		Index:    idx,
		Content:  fmt.Sprintf(format, args...),
	}
}
