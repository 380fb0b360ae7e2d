package pydist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelhouse/pkg/buildsys"
)

func taskScript(t *testing.T, task *buildsys.Task, idx int) string {
	t.Helper()

	require.Greater(t, len(task.Cmds), idx)
	script, ok := task.Cmds[idx].(buildsys.TaskCmdScript)
	require.True(t, ok, "command %d of %s is not a script", idx, task.Short)
	return script.Content
}

func TestTaskWiring(t *testing.T) {
	id := Identity{Name: "my-tool", Version: "1.2.3"}
	cfg := &Config{Python: "python3", WheelTag: DefaultWheelTag, DistDir: "dist"}
	tasks := Tasks("/project", id, cfg)

	for _, name := range []string{"sdist", "wheel", "build", "install", "systeminstall", "uninstall", "upload", "clean"} {
		require.Contains(t, tasks, name)
		assert.Equal(t, "/project", tasks[name].Base)
	}

	assert.Equal(t, []string{"sdist", "wheel"}, tasks["build"].Deps)
	assert.Equal(t, []string{"build"}, tasks["install"].Deps)
	assert.Equal(t, []string{"build"}, tasks["systeminstall"].Deps)
	assert.Equal(t, []string{"build"}, tasks["upload"].Deps)
	assert.Empty(t, tasks["uninstall"].Deps)
}

func TestTaskCommands(t *testing.T) {
	id := Identity{Name: "my-tool", Version: "1.2.3"}
	cfg := &Config{Python: "python3", WheelTag: DefaultWheelTag, DistDir: "dist"}
	tasks := Tasks("/project", id, cfg)

	assert.Equal(t, "python3 setup.py sdist", taskScript(t, tasks["sdist"], 0))
	assert.Equal(t, "python3 setup.py bdist_wheel", taskScript(t, tasks["wheel"], 0))
	assert.Equal(t, "python3 -m pip install --user dist/my_tool-1.2.3-py2.py3-none-any.whl",
		taskScript(t, tasks["install"], 0))
	assert.Equal(t, "python3 -m pip install dist/my_tool-1.2.3-py2.py3-none-any.whl",
		taskScript(t, tasks["systeminstall"], 0))
	assert.Equal(t, "python3 -m pip uninstall -y my-tool", taskScript(t, tasks["uninstall"], 0))
	assert.Equal(t, "python3 -m twine upload dist/my-tool-1.2.3.tar.gz dist/my_tool-1.2.3-py2.py3-none-any.whl",
		taskScript(t, tasks["upload"], 0))
}

func TestTaskStalenessInputs(t *testing.T) {
	id := Identity{Name: "my-tool", Version: "1.2.3"}
	cfg := &Config{Python: "python3", WheelTag: DefaultWheelTag, DistDir: "dist", Sources: []string{"my_tool/*.py"}}
	tasks := Tasks("/project", id, cfg)

	assert.Equal(t, []string{"setup.py", "my_tool/*.py"}, tasks["sdist"].Inputs)
	assert.Equal(t, []string{"dist/my-tool-1.2.3.tar.gz"}, tasks["sdist"].Outputs)
	assert.Equal(t, []string{"dist/my_tool-1.2.3-py2.py3-none-any.whl"}, tasks["wheel"].Outputs)
}

func TestUploadRepository(t *testing.T) {
	id := Identity{Name: "my-tool", Version: "1.2.3"}
	cfg := &Config{Python: "python3", WheelTag: DefaultWheelTag, DistDir: "dist", Repository: "testpypi"}
	tasks := Tasks("/project", id, cfg)

	assert.Contains(t, taskScript(t, tasks["upload"], 0), "--repository testpypi")
}

func TestCleanRemovesScratchDirs(t *testing.T) {
	id := Identity{Name: "my-tool", Version: "1.2.3"}
	cfg := &Config{Python: "python3", WheelTag: DefaultWheelTag, DistDir: "dist"}
	tasks := Tasks("/project", id, cfg)

	cmd := taskScript(t, tasks["clean"], 0)
	assert.True(t, strings.HasPrefix(cmd, "rm -rf "))
	for _, dir := range []string{"dist", "build", "my_tool.egg-info", "my-tool.egg-info"} {
		assert.Contains(t, cmd, dir)
	}
}
