package buildsys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func writeScript(t *testing.T, root, content string) string {
	t.Helper()

	scriptPath := filepath.Join(root, ScriptName)
	require.NoError(t, os.WriteFile(scriptPath, []byte(content), 0o600))
	return scriptPath
}

func TestRunScriptTasks(t *testing.T) {
	root := t.TempDir()
	scriptPath := writeScript(t, root, `
def configure():
    task(
        "docs",
        desc="Builds the documentation",
        deps=["build"],
        inputs=["docs/*.rst"],
        outputs=["docs/_build/index.html"],
        cmds=["$PYTHON -m sphinx docs docs/_build"],
    )
`)

	tasks, options, err := RunScript(testContext(), scriptPath, root, map[string]string{}, nil, true)
	require.NoError(t, err)
	assert.Empty(t, options)

	require.Contains(t, tasks, "docs")
	docs := tasks["docs"]
	assert.Equal(t, "Builds the documentation", docs.Desc)
	assert.Equal(t, []string{"build"}, docs.Deps)
	assert.Equal(t, []string{"docs/*.rst"}, docs.Inputs)
	require.Len(t, docs.Cmds, 1)
}

func TestRunScriptOptions(t *testing.T) {
	root := t.TempDir()
	scriptPath := writeScript(t, root, `
flavor = option("flavor", default="plain", help="Build flavor")

def configure():
    task("show", desc="Prints the flavor", cmds=["echo " + flavor])
`)

	tasks, options, err := RunScript(testContext(), scriptPath, root, map[string]string{"flavor": "spicy"}, nil, true)
	require.NoError(t, err)

	require.Contains(t, options, "flavor")
	assert.Equal(t, "plain", options["flavor"].Default())
	assert.Equal(t, "Build flavor", options["flavor"].Help)

	script, ok := tasks["show"].Cmds[0].(TaskCmdScript)
	require.True(t, ok)
	assert.Equal(t, "echo spicy", script.Content)
}

func TestRunScriptGlobals(t *testing.T) {
	root := t.TempDir()
	scriptPath := writeScript(t, root, `
def configure():
    task("announce", desc="Prints the package identity", cmds=["echo " + PKG_NAME + " " + PKG_VERSION])
`)

	globals := starlark.StringDict{
		"PKG_NAME":    starlark.String("my-tool"),
		"PKG_VERSION": starlark.String("1.2.3"),
	}

	tasks, _, err := RunScript(testContext(), scriptPath, root, map[string]string{}, globals, true)
	require.NoError(t, err)

	script, ok := tasks["announce"].Cmds[0].(TaskCmdScript)
	require.True(t, ok)
	assert.Equal(t, "echo my-tool 1.2.3", script.Content)
}

func TestRunScriptReservedName(t *testing.T) {
	root := t.TempDir()
	scriptPath := writeScript(t, root, `
def configure():
    task("configure", desc="not allowed")
`)

	_, _, err := RunScript(testContext(), scriptPath, root, map[string]string{}, nil, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}

func TestRunScriptMissingConfigure(t *testing.T) {
	root := t.TempDir()
	scriptPath := writeScript(t, root, `x = 1`)

	_, _, err := RunScript(testContext(), scriptPath, root, map[string]string{}, nil, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configure")
}

func TestRunScriptOptionsOnly(t *testing.T) {
	root := t.TempDir()
	scriptPath := writeScript(t, root, `
flavor = option("flavor", default="plain")

def configure():
    task("show", cmds=["echo " + flavor])
`)

	tasks, options, err := RunScript(testContext(), scriptPath, root, map[string]string{}, nil, false)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Contains(t, options, "flavor")
}

func TestRunScriptCommandTuples(t *testing.T) {
	root := t.TempDir()
	scriptPath := writeScript(t, root, `
def configure():
    task("greet", desc="greets", cmds=[("echo", "hello world")])
`)

	tasks, _, err := RunScript(testContext(), scriptPath, root, map[string]string{}, nil, true)
	require.NoError(t, err)

	script, ok := tasks["greet"].Cmds[0].(TaskCmdScript)
	require.True(t, ok)
	assert.Equal(t, "echo 'hello world'", script.Content)
}
