package pydist

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// Identity holds the resolved package metadata. It's resolved once per
// invocation and never persisted.
type Identity struct {
	Name    string
	Version string
}

// Normalized returns the package name the way it appears in wheel filenames,
// with dashes replaced by underscores.
func (i Identity) Normalized() string {
	return strings.ReplaceAll(i.Name, "-", "_")
}

// QueryFunc runs the metadata query command and returns its stdout.
type QueryFunc func(ctx context.Context, dir, python string, args ...string) (string, error)

// Resolver queries setup.py for the package name and version.
type Resolver struct {
	Python string
	Dir    string

	query QueryFunc
}

func NewResolver(python, dir string) *Resolver {
	return &Resolver{
		Python: python,
		Dir:    dir,
		query:  runQuery,
	}
}

// WithQuery replaces the process invocation, used by tests.
func (r *Resolver) WithQuery(query QueryFunc) *Resolver {
	r.query = query
	return r
}

// Resolve invokes the metadata query twice (name, version). A query that
// exits non-zero or produces empty output is fatal; there is no retry.
func (r *Resolver) Resolve(ctx context.Context) (Identity, error) {
	name, err := r.queryValue(ctx, "--name")
	if err != nil {
		return Identity{}, err
	}

	version, err := r.queryValue(ctx, "--version")
	if err != nil {
		return Identity{}, err
	}

	return Identity{Name: name, Version: version}, nil
}

func (r *Resolver) queryValue(ctx context.Context, flag string) (string, error) {
	output, err := r.query(ctx, r.Dir, r.Python, "setup.py", flag)
	if err != nil {
		return "", eris.Wrapf(ErrMetadataResolution, "%s setup.py %s failed: %v", r.Python, flag, err)
	}

	// setuptools occasionally prints warnings before the value, the actual
	// answer is the last line.
	lines := strings.Split(strings.TrimSpace(output), "\n")
	value := strings.TrimSpace(lines[len(lines)-1])
	if value == "" {
		return "", eris.Wrapf(ErrMetadataResolution, "%s setup.py %s produced no output", r.Python, flag)
	}

	return value, nil
}

func runQuery(ctx context.Context, dir, python string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, python, args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()
	return string(output), err
}
