package pydist

import (
	"errors"
	"os/exec"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/interp"
)

// ErrMetadataResolution indicates that the package name or version could not
// be determined from setup.py.
var ErrMetadataResolution = eris.New("failed to resolve package metadata")

// ExitCode translates an error returned by the task runner or a direct
// process invocation into the exit code of the wheelhouse process. The exit
// code of the first failing external command is propagated unchanged.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var status interp.ExitStatus
	if errors.As(err, &status) {
		return int(status)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}

	return 1
}
