package vendorfile

import (
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// applyPatches applies the inline patches from the manifest to the checkout
// at target, in order. The patches are fed to git apply which also works
// outside of a git repository.
func applyPatches(ctx context.Context, target string, patches []string) error {
	for idx, patch := range patches {
		if !strings.HasSuffix(patch, "\n") {
			patch += "\n"
		}

		cmd := exec.CommandContext(ctx, "git", "apply", "--whitespace=nowarn")
		cmd.Dir = target
		cmd.Stdin = strings.NewReader(patch)

		output, err := cmd.CombinedOutput()
		if err != nil {
			return eris.Wrapf(err, "patch #%d failed: %s", idx, strings.TrimSpace(string(output)))
		}
	}

	return nil
}
