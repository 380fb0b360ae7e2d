package pydist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactPaths(t *testing.T) {
	id := Identity{Name: "my-tool", Version: "1.2.3"}

	assert.Equal(t, "my_tool", id.Normalized())
	assert.Equal(t, "dist/my-tool-1.2.3.tar.gz", id.SdistPath("dist"))
	assert.Equal(t, "dist/my_tool-1.2.3-py2.py3-none-any.whl", id.WheelPath("dist", ""))
}

func TestArtifactPathsWithoutDashes(t *testing.T) {
	id := Identity{Name: "terrafile", Version: "0.4.2"}

	assert.Equal(t, "terrafile", id.Normalized())
	assert.Equal(t, "dist/terrafile-0.4.2.tar.gz", id.SdistPath("dist"))
	assert.Equal(t, "dist/terrafile-0.4.2-py2.py3-none-any.whl", id.WheelPath("dist", DefaultWheelTag))
}

func TestWheelFileCustomTag(t *testing.T) {
	id := Identity{Name: "my-tool", Version: "1.2.3"}

	assert.Equal(t, "my_tool-1.2.3-py3-none-any.whl", id.WheelFile("py3-none-any"))
}
