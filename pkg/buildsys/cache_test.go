package buildsys

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionCacheRoundtrip(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), "options.cache")

	options := map[string]string{
		"PYTHON":     "python3.11",
		"REPOSITORY": "testpypi",
	}
	require.NoError(t, WriteOptionCache(cacheFile, options))

	restored, err := ReadOptionCache(cacheFile)
	require.NoError(t, err)
	assert.Equal(t, options, restored)
}

func TestOptionCacheMissingFile(t *testing.T) {
	options, err := ReadOptionCache(filepath.Join(t.TempDir(), "missing.cache"))
	require.NoError(t, err)
	assert.Empty(t, options)
}
