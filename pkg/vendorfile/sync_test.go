package vendorfile

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncLocal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "shared", "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "shared", "sub", "helper.py"), []byte("x = 1\n"), 0o600))

	writeManifest(t, root, `
shared:
  source: ./shared
`)

	syncer := NewSyncer(root, "vendor")
	require.NoError(t, syncer.Sync(t.Context()))

	data, err := os.ReadFile(filepath.Join(root, "vendor", "shared", "sub", "helper.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(data))
}

func TestSyncLocalReplacesStaleFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "shared"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "shared", "helper.py"), []byte("x = 1\n"), 0o600))

	// a leftover from a previous sync that no longer exists upstream
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor", "shared"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "shared", "stale.py"), []byte("old"), 0o600))

	writeManifest(t, root, `
shared:
  source: ./shared
`)

	syncer := NewSyncer(root, "vendor")
	require.NoError(t, syncer.Sync(t.Context()))

	_, err := os.Stat(filepath.Join(root, "vendor", "shared", "stale.py"))
	assert.True(t, os.IsNotExist(err))
}

func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestSyncArchive(t *testing.T) {
	archive := buildTarGz(t, map[string]string{
		"sdk-1.4/bin/tool":  "#!/bin/sh\n",
		"sdk-1.4/README.md": "readme\n",
	})
	digest := sha256.Sum256(archive)

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	root := t.TempDir()
	writeManifest(t, root, fmt.Sprintf(`
sdk:
  source: %s/sdk.tar.gz
  sha256: %s
  strip: 1
  markExec:
    - bin/tool
`, server.URL, hex.EncodeToString(digest[:])))

	syncer := NewSyncer(root, "vendor")
	syncer.client = server.Client()
	require.NoError(t, syncer.Sync(t.Context()))

	data, err := os.ReadFile(filepath.Join(root, "vendor", "sdk", "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "readme\n", string(data))

	info, err := os.Stat(filepath.Join(root, "vendor", "sdk", "bin", "tool"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "bin/tool should be executable")

	// a second sync finds the stamp and doesn't download again
	require.NoError(t, syncer.Sync(t.Context()))
	assert.Equal(t, 1, requests)
}

func TestSyncArchiveChecksumMismatch(t *testing.T) {
	archive := buildTarGz(t, map[string]string{"sdk/file.txt": "data\n"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	root := t.TempDir()
	writeManifest(t, root, fmt.Sprintf(`
sdk:
  source: %s/sdk.tar.gz
  sha256: 0000000000000000000000000000000000000000000000000000000000000000
`, server.URL))

	syncer := NewSyncer(root, "vendor")
	syncer.client = server.Client()

	err := syncer.Sync(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Checksum")
}

func TestSyncMissingManifest(t *testing.T) {
	syncer := NewSyncer(t.TempDir(), "vendor")
	assert.Error(t, syncer.Sync(t.Context()))
}
