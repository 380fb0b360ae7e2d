package vendorfile

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"wheelhouse/pkg/console"
)

// Syncer brings the vendor directory in sync with the manifest.
type Syncer struct {
	// Root is the project root containing the Vendorfile.
	Root string
	// Dir is the directory the dependencies are placed in.
	Dir string
	// Token is injected into github.com clone URLs when set.
	Token string

	client *http.Client
}

func NewSyncer(root, vendorDir string) *Syncer {
	if !filepath.IsAbs(vendorDir) {
		vendorDir = filepath.Join(root, vendorDir)
	}

	return &Syncer{
		Root:  root,
		Dir:   vendorDir,
		Token: os.Getenv("GITHUB_TOKEN"),
		client: &http.Client{
			Timeout: time.Minute * 30,
		},
	}
}

// Sync processes the manifest entries in name order. Entries that are
// already up to date (a git checkout tagged with the requested version or an
// unpacked archive with a matching stamp) are skipped. Patches are applied
// whenever an entry was fetched.
func (s *Syncer) Sync(ctx context.Context) error {
	manifest, err := Load(filepath.Join(s.Root, ManifestName))
	if err != nil {
		return err
	}

	stamps, err := s.readStamps()
	if err != nil {
		return err
	}

	err = os.MkdirAll(s.Dir, os.FileMode(0770))
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", s.Dir)
	}

	names := make([]string, 0, len(manifest))
	for name := range manifest {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := manifest[name]
		target := filepath.Join(s.Dir, name)

		var fetched bool
		switch entry.Kind() {
		case KindLocal:
			fetched, err = s.syncLocal(name, entry, target)
		case KindGit:
			fetched, err = s.syncGit(ctx, name, entry, target)
		case KindArchive:
			fetched, err = s.syncArchive(ctx, name, entry, target, stamps)
		}

		if err != nil {
			// record the stamps for everything that succeeded so far
			if sErr := s.writeStamps(stamps); sErr != nil {
				console.PrintError(sErr.Error())
			}
			return eris.Wrapf(err, "Failed to sync %s", name)
		}

		if fetched && len(entry.Patches) > 0 {
			console.PrintSubtask("Patching " + name)
			err = applyPatches(ctx, target, entry.Patches)
			if err != nil {
				return eris.Wrapf(err, "Failed to patch %s", name)
			}
		}
	}

	return s.writeStamps(stamps)
}

func (s *Syncer) syncLocal(name string, entry Entry, target string) (bool, error) {
	source := entry.Source
	if !filepath.IsAbs(source) {
		source = filepath.Join(s.Root, source)
	}

	console.PrintSubtask("Copying " + name)
	err := os.RemoveAll(target)
	if err != nil {
		return false, eris.Wrapf(err, "Failed to remove %s", target)
	}

	err = copyTree(source, target)
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Syncer) readStamps() (map[string]string, error) {
	stamps := map[string]string{}
	stampPath := filepath.Join(s.Dir, StampsName)

	data, err := os.ReadFile(stampPath)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return stamps, nil
		}
		return nil, eris.Wrapf(err, "Failed to read stamps file %s", stampPath)
	}

	err = json.Unmarshal(data, &stamps)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse JSON file %s", stampPath)
	}

	return stamps, nil
}

func (s *Syncer) writeStamps(stamps map[string]string) error {
	data, err := json.Marshal(stamps)
	if err != nil {
		return eris.Wrap(err, "Failed to serialize stamps")
	}

	stampPath := filepath.Join(s.Dir, StampsName)
	err = os.WriteFile(stampPath, data, os.FileMode(0660))
	if err != nil {
		return eris.Wrapf(err, "Failed to write stamps file %s", stampPath)
	}

	return nil
}

func copyTree(source, target string) error {
	info, err := os.Stat(source)
	if err != nil {
		return eris.Wrapf(err, "Failed to access %s", source)
	}
	if !info.IsDir() {
		return eris.Errorf("%s is not a directory", source)
	}

	err = os.MkdirAll(target, os.FileMode(0770))
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", target)
	}

	err = os.CopyFS(target, os.DirFS(source))
	if err != nil {
		return eris.Wrapf(err, "Failed to copy %s to %s", source, target)
	}

	return nil
}
