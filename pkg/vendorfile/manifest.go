// Package vendorfile materializes external dependencies listed in a
// project's Vendorfile into the vendor directory. Entries can point at local
// directories, git repositories or downloadable archives.
package vendorfile

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const (
	// ManifestName is the dependency manifest at the project root.
	ManifestName = "Vendorfile"
	// StampsName records which archives have already been unpacked.
	StampsName = "Vendorfile.stamps"
)

// Kind describes how an entry is fetched.
type Kind int

const (
	// KindLocal entries are copied from a directory on disk.
	KindLocal Kind = iota
	// KindGit entries are cloned from a git remote.
	KindGit
	// KindArchive entries are downloaded and unpacked.
	KindArchive
)

// Entry is a single dependency in the manifest.
type Entry struct {
	Source   string   `yaml:"source"`
	Version  string   `yaml:"version,omitempty"`
	Sha256   string   `yaml:"sha256,omitempty"`
	Strip    int      `yaml:"strip,omitempty"`
	MarkExec []string `yaml:"markExec,omitempty"`
	Patches  []string `yaml:"patches,omitempty"`
}

// Manifest maps dependency names to their entries. The names double as
// directory names below the vendor directory.
type Manifest map[string]Entry

var archiveSuffixes = []string{".zip", ".tar.gz", ".tar.bz2", ".tar.xz", ".tar.br"}

// Kind classifies the entry based on its source. Relative and absolute
// filesystem paths are local, known archive extensions are archives and
// everything else is treated as a git remote.
func (e Entry) Kind() Kind {
	if strings.HasPrefix(e.Source, "./") || strings.HasPrefix(e.Source, "../") || strings.HasPrefix(e.Source, "/") {
		return KindLocal
	}

	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(e.Source, suffix) {
			return KindArchive
		}
	}

	return KindGit
}

// Load reads and parses the manifest at the given path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "Could not open file %s", path)
	}

	var manifest Manifest
	err = yaml.Unmarshal(data, &manifest)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to parse %s", path)
	}

	if len(manifest) == 0 {
		return nil, eris.Errorf("%s is empty", path)
	}

	for name, entry := range manifest {
		if entry.Source == "" {
			return nil, eris.Errorf("entry %s has no source", name)
		}
		if entry.Kind() == KindArchive && entry.Sha256 == "" {
			return nil, eris.Errorf("entry %s doesn't have a checksum", name)
		}
	}

	return manifest, nil
}
