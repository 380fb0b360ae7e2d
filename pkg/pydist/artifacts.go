package pydist

import (
	"fmt"
	"path"
)

// DefaultWheelTag is the compatibility tag of a universal wheel.
const DefaultWheelTag = "py2.py3-none-any"

// SdistFile returns the filename of the source distribution. The package name
// is used unmodified here.
func (i Identity) SdistFile() string {
	return fmt.Sprintf("%s-%s.tar.gz", i.Name, i.Version)
}

// WheelFile returns the filename of the wheel for the given compatibility
// tag. Wheel filenames use the normalized package name.
func (i Identity) WheelFile(tag string) string {
	if tag == "" {
		tag = DefaultWheelTag
	}
	return fmt.Sprintf("%s-%s-%s.whl", i.Normalized(), i.Version, tag)
}

// SdistPath returns the project-relative path of the sdist artifact.
func (i Identity) SdistPath(distDir string) string {
	return path.Join(distDir, i.SdistFile())
}

// WheelPath returns the project-relative path of the wheel artifact.
func (i Identity) WheelPath(distDir, tag string) string {
	return path.Join(distDir, i.WheelFile(tag))
}
