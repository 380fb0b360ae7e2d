// Package pydist resolves the identity of a setup.py-based Python package,
// derives the paths of its distribution artifacts and assembles the built-in
// packaging tasks (build, install, systeminstall, uninstall, upload, clean).
package pydist
