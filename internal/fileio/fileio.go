// Package fileio is the byte-level file backend: one file per type name.
package fileio

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend reads and writes the byte blob associated with a type name.
type Backend interface {
	// Read returns the file contents for name. Absent files return an
	// error satisfying errors.Is(err, fs.ErrNotExist).
	Read(name string) ([]byte, error)
	// Write replaces the file contents for name. Full-file overwrite;
	// no partial-write recovery is attempted at this layer.
	Write(name string, data []byte) error
	// Path returns the file path for name, for diagnostics and tests.
	Path(name string) string
}

// Dir stores each collection as <name>.<ext> under a single directory.
type Dir struct {
	root string
	ext  string
}

// NewDir creates the directory if needed and returns a Dir backend.
func NewDir(root, ext string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Dir{root: root, ext: ext}, nil
}

// Read implements Backend.
func (d *Dir) Read(name string) ([]byte, error) {
	return os.ReadFile(d.Path(name)) //nolint:gosec // G304: path is derived from the type name, not user input
}

// Write implements Backend.
func (d *Dir) Write(name string, data []byte) error {
	if err := os.WriteFile(d.Path(name), data, 0o644); err != nil { //nolint:gosec // G306: collection files are not secrets
		return fmt.Errorf("failed to write %s: %w", d.Path(name), err)
	}
	return nil
}

// Path implements Backend.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name+"."+d.ext)
}

// Root returns the backing directory.
func (d *Dir) Root() string {
	return d.root
}
