package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
)

// Persist implements the cvrdt.Persist interface for storing and loading
// snapshots as files.
type Persist struct {
	basepath string
}

// Load loads the bytes persisted in the named file.
func (p Persist) Load(ctx context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(p.basepath, name))
}

// Store persists the given bytes in a file of the given name, unless the
// file already holds exactly those bytes. A file with other content, such
// as a damaged copy, is overwritten.
func (p Persist) Store(ctx context.Context, name string, b []byte) error {
	path := filepath.Join(p.basepath, name)
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, b) {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// NewPersistForPath returns a Persist that loads and stores snapshots as
// files in the directory at the given path.
//
//	p := NewPersistForPath("/var/db/counters")
//	blob, err := p.Load(ctx, "kYlV0dRzXo1m4mG2QKq8ChW3YB2bjzG1mTuyjzMizPk")
func NewPersistForPath(path string) Persist {
	return Persist{path}
}
