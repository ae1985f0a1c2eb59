// Package artifact persists the raw response body of each invocation to a
// fixed path so failures can be inspected after the process exits. One
// write per invocation, success or failure.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store writes raw response bodies to a single well-known file.
type Store struct {
	path string
}

// New creates a store targeting path. The parent directory is created on
// first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact location for operator messages.
func (s *Store) Path() string { return s.path }

// Write replaces the artifact with body.
func (s *Store) Write(body []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}
	if err := os.WriteFile(s.path, body, 0o644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	return nil
}

// Read returns the current artifact contents, or nil if none exists.
func (s *Store) Read() []byte {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	return data
}
