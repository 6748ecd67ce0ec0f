// Package fs provides file-based input and output for migrated fragments.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/linkmigrator"
)

// Ensure FragmentStore implements linkmigrator.FragmentWriter at compile time.
var _ linkmigrator.FragmentWriter = (*FragmentStore)(nil)

// FragmentStore writes fragments with atomic update semantics.
// Fragments are saved to a temporary directory, then moved atomically on Commit.
type FragmentStore struct {
	baseDir string
	name    string
}

// NewFragmentStore creates a new FragmentStore.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFragmentStore(baseDir, name string) *FragmentStore {
	return &FragmentStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FragmentStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FragmentStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// FragmentPath returns the relative file path of f:
// <item_type>/<migration_id>/<field>.html.
func FragmentPath(f *linkmigrator.Fragment) (string, error) {
	for _, part := range []string{f.ItemType, f.MigrationID, f.Field} {
		if part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", linkmigrator.Errorf(linkmigrator.EINVALID, "path traversal in fragment %q", part)
		}
	}
	return filepath.Join(f.ItemType, f.MigrationID, f.Field+".html"), nil
}

// WriteFragment saves the HTML of f below the temporary directory.
func (s *FragmentStore) WriteFragment(ctx context.Context, f *linkmigrator.Fragment) error {
	if err := f.Validate(); err != nil {
		return err
	}

	relPath, err := FragmentPath(f)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), relPath)

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, []byte(f.HTML), 0644)
}

// Commit replaces the final directory with the temporary one.
func (s *FragmentStore) Commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards everything written since the store was created.
func (s *FragmentStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// ReadFragment reads an HTML fragment from path.
func ReadFragment(path, itemType, migrationID, field string) (*linkmigrator.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := &linkmigrator.Fragment{
		ItemType:    itemType,
		MigrationID: migrationID,
		Field:       field,
		HTML:        string(data),
	}
	if f.MigrationID == "" {
		f.MigrationID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, f.Validate()
}
