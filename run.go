package linkmigrator

import (
	"context"
	"time"
)

// Fragment is one HTML field of an imported object.
type Fragment struct {
	ItemType    string `json:"itemType"`
	MigrationID string `json:"migrationId"`
	Field       string `json:"field"`
	HTML        string `json:"html"`
}

// Key returns the LinkMap key of the fragment's owning object.
func (f *Fragment) Key() LinkKey {
	return LinkKey{Type: f.ItemType, MigrationID: f.MigrationID}
}

// Validate returns an error if the fragment contains invalid fields.
func (f *Fragment) Validate() error {
	if f.ItemType == "" {
		return Errorf(EINVALID, "fragment item type required")
	}
	if f.MigrationID == "" {
		return Errorf(EINVALID, "fragment migration ID required")
	}
	if f.Field == "" {
		return Errorf(EINVALID, "fragment field required")
	}
	return nil
}

// Run is one migration pass. Fragments hold placeholder-bearing HTML after
// scanning and final HTML after resolution; Links is the table shared by
// both phases.
type Run struct {
	ID         string      `json:"id"`
	CreatedAt  time.Time   `json:"createdAt"`
	ResolvedAt time.Time   `json:"resolvedAt"`
	Fragments  []*Fragment `json:"fragments"`
	Links      *LinkMap    `json:"links"`
}

// Resolved reports whether the resolution phase has completed.
func (r *Run) Resolved() bool {
	return !r.ResolvedAt.IsZero()
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if len(r.Fragments) == 0 {
		return Errorf(EINVALID, "run requires at least one fragment")
	}
	for _, f := range r.Fragments {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RunService persists runs between the scanning and resolution phases.
type RunService interface {
	// CreateRun stores a scanned run and assigns its ID.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run with its fragments and links.
	// Returns ENOTFOUND if run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns lists runs newest first, without fragments or links.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// UpdateRun replaces the stored fragments and links of a run.
	// Returns ENOTFOUND if run does not exist.
	UpdateRun(ctx context.Context, run *Run) error

	// DeleteRun permanently removes a run.
	// Returns ENOTFOUND if run does not exist.
	DeleteRun(ctx context.Context, id string) error
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	Limit  int
	Offset int
}

// FragmentWriter writes final fragments to storage.
type FragmentWriter interface {
	WriteFragment(ctx context.Context, f *Fragment) error
}
