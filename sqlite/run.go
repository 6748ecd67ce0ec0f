package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/linkmigrator"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ linkmigrator.RunService = (*RunService)(nil)

// RunService implements linkmigrator.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores a scanned run with its fragments and links.
func (s *RunService) CreateRun(ctx context.Context, run *linkmigrator.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()
	if run.Links == nil {
		run.Links = linkmigrator.NewLinkMap()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, resolved_at)
		VALUES (?, ?, ?)
	`, run.ID, run.CreatedAt.Format(time.RFC3339), formatOptionalTime(run.ResolvedAt)); err != nil {
		return err
	}

	if err := insertContents(ctx, tx, run); err != nil {
		return err
	}

	return tx.Commit()
}

// FindRunByID retrieves a run with its fragments and links in their
// original order.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*linkmigrator.Run, error) {
	var run linkmigrator.Run
	var createdAt, resolvedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, resolved_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &createdAt, &resolvedAt)

	if err == sql.ErrNoRows {
		return nil, linkmigrator.Errorf(linkmigrator.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	if run.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if run.ResolvedAt, err = parseOptionalTime(resolvedAt, "resolved_at"); err != nil {
		return nil, err
	}

	if run.Fragments, err = s.findFragments(ctx, id); err != nil {
		return nil, err
	}
	if run.Links, err = s.findLinks(ctx, id); err != nil {
		return nil, err
	}

	return &run, nil
}

// FindRuns lists runs newest first. Fragments and links are not loaded.
func (s *RunService) FindRuns(ctx context.Context, filter linkmigrator.RunFilter) ([]*linkmigrator.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, created_at, resolved_at FROM runs ORDER BY created_at DESC, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*linkmigrator.Run
	for rows.Next() {
		var run linkmigrator.Run
		var createdAt, resolvedAt string

		if err := rows.Scan(&run.ID, &createdAt, &resolvedAt); err != nil {
			return nil, err
		}
		if run.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if run.ResolvedAt, err = parseOptionalTime(resolvedAt, "resolved_at"); err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// UpdateRun replaces the fragments and links of an existing run.
func (s *RunService) UpdateRun(ctx context.Context, run *linkmigrator.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}
	if run.Links == nil {
		run.Links = linkmigrator.NewLinkMap()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE runs SET resolved_at = ? WHERE id = ?
	`, formatOptionalTime(run.ResolvedAt), run.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return linkmigrator.Errorf(linkmigrator.ENOTFOUND, "run not found")
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM fragments WHERE run_id = ?", run.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM links WHERE run_id = ?", run.ID); err != nil {
		return err
	}

	if err := insertContents(ctx, tx, run); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteRun permanently removes a run.
func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return linkmigrator.Errorf(linkmigrator.ENOTFOUND, "run not found")
	}

	return nil
}

// insertContents writes fragments and links with positions that preserve
// their order.
func insertContents(ctx context.Context, tx *sql.Tx, run *linkmigrator.Run) error {
	for i, f := range run.Fragments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fragments (run_id, position, item_type, migration_id, field, html)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, i, f.ItemType, f.MigrationID, f.Field, f.HTML); err != nil {
			return err
		}
	}

	var insertErr error
	pos := 0
	run.Links.Each(func(key linkmigrator.LinkKey, field string, refs []*linkmigrator.Reference) {
		for _, ref := range refs {
			if insertErr != nil {
				return
			}
			data, err := json.Marshal(ref)
			if err != nil {
				insertErr = fmt.Errorf("failed to encode link: %w", err)
				return
			}
			_, insertErr = tx.ExecContext(ctx, `
				INSERT INTO links (run_id, position, item_type, migration_id, field, link_type, placeholder, data)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, run.ID, pos, key.Type, key.MigrationID, field, string(ref.Kind), ref.Placeholder, string(data))
			pos++
		}
	})
	return insertErr
}

func (s *RunService) findFragments(ctx context.Context, runID string) ([]*linkmigrator.Fragment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_type, migration_id, field, html
		FROM fragments
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fragments []*linkmigrator.Fragment
	for rows.Next() {
		var f linkmigrator.Fragment
		if err := rows.Scan(&f.ItemType, &f.MigrationID, &f.Field, &f.HTML); err != nil {
			return nil, err
		}
		fragments = append(fragments, &f)
	}
	return fragments, rows.Err()
}

func (s *RunService) findLinks(ctx context.Context, runID string) (*linkmigrator.LinkMap, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_type, migration_id, field, data
		FROM links
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := linkmigrator.NewLinkMap()
	for rows.Next() {
		var key linkmigrator.LinkKey
		var field, data string
		if err := rows.Scan(&key.Type, &key.MigrationID, &field, &data); err != nil {
			return nil, err
		}
		var ref linkmigrator.Reference
		if err := json.Unmarshal([]byte(data), &ref); err != nil {
			return nil, fmt.Errorf("failed to decode link: %w", err)
		}
		links.Add(key, field, &ref)
	}
	return links, rows.Err()
}
