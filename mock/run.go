package mock

import (
	"context"

	"github.com/fwojciec/linkmigrator"
)

var _ linkmigrator.RunService = (*RunService)(nil)

// RunService is a mock implementation of linkmigrator.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *linkmigrator.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*linkmigrator.Run, error)
	FindRunsFn    func(ctx context.Context, filter linkmigrator.RunFilter) ([]*linkmigrator.Run, error)
	UpdateRunFn   func(ctx context.Context, run *linkmigrator.Run) error
	DeleteRunFn   func(ctx context.Context, id string) error
}

func (s *RunService) CreateRun(ctx context.Context, run *linkmigrator.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*linkmigrator.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter linkmigrator.RunFilter) ([]*linkmigrator.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) UpdateRun(ctx context.Context, run *linkmigrator.Run) error {
	return s.UpdateRunFn(ctx, run)
}

func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	return s.DeleteRunFn(ctx, id)
}
