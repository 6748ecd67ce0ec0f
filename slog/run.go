package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkmigrator"
)

// Ensure LoggingRunService implements linkmigrator.RunService.
var _ linkmigrator.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService with debug logging.
type LoggingRunService struct {
	next   linkmigrator.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next linkmigrator.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

func (s *LoggingRunService) CreateRun(ctx context.Context, run *linkmigrator.Run) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create run",
			"id", run.ID,
			"fragments", len(run.Fragments),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRun(ctx, run)
}

func (s *LoggingRunService) FindRunByID(ctx context.Context, id string) (run *linkmigrator.Run, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find run",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRunByID(ctx, id)
}

func (s *LoggingRunService) FindRuns(ctx context.Context, filter linkmigrator.RunFilter) (runs []*linkmigrator.Run, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find runs",
			"count", len(runs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRuns(ctx, filter)
}

func (s *LoggingRunService) UpdateRun(ctx context.Context, run *linkmigrator.Run) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("update run",
			"id", run.ID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpdateRun(ctx, run)
}

func (s *LoggingRunService) DeleteRun(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete run",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteRun(ctx, id)
}
