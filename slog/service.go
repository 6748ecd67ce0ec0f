package slog

import (
	"log/slog"

	"github.com/fwojciec/linkmigrator"
)

// Ensure LoggingQueryService implements linkmigrator.MigrationQueryService.
var _ linkmigrator.MigrationQueryService = (*LoggingQueryService)(nil)

// LoggingQueryService logs link parse warnings and delegates everything
// else to the embedded service.
type LoggingQueryService struct {
	linkmigrator.MigrationQueryService
	logger *slog.Logger
}

// NewLoggingQueryService creates a new LoggingQueryService.
func NewLoggingQueryService(next linkmigrator.MigrationQueryService, logger *slog.Logger) *LoggingQueryService {
	return &LoggingQueryService{MigrationQueryService: next, logger: logger}
}

// ReportLinkParseWarning logs the unknown type before delegating.
func (s *LoggingQueryService) ReportLinkParseWarning(typ string) {
	s.logger.Warn("unknown link type", "type", typ)
	s.MigrationQueryService.ReportLinkParseWarning(typ)
}
