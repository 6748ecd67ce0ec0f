package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/linkmigrator"
)

// Ensure LoggingParser implements linkmigrator.LinkParser.
var _ linkmigrator.LinkParser = (*LoggingParser)(nil)

// LoggingParser wraps a LinkParser with debug logging.
type LoggingParser struct {
	next   linkmigrator.LinkParser
	logger *slog.Logger
}

// NewLoggingParser creates a new LoggingParser.
func NewLoggingParser(next linkmigrator.LinkParser, logger *slog.Logger) *LoggingParser {
	return &LoggingParser{next: next, logger: logger}
}

// Convert delegates to the wrapped parser and logs how many references were
// deferred.
func (p *LoggingParser) Convert(links *linkmigrator.LinkMap, html string, key linkmigrator.LinkKey, field string, opts linkmigrator.ConvertOptions) string {
	begin := time.Now()
	before := len(links.Lookup(key, field))
	out := p.next.Convert(links, html, key, field, opts)
	p.logger.Debug("link scan",
		"type", key.Type,
		"migration_id", key.MigrationID,
		"field", field,
		"deferred", len(links.Lookup(key, field))-before,
		"bytes", len(html),
		"duration", time.Since(begin),
	)
	return out
}
