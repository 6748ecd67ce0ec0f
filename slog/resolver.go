package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkmigrator"
)

// Ensure LoggingResolver implements linkmigrator.LinkResolver.
var _ linkmigrator.LinkResolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a LinkResolver with logging.
type LoggingResolver struct {
	next   linkmigrator.LinkResolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next linkmigrator.LinkResolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// ResolveLink delegates to the wrapped resolver and logs the outcome at
// debug level.
func (r *LoggingResolver) ResolveLink(ref *linkmigrator.Reference) (err error) {
	defer func() {
		r.logger.Debug("link resolved",
			"link_type", ref.Kind,
			"new_value", ref.NewValue,
			"missing_url", ref.MissingURL,
			"err", err,
		)
	}()
	return r.next.ResolveLink(ref)
}

// ResolveLinks delegates to the wrapped resolver and logs the operation.
func (r *LoggingResolver) ResolveLinks(ctx context.Context, links *linkmigrator.LinkMap) (err error) {
	defer func(begin time.Time) {
		missing := 0
		for _, m := range links.MissingLinks() {
			missing += len(m.Links)
			for _, ref := range m.Links {
				r.logger.Debug("unresolved link",
					"type", m.Key.Type,
					"migration_id", m.Key.MigrationID,
					"field", m.Field,
					"link_type", ref.Kind,
					"old_value", ref.OldValue,
					"missing_url", ref.MissingURL,
				)
			}
		}
		r.logger.Info("link resolution",
			"count", links.Len(),
			"missing", missing,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.ResolveLinks(ctx, links)
}
