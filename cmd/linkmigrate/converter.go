package main

import (
	"log/slog"

	"github.com/fwojciec/linkmigrator"
	"github.com/fwojciec/linkmigrator/fs"
	"github.com/fwojciec/linkmigrator/goquery"
	"github.com/fwojciec/linkmigrator/migrate"
	"github.com/fwojciec/linkmigrator/resolve"
	"github.com/fwojciec/linkmigrator/resourcemap"
	lmslog "github.com/fwojciec/linkmigrator/slog"
)

// ConverterConfig holds the per-command settings of a converter.
type ConverterConfig struct {
	ResourceMap string
	Concurrency int
	Unwrap      bool
}

// NewConverter wires a converter over the resource map of cc. Every
// component is wrapped with logging.
func NewConverter(cc ConverterConfig, cfg *Config, logger *slog.Logger) (*migrate.Converter, error) {
	data, err := resourcemap.LoadFile(cc.ResourceMap)
	if err != nil {
		return nil, err
	}

	svc := resourcemap.NewService(data)
	cfg.Apply(svc)
	query := lmslog.NewLoggingQueryService(svc, logger)

	var images linkmigrator.EmbeddedImageLinker
	if cfg.EmbeddedImagesDir != "" {
		images = fs.NewImageLinker(cfg.EmbeddedImagesDir)
	}

	resolver := resolve.NewResolver(query)
	if cc.Concurrency > 0 {
		resolver.Concurrency = cc.Concurrency
	}

	conv := migrate.NewConverter(
		lmslog.NewLoggingParser(goquery.NewParser(query, images), logger),
		lmslog.NewLoggingResolver(resolver, logger),
	)
	conv.Options.RemoveOuterNodesIfOneChild = cc.Unwrap
	return conv, nil
}
