// Package migrate drives the two phases of a link migration over HTML
// fragments.
package migrate

import (
	"context"
	"time"

	"github.com/fwojciec/linkmigrator"
)

// exportKey and exportField identify a fragment converted on its own,
// outside of any run.
var exportKey = linkmigrator.LinkKey{Type: "type", MigrationID: "lookup_id"}

const exportField = "field"

// Converter runs the scanning and resolution phases.
type Converter struct {
	Parser   linkmigrator.LinkParser
	Resolver linkmigrator.LinkResolver

	// Options is passed to every Parser.Convert call.
	Options linkmigrator.ConvertOptions

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewConverter creates a Converter.
func NewConverter(parser linkmigrator.LinkParser, resolver linkmigrator.LinkResolver) *Converter {
	return &Converter{
		Parser:   parser,
		Resolver: resolver,
		Now:      time.Now,
	}
}

// ConvertExportedHTML scans and resolves a single fragment. It returns the
// rewritten fragment and the references that could not be resolved, or nil
// when every reference resolved.
func (c *Converter) ConvertExportedHTML(ctx context.Context, html string) (string, []*linkmigrator.Reference, error) {
	links := linkmigrator.NewLinkMap()
	out := c.Parser.Convert(links, html, exportKey, exportField, c.Options)

	if err := c.Resolver.ResolveLinks(ctx, links); err != nil {
		return "", nil, err
	}

	out = Replace(out, links.Lookup(exportKey, exportField))
	return out, BadLinks(links), nil
}

// Scan converts every fragment of run in place and records the deferred
// references in run.Links.
func (c *Converter) Scan(run *linkmigrator.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}
	if run.Links == nil {
		run.Links = linkmigrator.NewLinkMap()
	}
	for _, f := range run.Fragments {
		f.HTML = c.Parser.Convert(run.Links, f.HTML, f.Key(), f.Field, c.Options)
	}
	return nil
}

// Resolve resolves the references of a scanned run and substitutes the
// final values into its fragments.
func (c *Converter) Resolve(ctx context.Context, run *linkmigrator.Run) error {
	if run.Resolved() {
		return linkmigrator.Errorf(linkmigrator.EINVALID, "run %s is already resolved", run.ID)
	}
	if run.Links == nil {
		run.Links = linkmigrator.NewLinkMap()
	}

	if err := c.Resolver.ResolveLinks(ctx, run.Links); err != nil {
		return err
	}

	for _, f := range run.Fragments {
		f.HTML = Replace(f.HTML, run.Links.Lookup(f.Key(), f.Field))
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	run.ResolvedAt = now().UTC()
	return nil
}

// Replace substitutes the placeholders of refs in html. Only the references
// recorded for a fragment take part, so equal placeholders in different
// fragments may receive different values.
func Replace(html string, refs []*linkmigrator.Reference) string {
	if len(refs) == 0 {
		return html
	}
	links := linkmigrator.NewLinkMap()
	for _, ref := range refs {
		links.Add(exportKey, exportField, ref)
	}
	return links.Replace(html)
}

// BadLinks flattens the unresolved references of links. It returns nil when
// there are none.
func BadLinks(links *linkmigrator.LinkMap) []*linkmigrator.Reference {
	var bad []*linkmigrator.Reference
	for _, m := range links.MissingLinks() {
		bad = append(bad, m.Links...)
	}
	return bad
}
