package mock

import (
	"context"

	"github.com/fwojciec/linkmigrator"
)

var _ linkmigrator.LinkParser = (*LinkParser)(nil)

// LinkParser is a mock implementation of linkmigrator.LinkParser.
type LinkParser struct {
	ConvertFn func(links *linkmigrator.LinkMap, html string, key linkmigrator.LinkKey, field string, opts linkmigrator.ConvertOptions) string
}

func (p *LinkParser) Convert(links *linkmigrator.LinkMap, html string, key linkmigrator.LinkKey, field string, opts linkmigrator.ConvertOptions) string {
	return p.ConvertFn(links, html, key, field, opts)
}

var _ linkmigrator.LinkResolver = (*LinkResolver)(nil)

// LinkResolver is a mock implementation of linkmigrator.LinkResolver.
type LinkResolver struct {
	ResolveLinkFn  func(ref *linkmigrator.Reference) error
	ResolveLinksFn func(ctx context.Context, links *linkmigrator.LinkMap) error
}

func (r *LinkResolver) ResolveLink(ref *linkmigrator.Reference) error {
	return r.ResolveLinkFn(ref)
}

func (r *LinkResolver) ResolveLinks(ctx context.Context, links *linkmigrator.LinkMap) error {
	return r.ResolveLinksFn(ctx, links)
}

var _ linkmigrator.EmbeddedImageLinker = (*EmbeddedImageLinker)(nil)

// EmbeddedImageLinker is a mock implementation of linkmigrator.EmbeddedImageLinker.
type EmbeddedImageLinker struct {
	LinkEmbeddedImageFn func(img *linkmigrator.EmbeddedImage) (string, bool, error)
}

func (l *EmbeddedImageLinker) LinkEmbeddedImage(img *linkmigrator.EmbeddedImage) (string, bool, error) {
	return l.LinkEmbeddedImageFn(img)
}
