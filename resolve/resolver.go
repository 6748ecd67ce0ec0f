// Package resolve implements the resolution phase of a link migration.
package resolve

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/linkmigrator"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var _ linkmigrator.LinkResolver = (*Resolver)(nil)

// DefaultConcurrency is used when Resolver.Concurrency is not positive.
const DefaultConcurrency = 4

// Resolver computes final URLs for references recorded while scanning.
type Resolver struct {
	service linkmigrator.MigrationQueryService

	// Concurrency limits the number of references resolved in parallel.
	Concurrency int

	lowerOnce  sync.Once
	lowerIndex map[string]string
}

// NewResolver creates a Resolver backed by svc.
func NewResolver(svc linkmigrator.MigrationQueryService) *Resolver {
	return &Resolver{service: svc, Concurrency: DefaultConcurrency}
}

// ResolveLinks resolves every reference of links. References are
// independent, so they are resolved in parallel; the first error stops the
// remaining work.
func (r *Resolver) ResolveLinks(ctx context.Context, links *linkmigrator.LinkMap) error {
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, ref := range links.References() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return r.ResolveLink(ref)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ResolveLink sets NewValue or MissingURL on ref.
func (r *Resolver) ResolveLink(ref *linkmigrator.Reference) error {
	ctxPath := r.service.ContextPath()

	switch ref.Kind {
	case linkmigrator.KindWikiPage:
		if slug, ok := r.service.WikiPageSlug(ref.MigrationID); ok {
			ref.NewValue = ctxPath + "/pages/" + slug + ref.Query
		}
	case linkmigrator.KindDiscussionTopic:
		if id, ok := r.discussionTopicID(ref.MigrationID); ok {
			ref.NewValue = ctxPath + "/discussion_topics/" + id + ref.Query
		}
	case linkmigrator.KindModuleItem:
		if id, ok := r.service.ModuleItemID(ref.MigrationID); ok {
			ref.NewValue = ctxPath + "/modules/items/" + id + ref.Query
		}
	case linkmigrator.KindObject:
		r.resolveObject(ref)
	case linkmigrator.KindMediaObject:
		return r.resolveMediaObject(ref)
	case linkmigrator.KindFile:
		r.resolveFile(ref)
	case linkmigrator.KindFileRef:
		r.resolveFileRef(ref)
	default:
		return linkmigrator.Errorf(linkmigrator.EINTERNAL, "unrecognized link type (%s) in unresolved link", ref.Kind)
	}
	return nil
}

// discussionTopicID falls back to announcements, which share the
// discussion_topics URL scheme.
func (r *Resolver) discussionTopicID(migrationID string) (string, bool) {
	if id, ok := r.service.DiscussionTopicID(migrationID); ok {
		return id, true
	}
	return r.service.AnnouncementID(migrationID)
}

func (r *Resolver) resolveObject(ref *linkmigrator.Reference) {
	ctxPath := r.service.ContextPath()
	typ := ref.Type
	if typ == "wiki" {
		typ = "pages"
	}

	switch typ {
	case "pages":
		slug, ok := r.service.WikiPageSlug(ref.MigrationID)
		if !ok {
			slug = ref.MigrationID
		}
		ref.NewValue = ctxPath + "/pages/" + slug + r.resolveModuleItemQuery(ref.Query)
	case "attachments":
		if id, uuid, ok := r.service.AttachmentID(ref.MigrationID); ok {
			ref.NewValue = addVerifier(ctxPath+"/files/"+id+"/preview", uuid)
		}
	case "media_attachments_iframe":
		newURL := ref.OldValue
		id, uuid, ok := r.service.AttachmentID(ref.MigrationID)
		if ok {
			newURL = "/media_attachments_iframe/" + id + ref.Query
		}
		ref.NewValue = addVerifier(newURL, uuid)
	default:
		id, ok := r.service.ObjectID(typ, ref.MigrationID)
		if !ok && typ == "discussion_topics" {
			id, ok = r.service.AnnouncementID(ref.MigrationID)
		}
		if ok {
			ref.NewValue = ctxPath + "/" + ref.Type + "/" + id + r.resolveModuleItemQuery(ref.Query)
		}
	}
}

// resolveModuleItemQuery rewrites a module_item_id parameter holding a
// migration id into the destination module item id.
func (r *Resolver) resolveModuleItemQuery(query string) string {
	if !strings.Contains(query, "module_item_id=") {
		return query
	}

	var original string
	for _, param := range strings.Split(strings.Replace(query, "?", "", 1), "&") {
		if strings.Contains(param, "module_item_id=") {
			original = param
			break
		}
	}

	parts := strings.Split(original, "=")
	id, ok := r.service.ModuleItemID(parts[len(parts)-1])
	if !ok {
		return query
	}
	return strings.Replace(query, original, "module_item_id="+id, 1)
}

func (r *Resolver) resolveFileRef(ref *linkmigrator.Reference) {
	id, uuid, ok := r.service.AttachmentID(ref.MigrationID)
	if !ok {
		old := linkmigrator.UnescapeMarkers(ref.OldValue)
		if _, rest, found := strings.Cut(old, linkmigrator.CourseReferenceMarker); found {
			ref.MissingURL = rest
		}
		return
	}

	rest := ref.Query
	if rest == "" && !ref.TargetBlank {
		rest = "/preview"
	}

	var newURL string
	switch {
	case strings.Contains(rest, "icon_maker_icon=1"):
		newURL = "/files/" + id + rest
	case ref.InMediaIframe:
		newURL = "/media_attachments_iframe/" + id + rest
	default:
		newURL = r.service.ContextPath() + "/files/" + id + rest
	}
	ref.NewValue = addVerifier(newURL, uuid)
}

// addVerifier sets the verifier query parameter. Parameters are re-encoded
// in key order.
func addVerifier(rawURL, uuid string) string {
	if uuid == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("verifier", uuid)
	u.RawQuery = q.Encode()
	return u.String()
}
