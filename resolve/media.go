package resolve

import (
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/linkmigrator"
	"github.com/google/go-querystring/query"
	"golang.org/x/net/html"
)

var (
	mediaAttachmentsIframeRe = regexp.MustCompile(`/media_attachments_iframe/\d+`)
	mediaObjectsRe           = regexp.MustCompile(`media_objects(?:_iframe)?/([^?.]+)`)
)

type mediaAttachmentParams struct {
	Embedded bool   `url:"embedded"`
	Type     string `url:"type,omitempty"`
	Verifier string `url:"verifier,omitempty"`
}

// mediaAttachmentIframeURL builds the canonical media player URL of a file.
func mediaAttachmentIframeURL(fileID, uuid, mediaType string) string {
	v, err := query.Values(mediaAttachmentParams{Embedded: true, Type: mediaType, Verifier: uuid})
	if err != nil {
		return "/media_attachments_iframe/" + fileID
	}
	return "/media_attachments_iframe/" + fileID + "?" + v.Encode()
}

// resolveMediaObject rewrites the node the parser replaced with a
// placeholder and stores its markup as the new value.
func (r *Resolver) resolveMediaObject(ref *linkmigrator.Reference) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ref.OldValue))
	if err != nil {
		return linkmigrator.Errorf(linkmigrator.EINTERNAL, "failed to parse media node: %v", err)
	}
	node := doc.Find("body").Children().First()
	if node.Length() == 0 {
		node = nil
	}

	relPath := ref.RelPath
	newURL, ok := r.resolveMediaData(node, relPath)
	if !ok {
		newURL, ok = r.resolveRelativeFileURL(relPath)
	}
	if !ok {
		if strings.Contains(relPath, r.service.ContextPath()+"/file_contents") {
			newURL = relPath
		} else {
			newURL = r.missingRelativeFileURL(relPath)
		}
		ref.MissingURL = newURL
	}

	if node == nil {
		ref.NewValue = newURL
		return nil
	}

	switch goquery.NodeName(node) {
	case "iframe", "source":
		node.SetAttr("src", newURL)
	default:
		node.SetAttr("href", newURL)
	}
	markup, err := goquery.OuterHtml(node)
	if err != nil {
		return linkmigrator.Errorf(linkmigrator.EINTERNAL, "failed to render media node: %v", err)
	}
	ref.NewValue = markup
	return nil
}

// resolveMediaData tries, in order: the file at relPath, a canonical media
// attachment path, the node's media id, and a media id embedded in relPath.
// When nothing identifies the media, cosmetic attributes are dropped.
func (r *Resolver) resolveMediaData(node *goquery.Selection, relPath string) (string, bool) {
	mediaType := attr(node, "data-media-type")

	if relPath != "" {
		path, _, _ := strings.Cut(relPath, "?")
		if file, ok := r.findFile(path); ok {
			if node != nil && file.MediaEntryID != "" {
				node.SetAttr("data-media-id", file.MediaEntryID)
			}
			return mediaAttachmentIframeURL(file.ID, file.UUID, mediaType), true
		}
	}

	if mediaAttachmentsIframeRe.MatchString(relPath) {
		return relPath, true
	}

	if mediaID := attr(node, "data-media-id"); mediaID != "" {
		if id, uuid, ok := r.service.AttachmentIDByMediaID(mediaID); ok {
			return mediaAttachmentIframeURL(id, uuid, mediaType), true
		}
	}

	if m := mediaObjectsRe.FindStringSubmatch(relPath); m != nil {
		if id, uuid, ok := r.service.AttachmentIDByMediaID(m[1]); ok {
			return mediaAttachmentIframeURL(id, uuid, mediaType), true
		}
	}

	if node != nil {
		removeAttr(node.Get(0), "class", "id", "style")
	}
	return "", false
}

// removeAttr drops the named attributes and keeps the rest in order.
func removeAttr(n *html.Node, names ...string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && slices.Contains(names, a.Key) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func attr(sel *goquery.Selection, name string) string {
	if sel == nil {
		return ""
	}
	v, _ := sel.Attr(name)
	return v
}
