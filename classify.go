package linkmigrator

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
)

// Reference keywords that exports embed in URLs, sometimes with the
// dollar signs percent-encoded.
var ReferenceKeywords = []string{
	"CANVAS_COURSE_REFERENCE",
	"CANVAS_OBJECT_REFERENCE",
	"WIKI_REFERENCE",
	"IMS_CC_FILEBASE",
	"IMS-CC-FILEBASE",
}

// CourseReferenceMarker prefixes course-scoped placeholder URLs.
const CourseReferenceMarker = "$CANVAS_COURSE_REFERENCE$"

var (
	wikiPageMarkerRe        = regexp.MustCompile(`wiki_page_migration_id=(.*)`)
	discussionTopicMarkerRe = regexp.MustCompile(`discussion_topic_migration_id=(.*)`)
	moduleItemRe            = regexp.MustCompile(`\$CANVAS_COURSE_REFERENCE\$/modules/items/([^?]*)(\?.*)?`)
	fileRefRe               = regexp.MustCompile(`\$CANVAS_COURSE_REFERENCE\$/file_ref/([^/?#]+)(.*)`)
	objectRefRe             = regexp.MustCompile(`(?:\$CANVAS_OBJECT_REFERENCE\$|\$WIKI_REFERENCE\$)/([^/]*)/([^?]*)(\?.*)?`)
	courseRefRe             = regexp.MustCompile(`\$CANVAS_COURSE_REFERENCE\$/(.*)`)
	fileBaseRe              = regexp.MustCompile(`\$IMS(?:-|_)CC(?:-|_)FILEBASE\$/(.*)`)
	dataURIRe               = regexp.MustCompile(`(?s)\Adata:([-\w]+/[-\w+.]+)?;base64,(.*)`)
	assessmentFileRe        = regexp.MustCompile(`\A/assessment_questions/\d+/files/\d+`)
	courseFileRe            = regexp.MustCompile(`\A/courses/\d+/files/\d+`)
	percentEscapeRe         = regexp.MustCompile(`%[0-9a-fA-F]{2}`)
)

// NodeContext describes the element that owns a classified value.
type NodeContext struct {
	Tag       string
	Attr      string
	Class     string
	Target    string
	MediaID   string
	MediaType string
	Src       string
}

// MediaContainer reports whether the value is the src of a media iframe or
// source element.
func (n *NodeContext) MediaContainer() bool {
	if n == nil || n.Attr != "src" {
		return false
	}
	if n.Tag != "iframe" && n.Tag != "source" {
		return false
	}
	return n.MediaID != "" || n.MediaType != ""
}

func (n *NodeContext) hasClass(class string) bool {
	return n != nil && strings.Contains(n.Class, class)
}

func (n *NodeContext) attr() string {
	if n == nil {
		return ""
	}
	return n.Attr
}

// Classifier maps raw attribute values to references. Rules are evaluated
// in a fixed order and the first match wins.
type Classifier struct {
	Service ResourceMap

	// Images handles data URIs when the service supports embedded images.
	Images EmbeddedImageLinker
}

// NewClassifier returns a Classifier backed by svc.
func NewClassifier(svc ResourceMap, images EmbeddedImageLinker) *Classifier {
	return &Classifier{Service: svc, Images: images}
}

type classifyInput struct {
	url  string
	node *NodeContext
	hint Kind
}

type classifyRule func(c *Classifier, in *classifyInput) *Reference

// classifyRules is ordered: markers are more specific than the generic
// relative URL handling, and the leave-alone checks must run before the
// relative URL catch-all.
var classifyRules = []classifyRule{
	(*Classifier).classifyMigrationIDMarker,
	(*Classifier).classifyModuleItem,
	(*Classifier).classifyFileRef,
	(*Classifier).classifyObject,
	(*Classifier).classifyCourseReference,
	(*Classifier).classifyFileBase,
	(*Classifier).classifyMediaContainer,
	(*Classifier).classifyEmbeddedImage,
	(*Classifier).classifyLeaveAlone,
	(*Classifier).classifyRelative,
}

// Classify returns the reference described by rawURL as found on node.
// node may be nil for bare URLs; hint may force media or image handling.
func (c *Classifier) Classify(rawURL string, node *NodeContext, hint Kind) *Reference {
	in := &classifyInput{url: rawURL, node: node, hint: hint}
	for _, rule := range classifyRules {
		if ref := rule(c, in); ref != nil {
			return ref
		}
	}
	return resolvedRef("")
}

// ClassifyURL classifies a URL that does not belong to any element.
func (c *Classifier) ClassifyURL(rawURL string, hint Kind) *Reference {
	return c.Classify(rawURL, nil, hint)
}

func resolvedRef(newURL string) *Reference {
	return &Reference{Kind: KindResolved, NewValue: newURL}
}

func (c *Classifier) classifyMigrationIDMarker(in *classifyInput) *Reference {
	if m := wikiPageMarkerRe.FindStringSubmatch(in.url); m != nil {
		return &Reference{Kind: KindWikiPage, MigrationID: m[1]}
	}
	if m := discussionTopicMarkerRe.FindStringSubmatch(in.url); m != nil {
		return &Reference{Kind: KindDiscussionTopic, MigrationID: m[1]}
	}
	return nil
}

func (c *Classifier) classifyModuleItem(in *classifyInput) *Reference {
	m := moduleItemRe.FindStringSubmatch(in.url)
	if m == nil {
		return nil
	}
	return &Reference{Kind: KindModuleItem, MigrationID: m[1], Query: m[2]}
}

func (c *Classifier) classifyFileRef(in *classifyInput) *Reference {
	m := fileRefRe.FindStringSubmatch(in.url)
	if m == nil {
		return nil
	}
	ref := &Reference{Kind: KindFileRef, MigrationID: m[1], Query: m[2]}
	if in.node.MediaContainer() {
		ref.InMediaIframe = true
		ref.MediaType = in.node.MediaType
		ref.Query = MediaParams(in.node.MediaType)
	}
	if in.node != nil && in.node.Tag == "a" && in.node.Attr == "href" && in.node.Target == "_blank" {
		ref.TargetBlank = true
	}
	return ref
}

func (c *Classifier) classifyObject(in *classifyInput) *Reference {
	m := objectRefRe.FindStringSubmatch(in.url)
	if m == nil {
		return nil
	}
	if !IsKnownType(m[1]) {
		// Not a reference after all; keep the value as it is.
		c.Service.ReportLinkParseWarning(m[1])
		return resolvedRef(in.url)
	}
	return &Reference{Kind: KindObject, Type: m[1], MigrationID: m[2], Query: m[3]}
}

func (c *Classifier) classifyCourseReference(in *classifyInput) *Reference {
	m := courseRefRe.FindStringSubmatch(in.url)
	if m == nil {
		return nil
	}
	return resolvedRef(c.Service.ContextPath() + "/" + m[1])
}

func (c *Classifier) classifyFileBase(in *classifyInput) *Reference {
	m := fileBaseRe.FindStringSubmatch(in.url)
	if m == nil {
		return nil
	}
	relPath := Unescape(m[1])
	if (in.node.attr() == "href" && in.node.hasClass("instructure_inline_media_comment")) ||
		in.node.MediaContainer() || in.hint == KindMediaObject {
		return &Reference{Kind: KindMediaObject, RelPath: relPath}
	}
	return &Reference{Kind: KindFile, RelPath: relPath}
}

func (c *Classifier) classifyMediaContainer(in *classifyInput) *Reference {
	if !in.node.MediaContainer() && in.hint != KindMediaObject {
		return nil
	}
	relPath := in.url
	if in.node != nil {
		relPath = in.node.Src
	}
	return &Reference{Kind: KindMediaObject, RelPath: relPath}
}

func (c *Classifier) classifyEmbeddedImage(in *classifyInput) *Reference {
	if c.Images == nil {
		return nil
	}
	if in.hint != KindImage && !(c.Service.SupportsEmbeddedImages() && in.node.attr() == "src") {
		return nil
	}
	m := dataURIRe.FindStringSubmatch(in.url)
	if m == nil {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(m[2]), ""))
	if err != nil {
		return resolvedRef("")
	}
	newURL, resolved, err := c.Images.LinkEmbeddedImage(&EmbeddedImage{MimeType: m[1], Data: data})
	switch {
	case err != nil:
		return resolvedRef("")
	case resolved:
		return resolvedRef(newURL)
	default:
		return &Reference{Kind: KindFile, RelPath: newURL}
	}
}

func (c *Classifier) classifyLeaveAlone(in *classifyInput) *Reference {
	switch {
	case in.node.attr() == "src" && in.node.hasClass("equation_image"),
		assessmentFileRe.MatchString(in.url),
		courseFileRe.MatchString(in.url),
		!c.Service.FixRelativeURLs(),
		strings.HasPrefix(in.url, "#"):
		return resolvedRef("")
	}
	return nil
}

func (c *Classifier) classifyRelative(in *classifyInput) *Reference {
	if !IsRelativeURL(in.url) {
		return nil
	}
	return &Reference{Kind: KindFile, RelPath: Unescape(in.url)}
}

// IsRelativeURL reports whether s is a valid URL with neither scheme nor
// host. Values that do not parse are not relative.
func IsRelativeURL(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") || strings.HasPrefix(s, "//") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// UnescapeMarkers restores percent-encoded dollar signs around reference
// keywords.
func UnescapeMarkers(s string) string {
	for _, kw := range ReferenceKeywords {
		s = strings.ReplaceAll(s, "%24"+kw+"%24", "$"+kw+"$")
	}
	return s
}

// Unescape decodes every valid percent escape in s and leaves malformed
// ones untouched. Plus signs are kept.
func Unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	return percentEscapeRe.ReplaceAllStringFunc(s, func(esc string) string {
		b, err := url.PathUnescape(esc)
		if err != nil {
			return esc
		}
		return b
	})
}

// MediaParams returns the query string used for file references inside
// media iframes. The type comes first.
func MediaParams(mediaType string) string {
	return "?type=" + url.QueryEscape(mediaType) + "&embedded=true"
}
