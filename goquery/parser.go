package goquery

import (
	"bytes"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/linkmigrator"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Compile-time interface verification.
var _ linkmigrator.LinkParser = (*Parser)(nil)

// linkAttrs are inspected on every element, in this order.
var linkAttrs = []string{"rel", "href", "src", "srcset", "data", "value", "longdesc", "data-download-url"}

// inlineMediaStyle is applied to media comment anchors turned into iframes.
const inlineMediaStyle = "width: 320px; height: 240px; display: inline-block;"

var (
	fileBaseValueRe = regexp.MustCompile(`IMS(?:-|_)CC(?:-|_)FILEBASE`)
	mediaClassRe    = regexp.MustCompile(`(audio|video)`)
)

// Parser rewrites HTML fragments, resolving what it can immediately and
// leaving placeholders for everything else.
type Parser struct {
	service    linkmigrator.ResourceMap
	classifier *linkmigrator.Classifier
}

// NewParser creates a Parser. images may be nil when embedded images are
// not extracted.
func NewParser(svc linkmigrator.ResourceMap, images linkmigrator.EmbeddedImageLinker) *Parser {
	return &Parser{
		service:    svc,
		classifier: linkmigrator.NewClassifier(svc, images),
	}
}

// Convert implements linkmigrator.LinkParser.
func (p *Parser) Convert(links *linkmigrator.LinkMap, fragment string, key linkmigrator.LinkKey, field string, opts linkmigrator.ConvertOptions) string {
	root, err := parseFragment(fragment)
	if err != nil {
		return ""
	}

	doc := goquery.NewDocumentFromNode(root)
	normalizeMediaSources(doc)
	normalizeMediaAnchors(doc)

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range linkAttrs {
			// A media node replaced by its placeholder has nothing left to
			// rewrite.
			if !attached(sel.Get(0), root) {
				return
			}
			p.convertAttr(links, sel, attr, key, field)
		}
	})

	if opts.RemoveOuterNodesIfOneChild {
		root = unwrapSingleChild(root)
	}

	out, err := renderChildren(root)
	if err != nil {
		return ""
	}
	return out
}

func (p *Parser) convertAttr(links *linkmigrator.LinkMap, sel *goquery.Selection, attr string, key linkmigrator.LinkKey, field string) {
	value, ok := sel.Attr(attr)
	if !ok || strings.TrimSpace(value) == "" {
		return
	}
	if attr == "value" && !fileBaseValueRe.MatchString(value) && !strings.Contains(value, "CANVAS_COURSE_REFERENCE") {
		return
	}

	rawURL := linkmigrator.UnescapeMarkers(value)
	ref := p.classifier.Classify(rawURL, nodeContext(sel, attr), "")

	if ref.Resolved() {
		newURL := ref.NewValue
		if newURL == "" {
			newURL = rawURL
		}
		if !linkmigrator.IsRelativeURL(newURL) {
			newURL = p.foldHost(p.service.ProcessDomainSubstitutions(newURL))
		}
		sel.SetAttr(attr, newURL)
		return
	}

	if ref.Kind == linkmigrator.KindMediaObject {
		old, err := goquery.OuterHtml(sel)
		if err != nil {
			return
		}
		ref.OldValue = old
		ref.Placeholder = linkmigrator.Placeholder(old)
		sel.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: ref.Placeholder})
	} else {
		ref.OldValue = value
		ref.Placeholder = linkmigrator.Placeholder(value)
		if goquery.NodeName(sel) == "a" && attr == "href" {
			if inner, err := sel.Html(); err == nil && value == strings.TrimSpace(strings.ReplaceAll(inner, "\n", "")) {
				sel.SetText(ref.Placeholder)
			}
		}
		sel.SetAttr(attr, ref.Placeholder)
	}
	links.Add(key, field, ref)
}

// foldHost makes absolute links to a destination host relative.
func (p *Parser) foldHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	host := u.Hostname()
	for _, h := range p.service.ContextHosts() {
		if strings.Split(h, ":")[0] != host {
			continue
		}
		u.Scheme = ""
		u.Host = ""
		u.User = nil
		return u.String()
	}
	return rawURL
}

func nodeContext(sel *goquery.Selection, attr string) *linkmigrator.NodeContext {
	n := &linkmigrator.NodeContext{Tag: goquery.NodeName(sel), Attr: attr}
	n.Class, _ = sel.Attr("class")
	n.Target, _ = sel.Attr("target")
	n.MediaID, _ = sel.Attr("data-media-id")
	n.MediaType, _ = sel.Attr("data-media-type")
	n.Src, _ = sel.Attr("src")
	return n
}

// normalizeMediaSources folds a media source element into its audio or
// video parent, which becomes an iframe.
func normalizeMediaSources(doc *goquery.Document) {
	doc.Find("source[data-media-type], source[data-media-id]").Each(func(_ int, source *goquery.Selection) {
		parent := source.Parent()
		name := goquery.NodeName(parent)
		if name != "audio" && name != "video" {
			return
		}
		rename(parent.Get(0), "iframe")
		for _, marker := range []string{"data-media-id", "data-media-type"} {
			v, ok := source.Attr(marker)
			if _, has := parent.Attr(marker); ok && !has {
				parent.SetAttr(marker, v)
			}
		}
		if src, ok := source.Attr("src"); ok {
			parent.SetAttr("src", src)
		}
		source.Remove()
	})
}

// normalizeMediaAnchors turns inline media comment anchors into iframes.
func normalizeMediaAnchors(doc *goquery.Document) {
	doc.Find("a[id*='media_comment_']").Each(func(_ int, a *goquery.Selection) {
		class, _ := a.Attr("class")
		if !strings.Contains(class, "instructure_inline_media_comment") {
			return
		}
		title := a.Text()
		href, _ := a.Attr("href")
		id, _ := a.Attr("id")

		rename(a.Get(0), "iframe")
		a.Empty()
		a.SetAttr("style", inlineMediaStyle)
		a.SetAttr("title", title)
		if m := mediaClassRe.FindStringSubmatch(class); m != nil {
			a.SetAttr("data-media-type", m[1])
		}
		a.SetAttr("src", href)
		removeAttr(a.Get(0), "href")
		a.SetAttr("allowfullscreen", "allowfullscreen")
		a.SetAttr("allow", "fullscreen")
		a.SetAttr("data-media-id", strings.Replace(id, "media_comment_", "", 1))
	})
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

func rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

func attached(n, root *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// unwrapSingleChild descends through attribute-less div, p and body
// wrappers that are the only child of their parent.
func unwrapSingleChild(root *html.Node) *html.Node {
	for {
		child := root.FirstChild
		if child == nil || child != root.LastChild || child.FirstChild == nil {
			return root
		}
		if child.Type != html.ElementNode || len(child.Attr) > 0 {
			return root
		}
		switch child.Data {
		case "div", "p", "body":
			root = child
		default:
			return root
		}
	}
}

// parseFragment parses s in a body context and returns a document node
// holding the resulting nodes.
func parseFragment(s string) (*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil, linkmigrator.Errorf(linkmigrator.EINVALID, "failed to parse HTML: %v", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
