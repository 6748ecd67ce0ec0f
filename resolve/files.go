package resolve

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/fwojciec/linkmigrator"
)

// emptyMigrationID is the migration id some exports give to a file whose
// identifier was an empty string.
const emptyMigrationID = "gd41d8cd98f00b204e9800998ecf8427e"

var (
	canvasQueryParamRe  = regexp.MustCompile(`canvas_qs_(.*)`)
	canvasActionParamRe = regexp.MustCompile(`canvas_(.*)`)
)

func (r *Resolver) resolveFile(ref *linkmigrator.Reference) {
	if newURL, ok := r.resolveRelativeFileURL(ref.RelPath); ok {
		ref.NewValue = newURL
		return
	}
	// Personal files are not part of the course file tree.
	if strings.HasPrefix(ref.RelPath, "/users/") {
		ref.NewValue = ref.RelPath
		return
	}
	ref.MissingURL = r.missingRelativeFileURL(ref.RelPath)
}

// resolveRelativeFileURL tries the text after the last "?" as a query
// string first, then as part of the file name.
func (r *Resolver) resolveRelativeFileURL(relPath string) (string, bool) {
	path, qs := strings.TrimRight(relPath, "?"), ""
	if i := strings.LastIndex(path, "?"); i >= 0 {
		path, qs = path[:i], path[i+1:]
	}

	if newURL, ok := r.resolveRelativeFileURLWithQuery(path, qs); ok {
		return newURL, true
	}
	if qs != "" {
		return r.resolveRelativeFileURLWithQuery(relPath, "")
	}
	return "", false
}

// resolveRelativeFileURLWithQuery looks up progressively shorter suffixes
// of relPath, e.g. a/b/c.txt, then b/c.txt, then c.txt.
func (r *Resolver) resolveRelativeFileURLWithQuery(relPath, qs string) (string, bool) {
	parts := pathComponents(relPath)
	for ; len(parts) > 0; parts = parts[1:] {
		file, ok := r.findFile(strings.Join(parts, "/"))
		if !ok {
			continue
		}

		newURL := r.service.ContextPath() + "/files/" + file.ID

		var query []string
		if file.UUID != "" {
			query = append(query, "verifier="+file.UUID)
		}
		action := ""
		for _, p := range parseQuery(qs) {
			if m := canvasQueryParamRe.FindStringSubmatch(p.key); m != nil {
				query = append(query, url.QueryEscape(m[1])+"="+url.QueryEscape(p.value))
			} else if m := canvasActionParamRe.FindStringSubmatch(p.key); m != nil && m[1] != "" {
				action += "/" + m[1]
			}
		}
		if action == "" {
			action = "/preview"
		}
		newURL += action
		if len(query) > 0 {
			newURL += "?" + strings.Join(query, "&")
		}
		return newURL, true
	}
	return "", false
}

// findFile matches relPath against the attachment path index, exactly and
// then case-insensitively, also trying "+" as a space.
func (r *Resolver) findFile(relPath string) (*linkmigrator.Destination, bool) {
	alt := strings.ReplaceAll(relPath, "+", " ")

	var migrationID string
	if index := r.service.AttachmentPathIndex(); index != nil {
		migrationID = index[relPath]
		if migrationID == "" {
			migrationID = index[alt]
		}
	}
	if migrationID == "" {
		lower := r.lowerPathIndex()
		migrationID = lower[strings.ToLower(relPath)]
		if migrationID == "" {
			migrationID = lower[strings.ToLower(alt)]
		}
	}

	if migrationID == "" || migrationID == emptyMigrationID {
		return nil, false
	}
	return r.service.AttachmentByMigrationID(migrationID)
}

// lowerPathIndex builds the case-insensitive index once. Paths that differ
// only in case resolve to the lexically greatest original path.
func (r *Resolver) lowerPathIndex() map[string]string {
	r.lowerOnce.Do(func() {
		index := r.service.AttachmentPathIndex()
		paths := make([]string, 0, len(index))
		for p := range index {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		r.lowerIndex = make(map[string]string, len(index))
		for _, p := range paths {
			r.lowerIndex[strings.ToLower(p)] = index[p]
		}
	})
	return r.lowerIndex
}

// missingRelativeFileURL guesses where a file would live in the destination
// files area.
func (r *Resolver) missingRelativeFileURL(relPath string) string {
	base := escapePath(r.service.ContextPath() + "/file_contents/" + r.service.RootFolderName())
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(strings.ReplaceAll(relPath, " ", "%20"), "/")
}

// escapePath percent-encodes every byte of p outside the RFC 2396
// unreserved and reserved sets. Slashes and query delimiters are kept.
func escapePath(p string) string {
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		c := p[i]
		if keepUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func keepUnescaped(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'();/?:@&=+$,[]", c) >= 0
}

// pathComponents returns the non-empty components of p.
func pathComponents(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

type queryParam struct {
	key   string
	value string
}

// parseQuery decodes qs keeping the order of first appearance. A repeated
// key keeps its first position and its last value.
func parseQuery(qs string) []queryParam {
	var params []queryParam
	seen := make(map[string]int)
	for _, pair := range strings.Split(qs, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		k, v = queryUnescape(k), queryUnescape(v)
		if i, ok := seen[k]; ok {
			params[i].value = v
			continue
		}
		seen[k] = len(params)
		params = append(params, queryParam{key: k, value: v})
	}
	return params
}

func queryUnescape(s string) string {
	u, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return u
}
