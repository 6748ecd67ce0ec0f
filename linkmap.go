package linkmigrator

import (
	"encoding/json"
	"html"
	"strings"
)

// LinkKey identifies the object that owns the HTML a reference was found in.
type LinkKey struct {
	Type        string `json:"type"`
	MigrationID string `json:"migration_id"`
}

// LinkMap is the table of unresolved references built while scanning and
// completed during resolution. References are grouped by owning object and
// field, and every level keeps insertion order.
//
// A LinkMap belongs to a single migration run. It is not safe for
// concurrent Add calls.
type LinkMap struct {
	keys    []LinkKey
	entries map[LinkKey]*linkEntry
}

type linkEntry struct {
	fields []string
	links  map[string][]*Reference
}

// NewLinkMap returns an empty LinkMap.
func NewLinkMap() *LinkMap {
	return &LinkMap{entries: make(map[LinkKey]*linkEntry)}
}

// Add records ref under the owning object key and field.
func (m *LinkMap) Add(key LinkKey, field string, ref *Reference) {
	if m.entries == nil {
		m.entries = make(map[LinkKey]*linkEntry)
	}
	e, ok := m.entries[key]
	if !ok {
		e = &linkEntry{links: make(map[string][]*Reference)}
		m.entries[key] = e
		m.keys = append(m.keys, key)
	}
	if _, ok := e.links[field]; !ok {
		e.fields = append(e.fields, field)
	}
	e.links[field] = append(e.links[field], ref)
}

// Lookup returns the references recorded for key and field.
func (m *LinkMap) Lookup(key LinkKey, field string) []*Reference {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	return e.links[field]
}

// Each calls fn for every key and field in insertion order.
func (m *LinkMap) Each(fn func(key LinkKey, field string, refs []*Reference)) {
	for _, key := range m.keys {
		e := m.entries[key]
		for _, field := range e.fields {
			fn(key, field, e.links[field])
		}
	}
}

// References returns every recorded reference in insertion order.
func (m *LinkMap) References() []*Reference {
	var refs []*Reference
	m.Each(func(_ LinkKey, _ string, links []*Reference) {
		refs = append(refs, links...)
	})
	return refs
}

// Len returns the number of recorded references.
func (m *LinkMap) Len() int {
	n := 0
	m.Each(func(_ LinkKey, _ string, links []*Reference) {
		n += len(links)
	})
	return n
}

// Replace substitutes every placeholder found in doc with the value of its
// reference. Substitution happens in a single pass, so a value that happens
// to contain another token is never rewritten again. Values are HTML-escaped
// unless they are element markup.
func (m *LinkMap) Replace(doc string) string {
	var pairs []string
	seen := make(map[string]bool)
	for _, ref := range m.References() {
		if ref.Placeholder == "" || seen[ref.Placeholder] {
			continue
		}
		seen[ref.Placeholder] = true
		pairs = append(pairs, ref.Placeholder, replacement(ref))
	}
	if len(pairs) == 0 {
		return doc
	}
	return strings.NewReplacer(pairs...).Replace(doc)
}

// replacement returns the escaped value of ref. A media object found on an
// element stands for the whole element, so its value is already markup.
func replacement(ref *Reference) string {
	if ref.Kind == KindMediaObject && strings.HasPrefix(ref.OldValue, "<") {
		return ref.Value()
	}
	return html.EscapeString(ref.Value())
}

// MissingLinks groups the references of one field that could not be
// resolved.
type MissingLinks struct {
	Key   LinkKey      `json:"key"`
	Field string       `json:"field"`
	Links []*Reference `json:"missing_links"`
}

// MissingLinks returns every field holding at least one unresolved
// reference, in insertion order.
func (m *LinkMap) MissingLinks() []MissingLinks {
	var out []MissingLinks
	m.Each(func(key LinkKey, field string, refs []*Reference) {
		var missing []*Reference
		for _, ref := range refs {
			if ref.Unresolved() {
				missing = append(missing, ref)
			}
		}
		if len(missing) > 0 {
			out = append(out, MissingLinks{Key: key, Field: field, Links: missing})
		}
	})
	return out
}

// linkMapEntry is the serialized form of one key and field.
type linkMapEntry struct {
	LinkKey
	Field string       `json:"field"`
	Links []*Reference `json:"links"`
}

// MarshalJSON encodes the map as an ordered list of entries.
func (m *LinkMap) MarshalJSON() ([]byte, error) {
	entries := []linkMapEntry{}
	m.Each(func(key LinkKey, field string, refs []*Reference) {
		entries = append(entries, linkMapEntry{LinkKey: key, Field: field, Links: refs})
	})
	return json.Marshal(entries)
}

// UnmarshalJSON decodes the ordered list produced by MarshalJSON.
func (m *LinkMap) UnmarshalJSON(data []byte) error {
	var entries []linkMapEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*m = LinkMap{entries: make(map[LinkKey]*linkEntry)}
	for _, e := range entries {
		for _, ref := range e.Links {
			m.Add(e.LinkKey, e.Field, ref)
		}
	}
	return nil
}
