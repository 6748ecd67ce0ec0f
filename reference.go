package linkmigrator

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Kind identifies how a reference is resolved.
type Kind string

// Reference kinds produced by the classifier.
const (
	KindWikiPage        Kind = "wiki_page"
	KindDiscussionTopic Kind = "discussion_topic"
	KindModuleItem      Kind = "module_item"
	KindObject          Kind = "object"
	KindFile            Kind = "file"
	KindFileRef         Kind = "file_ref"
	KindMediaObject     Kind = "media_object"

	// KindResolved marks a reference that needs no deferred resolution.
	KindResolved Kind = "resolved"

	// KindImage is only used as a classification hint: it forces
	// data URI handling for a bare URL.
	KindImage Kind = "image"
)

// PlaceholderPrefix starts every placeholder token.
const PlaceholderPrefix = "LINK.PLACEHOLDER"

// Reference describes one link found while scanning a document.
//
// The classifier fills the kind-specific fields; the parser records
// OldValue and Placeholder; the resolver fills NewValue or MissingURL.
type Reference struct {
	Kind        Kind   `json:"link_type"`
	Type        string `json:"type,omitempty"`
	MigrationID string `json:"migration_id,omitempty"`

	// Query is the residual query (or path remainder for file_ref) that is
	// reattached after substitution. It keeps its leading "?" or "/".
	Query string `json:"query,omitempty"`

	// RelPath is used for path-based file lookups.
	RelPath string `json:"rel_path,omitempty"`

	TargetBlank   bool   `json:"target_blank,omitempty"`
	InMediaIframe bool   `json:"in_media_iframe,omitempty"`
	MediaType     string `json:"media_type,omitempty"`

	OldValue    string `json:"old_value,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`

	NewValue   string `json:"new_value,omitempty"`
	MissingURL string `json:"missing_url,omitempty"`
}

// Resolved reports whether the reference needs no deferred resolution.
func (r *Reference) Resolved() bool {
	return r.Kind == KindResolved
}

// Unresolved reports whether resolution produced only a best-effort
// fallback, or nothing at all.
func (r *Reference) Unresolved() bool {
	return r.MissingURL != "" || r.NewValue == ""
}

// Value returns the text that replaces the placeholder in the final
// document. References that could not be resolved fall back to their
// missing URL guess and then to the original value.
func (r *Reference) Value() string {
	switch {
	case r.NewValue != "":
		return r.NewValue
	case r.MissingURL != "":
		return r.MissingURL
	default:
		return r.OldValue
	}
}

// Placeholder returns the content-addressed token standing in for old.
// The same original value always yields the same token.
func Placeholder(old string) string {
	return fmt.Sprintf("%s_%016x", PlaceholderPrefix, xxhash.Sum64String(old))
}

// KnownTypes lists the object types accepted after an object or wiki
// reference marker.
var KnownTypes = map[string]struct{}{
	"announcements":             {},
	"appointment_participants":  {},
	"assignment_groups":         {},
	"assignments":               {},
	"attachments":               {},
	"calendar_events":           {},
	"context_external_tools":    {},
	"context_module_tags":       {},
	"context_modules":           {},
	"course_paces":              {},
	"created_learning_outcomes": {},
	"discussion_entries":        {},
	"discussion_topics":         {},
	"external_feeds":            {},
	"grading_standards":         {},
	"groups":                    {},
	"learning_outcome_groups":   {},
	"learning_outcome_links":    {},
	"learning_outcomes":         {},
	"linked_learning_outcomes":  {},
	"media_attachments_iframe":  {},
	"modules":                   {},
	"pages":                     {},
	"quizzes":                   {},
	"rubrics":                   {},
	"wiki":                      {},
	"wiki_pages":                {},
}

// IsKnownType reports whether typ is one of KnownTypes.
func IsKnownType(typ string) bool {
	_, ok := KnownTypes[typ]
	return ok
}
