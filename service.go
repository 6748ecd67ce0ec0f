package linkmigrator

import "context"

// Destination is the record an object received in the destination context.
type Destination struct {
	ID           string `json:"id"`
	UUID         string `json:"uuid,omitempty"`
	URL          string `json:"url,omitempty"`
	MediaEntryID string `json:"media_entry_id,omitempty"`
}

// IDLookup converts migration ids into destination identifiers.
// Every method reports ok == false when the object is unknown.
type IDLookup interface {
	// WikiPageSlug returns the URL slug of a wiki page.
	WikiPageSlug(migrationID string) (slug string, ok bool)

	DiscussionTopicID(migrationID string) (id string, ok bool)

	AnnouncementID(migrationID string) (id string, ok bool)

	// ModuleItemID returns the id of a module item (context module tag).
	ModuleItemID(migrationID string) (id string, ok bool)

	// AttachmentID returns a file id and its access token, if any.
	AttachmentID(migrationID string) (id, uuid string, ok bool)

	// AttachmentIDByMediaID finds a file by the media entry id it had in
	// the source context.
	AttachmentIDByMediaID(mediaID string) (id, uuid string, ok bool)

	// ObjectID returns the id of any known object type. The historical
	// context_modules type is looked up as modules.
	ObjectID(typ, migrationID string) (id string, ok bool)

	// AttachmentByMigrationID returns the full destination record of a file.
	AttachmentByMigrationID(migrationID string) (*Destination, bool)
}

// ResourceMap exposes the destination context and the hooks the parser and
// resolver consult.
type ResourceMap interface {
	// ContextPath returns the base path of the destination, e.g. "/courses/2".
	ContextPath() string

	// ContextHosts returns hosts whose absolute links are made relative.
	// Entries may carry a port.
	ContextHosts() []string

	// AttachmentPathIndex maps exported relative file paths to migration ids.
	AttachmentPathIndex() map[string]string

	// RootFolderName is the display name of the destination files root.
	RootFolderName() string

	SupportsEmbeddedImages() bool
	FixRelativeURLs() bool

	// ProcessDomainSubstitutions rewrites an absolute URL before host folding.
	ProcessDomainSubstitutions(url string) string

	// ReportLinkParseWarning is called for object references whose type is
	// not one of KnownTypes.
	ReportLinkParseWarning(typ string)
}

// MigrationQueryService is everything a migration run knows about its
// destination.
type MigrationQueryService interface {
	IDLookup
	ResourceMap
}

// EmbeddedImage is a decoded data URI.
type EmbeddedImage struct {
	MimeType string
	Data     []byte
}

// EmbeddedImageLinker turns embedded images into links.
type EmbeddedImageLinker interface {
	// LinkEmbeddedImage returns either a final URL (resolved == true) or a
	// relative path to be resolved like any other file reference.
	LinkEmbeddedImage(img *EmbeddedImage) (url string, resolved bool, err error)
}

// ConvertOptions configures LinkParser.Convert.
type ConvertOptions struct {
	// RemoveOuterNodesIfOneChild collapses attribute-less div, p and body
	// wrappers that hold the whole fragment.
	RemoveOuterNodesIfOneChild bool
}

// LinkParser performs the scanning phase.
type LinkParser interface {
	// Convert rewrites html, replacing references that cannot be resolved
	// yet with placeholders recorded in links under key and field.
	// A fragment that cannot be parsed yields an empty string.
	Convert(links *LinkMap, html string, key LinkKey, field string, opts ConvertOptions) string
}

// LinkResolver performs the resolution phase.
type LinkResolver interface {
	// ResolveLink sets NewValue or MissingURL on ref.
	// Returns EINTERNAL if ref has a kind no rule covers.
	ResolveLink(ref *Reference) error

	// ResolveLinks resolves every reference in links.
	ResolveLinks(ctx context.Context, links *LinkMap) error
}
