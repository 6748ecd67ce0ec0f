// Package resourcemap implements identifier lookups over the JSON resource
// map produced by a content import.
package resourcemap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fwojciec/linkmigrator"
)

// Compile-time interface verification.
var _ linkmigrator.MigrationQueryService = (*Service)(nil)

// ID is an identifier that may be encoded as a JSON string or number.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid id %s", data)
		}
		*id = ID(n.String())
	}
	return nil
}

// Record is one side of a resource mapping entry.
type Record struct {
	ID           ID     `json:"id"`
	UUID         string `json:"uuid"`
	URL          string `json:"url"`
	MediaEntryID string `json:"media_entry_id"`
}

// Resource pairs the source and destination records of one object.
type Resource struct {
	Source      *Record `json:"source"`
	Destination *Record `json:"destination"`
}

// MigrationData is the resource map document.
type MigrationData struct {
	DestinationCourse      ID                              `json:"destination_course"`
	DestinationHosts       []string                        `json:"destination_hosts"`
	DestinationRootFolder  string                          `json:"destination_root_folder"`
	AttachmentPathIDLookup map[string]string               `json:"attachment_path_id_lookup"`
	ResourceMapping        map[string]map[string]*Resource `json:"resource_mapping"`
}

// Load decodes a resource map document.
func Load(r io.Reader) (*MigrationData, error) {
	var data MigrationData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, linkmigrator.Errorf(linkmigrator.EINVALID, "invalid resource map: %v", err)
	}
	return &data, nil
}

// LoadFile decodes the resource map document at path.
func LoadFile(path string) (*MigrationData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open resource map: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Service answers identifier lookups from MigrationData. The exported
// fields override the defaults a plain resource map implies and must be set
// before first use.
type Service struct {
	data *MigrationData

	// EmbeddedImages enables data URI handling in src attributes.
	EmbeddedImages bool

	// KeepRelativeURLs disables the rewriting of relative file links.
	KeepRelativeURLs bool

	// Hosts replaces the destination hosts of the resource map when set.
	Hosts []string

	// Substitutions maps absolute URL prefixes to replacements. The longest
	// matching prefix wins.
	Substitutions map[string]string

	// OnLinkParseWarning is called with the type of unknown object
	// references.
	OnLinkParseWarning func(typ string)

	mediaOnce sync.Once
	mediaMap  map[string]*Record
}

// NewService returns a Service backed by data.
func NewService(data *MigrationData) *Service {
	if data == nil {
		data = &MigrationData{}
	}
	return &Service{data: data}
}

func (s *Service) destination(typ, migrationID string) *Record {
	res := s.data.ResourceMapping[typ][migrationID]
	if res == nil {
		return nil
	}
	return res.Destination
}

func (s *Service) destinationID(typ, migrationID string) (string, bool) {
	rec := s.destination(typ, migrationID)
	if rec == nil || rec.ID == "" {
		return "", false
	}
	return string(rec.ID), true
}

// ContextPath returns the destination course path.
func (s *Service) ContextPath() string {
	return "/courses/" + string(s.data.DestinationCourse)
}

// ContextHosts returns the hosts folded into relative links.
func (s *Service) ContextHosts() []string {
	if s.Hosts != nil {
		return s.Hosts
	}
	return s.data.DestinationHosts
}

// AttachmentPathIndex returns the exported path to migration id index.
func (s *Service) AttachmentPathIndex() map[string]string {
	return s.data.AttachmentPathIDLookup
}

// RootFolderName returns the destination files root folder name.
func (s *Service) RootFolderName() string {
	return s.data.DestinationRootFolder
}

// SupportsEmbeddedImages reports whether data URIs are extracted.
func (s *Service) SupportsEmbeddedImages() bool {
	return s.EmbeddedImages
}

// FixRelativeURLs reports whether relative links are rewritten.
func (s *Service) FixRelativeURLs() bool {
	return !s.KeepRelativeURLs
}

// ProcessDomainSubstitutions applies the longest matching substitution.
func (s *Service) ProcessDomainSubstitutions(url string) string {
	best := ""
	for prefix := range s.Substitutions {
		if strings.HasPrefix(url, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return url
	}
	return s.Substitutions[best] + strings.TrimPrefix(url, best)
}

// ReportLinkParseWarning forwards to OnLinkParseWarning.
func (s *Service) ReportLinkParseWarning(typ string) {
	if s.OnLinkParseWarning != nil {
		s.OnLinkParseWarning(typ)
	}
}

// WikiPageSlug looks up wiki_pages first, then pages.
func (s *Service) WikiPageSlug(migrationID string) (string, bool) {
	for _, typ := range []string{"wiki_pages", "pages"} {
		if rec := s.destination(typ, migrationID); rec != nil && rec.URL != "" {
			return rec.URL, true
		}
	}
	return "", false
}

func (s *Service) DiscussionTopicID(migrationID string) (string, bool) {
	return s.destinationID("discussion_topics", migrationID)
}

func (s *Service) AnnouncementID(migrationID string) (string, bool) {
	return s.destinationID("announcements", migrationID)
}

func (s *Service) ModuleItemID(migrationID string) (string, bool) {
	return s.destinationID("module_items", migrationID)
}

// AttachmentID returns a file id with its verifier.
func (s *Service) AttachmentID(migrationID string) (string, string, bool) {
	rec := s.destination("files", migrationID)
	if rec == nil || rec.ID == "" {
		return "", "", false
	}
	return string(rec.ID), rec.UUID, true
}

// AttachmentIDByMediaID finds a file by its source media entry id.
func (s *Service) AttachmentIDByMediaID(mediaID string) (string, string, bool) {
	if mediaID == "" {
		return "", "", false
	}
	rec := s.media()[mediaID]
	if rec == nil || rec.ID == "" {
		return "", "", false
	}
	return string(rec.ID), rec.UUID, true
}

// media indexes file destinations by source media entry id. When several
// files share a media id the one with the greatest migration id wins.
func (s *Service) media() map[string]*Record {
	s.mediaOnce.Do(func() {
		files := s.data.ResourceMapping["files"]
		ids := make([]string, 0, len(files))
		for id := range files {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		s.mediaMap = make(map[string]*Record)
		for _, id := range ids {
			res := files[id]
			if res == nil || res.Source == nil || res.Source.MediaEntryID == "" {
				continue
			}
			s.mediaMap[res.Source.MediaEntryID] = res.Destination
		}
	})
	return s.mediaMap
}

// ObjectID looks up any known object type.
func (s *Service) ObjectID(typ, migrationID string) (string, bool) {
	if typ == "context_modules" {
		typ = "modules"
	}
	if !linkmigrator.IsKnownType(typ) {
		return "", false
	}
	return s.destinationID(typ, migrationID)
}

// AttachmentByMigrationID returns the destination record of a file.
func (s *Service) AttachmentByMigrationID(migrationID string) (*linkmigrator.Destination, bool) {
	rec := s.destination("files", migrationID)
	if rec == nil {
		return nil, false
	}
	return &linkmigrator.Destination{
		ID:           string(rec.ID),
		UUID:         rec.UUID,
		URL:          rec.URL,
		MediaEntryID: rec.MediaEntryID,
	}, true
}
