package mock

import (
	"github.com/fwojciec/linkmigrator"
)

var _ linkmigrator.MigrationQueryService = (*MigrationQueryService)(nil)

// MigrationQueryService is a mock implementation of linkmigrator.MigrationQueryService.
type MigrationQueryService struct {
	WikiPageSlugFn            func(migrationID string) (string, bool)
	DiscussionTopicIDFn       func(migrationID string) (string, bool)
	AnnouncementIDFn          func(migrationID string) (string, bool)
	ModuleItemIDFn            func(migrationID string) (string, bool)
	AttachmentIDFn            func(migrationID string) (string, string, bool)
	AttachmentIDByMediaIDFn   func(mediaID string) (string, string, bool)
	ObjectIDFn                func(typ, migrationID string) (string, bool)
	AttachmentByMigrationIDFn func(migrationID string) (*linkmigrator.Destination, bool)

	ContextPathFn                func() string
	ContextHostsFn               func() []string
	AttachmentPathIndexFn        func() map[string]string
	RootFolderNameFn             func() string
	SupportsEmbeddedImagesFn     func() bool
	FixRelativeURLsFn            func() bool
	ProcessDomainSubstitutionsFn func(url string) string
	ReportLinkParseWarningFn     func(typ string)
}

func (s *MigrationQueryService) WikiPageSlug(migrationID string) (string, bool) {
	return s.WikiPageSlugFn(migrationID)
}

func (s *MigrationQueryService) DiscussionTopicID(migrationID string) (string, bool) {
	return s.DiscussionTopicIDFn(migrationID)
}

func (s *MigrationQueryService) AnnouncementID(migrationID string) (string, bool) {
	return s.AnnouncementIDFn(migrationID)
}

func (s *MigrationQueryService) ModuleItemID(migrationID string) (string, bool) {
	return s.ModuleItemIDFn(migrationID)
}

func (s *MigrationQueryService) AttachmentID(migrationID string) (string, string, bool) {
	return s.AttachmentIDFn(migrationID)
}

func (s *MigrationQueryService) AttachmentIDByMediaID(mediaID string) (string, string, bool) {
	return s.AttachmentIDByMediaIDFn(mediaID)
}

func (s *MigrationQueryService) ObjectID(typ, migrationID string) (string, bool) {
	return s.ObjectIDFn(typ, migrationID)
}

func (s *MigrationQueryService) AttachmentByMigrationID(migrationID string) (*linkmigrator.Destination, bool) {
	return s.AttachmentByMigrationIDFn(migrationID)
}

func (s *MigrationQueryService) ContextPath() string {
	return s.ContextPathFn()
}

func (s *MigrationQueryService) ContextHosts() []string {
	return s.ContextHostsFn()
}

func (s *MigrationQueryService) AttachmentPathIndex() map[string]string {
	return s.AttachmentPathIndexFn()
}

func (s *MigrationQueryService) RootFolderName() string {
	return s.RootFolderNameFn()
}

func (s *MigrationQueryService) SupportsEmbeddedImages() bool {
	return s.SupportsEmbeddedImagesFn()
}

func (s *MigrationQueryService) FixRelativeURLs() bool {
	return s.FixRelativeURLsFn()
}

func (s *MigrationQueryService) ProcessDomainSubstitutions(url string) string {
	return s.ProcessDomainSubstitutionsFn(url)
}

func (s *MigrationQueryService) ReportLinkParseWarning(typ string) {
	s.ReportLinkParseWarningFn(typ)
}
