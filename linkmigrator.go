// Package linkmigrator rewrites course-object references inside imported
// HTML content. Rewriting happens in two phases: a scan that replaces every
// reference it cannot resolve yet with a content-addressed placeholder, and
// a resolution pass, run once destination identifiers exist, that computes
// the final value of every placeholder.
//
// This package contains domain types, interfaces and the reference
// classifier following Ben Johnson's Standard Package Layout.
// Implementations live in subdirectories named after their primary
// dependency (e.g., goquery/, sqlite/, slog/).
package linkmigrator
