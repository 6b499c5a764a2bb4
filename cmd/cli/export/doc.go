// Package export provides the export command, which copies the files changed
// in a revision range out of a repository together with a VersionInfo.xml
// describing the range.
package export
