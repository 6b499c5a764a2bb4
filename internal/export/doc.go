// Package export copies the files changed in a revision range of a repository location into a
// local folder, together with a VersionInfo.xml describing the exported range.
package export
