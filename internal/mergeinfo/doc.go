// Package mergeinfo parses Subversion svn:mergeinfo property values.
//
// ParseRevisionRange reads a single range token, Parse reads a whole property
// value into one MergeRecord per source branch. Parsing is strict: a malformed
// line is reported as an error instead of being skipped.
package mergeinfo
