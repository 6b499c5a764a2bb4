// Package ui renders svn command events as single console lines for the
// human-readable log format.
package ui
