// Package mergestate classifies repository branches by comparing the branch catalog with the
// merge info recorded on a destination line, and detects merge drift between two merge-info
// snapshots of the same destination.
package mergestate
