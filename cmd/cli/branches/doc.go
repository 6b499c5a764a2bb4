// Package branches provides the merged, unmerged and drift commands, which
// report how the branches of a repository relate to the svn:mergeinfo of a
// destination line.
package branches
