// Package svn drives the Subversion command-line client to list branches, read merge info,
// inspect history and export files. Each Client owns a private configuration directory so that
// credentials supplied at construction never reach the user's authentication cache.
package svn
