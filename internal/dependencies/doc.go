// Package dependencies resolves the collaborators commands need at run time,
// substituting operating system defaults for anything a caller left unset.
package dependencies
