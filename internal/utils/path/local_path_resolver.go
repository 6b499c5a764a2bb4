// Package pathutils resolves user supplied local paths such as report files, templates and export folders.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// LocalPathResolver expands home shortcuts and anchors relative paths to a base directory.
type LocalPathResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewLocalPathResolver constructs a LocalPathResolver using the operating system home lookup.
func NewLocalPathResolver() *LocalPathResolver {
	return NewLocalPathResolverWithProvider(os.UserHomeDir)
}

// NewLocalPathResolverWithProvider constructs a LocalPathResolver with a custom home provider.
func NewLocalPathResolverWithProvider(provider HomeDirectoryProvider) *LocalPathResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &LocalPathResolver{homeDirectoryProvider: provider}
}

// Resolve trims candidatePath, expands a leading "~" and joins relative results onto baseDirectory
// when one is given. Blank input resolves to "".
func (resolver *LocalPathResolver) Resolve(candidatePath string, baseDirectory string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return ""
	}

	expandedPath := resolver.expandHome(trimmedPath)
	if filepath.IsAbs(expandedPath) {
		return filepath.Clean(expandedPath)
	}

	trimmedBase := strings.TrimSpace(baseDirectory)
	if len(trimmedBase) == 0 {
		return filepath.Clean(expandedPath)
	}
	return filepath.Join(resolver.expandHome(trimmedBase), expandedPath)
}

func (resolver *LocalPathResolver) expandHome(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := resolver.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return resolvedHomeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

func (resolver *LocalPathResolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
