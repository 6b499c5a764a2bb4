package utils

import (
	"context"
	"path/filepath"
	"strings"
)

type configurationFilePathKey struct{}

// CommandContextAccessor stores and retrieves per-invocation values on a command context.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file that was loaded for this invocation.
func (CommandContextAccessor) WithConfigurationFilePath(parent context.Context, configurationFilePath string) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithValue(parent, configurationFilePathKey{}, configurationFilePath)
}

// ConfigurationFilePath reports the recorded configuration file, if a non-blank one exists.
func (CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	recorded, _ := executionContext.Value(configurationFilePathKey{}).(string)
	if len(strings.TrimSpace(recorded)) == 0 {
		return "", false
	}
	return recorded, true
}

// ConfigurationDirectory returns the directory holding the loaded configuration file, or "" when none was loaded.
// Relative paths found in the configuration file are resolved against it.
func (accessor CommandContextAccessor) ConfigurationDirectory(executionContext context.Context) string {
	if recorded, found := accessor.ConfigurationFilePath(executionContext); found {
		return filepath.Dir(recorded)
	}
	return ""
}
