package svn

import "strings"

// RepositoryConfiguration describes the repository locations and credentials shared by all commands.
type RepositoryConfiguration struct {
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	DestinationURL string `mapstructure:"destination"`
	BranchesURL    string `mapstructure:"branches"`
}

// Sanitize trims configuration values. Passwords are kept verbatim.
func (configuration RepositoryConfiguration) Sanitize() RepositoryConfiguration {
	sanitized := configuration
	sanitized.Username = strings.TrimSpace(configuration.Username)
	sanitized.DestinationURL = strings.TrimSpace(configuration.DestinationURL)
	sanitized.BranchesURL = strings.TrimSpace(configuration.BranchesURL)
	return sanitized
}

// Credentials returns the credentials passed to every svn invocation.
func (configuration RepositoryConfiguration) Credentials() Credentials {
	return Credentials{Username: strings.TrimSpace(configuration.Username), Password: configuration.Password}
}
