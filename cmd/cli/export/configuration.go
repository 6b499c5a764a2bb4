package export

import "github.com/temirov/svntools/internal/svn"

const (
	exportConfigurationKeyConstant    = "export"
	configurationSinceDaysKeyConstant = "since_days"
	configurationKeySeparatorConstant = "."
	defaultSinceDaysConstant          = 61
)

// Configuration describes export defaults.
type Configuration struct {
	SinceDays int `mapstructure:"since_days"`
}

// CommandConfiguration captures everything export reads from configuration.
type CommandConfiguration struct {
	Repository svn.RepositoryConfiguration
	Export     Configuration
}

// DefaultCommandConfiguration provides baseline values for export.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Export: Configuration{SinceDays: defaultSinceDaysConstant}}
}

// DefaultConfigurationValues produces Viper defaults for the export section under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + exportConfigurationKeyConstant + configurationKeySeparatorConstant + configurationSinceDaysKeyConstant: defaultSinceDaysConstant,
	}
}

// Sanitize trims repository values and restores the default look-back for non-positive values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = configuration.Repository.Sanitize()
	if sanitized.Export.SinceDays <= 0 {
		sanitized.Export.SinceDays = defaultSinceDaysConstant
	}
	return sanitized
}
