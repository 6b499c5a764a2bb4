package build

import (
	"strings"

	"github.com/temirov/svntools/internal/cadence"
	"github.com/temirov/svntools/internal/svn"
)

const (
	buildConfigurationKeyConstant       = "build"
	configurationQueuePrefixKeyConstant = "queue_prefix"
	configurationQueueCountKeyConstant  = "queue_count"
	configurationCategoryKeyConstant    = "category_prefix"
	configurationTemplateKeyConstant    = "template"
	configurationOutputKeyConstant      = "output"
	configurationKeySeparatorConstant   = "."
	defaultQueuePrefixConstant          = "Magic"
	defaultCategoryPrefixConstant       = "Magic"
	defaultQueueCountConstant           = 2
)

// Configuration describes how build-server configuration is planned and rendered.
type Configuration struct {
	QueuePrefix    string         `mapstructure:"queue_prefix"`
	QueueCount     int            `mapstructure:"queue_count"`
	CategoryPrefix string         `mapstructure:"category_prefix"`
	Template       string         `mapstructure:"template"`
	Output         string         `mapstructure:"output"`
	Rules          []cadence.Rule `mapstructure:"rules"`
}

// CommandConfiguration captures everything build-config reads from configuration.
type CommandConfiguration struct {
	Repository svn.RepositoryConfiguration
	Build      Configuration
}

// DefaultCommandConfiguration provides baseline values for build-config.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Build: Configuration{
			QueuePrefix:    defaultQueuePrefixConstant,
			QueueCount:     defaultQueueCountConstant,
			CategoryPrefix: defaultCategoryPrefixConstant,
		},
	}
}

// DefaultConfigurationValues produces Viper defaults for the build section under rootKey. The cadence
// table has no default here; an empty table selects cadence.DefaultRules.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration().Build
	prefix := rootKey + configurationKeySeparatorConstant + buildConfigurationKeyConstant + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationQueuePrefixKeyConstant: defaults.QueuePrefix,
		prefix + configurationQueueCountKeyConstant:  defaults.QueueCount,
		prefix + configurationCategoryKeyConstant:    defaults.CategoryPrefix,
		prefix + configurationTemplateKeyConstant:    defaults.Template,
		prefix + configurationOutputKeyConstant:      defaults.Output,
	}
}

// Sanitize trims configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = configuration.Repository.Sanitize()
	sanitized.Build.QueuePrefix = strings.TrimSpace(configuration.Build.QueuePrefix)
	sanitized.Build.CategoryPrefix = strings.TrimSpace(configuration.Build.CategoryPrefix)
	sanitized.Build.Template = strings.TrimSpace(configuration.Build.Template)
	sanitized.Build.Output = strings.TrimSpace(configuration.Build.Output)
	return sanitized
}

// PlannerOptions converts the configuration into planner options.
func (configuration Configuration) PlannerOptions() cadence.PlannerOptions {
	return cadence.PlannerOptions{
		QueuePrefix:    configuration.QueuePrefix,
		QueueCount:     configuration.QueueCount,
		CategoryPrefix: configuration.CategoryPrefix,
	}
}
