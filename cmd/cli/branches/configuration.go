package branches

import (
	"strings"

	"github.com/temirov/svntools/internal/report"
	"github.com/temirov/svntools/internal/svn"
)

const (
	reportConfigurationKeyConstant           = "report"
	driftConfigurationKeyConstant            = "drift"
	configurationFormatKeyConstant           = "format"
	configurationBaselineRevisionKeyConstant = "baseline_revision"
	configurationKeySeparatorConstant        = "."

	defaultBaselineRevisionConstant int64 = 0
)

// ReportConfiguration describes how branch reports are written.
type ReportConfiguration struct {
	Format string `mapstructure:"format"`
}

// DriftConfiguration describes configuration values for the drift command.
type DriftConfiguration struct {
	BaselineRevision int64 `mapstructure:"baseline_revision"`
}

// CommandConfiguration captures everything the branch commands read from configuration.
type CommandConfiguration struct {
	Repository svn.RepositoryConfiguration
	Report     ReportConfiguration
	Drift      DriftConfiguration
}

// DefaultCommandConfiguration provides baseline configuration values for the branch commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Report: ReportConfiguration{Format: string(report.FormatText)},
		Drift:  DriftConfiguration{BaselineRevision: defaultBaselineRevisionConstant},
	}
}

// DefaultConfigurationValues produces Viper defaults for the report and drift sections under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + reportConfigurationKeyConstant + configurationKeySeparatorConstant + configurationFormatKeyConstant:          defaults.Report.Format,
		rootKey + configurationKeySeparatorConstant + driftConfigurationKeyConstant + configurationKeySeparatorConstant + configurationBaselineRevisionKeyConstant: defaults.Drift.BaselineRevision,
	}
}

// Sanitize trims configuration values and restores the default report format when none is set.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = configuration.Repository.Sanitize()
	sanitized.Report.Format = strings.ToLower(strings.TrimSpace(configuration.Report.Format))
	if len(sanitized.Report.Format) == 0 {
		sanitized.Report.Format = string(report.FormatText)
	}
	return sanitized
}
