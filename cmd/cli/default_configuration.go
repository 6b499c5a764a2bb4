package cli

import (
	_ "embed"

	"github.com/temirov/svntools/cmd/cli/branches"
	buildcmd "github.com/temirov/svntools/cmd/cli/build"
	exportcmd "github.com/temirov/svntools/cmd/cli/export"
	"github.com/temirov/svntools/internal/utils"
)

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns the embedded default configuration data and its type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfigurationContent...), configurationTypeConstant
}

// defaultConfigurationValues gathers the Viper defaults registered by every command family.
func defaultConfigurationValues() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for _, familyDefaults := range []map[string]any{
		branches.DefaultConfigurationValues(toolsConfigurationKeyConstant),
		buildcmd.DefaultConfigurationValues(toolsConfigurationKeyConstant),
		exportcmd.DefaultConfigurationValues(toolsConfigurationKeyConstant),
	} {
		for configurationKey, configurationValue := range familyDefaults {
			defaultValues[configurationKey] = configurationValue
		}
	}
	return defaultValues
}
