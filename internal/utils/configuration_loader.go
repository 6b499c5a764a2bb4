package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	sliceValueSeparatorConstant                     = ","
)

// environmentKeyReplacer maps nested keys such as tools.export.since_days to SVNTOOLS_TOOLS_EXPORT_SINCE_DAYS.
var environmentKeyReplacer = strings.NewReplacer(".", "_")

// embeddedDocument is a configuration document compiled into the binary.
type embeddedDocument struct {
	content []byte
	format  string
}

// ConfigurationLoader resolves settings in increasing precedence: registered defaults, the embedded
// document, the configuration file and finally prefixed environment variables.
type ConfigurationLoader struct {
	fileName          string
	fileFormat        string
	environmentPrefix string
	searchDirectories []string
	embedded          embeddedDocument
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader that looks for fileName.fileFormat in searchDirectories.
func NewConfigurationLoader(fileName string, fileFormat string, environmentPrefix string, searchDirectories []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		fileName:          fileName,
		fileFormat:        fileFormat,
		environmentPrefix: environmentPrefix,
		searchDirectories: append([]string(nil), searchDirectories...),
	}
}

// SetEmbeddedConfiguration replaces the embedded document. An empty format falls back to the file format.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(content []byte, format string) {
	if loader == nil {
		return
	}
	loader.embedded = embeddedDocument{format: strings.TrimSpace(format)}
	if len(content) > 0 {
		loader.embedded.content = append([]byte(nil), content...)
	}
}

// LoadConfiguration decodes the layered settings into target. An explicit configurationFilePath must
// exist; otherwise the search directories are probed and a missing file is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	settings := viper.New()
	for key, value := range defaultValues {
		settings.SetDefault(key, value)
	}

	if mergeError := loader.mergeEmbedded(settings); mergeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
	}

	if readError := loader.mergeFile(settings, configurationFilePath); readError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
	}

	settings.SetEnvPrefix(loader.environmentPrefix)
	settings.SetEnvKeyReplacer(environmentKeyReplacer)
	settings.AutomaticEnv()

	if decodeError := settings.Unmarshal(target, viper.DecodeHook(configurationDecodeHook())); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: settings.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) mergeEmbedded(settings *viper.Viper) error {
	if len(loader.embedded.content) == 0 {
		return nil
	}
	format := loader.embedded.format
	if len(format) == 0 {
		format = loader.fileFormat
	}
	settings.SetConfigType(format)
	return settings.MergeConfig(bytes.NewReader(loader.embedded.content))
}

func (loader *ConfigurationLoader) mergeFile(settings *viper.Viper, configurationFilePath string) error {
	settings.SetConfigType(loader.fileFormat)
	if len(configurationFilePath) > 0 {
		settings.SetConfigFile(configurationFilePath)
	} else {
		settings.SetConfigName(loader.fileName)
		for _, directory := range loader.searchDirectories {
			settings.AddConfigPath(directory)
		}
	}

	mergeError := settings.MergeInConfig()
	var notFoundError viper.ConfigFileNotFoundError
	if mergeError != nil && !errors.As(mergeError, &notFoundError) {
		return mergeError
	}
	return nil
}

// configurationDecodeHook converts duration strings such as "10m" or "168h" and comma separated lists.
func configurationDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(sliceValueSeparatorConstant),
	)
}
