package utils_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/svntools/internal/utils"
)

const (
	testLoggerFactoryCaseSupportedFormatConstant   = "supported_log_level_%s_format_%s"
	testLoggerFactoryCaseUnsupportedLevelConstant  = "unsupported_log_level"
	testLoggerFactoryCaseUnsupportedFormatConstant = "unsupported_log_format"
	testLoggerFactorySubtestTemplateConstant       = "%d_%s"
	testInvalidLogLevelConstant                    = "verbose"
	testInvalidLogFormatConstant                   = "xml"
	testLogMessageConstant                         = "logger_factory_test_message"
)

func TestLoggerFactoryCreateLoggerOutputs(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		requestedLogLevel     utils.LogLevel
		requestedLogFormat    utils.LogFormat
		expectError           bool
		expectStructuredLog   bool
		expectHumanReadable   bool
		expectDebugSuppressed bool
	}{
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelDebug, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelDebug,
			requestedLogFormat:  utils.LogFormatStructured,
			expectStructuredLog: true,
		},
		{
			name:                  fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatStructured),
			requestedLogLevel:     utils.LogLevelInfo,
			requestedLogFormat:    utils.LogFormatStructured,
			expectStructuredLog:   true,
			expectDebugSuppressed: true,
		},
		{
			name:                  fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatConsole),
			requestedLogLevel:     utils.LogLevelInfo,
			requestedLogFormat:    utils.LogFormatConsole,
			expectHumanReadable:   true,
			expectDebugSuppressed: true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, "DEBUG", "Console"),
			requestedLogLevel:   utils.LogLevel(" DEBUG "),
			requestedLogFormat:  utils.LogFormat("Console"),
			expectHumanReadable: true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedLevelConstant,
			requestedLogLevel:  utils.LogLevel(testInvalidLogLevelConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectError:        true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedFormatConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant),
			expectError:        true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerFactorySubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			var output bytes.Buffer
			loggerFactory := utils.NewLoggerFactoryWithOutput(&output)

			outputs, creationError := loggerFactory.CreateLoggerOutputs(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, outputs.DiagnosticLogger)
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, outputs.DiagnosticLogger)
			require.NotNil(testInstance, outputs.ConsoleLogger)
			require.Equal(testInstance, testCase.expectHumanReadable, outputs.HumanReadable)

			outputs.DiagnosticLogger.Debug(testLogMessageConstant + "_debug")
			outputs.DiagnosticLogger.Info(testLogMessageConstant)
			require.NoError(testInstance, outputs.DiagnosticLogger.Sync())

			capturedOutput := strings.TrimSpace(output.String())
			require.Contains(testInstance, capturedOutput, testLogMessageConstant)
			if testCase.expectDebugSuppressed {
				require.NotContains(testInstance, capturedOutput, testLogMessageConstant+"_debug")
			}

			lastLine := capturedOutput[strings.LastIndex(capturedOutput, "\n")+1:]
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid([]byte(lastLine)))
		})
	}
}

func TestConsoleLoggerWritesBareMessages(testInstance *testing.T) {
	var output bytes.Buffer
	outputs, creationError := utils.NewLoggerFactoryWithOutput(&output).CreateLoggerOutputs(utils.LogLevelInfo, utils.LogFormatConsole)
	require.NoError(testInstance, creationError)

	outputs.ConsoleLogger.Info("Listed branches under svn://svn.example.com/branches")
	require.Equal(testInstance, "Listed branches under svn://svn.example.com/branches\n", output.String())
}

func TestDiagnosticLoggerHonorsLevel(testInstance *testing.T) {
	var output bytes.Buffer
	outputs, creationError := utils.NewLoggerFactoryWithOutput(&output).CreateLoggerOutputs(utils.LogLevelWarn, utils.LogFormatStructured)
	require.NoError(testInstance, creationError)
	logger := outputs.DiagnosticLogger

	logger.Info(testLogMessageConstant)
	require.Empty(testInstance, output.String())

	logger.Warn(testLogMessageConstant)
	require.True(testInstance, json.Valid(bytes.TrimSpace(output.Bytes())))
}
