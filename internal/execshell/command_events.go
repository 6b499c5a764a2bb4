package execshell

import (
	"strings"

	"go.uber.org/zap"
)

// CommandEventObserver receives the lifecycle of every command run by a ShellExecutor.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed is called when the command could not be run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// structuredCommandEventObserver writes command events as structured log entries with redacted arguments.
type structuredCommandEventObserver struct {
	logger    *zap.Logger
	formatter CommandMessageFormatter
}

func (observer structuredCommandEventObserver) CommandStarted(command ShellCommand) {
	observer.logger.Info(
		observer.formatter.BuildStartedMessage(command),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, RedactArguments(command.Details.Arguments)),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

func (observer structuredCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		observer.logger.Info(
			observer.formatter.BuildSuccessMessage(command),
			zap.String(logFieldCommandNameConstant, string(command.Name)),
		)
		return
	}
	observer.logger.Warn(
		observer.formatter.BuildFailureMessage(command, result),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
	)
}

func (observer structuredCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	observer.logger.Error(
		observer.formatter.BuildExecutionFailureMessage(command, failure),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Error(failure),
	)
}
