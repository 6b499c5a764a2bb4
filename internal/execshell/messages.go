package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
	redactedValueConstant                   = "********"
	flagPrefixConstant                      = "-"
)

const (
	svnListSubcommandNameConstant    = "list"
	svnPropgetSubcommandNameConstant = "propget"
	svnLogSubcommandNameConstant     = "log"
	svnInfoSubcommandNameConstant    = "info"
	svnDiffSubcommandNameConstant    = "diff"
	svnExportSubcommandNameConstant  = "export"
	svnPasswordFlagConstant          = "--password"
	svnUsernameFlagConstant          = "--username"
	svnConfigDirectoryFlagConstant   = "--config-dir"
	svnRevisionShortFlagConstant     = "-r"
	svnRevisionLongFlagConstant      = "--revision"
	svnLimitShortFlagConstant        = "-l"
	svnLimitLongFlagConstant         = "--limit"
	svnHeadRevisionLabelConstant     = "HEAD"
	svnPropgetTargetArgumentIndex    = 1
)

const (
	svnListStartTemplateConstant               = "Listing branches under %s"
	svnListSuccessTemplateConstant             = "Listed branches under %s"
	svnListFailureTemplateConstant             = "Failed to list branches under %s (exit code %d%s)"
	svnListExecutionFailureTemplateConstant    = "Unable to list branches under %s: %s"
	svnPropgetStartTemplateConstant            = "Reading %s of %s at %s"
	svnPropgetSuccessTemplateConstant          = "Read %s of %s at %s"
	svnPropgetFailureTemplateConstant          = "Failed to read %s of %s at %s (exit code %d%s)"
	svnPropgetExecutionFailureTemplateConstant = "Unable to read %s of %s at %s: %s"
	svnLogStartTemplateConstant                = "Reading history of %s for %s"
	svnLogSuccessTemplateConstant              = "Read history of %s for %s"
	svnLogFailureTemplateConstant              = "Failed to read history of %s for %s (exit code %d%s)"
	svnLogExecutionFailureTemplateConstant     = "Unable to read history of %s for %s: %s"
	svnInfoStartTemplateConstant               = "Inspecting %s"
	svnInfoSuccessTemplateConstant             = "Inspected %s"
	svnInfoFailureTemplateConstant             = "Failed to inspect %s (exit code %d%s)"
	svnInfoExecutionFailureTemplateConstant    = "Unable to inspect %s: %s"
	svnDiffStartTemplateConstant               = "Summarizing changes in %s for %s"
	svnDiffSuccessTemplateConstant             = "Summarized changes in %s for %s"
	svnDiffFailureTemplateConstant             = "Failed to summarize changes in %s for %s (exit code %d%s)"
	svnDiffExecutionFailureTemplateConstant    = "Unable to summarize changes in %s for %s: %s"
	svnExportStartTemplateConstant             = "Exporting %s to %s"
	svnExportSuccessTemplateConstant           = "Exported %s to %s"
	svnExportFailureTemplateConstant           = "Failed to export %s to %s (exit code %d%s)"
	svnExportExecutionFailureTemplateConstant  = "Unable to export %s to %s: %s"
	svnRevisionLabelTemplateConstant           = "r%s"
	svnAllRevisionsLabelConstant               = "all revisions"
	svnPropgetDefaultPropertyNameConstant      = "properties"
	svnExportDefaultDestinationLabelConstant   = "current directory"
	svnTargetRevisionSeparatorConstant         = "@"
	svnHeadRevisionDescriptionConstant         = "HEAD"
	svnLogRevisionRangeDescriptionTemplate     = "revisions %s"
)

var svnFlagsWithValues = map[string]struct{}{
	svnPasswordFlagConstant:        {},
	svnUsernameFlagConstant:        {},
	svnConfigDirectoryFlagConstant: {},
	svnRevisionShortFlagConstant:   {},
	svnRevisionLongFlagConstant:    {},
	svnLimitShortFlagConstant:      {},
	svnLimitLongFlagConstant:       {},
}

// RedactArguments returns a copy of arguments with credential values masked.
func RedactArguments(arguments []string) []string {
	redacted := make([]string, len(arguments))
	copy(redacted, arguments)
	for index := 0; index < len(redacted)-1; index++ {
		if strings.TrimSpace(redacted[index]) == svnPasswordFlagConstant {
			redacted[index+1] = redactedValueConstant
		}
	}
	return redacted
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandSubversion:
		return formatter.describeSubversionMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeSubversionMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	positionalArguments := formatter.extractPositionalArguments(command.Details.Arguments[1:])
	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case svnListSubcommandNameConstant:
		target := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
		return formatter.selectTemplate(stage, result, failure,
			stageTemplates{svnListStartTemplateConstant, svnListSuccessTemplateConstant, svnListFailureTemplateConstant, svnListExecutionFailureTemplateConstant},
			target)
	case svnPropgetSubcommandNameConstant:
		propertyName := formatter.argumentAtIndex(positionalArguments, 0)
		if len(propertyName) == 0 {
			propertyName = svnPropgetDefaultPropertyNameConstant
		}
		target, revision := formatter.splitPegRevision(formatter.argumentAtIndex(positionalArguments, svnPropgetTargetArgumentIndex))
		return formatter.selectTemplate(stage, result, failure,
			stageTemplates{svnPropgetStartTemplateConstant, svnPropgetSuccessTemplateConstant, svnPropgetFailureTemplateConstant, svnPropgetExecutionFailureTemplateConstant},
			propertyName, formatter.ensureValue(target), revision)
	case svnLogSubcommandNameConstant:
		target := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
		return formatter.selectTemplate(stage, result, failure,
			stageTemplates{svnLogStartTemplateConstant, svnLogSuccessTemplateConstant, svnLogFailureTemplateConstant, svnLogExecutionFailureTemplateConstant},
			target, formatter.describeRevisionRange(command.Details.Arguments))
	case svnInfoSubcommandNameConstant:
		target := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
		return formatter.selectTemplate(stage, result, failure,
			stageTemplates{svnInfoStartTemplateConstant, svnInfoSuccessTemplateConstant, svnInfoFailureTemplateConstant, svnInfoExecutionFailureTemplateConstant},
			target)
	case svnDiffSubcommandNameConstant:
		target := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
		return formatter.selectTemplate(stage, result, failure,
			stageTemplates{svnDiffStartTemplateConstant, svnDiffSuccessTemplateConstant, svnDiffFailureTemplateConstant, svnDiffExecutionFailureTemplateConstant},
			target, formatter.describeRevisionRange(command.Details.Arguments))
	case svnExportSubcommandNameConstant:
		source := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
		destination := formatter.argumentAtIndex(positionalArguments, 1)
		if len(destination) == 0 {
			destination = svnExportDefaultDestinationLabelConstant
		}
		return formatter.selectTemplate(stage, result, failure,
			stageTemplates{svnExportStartTemplateConstant, svnExportSuccessTemplateConstant, svnExportFailureTemplateConstant, svnExportExecutionFailureTemplateConstant},
			source, destination)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

func (formatter CommandMessageFormatter) selectTemplate(stage messageStage, result ExecutionResult, failure error, templates stageTemplates, values ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, values...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, values...)
	case messageStageFailure:
		failureValues := append(append([]any{}, values...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureValues...)
	default:
		executionFailureValues := append(append([]any{}, values...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, executionFailureValues...)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	label := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, label)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, label)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, label, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, label, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(RedactArguments(command.Details.Arguments), commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

// extractPositionalArguments drops flags together with the values of flags that take one.
func (formatter CommandMessageFormatter) extractPositionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			if _, takesValue := svnFlagsWithValues[trimmed]; takesValue {
				index++
			}
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func (formatter CommandMessageFormatter) splitPegRevision(target string) (string, string) {
	separatorIndex := strings.LastIndex(target, svnTargetRevisionSeparatorConstant)
	if separatorIndex < 0 || separatorIndex == len(target)-1 {
		return target, svnHeadRevisionDescriptionConstant
	}
	revision := target[separatorIndex+1:]
	if revision == svnHeadRevisionLabelConstant {
		return target[:separatorIndex], svnHeadRevisionDescriptionConstant
	}
	return target[:separatorIndex], fmt.Sprintf(svnRevisionLabelTemplateConstant, revision)
}

func (formatter CommandMessageFormatter) describeRevisionRange(arguments []string) string {
	revisionValue := findFlagValue(arguments, svnRevisionShortFlagConstant)
	if len(revisionValue) == 0 {
		revisionValue = findFlagValue(arguments, svnRevisionLongFlagConstant)
	}
	if len(revisionValue) == 0 {
		return svnAllRevisionsLabelConstant
	}
	return fmt.Sprintf(svnLogRevisionRangeDescriptionTemplate, revisionValue)
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
