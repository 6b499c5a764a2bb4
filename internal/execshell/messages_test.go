package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForPropgetIncludesPegRevision(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandSubversion,
		Details: CommandDetails{
			Arguments: []string{"propget", "--non-interactive", "--username", "builder", "svn:mergeinfo", "svn://example.com/trunk@1200"},
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Reading svn:mergeinfo of svn://example.com/trunk at r1200", message)
}

func TestBuildStartedMessageForPropgetWithoutPegRevisionUsesHead(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandSubversion,
		Details: CommandDetails{
			Arguments: []string{"propget", "svn:mergeinfo", "svn://example.com/trunk"},
		},
	}

	message := formatter.BuildSuccessMessage(command)

	require.Equal(t, "Read svn:mergeinfo of svn://example.com/trunk at HEAD", message)
}

func TestBuildFailureMessageForListIncludesStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandSubversion,
		Details: CommandDetails{
			Arguments: []string{"list", "--xml", "--password", "hidden", "svn://example.com/branches"},
		},
	}

	message := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "E170013: Unable to connect\n"})

	require.Equal(t, "Failed to list branches under svn://example.com/branches (exit code 1: E170013: Unable to connect)", message)
}

func TestBuildExecutionFailureMessageForLogDescribesRevisionRange(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandSubversion,
		Details: CommandDetails{
			Arguments: []string{"log", "--xml", "-r", "1:HEAD", "svn://example.com/trunk"},
		},
	}

	message := formatter.BuildExecutionFailureMessage(command, errors.New("boom"))

	require.Equal(t, "Unable to read history of svn://example.com/trunk for revisions 1:HEAD: boom", message)
}

func TestBuildStartedMessageForExportNamesDestination(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandSubversion,
		Details: CommandDetails{
			Arguments: []string{"export", "--force", "-r", "42", "svn://example.com/trunk/a.txt", "/tmp/export/a.txt"},
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Exporting svn://example.com/trunk/a.txt to /tmp/export/a.txt", message)
}

func TestGenericMessageRedactsPassword(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandSubversion,
		Details: CommandDetails{
			Arguments:        []string{"cleanup", "--password", "hidden"},
			WorkingDirectory: "/workspace/checkout",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Running svn cleanup --password ******** (in /workspace/checkout)", message)
}

func TestRedactArgumentsLeavesInputUntouched(t *testing.T) {
	arguments := []string{"info", "--password", "hidden"}

	redacted := RedactArguments(arguments)

	require.Equal(t, []string{"info", "--password", "********"}, redacted)
	require.Equal(t, "hidden", arguments[2])
}
