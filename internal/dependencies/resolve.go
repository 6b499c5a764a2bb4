package dependencies

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/svntools/internal/execshell"
	"github.com/temirov/svntools/internal/svn"
	"github.com/temirov/svntools/internal/ui"
)

const (
	openSessionErrorTemplateConstant  = "unable to open repository session: %w"
	closeSessionErrorTemplateConstant = "unable to close repository session: %w"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// Providers groups the collaborators shared by svntools commands. Zero values fall back to
// operating system defaults so tests only inject what they observe.
type Providers struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	Executor                     svn.SubversionExecutor
	FileSystem                   afero.Fs
	Clock                        func() time.Time
}

// Logger returns the diagnostic logger or a no-op logger.
func (providers Providers) Logger() *zap.Logger {
	return resolveLogger(providers.LoggerProvider)
}

// ResolveFileSystem returns the configured filesystem or an OS-backed default.
func (providers Providers) ResolveFileSystem() afero.Fs {
	return ResolveFileSystem(providers.FileSystem)
}

// Now returns the current time from the configured clock.
func (providers Providers) Now() time.Time {
	if providers.Clock == nil {
		return time.Now()
	}
	return providers.Clock()
}

// OpenClient resolves the svn executor and acquires a client session. Callers must Close the client.
func (providers Providers) OpenClient(credentials svn.Credentials) (*svn.Client, error) {
	humanReadable := providers.HumanReadableLoggingProvider != nil && providers.HumanReadableLoggingProvider()
	executor, executorError := ResolveSubversionExecutor(providers.Executor, providers.Logger(), resolveLogger(providers.ConsoleLoggerProvider), humanReadable)
	if executorError != nil {
		return nil, executorError
	}
	return svn.Open(executor, credentials)
}

// WithClient opens a client session, runs operation with it and closes the session on every path.
// A failure to close is joined with the operation's error.
func (providers Providers) WithClient(credentials svn.Credentials, operation func(*svn.Client) error) (resultError error) {
	client, openError := providers.OpenClient(credentials)
	if openError != nil {
		return fmt.Errorf(openSessionErrorTemplateConstant, openError)
	}
	defer func() {
		if closeError := client.Close(); closeError != nil {
			resultError = errors.Join(resultError, fmt.Errorf(closeSessionErrorTemplateConstant, closeError))
		}
	}()
	return operation(client)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveSubversionExecutor returns the provided executor or constructs a shell-backed default.
// With humanReadable set, command lifecycle events are rendered through consoleLogger.
func ResolveSubversionExecutor(existing svn.SubversionExecutor, logger *zap.Logger, consoleLogger *zap.Logger, humanReadable bool) (svn.SubversionExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	executorOptions := make([]execshell.ShellExecutorOption, 0, 1)
	if humanReadable {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(consoleLogger)))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
