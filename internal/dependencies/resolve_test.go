package dependencies_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/svntools/internal/dependencies"
	"github.com/temirov/svntools/internal/execshell"
	"github.com/temirov/svntools/internal/svn"
)

type stubExecutor struct{}

func (stubExecutor) ExecuteSubversion(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func TestResolveSubversionExecutorPrefersExisting(testInstance *testing.T) {
	existing := stubExecutor{}
	resolved, resolveError := dependencies.ResolveSubversionExecutor(existing, zap.NewNop(), zap.NewNop(), true)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, existing, resolved)
}

func TestResolveSubversionExecutorBuildsShellExecutor(testInstance *testing.T) {
	resolved, resolveError := dependencies.ResolveSubversionExecutor(nil, zap.NewNop(), zap.NewNop(), false)
	require.NoError(testInstance, resolveError)
	require.IsType(testInstance, &execshell.ShellExecutor{}, resolved)

	_, missingLoggerError := dependencies.ResolveSubversionExecutor(nil, nil, nil, false)
	require.ErrorIs(testInstance, missingLoggerError, execshell.ErrLoggerNotConfigured)
}

func TestProvidersDefaults(testInstance *testing.T) {
	providers := dependencies.Providers{}
	require.NotNil(testInstance, providers.Logger())
	require.IsType(testInstance, &afero.OsFs{}, providers.ResolveFileSystem())
	require.WithinDuration(testInstance, time.Now(), providers.Now(), time.Minute)

	fixedTime := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	memoryFileSystem := afero.NewMemMapFs()
	observedCore, _ := observer.New(zapcore.InfoLevel)
	logger := zap.New(observedCore)
	configured := dependencies.Providers{
		LoggerProvider: func() *zap.Logger { return logger },
		FileSystem:     memoryFileSystem,
		Clock:          func() time.Time { return fixedTime },
	}
	require.Same(testInstance, logger, configured.Logger())
	require.Equal(testInstance, memoryFileSystem, configured.ResolveFileSystem())
	require.Equal(testInstance, fixedTime, configured.Now())
}

func TestProvidersOpenClientUsesInjectedExecutor(testInstance *testing.T) {
	providers := dependencies.Providers{Executor: stubExecutor{}}
	client, openError := providers.OpenClient(svnCredentials())
	require.NoError(testInstance, openError)
	require.NoError(testInstance, client.Close())
}

func svnCredentials() svn.Credentials {
	return svn.Credentials{Username: "builder", Password: "secret"}
}

func TestProvidersWithClientClosesSession(testInstance *testing.T) {
	providers := dependencies.Providers{Executor: stubExecutor{}}
	operationFailure := errors.New("listing failed")

	var sessionClient *svn.Client
	runError := providers.WithClient(svnCredentials(), func(client *svn.Client) error {
		sessionClient = client
		return operationFailure
	})
	require.ErrorIs(testInstance, runError, operationFailure)

	_, closedError := sessionClient.ListBranches(context.Background(), "svn://svn.example.com/branches")
	require.ErrorIs(testInstance, closedError, svn.ErrClientClosed)
}
