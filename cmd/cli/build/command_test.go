package build_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/svntools/cmd/cli/build"
	"github.com/temirov/svntools/internal/buildconfig"
	"github.com/temirov/svntools/internal/cadence"
	"github.com/temirov/svntools/internal/dependencies"
	"github.com/temirov/svntools/internal/execshell"
	"github.com/temirov/svntools/internal/svn"
	"github.com/temirov/svntools/internal/utils"
	pathutils "github.com/temirov/svntools/internal/utils/path"
)

const (
	subtestNameTemplateConstant  = "%d_%s"
	testBranchesURLConstant      = "svn://svn.example.com/branches"
	testConfigurationDirConstant = "/etc/svntools"
	testHomeDirectoryConstant    = "/home/builder"
	testTemplateConstant         = "{{ range .Builds }}{{ .BranchName }} {{ .Queue }} {{ .Category }} {{ .IntervalSeconds }}\n{{ end }}"
	testListResponseConstant     = `<?xml version="1.0" encoding="UTF-8"?>
<lists>
<list path="svn://svn.example.com/branches">
<entry kind="dir">
<name>feature-x</name>
<commit revision="42">
<author>alice</author>
<date>2024-03-15T11:55:00.000000Z</date>
</commit>
</entry>
<entry kind="dir">
<name>feature-y</name>
<commit revision="57">
<author>bob</author>
<date>2024-03-16T09:00:00.000000Z</date>
</commit>
</entry>
<entry kind="dir">
<name>_sandbox</name>
<commit revision="60">
<author>carol</author>
<date>2024-03-16T09:10:00.000000Z</date>
</commit>
</entry>
<entry kind="dir">
<name>legacy</name>
<commit revision="3">
<author>dave</author>
<date>2023-01-01T00:00:00.000000Z</date>
</commit>
</entry>
</list>
</lists>`
)

var testNow = time.Date(2024, time.March, 16, 9, 30, 0, 0, time.UTC)

type listingExecutor struct {
	recorded [][]string
}

func (executor *listingExecutor) ExecuteSubversion(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details.Arguments)
	return execshell.ExecutionResult{StandardOutput: testListResponseConstant}, nil
}

func newBuilder(fileSystem afero.Fs, configuration build.CommandConfiguration) (*build.CommandBuilder, *listingExecutor) {
	executor := &listingExecutor{}
	return &build.CommandBuilder{
		Providers: dependencies.Providers{
			Executor:   executor,
			FileSystem: fileSystem,
			Clock:      func() time.Time { return testNow },
		},
		ConfigurationProvider: func() build.CommandConfiguration { return configuration },
		PathResolver: pathutils.NewLocalPathResolverWithProvider(func() (string, error) {
			return testHomeDirectoryConstant, nil
		}),
	}, executor
}

func configuredBranches() build.CommandConfiguration {
	configuration := build.DefaultCommandConfiguration()
	configuration.Repository = svn.RepositoryConfiguration{BranchesURL: testBranchesURLConstant}
	return configuration
}

func execute(testInstance *testing.T, builder *build.CommandBuilder, executionContext context.Context, arguments []string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(append([]string{}, arguments...))
	command.SetContext(executionContext)
	executionError := command.Execute()
	return output.String(), executionError
}

func TestBuildConfigCommandRendersDefaultTemplate(testInstance *testing.T) {
	builder, executor := newBuilder(afero.NewMemMapFs(), configuredBranches())

	output, executionError := execute(testInstance, builder, context.Background(), nil)
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, output, `<cruisecontrol xmlns:cb="urn:ccnet.config.builder">`)
	require.Contains(testInstance, output, `ProjectName="feature-y"`)
	require.Contains(testInstance, output, `Queue="Magic-1"`)
	require.Contains(testInstance, output, `Category="Magic-alice"`)
	require.NotContains(testInstance, output, "_sandbox")
	require.NotContains(testInstance, output, "legacy")
	require.Len(testInstance, executor.recorded, 1)
	require.Equal(testInstance, "list", executor.recorded[0][0])
}

func TestBuildConfigCommandSchedulesBranches(testInstance *testing.T) {
	testCases := []struct {
		name           string
		configure      func(*build.CommandConfiguration)
		arguments      []string
		expectedOutput string
	}{
		{
			name:           "default_rules",
			expectedOutput: "feature-y Magic-1 Magic-bob 120\nfeature-x Magic-2 Magic-alice 180\n",
		},
		{
			name: "configured_prefixes",
			configure: func(configuration *build.CommandConfiguration) {
				configuration.Build.QueuePrefix = "Nightly"
				configuration.Build.CategoryPrefix = "Team"
			},
			expectedOutput: "feature-y Nightly-1 Team-bob 120\nfeature-x Nightly-2 Team-alice 180\n",
		},
		{
			name:           "queue_count_flag",
			arguments:      []string{"--queue-count", "1"},
			expectedOutput: "feature-y Magic-1 Magic-bob 120\nfeature-x Magic-1 Magic-alice 180\n",
		},
		{
			name: "configured_rules",
			configure: func(configuration *build.CommandConfiguration) {
				configuration.Build.Rules = []cadence.Rule{{MaxAge: time.Hour, Interval: 15 * time.Minute}}
			},
			expectedOutput: "feature-y Magic-1 Magic-bob 900\n",
		},
		{
			name: "branches_flag",
			configure: func(configuration *build.CommandConfiguration) {
				configuration.Repository.BranchesURL = ""
			},
			arguments:      []string{"--branches", testBranchesURLConstant},
			expectedOutput: "feature-y Magic-1 Magic-bob 120\nfeature-x Magic-2 Magic-alice 180\n",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(subtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fileSystem := afero.NewMemMapFs()
			require.NoError(testInstance, afero.WriteFile(fileSystem, filepath.Join(testConfigurationDirConstant, "branches.tmpl"), []byte(testTemplateConstant), 0o644))

			configuration := configuredBranches()
			configuration.Build.Template = "branches.tmpl"
			if testCase.configure != nil {
				testCase.configure(&configuration)
			}

			builder, _ := newBuilder(fileSystem, configuration)
			executionContext := utils.NewCommandContextAccessor().WithConfigurationFilePath(context.Background(), filepath.Join(testConfigurationDirConstant, "config.yaml"))
			output, executionError := execute(testInstance, builder, executionContext, testCase.arguments)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedOutput, output)
		})
	}
}

func TestBuildConfigCommandWritesOutputFile(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, afero.WriteFile(fileSystem, "/srv/templates/branches.tmpl", []byte(testTemplateConstant), 0o644))

	configuration := configuredBranches()
	configuration.Build.Output = "~/ccnet/branches.xml"
	builder, _ := newBuilder(fileSystem, configuration)

	output, executionError := execute(testInstance, builder, context.Background(), []string{"--template", "/srv/templates/branches.tmpl"})
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, output)

	contents, readError := afero.ReadFile(fileSystem, filepath.Join(testHomeDirectoryConstant, "ccnet", "branches.xml"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "feature-y Magic-1 Magic-bob 120\nfeature-x Magic-2 Magic-alice 180\n", string(contents))
}

func TestBuildConfigCommandFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration build.CommandConfiguration
		expectedError string
	}{
		{
			name:          "missing_branches",
			configuration: build.DefaultCommandConfiguration(),
			expectedError: buildconfig.ErrBranchesURLRequired.Error(),
		},
		{
			name: "missing_template",
			configuration: func() build.CommandConfiguration {
				configuration := configuredBranches()
				configuration.Build.Template = "/missing/branches.tmpl"
				return configuration
			}(),
			expectedError: "build-config failed: read build configuration template /missing/branches.tmpl",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(subtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			builder, executor := newBuilder(afero.NewMemMapFs(), testCase.configuration)
			_, executionError := execute(testInstance, builder, context.Background(), nil)
			require.ErrorContains(testInstance, executionError, testCase.expectedError)
			require.Empty(testInstance, executor.recorded)
		})
	}
}

func TestDefaultConfigurationValues(testInstance *testing.T) {
	defaults := build.DefaultConfigurationValues("tools")
	require.Equal(testInstance, "Magic", defaults["tools.build.queue_prefix"])
	require.Equal(testInstance, 2, defaults["tools.build.queue_count"])
	require.Equal(testInstance, "Magic", defaults["tools.build.category_prefix"])
	require.NotContains(testInstance, defaults, "tools.build.rules")
}
