package build

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/svntools/internal/buildconfig"
	"github.com/temirov/svntools/internal/cadence"
	"github.com/temirov/svntools/internal/dependencies"
	"github.com/temirov/svntools/internal/report"
	"github.com/temirov/svntools/internal/svn"
	"github.com/temirov/svntools/internal/utils"
	flagutils "github.com/temirov/svntools/internal/utils/flags"
	pathutils "github.com/temirov/svntools/internal/utils/path"
)

const (
	commandUseConstant                  = "build-config"
	commandShortDescriptionConstant     = "Render a CruiseControl.NET configuration for active branches"
	commandLongDescriptionConstant      = "build-config lists the branches under --branches, schedules each one by the age of its last commit and renders the resulting build projects through the configured template. Branches whose names start with \"_\" and branches older than every cadence rule are skipped."
	flagTemplateNameConstant            = "template"
	flagTemplateDescriptionConstant     = "Template file; defaults to the embedded CruiseControl.NET template"
	flagQueueCountNameConstant          = "queue-count"
	flagQueueCountDescriptionConstant   = "Number of build queues branches are distributed across"
	unexpectedArgumentsTemplateConstant = "%s does not accept positional arguments"
	buildConfigFailedTemplateConstant   = "build-config failed: %w"
)

// CommandBuilder assembles the build-config command.
type CommandBuilder struct {
	dependencies.Providers
	ConfigurationProvider func() CommandConfiguration
	PathResolver          *pathutils.LocalPathResolver
}

// Build constructs the build-config command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	flagutils.BindLocationFlags(command, flagutils.LocationFlagDefinitions{Branches: true})
	flagutils.BindOutputFlag(command)
	command.Flags().String(flagTemplateNameConstant, "", flagTemplateDescriptionConstant)
	command.Flags().Int(flagQueueCountNameConstant, defaultQueueCountConstant, flagQueueCountDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf(unexpectedArgumentsTemplateConstant, command.Name())
	}

	configuration := builder.resolveConfiguration()
	branchesURL := flagutils.ResolveString(command, flagutils.BranchesFlagName, configuration.Repository.BranchesURL)
	if len(branchesURL) == 0 {
		_ = command.Help()
		return buildconfig.ErrBranchesURLRequired
	}

	pathResolver := builder.resolvePathResolver()
	configurationDirectory := utils.NewCommandContextAccessor().ConfigurationDirectory(command.Context())
	templatePath := pathResolver.Resolve(configuration.Build.Template, configurationDirectory)
	if command.Flags().Changed(flagTemplateNameConstant) {
		templatePath = pathResolver.Resolve(flagutils.ResolveString(command, flagTemplateNameConstant, ""), "")
	}
	outputPath := pathResolver.Resolve(configuration.Build.Output, configurationDirectory)
	if command.Flags().Changed(flagutils.OutputFlagName) {
		outputPath = pathResolver.Resolve(flagutils.ResolveString(command, flagutils.OutputFlagName, ""), "")
	}

	plannerOptions := configuration.Build.PlannerOptions()
	plannerOptions.QueueCount = flagutils.ResolveInt(command, flagQueueCountNameConstant, plannerOptions.QueueCount)
	planner := cadence.NewPlanner(cadence.NewScheduler(configuration.Build.Rules), plannerOptions)

	fileSystem := builder.ResolveFileSystem()
	renderer, rendererError := buildconfig.LoadRenderer(fileSystem, templatePath)
	if rendererError != nil {
		return fmt.Errorf(buildConfigFailedTemplateConstant, rendererError)
	}

	credentials := svn.Credentials{
		Username: flagutils.ResolveString(command, flagutils.UsernameFlagName, configuration.Repository.Username),
		Password: configuration.Repository.Password,
	}
	if command.Flags().Changed(flagutils.PasswordFlagName) {
		credentials.Password, _ = command.Flags().GetString(flagutils.PasswordFlagName)
	}

	var rendered bytes.Buffer
	sessionError := builder.WithClient(credentials, func(client *svn.Client) error {
		generator, generatorError := buildconfig.NewGenerator(builder.Logger(), client, planner, renderer)
		if generatorError != nil {
			return generatorError
		}
		_, generateError := generator.Generate(command.Context(), branchesURL, &rendered, builder.Now())
		return generateError
	})
	if sessionError != nil {
		return fmt.Errorf(buildConfigFailedTemplateConstant, sessionError)
	}

	return report.WriteToDestination(fileSystem, outputPath, utils.NewFlushingWriter(command.OutOrStdout()), func(output io.Writer) error {
		_, writeError := rendered.WriteTo(output)
		return writeError
	})
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().Sanitize()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolvePathResolver() *pathutils.LocalPathResolver {
	if builder.PathResolver == nil {
		return pathutils.NewLocalPathResolver()
	}
	return builder.PathResolver
}
