package branches

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/svntools/internal/mergestate"
	"github.com/temirov/svntools/internal/report"
	"github.com/temirov/svntools/internal/svn"
	flagutils "github.com/temirov/svntools/internal/utils/flags"
	pathutils "github.com/temirov/svntools/internal/utils/path"
)

const (
	flagFormatNameConstant              = "format"
	flagFormatDescriptionConstant       = "Report format"
	unexpectedArgumentsTemplateConstant = "%s does not accept positional arguments"
)

var reportPathResolver = pathutils.NewLocalPathResolver()

type commandSettings struct {
	options     mergestate.Options
	credentials svn.Credentials
	writer      *report.Writer
	outputPath  string
}

func bindReportFlags(command *cobra.Command) {
	flagutils.BindLocationFlags(command, flagutils.LocationFlagDefinitions{Destination: true, Branches: true})
	flagutils.BindOutputFlag(command)
	formatValue := new(string)
	flagutils.AddChoiceFlag(command.Flags(), formatValue, flagFormatNameConstant, string(report.FormatText), report.SupportedFormats(), flagFormatDescriptionConstant)
}

func rejectArguments(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return nil
	}
	return fmt.Errorf(unexpectedArgumentsTemplateConstant, command.Name())
}

func resolveConfiguration(provider func() CommandConfiguration) CommandConfiguration {
	if provider == nil {
		return DefaultCommandConfiguration().Sanitize()
	}
	return provider().Sanitize()
}

func resolveSettings(command *cobra.Command, configuration CommandConfiguration) (commandSettings, error) {
	writer, writerError := report.NewWriter(flagutils.ResolveString(command, flagFormatNameConstant, configuration.Report.Format))
	if writerError != nil {
		return commandSettings{}, writerError
	}

	credentials := svn.Credentials{
		Username: flagutils.ResolveString(command, flagutils.UsernameFlagName, configuration.Repository.Username),
		Password: configuration.Repository.Password,
	}
	if command.Flags().Changed(flagutils.PasswordFlagName) {
		credentials.Password, _ = command.Flags().GetString(flagutils.PasswordFlagName)
	}

	return commandSettings{
		options: mergestate.Options{
			DestinationURL:    flagutils.ResolveString(command, flagutils.DestinationFlagName, configuration.Repository.DestinationURL),
			BranchesParentURL: flagutils.ResolveString(command, flagutils.BranchesFlagName, configuration.Repository.BranchesURL),
		},
		credentials: credentials,
		writer:      writer,
		outputPath:  reportPathResolver.Resolve(flagutils.ResolveString(command, flagutils.OutputFlagName, ""), ""),
	}, nil
}

func displayCommandHelp(command *cobra.Command) {
	if command == nil {
		return
	}
	_ = command.Help()
}

func requireLocations(command *cobra.Command, options mergestate.Options) error {
	if len(strings.TrimSpace(options.DestinationURL)) == 0 {
		displayCommandHelp(command)
		return mergestate.ErrDestinationRequired
	}
	if len(strings.TrimSpace(options.BranchesParentURL)) == 0 {
		displayCommandHelp(command)
		return mergestate.ErrBranchesParentRequired
	}
	return nil
}
