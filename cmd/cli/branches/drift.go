package branches

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/svntools/internal/dependencies"
	"github.com/temirov/svntools/internal/mergeinfo"
	"github.com/temirov/svntools/internal/mergestate"
	"github.com/temirov/svntools/internal/report"
	"github.com/temirov/svntools/internal/svn"
	"github.com/temirov/svntools/internal/utils"
)

const (
	driftCommandUseConstant                 = "drift"
	driftCommandShortDescriptionConstant    = "List branches merged into the destination since a baseline revision"
	driftCommandLongDescriptionConstant     = "drift compares the svn:mergeinfo of --destination at HEAD with its merge info at --baseline-revision, or at the first revision of the destination when no baseline is given, and lists every branch that gained merged revisions."
	flagBaselineRevisionNameConstant        = "baseline-revision"
	flagBaselineRevisionDescriptionConstant = "Revision to compare against; defaults to the first revision of the destination"
	driftFailedTemplateConstant             = "drift failed: %w"
)

// DriftCommandBuilder assembles the drift command.
type DriftCommandBuilder struct {
	dependencies.Providers
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the drift command.
func (builder *DriftCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   driftCommandUseConstant,
		Short: driftCommandShortDescriptionConstant,
		Long:  driftCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	bindReportFlags(command)
	command.Flags().Int64(flagBaselineRevisionNameConstant, 0, flagBaselineRevisionDescriptionConstant)

	return command, nil
}

func (builder *DriftCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if argumentsError := rejectArguments(command, arguments); argumentsError != nil {
		return argumentsError
	}

	configuration := resolveConfiguration(builder.ConfigurationProvider)
	settings, settingsError := resolveSettings(command, configuration)
	if settingsError != nil {
		return settingsError
	}
	if locationError := requireLocations(command, settings.options); locationError != nil {
		return locationError
	}

	settings.options.BaselineRevision = configuration.Drift.BaselineRevision
	if command.Flags().Changed(flagBaselineRevisionNameConstant) {
		settings.options.BaselineRevision, _ = command.Flags().GetInt64(flagBaselineRevisionNameConstant)
	}

	var drifted []mergeinfo.MergeRecord
	sessionError := builder.WithClient(settings.credentials, func(client *svn.Client) error {
		service, serviceError := mergestate.NewService(builder.Logger(), client)
		if serviceError != nil {
			return serviceError
		}
		var driftError error
		drifted, driftError = service.MergedSinceBaseline(command.Context(), settings.options)
		return driftError
	})
	if sessionError != nil {
		return fmt.Errorf(driftFailedTemplateConstant, sessionError)
	}

	return report.WriteToDestination(builder.ResolveFileSystem(), settings.outputPath, utils.NewFlushingWriter(command.OutOrStdout()), func(output io.Writer) error {
		return settings.writer.WriteDrift(output, drifted)
	})
}
