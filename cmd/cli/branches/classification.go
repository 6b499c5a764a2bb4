package branches

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/svntools/internal/dependencies"
	"github.com/temirov/svntools/internal/mergestate"
	"github.com/temirov/svntools/internal/report"
	"github.com/temirov/svntools/internal/svn"
	"github.com/temirov/svntools/internal/utils"
)

const (
	mergedCommandUseConstant                = "merged"
	mergedCommandShortDescriptionConstant   = "List branches whose head revision is merged into the destination"
	mergedCommandLongDescriptionConstant    = "merged lists the branches under --branches whose last revision is recorded in the svn:mergeinfo of --destination."
	unmergedCommandUseConstant              = "unmerged"
	unmergedCommandShortDescriptionConstant = "List branches with revisions not yet merged into the destination"
	unmergedCommandLongDescriptionConstant  = "unmerged lists the branches under --branches whose last revision is missing from the svn:mergeinfo of --destination."
	classificationFailedTemplateConstant    = "%s failed: %w"
)

// ClassificationMode selects which side of the merge classification a command reports.
type ClassificationMode int

// Supported classification modes.
const (
	ClassificationMerged ClassificationMode = iota
	ClassificationUnmerged
)

// ClassificationCommandBuilder assembles the merged and unmerged commands.
type ClassificationCommandBuilder struct {
	dependencies.Providers
	ConfigurationProvider func() CommandConfiguration
	Mode                  ClassificationMode
}

// Build constructs the command for the configured mode.
func (builder *ClassificationCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   mergedCommandUseConstant,
		Short: mergedCommandShortDescriptionConstant,
		Long:  mergedCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	if builder.Mode == ClassificationUnmerged {
		command.Use = unmergedCommandUseConstant
		command.Short = unmergedCommandShortDescriptionConstant
		command.Long = unmergedCommandLongDescriptionConstant
	}

	bindReportFlags(command)

	return command, nil
}

func (builder *ClassificationCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if argumentsError := rejectArguments(command, arguments); argumentsError != nil {
		return argumentsError
	}

	settings, settingsError := resolveSettings(command, resolveConfiguration(builder.ConfigurationProvider))
	if settingsError != nil {
		return settingsError
	}
	if locationError := requireLocations(command, settings.options); locationError != nil {
		return locationError
	}

	var classified []mergestate.BranchInfo
	sessionError := builder.WithClient(settings.credentials, func(client *svn.Client) error {
		service, serviceError := mergestate.NewService(builder.Logger(), client)
		if serviceError != nil {
			return serviceError
		}

		var classificationError error
		if builder.Mode == ClassificationUnmerged {
			classified, classificationError = service.UnreleasedBranches(command.Context(), settings.options)
		} else {
			classified, classificationError = service.ReleasedBranches(command.Context(), settings.options)
		}
		return classificationError
	})
	if sessionError != nil {
		return fmt.Errorf(classificationFailedTemplateConstant, command.Name(), sessionError)
	}

	return report.WriteToDestination(builder.ResolveFileSystem(), settings.outputPath, utils.NewFlushingWriter(command.OutOrStdout()), func(output io.Writer) error {
		return settings.writer.WriteBranches(output, classified)
	})
}
