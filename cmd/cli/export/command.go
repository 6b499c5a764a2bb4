package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/svntools/internal/dependencies"
	exportservice "github.com/temirov/svntools/internal/export"
	"github.com/temirov/svntools/internal/svn"
	"github.com/temirov/svntools/internal/utils"
	flagutils "github.com/temirov/svntools/internal/utils/flags"
	pathutils "github.com/temirov/svntools/internal/utils/path"
)

const (
	commandUseConstant               = "export URL [FROM TO] FOLDER"
	commandShortDescriptionConstant  = "Export files changed in a revision range"
	commandLongDescriptionConstant   = "export writes VersionInfo.xml and every file added or modified under URL between FROM and TO into FOLDER. Without FROM and TO the range starts at the revision current --since-days ago and ends at the latest revision."
	flagSinceDaysNameConstant        = "since-days"
	flagSinceDaysDescriptionConstant = "Look-back window in days when no revision range is given"
	invalidRevisionTemplateConstant  = "invalid %s revision %q: must be a positive integer"
	exportFailedTemplateConstant     = "export failed: %w"
	summaryTemplateConstant          = "Exported %d item(s) from r%d:r%d at r%d\n"
	exportedPathTemplateConstant     = "%s\n"
	fromRevisionLabelConstant        = "from"
	toRevisionLabelConstant          = "to"
	shortArgumentCountConstant       = 2
	fullArgumentCountConstant        = 4
	revisionPrefixConstant           = "r"
	revisionIntegerBaseConstant      = 10
	revisionIntegerBitSizeConstant   = 64
	argumentCountMessageConstant     = "export requires URL and FOLDER, optionally separated by FROM and TO revisions"
)

// ErrArgumentCount indicates export received neither two nor four positional arguments.
var ErrArgumentCount = errors.New(argumentCountMessageConstant)

// CommandBuilder assembles the export command.
type CommandBuilder struct {
	dependencies.Providers
	ConfigurationProvider func() CommandConfiguration
	PathResolver          *pathutils.LocalPathResolver
}

// Build constructs the export command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Int(flagSinceDaysNameConstant, defaultSinceDaysConstant, flagSinceDaysDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, argumentsError := parseArguments(arguments)
	if argumentsError != nil {
		_ = command.Help()
		return argumentsError
	}

	configuration := builder.resolveConfiguration()
	options.SinceDays = flagutils.ResolveInt(command, flagSinceDaysNameConstant, configuration.Export.SinceDays)
	options.ExportFolder = builder.resolvePathResolver().Resolve(options.ExportFolder, "")
	options.Now = builder.Now()

	credentials := svn.Credentials{
		Username: flagutils.ResolveString(command, flagutils.UsernameFlagName, configuration.Repository.Username),
		Password: configuration.Repository.Password,
	}
	if command.Flags().Changed(flagutils.PasswordFlagName) {
		credentials.Password, _ = command.Flags().GetString(flagutils.PasswordFlagName)
	}

	var result exportservice.Result
	sessionError := builder.WithClient(credentials, func(client *svn.Client) error {
		service, serviceError := exportservice.NewService(builder.Logger(), client, builder.ResolveFileSystem())
		if serviceError != nil {
			return serviceError
		}
		var exportError error
		result, exportError = service.ExportRange(command.Context(), options)
		return exportError
	})

	if writeError := writeSummary(utils.NewFlushingWriter(command.OutOrStdout()), result); writeError != nil {
		sessionError = errors.Join(sessionError, writeError)
	}
	if sessionError != nil {
		return fmt.Errorf(exportFailedTemplateConstant, sessionError)
	}
	return nil
}

// parseArguments accepts "URL FOLDER" or "URL FROM TO FOLDER".
func parseArguments(arguments []string) (exportservice.Options, error) {
	switch len(arguments) {
	case shortArgumentCountConstant:
		return exportservice.Options{RepositoryURL: arguments[0], ExportFolder: arguments[1]}, nil
	case fullArgumentCountConstant:
		fromRevision, fromError := parseRevision(fromRevisionLabelConstant, arguments[1])
		if fromError != nil {
			return exportservice.Options{}, fromError
		}
		toRevision, toError := parseRevision(toRevisionLabelConstant, arguments[2])
		if toError != nil {
			return exportservice.Options{}, toError
		}
		return exportservice.Options{
			RepositoryURL: arguments[0],
			FromRevision:  fromRevision,
			ToRevision:    toRevision,
			ExportFolder:  arguments[3],
		}, nil
	default:
		return exportservice.Options{}, ErrArgumentCount
	}
}

func parseRevision(label string, value string) (int64, error) {
	revision, parseError := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(value), revisionPrefixConstant), revisionIntegerBaseConstant, revisionIntegerBitSizeConstant)
	if parseError != nil || revision <= 0 {
		return 0, fmt.Errorf(invalidRevisionTemplateConstant, label, value)
	}
	return revision, nil
}

func writeSummary(output io.Writer, result exportservice.Result) error {
	if result.ToRevision == 0 {
		return nil
	}
	for _, exportedPath := range result.ExportedPaths {
		if _, writeError := fmt.Fprintf(output, exportedPathTemplateConstant, exportedPath); writeError != nil {
			return writeError
		}
	}
	_, writeError := fmt.Fprintf(output, summaryTemplateConstant, len(result.ExportedPaths), result.FromRevision, result.ToRevision, result.ExportRevision)
	return writeError
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
