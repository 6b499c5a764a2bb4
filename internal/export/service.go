package export

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/svntools/internal/svn"
)

const (
	repositoryMissingMessageConstant     = "export repository collaborator not configured"
	repositoryURLRequiredMessageConstant = "repository location must be provided"
	exportFolderRequiredMessageConstant  = "export folder must be provided"
	partialRangeMessageConstant          = "both from and to revisions must be provided"
	versionInfoFileNameConstant          = "VersionInfo.xml"
	xmlIndentConstant                    = "  "
	urlPathSeparatorConstant             = "/"
	defaultSinceDaysConstant             = 61
	hoursPerDayConstant                  = 24
	createFolderFailureTemplateConstant  = "create export folder %s: %w"
	firstRevisionFailureTemplateConstant = "resolve first revision of %s: %w"
	lastRevisionFailureTemplateConstant  = "resolve last revision of %s: %w"
	lastChangedFailureTemplateConstant   = "inspect %s: %w"
	versionInfoFailureTemplateConstant   = "write %s: %w"
	diffFailureTemplateConstant          = "summarize changes of %s: %w"
	itemFailureTemplateConstant          = "export %s: %w"
	logMessageRangeResolvedConstant      = "Resolved export range"
	logMessageExportingItemConstant      = "Exporting item"
	logMessageExportCompletedConstant    = "Export completed"
	logFieldRepositoryConstant           = "repository"
	logFieldFromRevisionConstant         = "from_revision"
	logFieldToRevisionConstant           = "to_revision"
	logFieldExportRevisionConstant       = "export_revision"
	logFieldItemPathConstant             = "item_path"
	logFieldItemCountConstant            = "item_count"
	logFieldExportedCountConstant        = "exported_count"
	logFieldFailedCountConstant          = "failed_count"

	exportDirectoryPermissions = 0o755
	versionInfoFilePermissions = 0o644
)

// ErrRepositoryNotConfigured indicates the service was constructed without a repository collaborator.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrRepositoryURLRequired indicates the repository location option was empty.
var ErrRepositoryURLRequired = errors.New(repositoryURLRequiredMessageConstant)

// ErrExportFolderRequired indicates the export folder option was empty.
var ErrExportFolderRequired = errors.New(exportFolderRequiredMessageConstant)

// ErrPartialRange indicates only one revision bound was supplied.
var ErrPartialRange = errors.New(partialRangeMessageConstant)

// Repository provides the svn operations required to export a revision range.
type Repository interface {
	FirstRevisionSince(executionContext context.Context, location string, since time.Time) (int64, error)
	LastRevision(executionContext context.Context, location string) (int64, error)
	LastChangedRevision(executionContext context.Context, location string) (int64, error)
	DiffSummary(executionContext context.Context, location string, fromRevision int64, toRevision int64) ([]svn.DiffItem, error)
	Export(executionContext context.Context, itemURL string, revision int64, destination string) error
}

// Options select the repository location, revision range and destination folder. Without explicit
// revisions the range spans from the revision current SinceDays ago to the latest revision.
type Options struct {
	RepositoryURL string
	FromRevision  int64
	ToRevision    int64
	SinceDays     int
	ExportFolder  string
	Now           time.Time
}

// Result summarizes an export.
type Result struct {
	FromRevision   int64
	ToRevision     int64
	ExportRevision int64
	ExportedPaths  []string
}

type versionInfoDocument struct {
	XMLName      xml.Name `xml:"http://www.example.com versions"`
	FromRevision int64    `xml:"fromRevision"`
	ToRevision   int64    `xml:"toRevision"`
}

// Service exports changed files of a revision range.
type Service struct {
	logger     *zap.Logger
	repository Repository
	fileSystem afero.Fs
}

// NewService constructs a Service. A nil file system selects the operating system file system.
func NewService(logger *zap.Logger, repository Repository, fileSystem afero.Fs) (*Service, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &Service{logger: logger, repository: repository, fileSystem: fileSystem}, nil
}

// ExportRange writes VersionInfo.xml and exports every file added or modified in the range. Items that
// fail to export do not stop the remaining items; their failures are returned joined.
func (service *Service) ExportRange(executionContext context.Context, options Options) (Result, error) {
	repositoryURL := strings.TrimSuffix(strings.TrimSpace(options.RepositoryURL), urlPathSeparatorConstant)
	if len(repositoryURL) == 0 {
		return Result{}, ErrRepositoryURLRequired
	}
	exportFolder := strings.TrimSpace(options.ExportFolder)
	if len(exportFolder) == 0 {
		return Result{}, ErrExportFolderRequired
	}

	fromRevision, toRevision, rangeError := service.resolveRange(executionContext, repositoryURL, options)
	if rangeError != nil {
		return Result{}, rangeError
	}

	if creationError := service.fileSystem.MkdirAll(exportFolder, exportDirectoryPermissions); creationError != nil {
		return Result{}, fmt.Errorf(createFolderFailureTemplateConstant, exportFolder, creationError)
	}
	if writeError := service.writeVersionInfo(exportFolder, fromRevision, toRevision); writeError != nil {
		return Result{}, writeError
	}

	lastChangedRevision, infoError := service.repository.LastChangedRevision(executionContext, repositoryURL)
	if infoError != nil {
		return Result{}, fmt.Errorf(lastChangedFailureTemplateConstant, repositoryURL, infoError)
	}
	exportRevision := toRevision
	if lastChangedRevision < exportRevision {
		exportRevision = lastChangedRevision
	}

	service.logger.Info(
		logMessageRangeResolvedConstant,
		zap.String(logFieldRepositoryConstant, repositoryURL),
		zap.Int64(logFieldFromRevisionConstant, fromRevision),
		zap.Int64(logFieldToRevisionConstant, toRevision),
		zap.Int64(logFieldExportRevisionConstant, exportRevision),
	)

	items, diffError := service.repository.DiffSummary(executionContext, repositoryURL, fromRevision, exportRevision)
	if diffError != nil {
		return Result{}, fmt.Errorf(diffFailureTemplateConstant, repositoryURL, diffError)
	}

	result := Result{FromRevision: fromRevision, ToRevision: toRevision, ExportRevision: exportRevision, ExportedPaths: make([]string, 0, len(items))}
	var failures []error
	for _, item := range items {
		if !item.IsExportable() {
			continue
		}
		if exportError := service.exportItem(executionContext, item, exportRevision, exportFolder); exportError != nil {
			failures = append(failures, exportError)
			continue
		}
		result.ExportedPaths = append(result.ExportedPaths, item.Path)
	}

	service.logger.Info(
		logMessageExportCompletedConstant,
		zap.String(logFieldRepositoryConstant, repositoryURL),
		zap.Int(logFieldItemCountConstant, len(items)),
		zap.Int(logFieldExportedCountConstant, len(result.ExportedPaths)),
		zap.Int(logFieldFailedCountConstant, len(failures)),
	)

	return result, errors.Join(failures...)
}

func (service *Service) resolveRange(executionContext context.Context, repositoryURL string, options Options) (int64, int64, error) {
	if options.FromRevision > 0 || options.ToRevision > 0 {
		if options.FromRevision <= 0 || options.ToRevision <= 0 {
			return 0, 0, ErrPartialRange
		}
		return options.FromRevision, options.ToRevision, nil
	}

	sinceDays := options.SinceDays
	if sinceDays <= 0 {
		sinceDays = defaultSinceDaysConstant
	}
	now := options.Now
	if now.IsZero() {
		now = time.Now()
	}
	since := now.Add(-time.Duration(sinceDays) * hoursPerDayConstant * time.Hour)

	fromRevision, firstError := service.repository.FirstRevisionSince(executionContext, repositoryURL, since)
	if firstError != nil {
		return 0, 0, fmt.Errorf(firstRevisionFailureTemplateConstant, repositoryURL, firstError)
	}
	toRevision, lastError := service.repository.LastRevision(executionContext, repositoryURL)
	if lastError != nil {
		return 0, 0, fmt.Errorf(lastRevisionFailureTemplateConstant, repositoryURL, lastError)
	}
	return fromRevision, toRevision, nil
}

func (service *Service) writeVersionInfo(exportFolder string, fromRevision int64, toRevision int64) error {
	versionInfoPath := filepath.Join(exportFolder, versionInfoFileNameConstant)
	document := versionInfoDocument{FromRevision: fromRevision, ToRevision: toRevision}
	encoded, encodeError := xml.MarshalIndent(document, "", xmlIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(versionInfoFailureTemplateConstant, versionInfoPath, encodeError)
	}
	content := append([]byte(xml.Header), encoded...)
	content = append(content, '\n')
	if writeError := afero.WriteFile(service.fileSystem, versionInfoPath, content, versionInfoFilePermissions); writeError != nil {
		return fmt.Errorf(versionInfoFailureTemplateConstant, versionInfoPath, writeError)
	}
	return nil
}

func (service *Service) exportItem(executionContext context.Context, item svn.DiffItem, revision int64, exportFolder string) error {
	destination := filepath.Join(exportFolder, filepath.FromSlash(item.Path))
	if creationError := service.fileSystem.MkdirAll(filepath.Dir(destination), exportDirectoryPermissions); creationError != nil {
		return fmt.Errorf(itemFailureTemplateConstant, item.Path, creationError)
	}
	service.logger.Debug(logMessageExportingItemConstant, zap.String(logFieldItemPathConstant, item.Path))
	if exportError := service.repository.Export(executionContext, item.URL, revision, destination); exportError != nil {
		return fmt.Errorf(itemFailureTemplateConstant, item.Path, exportError)
	}
	return nil
}
