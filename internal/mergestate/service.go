package mergestate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/svntools/internal/mergeinfo"
)

const (
	repositoryMissingMessageConstant       = "repository collaborator not configured"
	destinationRequiredMessageConstant     = "destination location must be provided"
	branchesParentRequiredMessageConstant  = "branches parent location must be provided"
	listBranchesFailureTemplateConstant    = "failed to list branches under %s: %w"
	readMergeInfoFailureTemplateConstant   = "failed to read merge info of %s: %w"
	readMergeInfoAtFailureTemplateConstant = "failed to read merge info of %s at r%d: %w"
	parseMergeInfoFailureTemplateConstant  = "failed to parse merge info of %s: %w"
	firstRevisionFailureTemplateConstant   = "failed to resolve first revision of %s: %w"
	invalidLocationTemplateConstant        = "invalid repository location %q: %w"
	pathSeparatorConstant                  = "/"
	logMessageClassifiedBranchesConstant   = "Classified branches"
	logMessageDetectedDriftConstant        = "Detected merge drift"
	logFieldDestinationConstant            = "destination"
	logFieldBranchesParentConstant         = "branches_parent"
	logFieldBranchCountConstant            = "branch_count"
	logFieldMergedCountConstant            = "merged_count"
	logFieldUnmergedCountConstant          = "unmerged_count"
	logFieldBaselineRevisionConstant       = "baseline_revision"
	logFieldDriftCountConstant             = "drift_count"

	firstRepositoryRevisionConstant int64 = 1
)

// ErrRepositoryNotConfigured indicates the service was constructed without a repository collaborator.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrDestinationRequired indicates the destination location option was empty.
var ErrDestinationRequired = errors.New(destinationRequiredMessageConstant)

// ErrBranchesParentRequired indicates the branches parent location option was empty.
var ErrBranchesParentRequired = errors.New(branchesParentRequiredMessageConstant)

// Options identify the destination line and the location holding the branches.
type Options struct {
	DestinationURL    string
	BranchesParentURL string
	BaselineRevision  int64
}

// Service classifies repository branches against the merge info of a destination line.
type Service struct {
	logger     *zap.Logger
	repository Repository
}

// NewService constructs a Service.
func NewService(logger *zap.Logger, repository Repository) (*Service, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, repository: repository}, nil
}

// ReleasedBranches lists the branches whose head revision has been merged into the destination.
func (service *Service) ReleasedBranches(executionContext context.Context, options Options) ([]BranchInfo, error) {
	mergeRecords, branches, loadError := service.loadClassificationInputs(executionContext, options)
	if loadError != nil {
		return nil, loadError
	}
	merged := BranchesAlreadyMerged(mergeRecords, branches)
	service.logClassification(options, len(branches), len(merged), len(branches)-len(merged))
	return merged, nil
}

// UnreleasedBranches lists the branches with revisions not yet merged into the destination.
func (service *Service) UnreleasedBranches(executionContext context.Context, options Options) ([]BranchInfo, error) {
	mergeRecords, branches, loadError := service.loadClassificationInputs(executionContext, options)
	if loadError != nil {
		return nil, loadError
	}
	unmerged := BranchesNotYetMerged(mergeRecords, branches)
	service.logClassification(options, len(branches), len(branches)-len(unmerged), len(unmerged))
	return unmerged, nil
}

// MergedSinceBaseline compares the destination's current merge info with its merge info at a baseline
// revision. Without an explicit baseline the destination's first revision is used.
func (service *Service) MergedSinceBaseline(executionContext context.Context, options Options) ([]mergeinfo.MergeRecord, error) {
	normalizedOptions, optionsError := normalizeOptions(options)
	if optionsError != nil {
		return nil, optionsError
	}

	stripPrefix, prefixError := branchPathPrefix(normalizedOptions.BranchesParentURL)
	if prefixError != nil {
		return nil, prefixError
	}

	baselineRevision := normalizedOptions.BaselineRevision
	if baselineRevision <= 0 {
		firstRevision, firstRevisionError := service.repository.FirstRevision(executionContext, normalizedOptions.DestinationURL, firstRepositoryRevisionConstant)
		if firstRevisionError != nil {
			return nil, fmt.Errorf(firstRevisionFailureTemplateConstant, normalizedOptions.DestinationURL, firstRevisionError)
		}
		baselineRevision = firstRevision
	}

	baselineBlob, baselineError := service.repository.MergeInfoAt(executionContext, normalizedOptions.DestinationURL, baselineRevision)
	if baselineError != nil {
		return nil, fmt.Errorf(readMergeInfoAtFailureTemplateConstant, normalizedOptions.DestinationURL, baselineRevision, baselineError)
	}
	baselineRecords, baselineParseError := mergeinfo.Parse(baselineBlob, stripPrefix)
	if baselineParseError != nil {
		return nil, fmt.Errorf(parseMergeInfoFailureTemplateConstant, normalizedOptions.DestinationURL, baselineParseError)
	}

	headRecords, headError := service.readHeadMergeInfo(executionContext, normalizedOptions.DestinationURL, stripPrefix)
	if headError != nil {
		return nil, headError
	}

	drifted := DetectDrift(baselineRecords, headRecords)
	service.logger.Info(
		logMessageDetectedDriftConstant,
		zap.String(logFieldDestinationConstant, normalizedOptions.DestinationURL),
		zap.Int64(logFieldBaselineRevisionConstant, baselineRevision),
		zap.Int(logFieldDriftCountConstant, len(drifted)),
	)
	return drifted, nil
}

func (service *Service) loadClassificationInputs(executionContext context.Context, options Options) ([]mergeinfo.MergeRecord, []BranchInfo, error) {
	normalizedOptions, optionsError := normalizeOptions(options)
	if optionsError != nil {
		return nil, nil, optionsError
	}

	stripPrefix, prefixError := branchPathPrefix(normalizedOptions.BranchesParentURL)
	if prefixError != nil {
		return nil, nil, prefixError
	}

	mergeRecords, mergeInfoError := service.readHeadMergeInfo(executionContext, normalizedOptions.DestinationURL, stripPrefix)
	if mergeInfoError != nil {
		return nil, nil, mergeInfoError
	}

	branches, listError := service.repository.ListBranches(executionContext, normalizedOptions.BranchesParentURL)
	if listError != nil {
		return nil, nil, fmt.Errorf(listBranchesFailureTemplateConstant, normalizedOptions.BranchesParentURL, listError)
	}

	return mergeRecords, branches, nil
}

func (service *Service) readHeadMergeInfo(executionContext context.Context, destinationURL string, stripPrefix string) ([]mergeinfo.MergeRecord, error) {
	blob, readError := service.repository.MergeInfo(executionContext, destinationURL)
	if readError != nil {
		return nil, fmt.Errorf(readMergeInfoFailureTemplateConstant, destinationURL, readError)
	}
	records, parseError := mergeinfo.Parse(blob, stripPrefix)
	if parseError != nil {
		return nil, fmt.Errorf(parseMergeInfoFailureTemplateConstant, destinationURL, parseError)
	}
	return records, nil
}

func (service *Service) logClassification(options Options, branchCount int, mergedCount int, unmergedCount int) {
	service.logger.Info(
		logMessageClassifiedBranchesConstant,
		zap.String(logFieldDestinationConstant, strings.TrimSpace(options.DestinationURL)),
		zap.String(logFieldBranchesParentConstant, strings.TrimSpace(options.BranchesParentURL)),
		zap.Int(logFieldBranchCountConstant, branchCount),
		zap.Int(logFieldMergedCountConstant, mergedCount),
		zap.Int(logFieldUnmergedCountConstant, unmergedCount),
	)
}

func normalizeOptions(options Options) (Options, error) {
	normalized := Options{
		DestinationURL:    strings.TrimSpace(options.DestinationURL),
		BranchesParentURL: strings.TrimSpace(options.BranchesParentURL),
		BaselineRevision:  options.BaselineRevision,
	}
	if len(normalized.DestinationURL) == 0 {
		return Options{}, ErrDestinationRequired
	}
	if len(normalized.BranchesParentURL) == 0 {
		return Options{}, ErrBranchesParentRequired
	}
	return normalized, nil
}

// branchPathPrefix derives the merge-info path prefix from the URL path of the branches parent,
// e.g. "/branches/" for "svn://host/branches".
func branchPathPrefix(branchesParentURL string) (string, error) {
	parsedURL, parseError := url.Parse(branchesParentURL)
	if parseError != nil {
		return "", fmt.Errorf(invalidLocationTemplateConstant, branchesParentURL, parseError)
	}
	trimmedPath := strings.TrimSuffix(parsedURL.Path, pathSeparatorConstant)
	return trimmedPath + pathSeparatorConstant, nil
}
