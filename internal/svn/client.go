package svn

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/temirov/svntools/internal/execshell"
	"github.com/temirov/svntools/internal/mergestate"
)

const (
	configurationDirectoryPatternConstant = "svntools-config-"
	createConfigurationFailureTemplate    = "create svn configuration directory: %w"
	removeConfigurationFailureTemplate    = "remove svn configuration directory: %w"
	listSubcommandConstant                = "list"
	propgetSubcommandConstant             = "propget"
	logSubcommandConstant                 = "log"
	infoSubcommandConstant                = "info"
	diffSubcommandConstant                = "diff"
	exportSubcommandConstant              = "export"
	mergeInfoPropertyConstant             = "svn:mergeinfo"
	nonInteractiveFlagConstant            = "--non-interactive"
	noAuthCacheFlagConstant               = "--no-auth-cache"
	configurationDirectoryFlagConstant    = "--config-dir"
	usernameFlagConstant                  = "--username"
	passwordFlagConstant                  = "--password"
	xmlFlagConstant                       = "--xml"
	quietFlagConstant                     = "--quiet"
	stopOnCopyFlagConstant                = "--stop-on-copy"
	revisionFlagConstant                  = "--revision"
	limitFlagConstant                     = "--limit"
	summarizeFlagConstant                 = "--summarize"
	forceFlagConstant                     = "--force"
	headRevisionConstant                  = "HEAD"
	pegRevisionTemplateConstant           = "%s@%d"
	revisionSpanTemplateConstant          = "%s:%s"
	lowerBoundSpanTemplateConstant        = "%s:%d"
	wholeHistorySpanConstant              = "HEAD:1"
	revisionDateTemplateConstant          = "{%s}"
	revisionDateLayoutConstant            = "2006-01-02T15:04:05Z"
	diffRevisionSpanTemplateConstant      = "%d:%d"
	singleEntryLimitConstant              = "1"
	urlPathSeparatorConstant              = "/"
	itemOutsideLocationTemplateConstant   = "%w: %s"
	missingPropertyWarningCodeConstant    = "W200017"
)

// SubversionExecutor runs svn commands.
type SubversionExecutor interface {
	ExecuteSubversion(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Credentials authenticate svn invocations. Empty values are omitted from the command line.
type Credentials struct {
	Username string
	Password string
}

// DiffItem is one entry of a summarized diff between two revisions.
type DiffItem struct {
	Path     string
	URL      string
	Change   string
	NodeKind string
}

// IsExportable reports whether the item is a file that still exists at the upper revision.
func (item DiffItem) IsExportable() bool {
	return item.NodeKind == nodeKindFileConstant && item.Change != diffItemDeletedConstant
}

// Client runs svn operations within a private configuration directory.
type Client struct {
	executor               SubversionExecutor
	credentials            Credentials
	configurationDirectory string
	mutex                  sync.Mutex
	closed                 bool
	closeError             error
}

// Open acquires a Client. Callers must Close it to remove the private configuration directory.
func Open(executor SubversionExecutor, credentials Credentials) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	configurationDirectory, creationError := os.MkdirTemp("", configurationDirectoryPatternConstant)
	if creationError != nil {
		return nil, fmt.Errorf(createConfigurationFailureTemplate, creationError)
	}
	return &Client{
		executor:               executor,
		credentials:            Credentials{Username: strings.TrimSpace(credentials.Username), Password: credentials.Password},
		configurationDirectory: configurationDirectory,
	}, nil
}

// Close removes the private configuration directory. Subsequent calls return the first result.
func (client *Client) Close() error {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	if client.closed {
		return client.closeError
	}
	client.closed = true
	if removalError := os.RemoveAll(client.configurationDirectory); removalError != nil {
		client.closeError = fmt.Errorf(removeConfigurationFailureTemplate, removalError)
	}
	return client.closeError
}

// ListBranches lists the directories directly under parentLocation with their last commit.
func (client *Client) ListBranches(executionContext context.Context, parentLocation string) ([]mergestate.BranchInfo, error) {
	output, executionError := client.run(executionContext, listSubcommandConstant, parentLocation, xmlFlagConstant, parentLocation)
	if executionError != nil {
		return nil, executionError
	}

	var response listResponse
	if decodeError := decodeResponse(listSubcommandConstant, output, &response); decodeError != nil {
		return nil, decodeError
	}

	branches := make([]mergestate.BranchInfo, 0)
	for _, document := range response.Lists {
		for _, entry := range document.Entries {
			name := strings.TrimSpace(entry.Name)
			if entry.Kind != nodeKindDirectoryConstant || len(name) == 0 {
				continue
			}
			createdAt, timeError := parseCommitTime(listSubcommandConstant, entry.Commit.Date)
			if timeError != nil {
				return nil, timeError
			}
			branches = append(branches, mergestate.BranchInfo{
				Name: name,
				LastRevision: mergestate.RevisionInfo{
					Revision:  entry.Commit.Revision,
					Author:    strings.TrimSpace(entry.Commit.Author),
					CreatedAt: createdAt,
				},
			})
		}
	}
	return branches, nil
}

// MergeInfo reads the svn:mergeinfo property of location at HEAD. A missing property yields "".
func (client *Client) MergeInfo(executionContext context.Context, location string) (string, error) {
	return client.readMergeInfo(executionContext, location, location)
}

// MergeInfoAt reads the svn:mergeinfo property of location as it was at revision.
func (client *Client) MergeInfoAt(executionContext context.Context, location string, revision int64) (string, error) {
	return client.readMergeInfo(executionContext, location, fmt.Sprintf(pegRevisionTemplateConstant, location, revision))
}

// FirstRevision returns the oldest revision of location's own history not older than lowerBound.
func (client *Client) FirstRevision(executionContext context.Context, location string, lowerBound int64) (int64, error) {
	revisionSpan := fmt.Sprintf(lowerBoundSpanTemplateConstant, headRevisionConstant, lowerBound)
	revisions, logError := client.logRevisions(executionContext, location, logSubcommandConstant, xmlFlagConstant, quietFlagConstant, stopOnCopyFlagConstant, revisionFlagConstant, revisionSpan, location)
	if logError != nil {
		return 0, logError
	}
	return revisions[0], nil
}

// FirstRevisionSince returns the oldest revision of location's own history from the revision that was
// current at since up to HEAD.
func (client *Client) FirstRevisionSince(executionContext context.Context, location string, since time.Time) (int64, error) {
	dateRevision := fmt.Sprintf(revisionDateTemplateConstant, since.UTC().Format(revisionDateLayoutConstant))
	revisionSpan := fmt.Sprintf(revisionSpanTemplateConstant, headRevisionConstant, dateRevision)
	revisions, logError := client.logRevisions(executionContext, location, logSubcommandConstant, xmlFlagConstant, quietFlagConstant, stopOnCopyFlagConstant, revisionFlagConstant, revisionSpan, location)
	if logError != nil {
		return 0, logError
	}
	return revisions[0], nil
}

// LastRevision returns the newest revision that changed location.
func (client *Client) LastRevision(executionContext context.Context, location string) (int64, error) {
	revisions, logError := client.logRevisions(executionContext, location, logSubcommandConstant, xmlFlagConstant, quietFlagConstant, stopOnCopyFlagConstant, limitFlagConstant, singleEntryLimitConstant, revisionFlagConstant, wholeHistorySpanConstant, location)
	if logError != nil {
		return 0, logError
	}
	return revisions[len(revisions)-1], nil
}

// LastChangedRevision reports the last changed revision recorded by svn info for location.
func (client *Client) LastChangedRevision(executionContext context.Context, location string) (int64, error) {
	output, executionError := client.run(executionContext, infoSubcommandConstant, location, xmlFlagConstant, location)
	if executionError != nil {
		return 0, executionError
	}

	var response infoResponse
	if decodeError := decodeResponse(infoSubcommandConstant, output, &response); decodeError != nil {
		return 0, decodeError
	}
	if len(response.Entries) == 0 {
		return 0, &ResponseDecodingError{Operation: infoSubcommandConstant, Cause: ErrNoLogEntries}
	}
	return response.Entries[0].Commit.Revision, nil
}

// DiffSummary lists the items changed under location between two revisions. Item paths are relative
// to location.
func (client *Client) DiffSummary(executionContext context.Context, location string, fromRevision int64, toRevision int64) ([]DiffItem, error) {
	revisionSpan := fmt.Sprintf(diffRevisionSpanTemplateConstant, fromRevision, toRevision)
	output, executionError := client.run(executionContext, diffSubcommandConstant, location, summarizeFlagConstant, xmlFlagConstant, revisionFlagConstant, revisionSpan, location)
	if executionError != nil {
		return nil, executionError
	}

	var response diffResponse
	if decodeError := decodeResponse(diffSubcommandConstant, output, &response); decodeError != nil {
		return nil, decodeError
	}

	locationPath, locationError := urlPath(location)
	if locationError != nil {
		return nil, &ResponseDecodingError{Operation: diffSubcommandConstant, Cause: locationError}
	}
	items := make([]DiffItem, 0, len(response.Paths))
	for _, path := range response.Paths {
		itemURL := strings.TrimSpace(path.URL)
		relativePath, relativeError := relativeItemPath(locationPath, itemURL)
		if relativeError != nil {
			return nil, &ResponseDecodingError{Operation: diffSubcommandConstant, Cause: relativeError}
		}
		items = append(items, DiffItem{
			Path:     relativePath,
			URL:      itemURL,
			Change:   path.Item,
			NodeKind: path.Kind,
		})
	}
	return items, nil
}

// urlPath returns the decoded path of a repository URL without its trailing separator.
func urlPath(repositoryURL string) (string, error) {
	parsedURL, parseError := url.Parse(repositoryURL)
	if parseError != nil {
		return "", parseError
	}
	return strings.TrimSuffix(parsedURL.Path, urlPathSeparatorConstant), nil
}

// relativeItemPath decodes itemURL and strips locationPath from it. svn prints item URLs
// percent-encoded, so both sides are compared in decoded form.
func relativeItemPath(locationPath string, itemURL string) (string, error) {
	itemPath, parseError := urlPath(itemURL)
	if parseError != nil {
		return "", parseError
	}
	if itemPath == locationPath {
		return "", nil
	}
	relativePath, underLocation := strings.CutPrefix(itemPath, locationPath+urlPathSeparatorConstant)
	if !underLocation {
		return "", fmt.Errorf(itemOutsideLocationTemplateConstant, ErrItemOutsideLocation, itemURL)
	}
	return relativePath, nil
}

// Export writes itemURL as it was at revision to destination, overwriting existing files.
func (client *Client) Export(executionContext context.Context, itemURL string, revision int64, destination string) error {
	pegTarget := fmt.Sprintf(pegRevisionTemplateConstant, itemURL, revision)
	_, executionError := client.run(executionContext, exportSubcommandConstant, itemURL, forceFlagConstant, pegTarget, destination)
	return executionError
}

func (client *Client) readMergeInfo(executionContext context.Context, location string, target string) (string, error) {
	output, executionError := client.run(executionContext, propgetSubcommandConstant, location, mergeInfoPropertyConstant, target)
	if executionError != nil {
		if isMissingProperty(executionError) {
			return "", nil
		}
		return "", executionError
	}
	return output, nil
}

func (client *Client) logRevisions(executionContext context.Context, location string, subcommand string, arguments ...string) ([]int64, error) {
	output, executionError := client.run(executionContext, subcommand, location, arguments...)
	if executionError != nil {
		return nil, executionError
	}

	var response logResponse
	if decodeError := decodeResponse(subcommand, output, &response); decodeError != nil {
		return nil, decodeError
	}
	if len(response.Entries) == 0 {
		return nil, &OperationError{Operation: subcommand, Location: location, Cause: ErrNoLogEntries}
	}

	revisions := make([]int64, 0, len(response.Entries))
	for _, entry := range response.Entries {
		revisions = append(revisions, entry.Revision)
	}
	sort.Slice(revisions, func(leftIndex int, rightIndex int) bool {
		return revisions[leftIndex] < revisions[rightIndex]
	})
	return revisions, nil
}

func (client *Client) run(executionContext context.Context, subcommand string, location string, arguments ...string) (string, error) {
	client.mutex.Lock()
	closed := client.closed
	client.mutex.Unlock()
	if closed {
		return "", &OperationError{Operation: subcommand, Location: location, Cause: ErrClientClosed}
	}

	result, executionError := client.executor.ExecuteSubversion(executionContext, execshell.CommandDetails{
		Arguments: client.buildArguments(subcommand, arguments),
	})
	if executionError != nil {
		return "", &OperationError{Operation: subcommand, Location: location, Cause: executionError}
	}
	return result.StandardOutput, nil
}

func (client *Client) buildArguments(subcommand string, arguments []string) []string {
	commandArguments := []string{
		subcommand,
		nonInteractiveFlagConstant,
		noAuthCacheFlagConstant,
		configurationDirectoryFlagConstant,
		client.configurationDirectory,
	}
	if len(client.credentials.Username) > 0 {
		commandArguments = append(commandArguments, usernameFlagConstant, client.credentials.Username)
	}
	if len(client.credentials.Password) > 0 {
		commandArguments = append(commandArguments, passwordFlagConstant, client.credentials.Password)
	}
	return append(commandArguments, arguments...)
}

func isMissingProperty(executionError error) bool {
	var failedError execshell.CommandFailedError
	if !errors.As(executionError, &failedError) {
		return false
	}
	return strings.Contains(failedError.Result.StandardError, missingPropertyWarningCodeConstant)
}
