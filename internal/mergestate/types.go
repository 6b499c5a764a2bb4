package mergestate

import (
	"context"
	"fmt"
	"time"
)

const (
	branchSummaryTemplateConstant = "%s: %s"
)

// RevisionInfo describes the most recent commit on a branch.
type RevisionInfo struct {
	Revision  int64
	Author    string
	CreatedAt time.Time
}

// BranchInfo is a branch as currently listed by the repository.
type BranchInfo struct {
	Name         string
	LastRevision RevisionInfo
}

// Summary renders the branch as "<author>: <name>".
func (branch BranchInfo) Summary() string {
	return fmt.Sprintf(branchSummaryTemplateConstant, branch.LastRevision.Author, branch.Name)
}

// BranchCatalog lists the branches located directly under a parent location.
type BranchCatalog interface {
	ListBranches(executionContext context.Context, parentLocation string) ([]BranchInfo, error)
}

// MergeInfoSource reads raw svn:mergeinfo values and revision boundaries of a location.
type MergeInfoSource interface {
	MergeInfo(executionContext context.Context, location string) (string, error)
	MergeInfoAt(executionContext context.Context, location string, revision int64) (string, error)
	FirstRevision(executionContext context.Context, location string, lowerBound int64) (int64, error)
}

// Repository combines the collaborators required by Service.
type Repository interface {
	BranchCatalog
	MergeInfoSource
}
