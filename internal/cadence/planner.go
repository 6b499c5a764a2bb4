package cadence

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/temirov/svntools/internal/mergestate"
)

const (
	excludedBranchPrefixConstant  = "_"
	queueNameTemplateConstant     = "%s-%d"
	categoryNameTemplateConstant  = "%s-%s"
	defaultQueuePrefixConstant    = "Magic"
	defaultCategoryPrefixConstant = "Magic"
	defaultQueueCountConstant     = 2
)

// PlannerOptions configure queue and category naming.
type PlannerOptions struct {
	QueuePrefix    string
	QueueCount     int
	CategoryPrefix string
}

// PlannedBuild is a branch scheduled on a build queue.
type PlannedBuild struct {
	Branch    mergestate.BranchInfo
	Directive BuildDirective
	Queue     string
	Category  string
}

// Planner turns a branch catalog into a list of planned builds.
type Planner struct {
	scheduler *Scheduler
	options   PlannerOptions
}

// NewPlanner constructs a Planner. Empty options fall back to two "Magic" queues.
func NewPlanner(scheduler *Scheduler, options PlannerOptions) *Planner {
	if scheduler == nil {
		scheduler = NewScheduler(nil)
	}
	normalized := PlannerOptions{
		QueuePrefix:    strings.TrimSpace(options.QueuePrefix),
		QueueCount:     options.QueueCount,
		CategoryPrefix: strings.TrimSpace(options.CategoryPrefix),
	}
	if len(normalized.QueuePrefix) == 0 {
		normalized.QueuePrefix = defaultQueuePrefixConstant
	}
	if normalized.QueueCount <= 0 {
		normalized.QueueCount = defaultQueueCountConstant
	}
	if len(normalized.CategoryPrefix) == 0 {
		normalized.CategoryPrefix = defaultCategoryPrefixConstant
	}
	return &Planner{scheduler: scheduler, options: normalized}
}

// Plan selects branches not prefixed with "_", orders them by last revision descending and assigns
// queues round-robin. The queue index counts every selected branch, so branches too old to build
// still advance the rotation.
func (planner *Planner) Plan(branches []mergestate.BranchInfo, now time.Time) []PlannedBuild {
	selected := make([]mergestate.BranchInfo, 0, len(branches))
	for _, branch := range branches {
		if strings.HasPrefix(branch.Name, excludedBranchPrefixConstant) {
			continue
		}
		selected = append(selected, branch)
	}
	sort.SliceStable(selected, func(leftIndex int, rightIndex int) bool {
		return selected[leftIndex].LastRevision.Revision > selected[rightIndex].LastRevision.Revision
	})

	planned := make([]PlannedBuild, 0, len(selected))
	for branchIndex, branch := range selected {
		directive := planner.scheduler.ScheduleFor(branch.LastRevision.CreatedAt, now)
		if !directive.ShouldBuild {
			continue
		}
		planned = append(planned, PlannedBuild{
			Branch:    branch,
			Directive: directive,
			Queue:     fmt.Sprintf(queueNameTemplateConstant, planner.options.QueuePrefix, branchIndex%planner.options.QueueCount+1),
			Category:  fmt.Sprintf(categoryNameTemplateConstant, planner.options.CategoryPrefix, branch.LastRevision.Author),
		})
	}
	return planned
}
