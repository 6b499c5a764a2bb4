package cadence

import (
	"sort"
	"time"
)

// Rule maps branches younger than MaxAge to a build Interval.
type Rule struct {
	MaxAge   time.Duration `mapstructure:"max_age" yaml:"max_age"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// DefaultRules is the cadence table used when no rules are configured. Rows are ordered by MaxAge.
var DefaultRules = []Rule{
	{MaxAge: 10 * time.Minute, Interval: 1 * time.Minute},
	{MaxAge: time.Hour, Interval: 2 * time.Minute},
	{MaxAge: 24 * time.Hour, Interval: 3 * time.Minute},
	{MaxAge: 7 * 24 * time.Hour, Interval: 5 * time.Minute},
	{MaxAge: 46 * 24 * time.Hour, Interval: 30 * time.Minute},
}

// BuildDirective states whether a branch should be built and at which interval.
type BuildDirective struct {
	ShouldBuild bool
	Interval    time.Duration
}

// IntervalSeconds reports the interval in whole seconds.
func (directive BuildDirective) IntervalSeconds() int64 {
	return int64(directive.Interval / time.Second)
}

// Scheduler looks up build directives in an ordered cadence table.
type Scheduler struct {
	rules []Rule
}

// NewScheduler constructs a Scheduler over the provided rules, or DefaultRules when none are given.
// Rules are ordered by ascending MaxAge.
func NewScheduler(rules []Rule) *Scheduler {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	orderedRules := make([]Rule, len(rules))
	copy(orderedRules, rules)
	sort.SliceStable(orderedRules, func(leftIndex int, rightIndex int) bool {
		return orderedRules[leftIndex].MaxAge < orderedRules[rightIndex].MaxAge
	})
	return &Scheduler{rules: orderedRules}
}

// Rules returns a copy of the ordered cadence table.
func (scheduler *Scheduler) Rules() []Rule {
	rules := make([]Rule, len(scheduler.rules))
	copy(rules, scheduler.rules)
	return rules
}

// ScheduleFor returns the directive of the first rule whose MaxAge exceeds the age of the last
// revision. Branches older than every rule are not built.
func (scheduler *Scheduler) ScheduleFor(lastRevisionTime time.Time, now time.Time) BuildDirective {
	age := now.Sub(lastRevisionTime)
	for _, rule := range scheduler.rules {
		if age < rule.MaxAge {
			return BuildDirective{ShouldBuild: true, Interval: rule.Interval}
		}
	}
	return BuildDirective{ShouldBuild: false}
}
