package buildconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/svntools/internal/cadence"
	"github.com/temirov/svntools/internal/mergestate"
)

const (
	catalogMissingMessageConstant       = "branch catalog not configured"
	rendererMissingMessageConstant      = "build configuration renderer not configured"
	branchesURLRequiredMessageConstant  = "branches parent location must be provided"
	listBranchesFailureTemplateConstant = "list branches under %s: %w"
	logMessagePlannedBuildsConstant     = "Planned branch builds"
	logMessagePlannedBuildConstant      = "Scheduled branch build"
	logFieldBranchesParentConstant      = "branches_parent"
	logFieldBranchCountConstant         = "branch_count"
	logFieldPlannedCountConstant        = "planned_count"
	logFieldBranchNameConstant          = "branch"
	logFieldQueueConstant               = "queue"
	logFieldIntervalSecondsConstant     = "interval_seconds"
)

// ErrCatalogNotConfigured indicates the generator was constructed without a branch catalog.
var ErrCatalogNotConfigured = errors.New(catalogMissingMessageConstant)

// ErrRendererNotConfigured indicates the generator was constructed without a renderer.
var ErrRendererNotConfigured = errors.New(rendererMissingMessageConstant)

// ErrBranchesURLRequired indicates the branches parent location was empty.
var ErrBranchesURLRequired = errors.New(branchesURLRequiredMessageConstant)

// Generator lists branches, plans their builds and renders the build-server configuration.
type Generator struct {
	logger   *zap.Logger
	catalog  mergestate.BranchCatalog
	planner  *cadence.Planner
	renderer *Renderer
}

// NewGenerator constructs a Generator. A nil planner uses the default cadence table and queues.
func NewGenerator(logger *zap.Logger, catalog mergestate.BranchCatalog, planner *cadence.Planner, renderer *Renderer) (*Generator, error) {
	if catalog == nil {
		return nil, ErrCatalogNotConfigured
	}
	if renderer == nil {
		return nil, ErrRendererNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if planner == nil {
		planner = cadence.NewPlanner(nil, cadence.PlannerOptions{})
	}
	return &Generator{logger: logger, catalog: catalog, planner: planner, renderer: renderer}, nil
}

// Generate writes the configuration for every branch under branchesURL that is due for building at now.
func (generator *Generator) Generate(executionContext context.Context, branchesURL string, output io.Writer, now time.Time) ([]cadence.PlannedBuild, error) {
	trimmedURL := strings.TrimSpace(branchesURL)
	if len(trimmedURL) == 0 {
		return nil, ErrBranchesURLRequired
	}

	branches, listError := generator.catalog.ListBranches(executionContext, trimmedURL)
	if listError != nil {
		return nil, fmt.Errorf(listBranchesFailureTemplateConstant, trimmedURL, listError)
	}

	planned := generator.planner.Plan(branches, now)
	for _, build := range planned {
		generator.logger.Debug(
			logMessagePlannedBuildConstant,
			zap.String(logFieldBranchNameConstant, build.Branch.Name),
			zap.String(logFieldQueueConstant, build.Queue),
			zap.Int64(logFieldIntervalSecondsConstant, build.Directive.IntervalSeconds()),
		)
	}
	generator.logger.Info(
		logMessagePlannedBuildsConstant,
		zap.String(logFieldBranchesParentConstant, trimmedURL),
		zap.Int(logFieldBranchCountConstant, len(branches)),
		zap.Int(logFieldPlannedCountConstant, len(planned)),
	)

	if renderError := generator.renderer.Render(output, planned, now); renderError != nil {
		return nil, renderError
	}
	return planned, nil
}
