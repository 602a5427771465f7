package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

// SolverFactory creates the engine that solves one model.
type SolverFactory func(spec *config.OptimizerSpec) (solver.Solver, error)

// Stats describes the size and cost of a run.
type Stats struct {
	RunID         string           `json:"runId" yaml:"runId"`
	Strategy      string           `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Requests      int              `json:"requests" yaml:"requests"`
	Variables     int              `json:"variables" yaml:"variables"`
	Links         int              `json:"links" yaml:"links"`
	Constraints   ConstraintCounts `json:"constraints" yaml:"constraints"`
	Nodes         int              `json:"nodes" yaml:"nodes"`
	Status        string           `json:"status" yaml:"status"`
	BuildDuration time.Duration    `json:"buildDuration" yaml:"buildDuration"`
	SolveDuration time.Duration    `json:"solveDuration" yaml:"solveDuration"`
}

// Result is the outcome of a successful run.
type Result struct {
	// Assignments holds one entry per request, sorted by RequestID.
	Assignments []core.Assignment `json:"assignments" yaml:"assignments"`
	Breakdown   Breakdown         `json:"breakdown" yaml:"breakdown"`
	Stats       Stats             `json:"stats" yaml:"stats"`
}

// Optimizer builds and solves one scheduling model per Optimize call.
type Optimizer struct {
	spec      config.OptimizerSpec
	newSolver SolverFactory
}

// Option customizes an Optimizer.
type Option func(*Optimizer)

// WithSolverFactory replaces the engine used to solve models.
func WithSolverFactory(f SolverFactory) Option {
	return func(o *Optimizer) {
		if f != nil {
			o.newSolver = f
		}
	}
}

// WithBackend selects a built-in solver backend.
func WithBackend(backend solver.Backend) Option {
	return func(o *Optimizer) {
		o.newSolver = func(spec *config.OptimizerSpec) (solver.Solver, error) {
			return solver.NewSolver(backend, spec)
		}
	}
}

// NewOptimizer creates an optimizer with the given weights and budget.
func NewOptimizer(spec *config.OptimizerSpec, opts ...Option) (*Optimizer, error) {
	if spec == nil {
		return nil, fmt.Errorf("optimizer spec cannot be nil")
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimizer spec: %w", err)
	}
	o := &Optimizer{spec: spec.WithDefaults()}
	WithBackend(solver.BranchAndBoundBackend)(o)
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Spec returns the effective weights and budget.
func (o *Optimizer) Spec() config.OptimizerSpec {
	return o.spec
}

// Optimize assigns every request to exactly one (room, slot) such that no room hosts two
// overlapping requests, minimizing the weighted objective. On any non-optimal outcome it
// returns no assignments and an error wrapping ErrInfeasibleModel or ErrSolver.
func (o *Optimizer) Optimize(ctx context.Context, inv core.Inventory, requests []core.Request) (*Result, error) {
	runID := uuid.NewString()
	logger := logging.FromContext(ctx).WithValues("runID", runID)
	start := time.Now()
	workers := o.spec.Workers

	sets, err := FilterCandidates(ctx, inv, requests, workers)
	if err != nil {
		return nil, fmt.Errorf("failed to filter candidates: %w", err)
	}
	var unsatisfied []Unsatisfied
	for _, set := range sets {
		if set.Empty() {
			unsatisfied = append(unsatisfied, Unsatisfied{RequestID: requests[set.Request].ID, Reason: set.Reason})
		}
	}
	if len(unsatisfied) > 0 {
		logger.Info("Requests without candidate rooms", "count", len(unsatisfied))
		return nil, &InfeasibleError{Unsatisfied: unsatisfied}
	}

	vs, err := BuildVariableSpace(ctx, sets, workers)
	if err != nil {
		return nil, fmt.Errorf("failed to build variable space: %w", err)
	}
	vs.Allocate()
	constraints, counts, err := GenerateConstraints(ctx, inv, requests, sets, vs, workers)
	if err != nil {
		return nil, fmt.Errorf("failed to generate constraints: %w", err)
	}

	s, err := o.newSolver(&o.spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create solver: %w", err)
	}
	if err := vs.Declare(s); err != nil {
		return nil, fmt.Errorf("failed to declare variables: %w", err)
	}
	for _, c := range constraints {
		s.AddConstraint(c.Terms, c.Sense, c.RHS)
	}
	s.SetObjective(BuildObjective(inv, requests, vs, o.spec))
	hinted, err := hintPlacement(ctx, s, inv, requests, sets, vs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute greedy placement: %w", err)
	}

	stats := Stats{
		RunID:         runID,
		Requests:      len(requests),
		Variables:     vs.NumAssign(),
		Links:         vs.NumLink(),
		Constraints:   counts,
		BuildDuration: time.Since(start),
	}
	logger.V(logging.DEBUG).Info("Model built",
		"requests", stats.Requests,
		"variables", stats.Variables,
		"links", stats.Links,
		"exactlyOne", counts.ExactlyOne,
		"noOverlap", counts.NoOverlap,
		"link", counts.Link,
		"hinted", hinted)

	solveStart := time.Now()
	status := s.Minimize(logging.IntoContext(ctx, logger))
	stats.SolveDuration = time.Since(solveStart)
	stats.Nodes = s.Nodes()
	stats.Status = status.String()

	switch status {
	case solver.Optimal:
	case solver.Infeasible:
		logger.Info("Scheduling model is infeasible", "nodes", stats.Nodes)
		return nil, &InfeasibleError{}
	default:
		logger.Info("Solver did not reach optimality", "status", status.String(), "nodes", stats.Nodes)
		return nil, &SolverError{Status: status, Cause: s.Err()}
	}

	assignments, err := extractAssignments(s, inv, requests, vs)
	if err != nil {
		return nil, err
	}
	breakdown := realize(s, inv, requests, vs, o.spec)
	logger.Info("Scheduling run completed",
		"assignments", len(assignments),
		"objective", breakdown.Objective,
		"nodes", stats.Nodes,
		"duration", time.Since(start).String())

	return &Result{Assignments: assignments, Breakdown: breakdown, Stats: stats}, nil
}
