package assigner

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

// GreedyAssignerConfig holds configuration for the GreedyAssigner
type GreedyAssignerConfig struct {
	Spec *config.OptimizerSpec
}

// GreedyAssigner places requests one at a time: most constrained request first, each in the
// candidate that wastes the fewest seats among those still free. It never backtracks, so it
// may fail on instances the OptimalAssigner solves.
type GreedyAssigner struct {
	config *GreedyAssignerConfig
	spec   config.OptimizerSpec
}

// NewGreedyAssigner creates a new GreedyAssigner instance.
func NewGreedyAssigner(cfg *GreedyAssignerConfig) (*GreedyAssigner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Spec == nil {
		return nil, fmt.Errorf("optimizer spec cannot be nil")
	}
	if err := cfg.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimizer spec: %w", err)
	}
	return &GreedyAssigner{config: cfg, spec: cfg.Spec.WithDefaults()}, nil
}

// Assign places the requests greedily
func (a *GreedyAssigner) Assign(ctx context.Context, inv core.Inventory, requests []core.Request) (*optimizer.Result, error) {
	runID := uuid.NewString()
	logger := logging.FromContext(ctx).WithValues("runID", runID)
	start := time.Now()

	sets, err := optimizer.FilterCandidates(ctx, inv, requests, a.spec.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to filter candidates: %w", err)
	}
	var unsatisfied []optimizer.Unsatisfied
	for _, set := range sets {
		if set.Empty() {
			unsatisfied = append(unsatisfied, optimizer.Unsatisfied{RequestID: requests[set.Request].ID, Reason: set.Reason})
		}
	}
	if len(unsatisfied) > 0 {
		return nil, &optimizer.InfeasibleError{Unsatisfied: unsatisfied}
	}

	chosen, err := optimizer.GreedyPlacement(ctx, inv, requests, sets)
	if err != nil {
		return nil, err
	}
	assignments := make([]core.Assignment, 0, len(requests))
	for r, i := range chosen {
		req := requests[r]
		if i == optimizer.Unplaced {
			unsatisfied = append(unsatisfied, optimizer.Unsatisfied{RequestID: req.ID, Reason: optimizer.ReasonContention})
			continue
		}
		c := sets[r].Candidates[i]
		assignments = append(assignments, core.Assignment{
			RequestID: req.ID,
			RoomName:  inv.Room(c.Room).Name,
			Slot:      req.Slots[c.Slot],
		})
		logger.V(logging.TRACE).Info("Greedy placement", "request", req.ID, "room", inv.Room(c.Room).Name)
	}
	if len(unsatisfied) > 0 {
		slices.SortFunc(unsatisfied, func(x, y optimizer.Unsatisfied) int {
			return cmp.Compare(x.RequestID, y.RequestID)
		})
		logger.Info("Greedy assignment left requests unplaced", "count", len(unsatisfied))
		return nil, &optimizer.InfeasibleError{Unsatisfied: unsatisfied}
	}

	slices.SortStableFunc(assignments, func(x, y core.Assignment) int {
		return cmp.Compare(x.RequestID, y.RequestID)
	})
	breakdown := optimizer.Evaluate(inv, requests, assignments, a.spec)
	logger.Info("Greedy assignment completed", "assignments", len(assignments), "objective", breakdown.Objective)

	return &optimizer.Result{
		Assignments: assignments,
		Breakdown:   breakdown,
		Stats: optimizer.Stats{
			RunID:         runID,
			Strategy:      GreedyStrategy.String(),
			Requests:      len(requests),
			Status:        "Heuristic",
			BuildDuration: time.Since(start),
		},
	}, nil
}
