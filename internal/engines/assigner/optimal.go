package assigner

import (
	"context"
	"fmt"

	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

// OptimalAssignerConfig holds configuration for the OptimalAssigner
type OptimalAssignerConfig struct {
	Spec    *config.OptimizerSpec
	Backend solver.Backend
}

// OptimalAssigner solves the full assignment model and returns a provably optimal schedule
type OptimalAssigner struct {
	config    *OptimalAssignerConfig
	optimizer *optimizer.Optimizer
}

// NewOptimalAssigner creates a new OptimalAssigner instance.
func NewOptimalAssigner(cfg *OptimalAssignerConfig) (*OptimalAssigner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Spec == nil {
		return nil, fmt.Errorf("optimizer spec cannot be nil")
	}
	opt, err := optimizer.NewOptimizer(cfg.Spec, optimizer.WithBackend(cfg.Backend))
	if err != nil {
		return nil, err
	}
	return &OptimalAssigner{config: cfg, optimizer: opt}, nil
}

// Assign runs the optimizer over the requests
func (a *OptimalAssigner) Assign(ctx context.Context, inv core.Inventory, requests []core.Request) (*optimizer.Result, error) {
	logger := logging.FromContext(ctx)
	logger.V(logging.DEBUG).Info("Running optimal assignment", "rooms", inv.Len(), "requests", len(requests))
	result, err := a.optimizer.Optimize(ctx, inv, requests)
	if err != nil {
		return nil, err
	}
	result.Stats.Strategy = OptimalStrategy.String()
	return result, nil
}
