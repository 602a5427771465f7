package assigner

import (
	"context"
	"fmt"
	"strings"

	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

// Assigner is an interface that defines the method for placing booking requests into rooms
type Assigner interface {
	// Assign places every request in exactly one (room, slot), or fails without a partial schedule
	Assign(ctx context.Context, inv core.Inventory, requests []core.Request) (*optimizer.Result, error)
}

// Strategy is an enumeration of the different strategies that can be used by the Assigner
type Strategy int

// enumeration of Strategy
const (
	OptimalStrategy Strategy = iota
	GreedyStrategy
)

func (s Strategy) String() string {
	switch s {
	case OptimalStrategy:
		return "optimal"
	case GreedyStrategy:
		return "greedy"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration name to a Strategy. An empty name selects OptimalStrategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "optimal":
		return OptimalStrategy, nil
	case "greedy":
		return GreedyStrategy, nil
	default:
		return 0, fmt.Errorf("unsupported assigner strategy: %q", name)
	}
}

// NewAssigner is a factory that creates a new Assigner based on the provided strategy
func NewAssigner(strategy Strategy, spec *config.OptimizerSpec) (Assigner, error) {
	switch strategy {
	case OptimalStrategy:
		return NewOptimalAssigner(&OptimalAssignerConfig{Spec: spec})
	case GreedyStrategy:
		return NewGreedyAssigner(&GreedyAssignerConfig{Spec: spec})
	default:
		return nil, fmt.Errorf("unsupported assigner strategy: %v", strategy)
	}
}
