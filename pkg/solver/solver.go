/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package solver

import (
	"context"
	"fmt"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
)

// Var identifies a decision variable within one Solver instance.
type Var int

// Term is a coefficient applied to a variable in a linear expression.
type Term struct {
	Var  Var
	Coef float64
}

// Sense is the relation of a linear constraint.
type Sense int

// enumeration of Sense
const (
	LessOrEqual Sense = iota
	Equal
	GreaterOrEqual
)

func (s Sense) String() string {
	switch s {
	case LessOrEqual:
		return "<="
	case Equal:
		return "=="
	case GreaterOrEqual:
		return ">="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Status is the outcome of a solve.
type Status int

// enumeration of Status
const (
	// NotSolved means Minimize has not been called yet.
	NotSolved Status = iota
	// Optimal means a provably optimal solution was found.
	Optimal
	// Feasible means a solution was found but the budget ran out before optimality was proven.
	Feasible
	// Infeasible means no assignment satisfies the constraints.
	Infeasible
	// LimitReached means the budget ran out before any solution was found.
	LimitReached
	// Error means the engine failed to produce a definitive answer.
	Error
)

func (s Status) String() string {
	switch s {
	case NotSolved:
		return "NotSolved"
	case Optimal:
		return "Optimal"
	case Feasible:
		return "Feasible"
	case Infeasible:
		return "Infeasible"
	case LimitReached:
		return "LimitReached"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Solver is a minimizing 0/1 linear program builder and engine.
// A Solver instance serves one model; it is not safe for concurrent use.
type Solver interface {
	// NewBoolVar declares a variable restricted to {0, 1}. The name is a display label only.
	NewBoolVar(name string) Var
	// AddConstraint adds Σ terms (sense) rhs.
	AddConstraint(terms []Term, sense Sense, rhs float64)
	// SetObjective replaces the linear objective to minimize.
	SetObjective(terms []Term)
	// AddHint suggests a value for v. A complete feasible hint becomes the first incumbent.
	AddHint(v Var, value float64)
	// Minimize runs the search and returns its status. It blocks until the search finishes,
	// the budget is exhausted or ctx is done.
	Minimize(ctx context.Context) Status
	// Status returns the status of the last Minimize call.
	Status() Status
	// Value returns the value of v in the best solution found, or 0 if there is none.
	Value(v Var) float64
	// ObjectiveValue returns the objective of the best solution found.
	ObjectiveValue() float64
	// Nodes returns the number of search nodes explored by the last Minimize call.
	Nodes() int
	// Err returns the engine failure behind an Error status, if any.
	Err() error
}

// Backend is an enumeration of the available solver implementations
type Backend int

// enumeration of Backend
const (
	BranchAndBoundBackend Backend = iota
)

// ParseBackend maps a configuration name to a Backend.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "", "branch-and-bound", "bnb":
		return BranchAndBoundBackend, nil
	default:
		return 0, fmt.Errorf("unsupported solver backend: %q", name)
	}
}

// NewSolver is a factory that creates a new Solver based on the provided backend.
// The budget is taken from spec.WithDefaults(), so a zero TimeLimit or MaxNodes in spec
// selects the default limit; solvers built here are always bounded.
func NewSolver(backend Backend, spec *config.OptimizerSpec) (Solver, error) {
	if spec == nil {
		return nil, fmt.Errorf("optimizer spec cannot be nil")
	}
	switch backend {
	case BranchAndBoundBackend:
		s := spec.WithDefaults()
		return NewBranchAndBound(s.TimeLimit, s.MaxNodes), nil
	default:
		return nil, fmt.Errorf("unsupported solver backend: %v", backend)
	}
}
