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
	"math"
	"time"

	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
)

const (
	// integralityTol is how far from 0 or 1 a relaxation value may be and still count as integral.
	integralityTol = 1e-6
	// pruneTol is the relative objective margin a node must beat the incumbent by.
	pruneTol = 1e-9
)

// BranchAndBound is a depth-first branch-and-bound Solver for 0/1 linear programs.
type BranchAndBound struct {
	model

	timeLimit time.Duration
	maxNodes  int

	status  Status
	best    []float64
	bestObj float64
	nodes   int
	failure error
}

var _ Solver = (*BranchAndBound)(nil)

// NewBranchAndBound creates an empty model. A zero timeLimit or maxNodes disables that
// limit; use NewSolver for a budget that is always bounded.
func NewBranchAndBound(timeLimit time.Duration, maxNodes int) *BranchAndBound {
	return &BranchAndBound{
		timeLimit: timeLimit,
		maxNodes:  maxNodes,
	}
}

// Minimize runs the search.
func (b *BranchAndBound) Minimize(ctx context.Context) Status {
	logger := logging.FromContext(ctx)
	b.best, b.bestObj, b.nodes, b.failure = nil, 0, 0, nil

	if b.err != nil {
		return b.finish(Error, b.err)
	}
	if b.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeLimit)
		defer cancel()
	}
	start := time.Now()

	pre := presolve(&b.model)
	if pre.infeasible {
		logger.V(logging.DEBUG).Info("Presolve proved the model infeasible")
		return b.finish(Infeasible, nil)
	}
	logger.V(logging.DEBUG).Info("Presolve complete",
		"variables", len(b.obj),
		"constraints", len(b.rows),
		"fixedVariables", pre.fixedVars,
		"removedConstraints", pre.removedRows,
		"cliques", len(pre.cliques))

	incumbent := math.Inf(1)
	if x, ok := b.hinted(); ok {
		incumbent = b.objective(x)
		b.best, b.bestObj = x, incumbent
		logger.V(logging.DEBUG).Info("Hint accepted as incumbent", "objective", incumbent)
	} else if len(b.hints) > 0 {
		logger.V(logging.DEBUG).Info("Hint rejected: it violates a constraint")
	}
	integral := integralObjective(b.obj)
	stack := [][]int8{pre.fixed}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			logger.Info("Search stopped before proving optimality", "reason", err, "nodes", b.nodes)
			return b.stopped()
		}
		if b.maxNodes > 0 && b.nodes >= b.maxNodes {
			logger.Info("Search stopped before proving optimality", "reason", "node budget exhausted", "nodes", b.nodes)
			return b.stopped()
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b.nodes++

		rel, err := relax(ctx, &b.model, &pre, node)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Search stopped before proving optimality", "reason", ctx.Err(), "nodes", b.nodes)
				return b.stopped()
			}
			return b.finish(Error, fmt.Errorf("relaxation at node %d: %w", b.nodes, err))
		}
		if rel.infeasible || dominated(rel.bound, incumbent, integral) {
			continue
		}

		j := mostFractional(rel.x, node)
		if j < 0 {
			x := rounded(rel.x)
			if !b.feasible(x) {
				continue
			}
			if obj := b.objective(x); obj < incumbent {
				incumbent = obj
				b.best, b.bestObj = x, obj
				logger.V(logging.TRACE).Info("New incumbent", "objective", obj, "nodes", b.nodes)
			}
			continue
		}

		down := append([]int8(nil), node...)
		down[j] = 0
		up := append([]int8(nil), node...)
		up[j] = 1
		// the child closer to the relaxation value is explored first
		if rel.x[j] >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	logger.V(logging.DEBUG).Info("Search complete", "nodes", b.nodes, "duration", time.Since(start))
	if b.best == nil {
		return b.finish(Infeasible, nil)
	}
	return b.finish(Optimal, nil)
}

func (b *BranchAndBound) stopped() Status {
	if b.best != nil {
		return b.finish(Feasible, nil)
	}
	return b.finish(LimitReached, nil)
}

func (b *BranchAndBound) finish(status Status, err error) Status {
	b.status = status
	b.failure = err
	if status == Error || status == Infeasible || status == LimitReached {
		b.best, b.bestObj = nil, 0
	}
	return status
}

// Status returns the status of the last Minimize call.
func (b *BranchAndBound) Status() Status {
	return b.status
}

// Value returns the value of v in the best solution.
func (b *BranchAndBound) Value(v Var) float64 {
	if b.best == nil || !b.valid(v) {
		return 0
	}
	return b.best[v]
}

// ObjectiveValue returns the objective of the best solution.
func (b *BranchAndBound) ObjectiveValue() float64 {
	return b.bestObj
}

// Nodes returns the number of nodes explored by the last search.
func (b *BranchAndBound) Nodes() int {
	return b.nodes
}

// Err returns the failure behind an Error status.
func (b *BranchAndBound) Err() error {
	return b.failure
}

// dominated reports whether a node with relaxation bound cannot improve on incumbent.
// With integral objective coefficients every solution value is an integer, so the bound
// is rounded up first.
func dominated(bound, incumbent float64, integral bool) bool {
	if math.IsInf(incumbent, 1) {
		return false
	}
	if integral {
		bound = math.Ceil(bound - integralityTol)
	}
	return bound >= incumbent-pruneTol*math.Max(1, math.Abs(incumbent))
}

func integralObjective(obj []float64) bool {
	for _, c := range obj {
		if c != math.Trunc(c) {
			return false
		}
	}
	return true
}

// mostFractional returns the free variable whose value is farthest from integral, or -1.
// Ties go to the lowest index.
func mostFractional(x []float64, fixed []int8) int {
	best, bestFrac := -1, integralityTol
	for j, v := range x {
		if fixed[j] >= 0 {
			continue
		}
		f := v - math.Floor(v)
		if frac := math.Min(f, 1-f); frac > bestFrac {
			best, bestFrac = j, frac
		}
	}
	return best
}

func rounded(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = math.Round(v)
	}
	return out
}
