// Package solver defines the mixed-integer optimization capability used by the scheduler
// and provides a pure-Go backend for it.
//
// Key Components:
//
//   - Solver: abstract interface (declare boolean variables, add linear constraints, set a
//     linear objective, minimize, read status and values)
//   - BranchAndBound: 0/1 branch-and-bound backend solving LP relaxations with gonum's
//     simplex implementation
//   - NewSolver: factory selecting a backend by Backend enumeration
//
// Example usage:
//
//	s, err := solver.NewSolver(solver.BranchAndBoundBackend, &spec)
//	if err != nil {
//	    return err
//	}
//	x := s.NewBoolVar("x")
//	y := s.NewBoolVar("y")
//	s.AddConstraint([]solver.Term{{Var: x, Coef: 1}, {Var: y, Coef: 1}}, solver.Equal, 1)
//	s.SetObjective([]solver.Term{{Var: x, Coef: 3}, {Var: y, Coef: 2}})
//
//	if status := s.Minimize(ctx); status != solver.Optimal {
//	    return fmt.Errorf("no optimal solution: %s", status)
//	}
//	log.Info("solved", "x", s.Value(x), "y", s.Value(y), "objective", s.ObjectiveValue())
//
// Search strategy:
//
//  1. Presolve at the root: drop constraints that no 0/1 point can violate, fix variables
//     whose every appearance pushes them to one bound (dual fixing)
//  2. Depth-first search; each node substitutes its fixed variables and solves the LP
//     relaxation of what is left
//  3. Branch on the most fractional variable, rounded side first
//  4. Prune nodes whose relaxation bound cannot beat the incumbent
//
// The search is deterministic: the same model always yields the same solution. A wall-clock
// limit and a node budget bound the search; exhausting either yields Feasible (incumbent
// found, optimality not proven) or LimitReached (nothing found), never Optimal.
package solver
