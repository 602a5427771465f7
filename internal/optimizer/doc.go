// Package optimizer builds and solves the room-assignment model of a scheduling run.
//
// The optimizer follows a pipeline pattern; data flows strictly forward:
//
//	Candidate Filter → Variable Space → Constraints → Objective → Solver → Extraction
//
// Example usage:
//
//	opt, err := optimizer.NewOptimizer(&spec)
//	if err != nil {
//	    return err
//	}
//
//	result, err := opt.Optimize(ctx, inventory, requests)
//	if err != nil {
//	    var infeasible *optimizer.InfeasibleError
//	    if errors.As(err, &infeasible) {
//	        for _, u := range infeasible.Unsatisfied {
//	            log.Info("request cannot be placed", "request", u.RequestID, "reason", u.Reason)
//	        }
//	    }
//	    return err
//	}
//
//	for _, a := range result.Assignments {
//	    log.Info("assignment", "request", a.RequestID, "room", a.RoomName, "slot", a.Slot)
//	}
//
// Model:
//
//  1. Candidate Filter
//     - A (room, slot) pair is a candidate for a request when the room offers the request's
//       space type with enough capacity and is in the request's allowed rooms
//     - Requests without candidates fail the run before any solving, each with a reason
//
//  2. Variable Space
//     - One 0/1 assignment variable per (room, request, slot) candidate
//     - One 0/1 link variable per unordered pair of candidate rooms sharing a request and slot
//     - Keys are structs used directly as map keys; variable names are display labels only
//
//  3. Constraints
//     - Exactly one assignment per request across all its rooms and slots
//     - Per room, at most one of two assignments whose slots overlap
//     - Link variable L of a and b: L <= a, L <= b, L >= a + b - 1
//
//  4. Objective (minimized)
//     floorWeight·Σ L·|floor(r) - floor(r')| + spaceWeight·Σ a·(capacity - headcount)
//     - reuseWeight·Σ a
//
// Under the exactly-one constraint two rooms are never chosen for the same request, so every
// link variable is 0 at any feasible point and the reuse term is the constant
// reuseWeight·len(requests). Both terms are kept exactly as formulated; the floor term is
// therefore always 0 in the realized breakdown.
//
// The model is built once per run, solved once, and discarded.
package optimizer
