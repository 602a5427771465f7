package optimizer

import (
	"cmp"
	"context"
	"slices"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

// Unplaced marks a request the greedy placement could not fit.
const Unplaced = -1

// GreedyPlacement places requests one at a time: most constrained request first, each in the
// candidate that wastes the fewest seats among those still free. It never backtracks.
// The result holds, per request, the index of its chosen candidate in sets or Unplaced.
func GreedyPlacement(ctx context.Context, inv core.Inventory, requests []core.Request, sets []CandidateSet) ([]int, error) {
	order := slices.Clone(sets)
	slices.SortStableFunc(order, func(x, y CandidateSet) int {
		return cmp.Compare(len(x.Candidates), len(y.Candidates))
	})

	chosen := make([]int, len(sets))
	booked := make([][]core.TimeSlot, inv.Len())
	for _, set := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req := requests[set.Request]
		best := Unplaced
		for i, c := range set.Candidates {
			if clashes(booked[c.Room], req.Slots[c.Slot]) {
				continue
			}
			if best == Unplaced || spaceWaste(inv.Room(c.Room), req) < spaceWaste(inv.Room(set.Candidates[best].Room), req) {
				best = i
			}
		}
		chosen[set.Request] = best
		if best != Unplaced {
			c := set.Candidates[best]
			booked[c.Room] = append(booked[c.Room], req.Slots[c.Slot])
		}
	}
	return chosen, nil
}

// hintPlacement suggests the greedy placement to s as a starting solution. Nothing is
// hinted when some request stays unplaced.
func hintPlacement(ctx context.Context, s solver.Solver, inv core.Inventory, requests []core.Request, sets []CandidateSet, vs *VariableSpace) (bool, error) {
	chosen, err := GreedyPlacement(ctx, inv, requests, sets)
	if err != nil {
		return false, err
	}
	if slices.Contains(chosen, Unplaced) {
		return false, nil
	}
	for r, i := range chosen {
		c := sets[r].Candidates[i]
		if v, ok := vs.Assign(AssignKey{Room: c.Room, Request: r, Slot: c.Slot}); ok {
			s.AddHint(v, 1)
		}
	}
	return true, nil
}

func clashes(booked []core.TimeSlot, s core.TimeSlot) bool {
	for _, b := range booked {
		if b.Overlaps(s) {
			return true
		}
	}
	return false
}
