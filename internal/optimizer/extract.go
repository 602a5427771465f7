package optimizer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

// extractAssignments reads the chosen (room, slot) of every request from an optimal solution.
// Each request must have exactly one assignment variable at 1.
func extractAssignments(s solver.Solver, inv core.Inventory, requests []core.Request, vs *VariableSpace) ([]core.Assignment, error) {
	chosen := make([][]AssignKey, len(requests))
	for _, k := range vs.AssignKeys() {
		v, _ := vs.Assign(k)
		if s.Value(v) > 0.5 {
			chosen[k.Request] = append(chosen[k.Request], k)
		}
	}

	assignments := make([]core.Assignment, 0, len(requests))
	for i, keys := range chosen {
		if len(keys) != 1 {
			return nil, &SolverError{
				Status: s.Status(),
				Cause:  fmt.Errorf("request %d received %d assignments in an optimal solution", requests[i].ID, len(keys)),
			}
		}
		k := keys[0]
		assignments = append(assignments, core.Assignment{
			RequestID: requests[i].ID,
			RoomName:  inv.Room(k.Room).Name,
			Slot:      requests[i].Slots[k.Slot],
		})
	}
	slices.SortStableFunc(assignments, func(a, b core.Assignment) int {
		return cmp.Compare(a.RequestID, b.RequestID)
	})
	return assignments, nil
}
