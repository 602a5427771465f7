package optimizer

import (
	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

// Breakdown is the realized value of each objective term.
// Reuse is reported as the positive amount subtracted from the objective.
type Breakdown struct {
	Floor     float64 `json:"floor" yaml:"floor"`
	Space     float64 `json:"space" yaml:"space"`
	Reuse     float64 `json:"reuse" yaml:"reuse"`
	Objective float64 `json:"objective" yaml:"objective"`
}

// floorDistance is |floor(a) - floor(b)|.
func floorDistance(a, b core.Room) float64 {
	d := a.Floor - b.Floor
	if d < 0 {
		d = -d
	}
	return float64(d)
}

// spaceWaste is the number of unused seats when request is held in room.
func spaceWaste(room core.Room, req core.Request) float64 {
	capacity, _ := room.CapacityFor(req.Type)
	return float64(capacity - req.Headcount)
}

// BuildObjective returns the minimized objective:
//
//	floor·Σ L·|floor(a) - floor(b)| + space·Σ a·(capacity - headcount) - reuse·Σ a
func BuildObjective(inv core.Inventory, requests []core.Request, vs *VariableSpace, spec config.OptimizerSpec) []solver.Term {
	var terms []solver.Term
	for _, k := range vs.LinkKeys() {
		l, _ := vs.Link(k)
		coef := spec.FloorWeight * floorDistance(inv.Room(k.RoomA), inv.Room(k.RoomB))
		terms = append(terms, solver.Term{Var: l, Coef: coef})
	}
	for _, k := range vs.AssignKeys() {
		a, _ := vs.Assign(k)
		coef := spec.SpaceWeight*spaceWaste(inv.Room(k.Room), requests[k.Request]) - spec.ReuseWeight
		terms = append(terms, solver.Term{Var: a, Coef: coef})
	}
	return terms
}

// realize evaluates each objective term at the solver's solution.
func realize(s solver.Solver, inv core.Inventory, requests []core.Request, vs *VariableSpace, spec config.OptimizerSpec) Breakdown {
	var b Breakdown
	for _, k := range vs.LinkKeys() {
		l, _ := vs.Link(k)
		if s.Value(l) > 0.5 {
			b.Floor += spec.FloorWeight * floorDistance(inv.Room(k.RoomA), inv.Room(k.RoomB))
		}
	}
	for _, k := range vs.AssignKeys() {
		a, _ := vs.Assign(k)
		if s.Value(a) > 0.5 {
			b.Space += spec.SpaceWeight * spaceWaste(inv.Room(k.Room), requests[k.Request])
			b.Reuse += spec.ReuseWeight
		}
	}
	b.Objective = b.Floor + b.Space - b.Reuse
	return b
}

// Evaluate computes the objective terms of a complete schedule produced outside the solver.
// No two rooms are ever chosen for one request, so the floor term is 0.
func Evaluate(inv core.Inventory, requests []core.Request, assignments []core.Assignment, spec config.OptimizerSpec) Breakdown {
	var b Breakdown
	byID := make(map[int]core.Request, len(requests))
	for _, r := range requests {
		byID[r.ID] = r
	}
	for _, a := range assignments {
		req, ok := byID[a.RequestID]
		room := inv.Index(a.RoomName)
		if !ok || room < 0 {
			continue
		}
		b.Space += spec.SpaceWeight * spaceWaste(inv.Room(room), req)
		b.Reuse += spec.ReuseWeight
	}
	b.Objective = b.Floor + b.Space - b.Reuse
	return b
}
