package optimizer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

// Family groups constraints by the rule they encode.
type Family string

const (
	FamilyExactlyOne Family = "ExactlyOne"
	FamilyNoOverlap  Family = "NoOverlap"
	FamilyLink       Family = "Link"
)

// Constraint is a linear row over model variables.
type Constraint struct {
	Family Family
	Terms  []solver.Term
	Sense  solver.Sense
	RHS    float64
}

// ConstraintCounts tallies generated constraints per family.
type ConstraintCounts struct {
	ExactlyOne int `json:"exactlyOne" yaml:"exactlyOne"`
	NoOverlap  int `json:"noOverlap" yaml:"noOverlap"`
	Link       int `json:"link" yaml:"link"`
}

// Total is the number of constraints across all families.
func (c ConstraintCounts) Total() int {
	return c.ExactlyOne + c.NoOverlap + c.Link
}

// GenerateConstraints produces the constraint families of the model in a fixed order:
// exactly-one per request, no-overlap per room (rooms processed in parallel, concatenated
// in room order), then link linearization rows.
func GenerateConstraints(ctx context.Context, inv core.Inventory, requests []core.Request,
	sets []CandidateSet, vs *VariableSpace, workers int) ([]Constraint, ConstraintCounts, error) {

	var counts ConstraintCounts
	var out []Constraint

	for _, set := range sets {
		if set.Empty() {
			continue
		}
		terms := make([]solver.Term, 0, len(set.Candidates))
		for _, c := range set.Candidates {
			if v, ok := vs.Assign(AssignKey{Room: c.Room, Request: set.Request, Slot: c.Slot}); ok {
				terms = append(terms, solver.Term{Var: v, Coef: 1})
			}
		}
		out = append(out, Constraint{Family: FamilyExactlyOne, Terms: terms, Sense: solver.Equal, RHS: 1})
		counts.ExactlyOne++
	}

	perRoom := make([][]Constraint, inv.Len())
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for r := range perRoom {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perRoom[r] = noOverlapRows(r, requests, sets, vs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ConstraintCounts{}, err
	}
	for _, rows := range perRoom {
		out = append(out, rows...)
		counts.NoOverlap += len(rows)
	}

	for _, k := range vs.LinkKeys() {
		l, _ := vs.Link(k)
		a, _ := vs.Assign(k.A())
		b, _ := vs.Assign(k.B())
		out = append(out,
			Constraint{Family: FamilyLink, Terms: []solver.Term{{Var: l, Coef: 1}, {Var: a, Coef: -1}}, Sense: solver.LessOrEqual, RHS: 0},
			Constraint{Family: FamilyLink, Terms: []solver.Term{{Var: l, Coef: 1}, {Var: b, Coef: -1}}, Sense: solver.LessOrEqual, RHS: 0},
			Constraint{Family: FamilyLink, Terms: []solver.Term{{Var: l, Coef: 1}, {Var: a, Coef: -1}, {Var: b, Coef: -1}}, Sense: solver.GreaterOrEqual, RHS: -1},
		)
		counts.Link += 3
	}
	return out, counts, nil
}

// noOverlapRows emits a1 + a2 <= 1 for every unordered pair of distinct requests and
// every pair of their overlapping slots that both have a variable in room r.
func noOverlapRows(r int, requests []core.Request, sets []CandidateSet, vs *VariableSpace) []Constraint {
	type slotVar struct {
		slot core.TimeSlot
		v    solver.Var
	}
	byRequest := make([][]slotVar, len(requests))
	for _, set := range sets {
		for _, c := range set.Candidates {
			if c.Room != r {
				continue
			}
			if v, ok := vs.Assign(AssignKey{Room: r, Request: set.Request, Slot: c.Slot}); ok {
				byRequest[set.Request] = append(byRequest[set.Request], slotVar{slot: requests[set.Request].Slots[c.Slot], v: v})
			}
		}
	}

	var rows []Constraint
	for i := range byRequest {
		for j := i + 1; j < len(byRequest); j++ {
			for _, x := range byRequest[i] {
				for _, y := range byRequest[j] {
					if !x.slot.Overlaps(y.slot) {
						continue
					}
					rows = append(rows, Constraint{
						Family: FamilyNoOverlap,
						Terms:  []solver.Term{{Var: x.v, Coef: 1}, {Var: y.v, Coef: 1}},
						Sense:  solver.LessOrEqual,
						RHS:    1,
					})
				}
			}
		}
	}
	return rows
}
