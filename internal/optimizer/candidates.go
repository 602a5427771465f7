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

package optimizer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

// Candidate is a feasible (room index, slot index) pair of a request.
type Candidate struct {
	Room int
	Slot int
}

// CandidateSet holds the candidates of one request, ordered by room then slot.
// Reason is set only when Candidates is empty.
type CandidateSet struct {
	Request    int
	Candidates []Candidate
	Reason     Reason
}

// Empty reports whether the request has no candidate.
func (c CandidateSet) Empty() bool {
	return len(c.Candidates) == 0
}

// FilterCandidates enumerates, for every request, the (room, slot) pairs it may be assigned.
// Requests are filtered in parallel, at most workers at a time; each writes only its own
// entry of the result.
func FilterCandidates(ctx context.Context, inv core.Inventory, requests []core.Request, workers int) ([]CandidateSet, error) {
	sets := make([]CandidateSet, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range requests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sets[i] = filterRequest(inv, requests[i], i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

func filterRequest(inv core.Inventory, req core.Request, index int) CandidateSet {
	set := CandidateSet{Request: index}
	var offered, largeEnough bool
	for r, room := range inv.Rooms {
		capacity, ok := room.CapacityFor(req.Type)
		if !ok {
			continue
		}
		offered = true
		if capacity < req.Headcount {
			continue
		}
		largeEnough = true
		if !req.AllowsRoom(room.Name) {
			continue
		}
		for t := range req.Slots {
			set.Candidates = append(set.Candidates, Candidate{Room: r, Slot: t})
		}
	}
	if set.Empty() {
		switch {
		case !offered:
			set.Reason = ReasonUnknownType
		case !largeEnough:
			set.Reason = ReasonInsufficientCapacity
		case len(req.Slots) == 0:
			set.Reason = ReasonNoSlots
		default:
			set.Reason = ReasonRoomRestriction
		}
	}
	return set
}
