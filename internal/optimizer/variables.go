package optimizer

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

// AssignKey identifies the decision "request is held in room during slot".
type AssignKey struct {
	Room    int
	Request int
	Slot    int
}

func (k AssignKey) String() string {
	return fmt.Sprintf("room_%d_req_%d_time_%d", k.Room, k.Request, k.Slot)
}

func compareAssign(a, b AssignKey) int {
	if c := cmp.Compare(a.Room, b.Room); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Request, b.Request); c != 0 {
		return c
	}
	return cmp.Compare(a.Slot, b.Slot)
}

// LinkKey identifies the indicator of two rooms being chosen together for one request and slot.
// RoomA is always lower than RoomB.
type LinkKey struct {
	RoomA   int
	RoomB   int
	Request int
	Slot    int
}

// NewLinkKey orders the two rooms so that each unordered pair has a single key.
func NewLinkKey(roomA, roomB, request, slot int) LinkKey {
	if roomB < roomA {
		roomA, roomB = roomB, roomA
	}
	return LinkKey{RoomA: roomA, RoomB: roomB, Request: request, Slot: slot}
}

// A is the assignment key of the first room.
func (k LinkKey) A() AssignKey {
	return AssignKey{Room: k.RoomA, Request: k.Request, Slot: k.Slot}
}

// B is the assignment key of the second room.
func (k LinkKey) B() AssignKey {
	return AssignKey{Room: k.RoomB, Request: k.Request, Slot: k.Slot}
}

func (k LinkKey) String() string {
	return fmt.Sprintf("aux_%d_%d_%d_%d", k.RoomA, k.RoomB, k.Request, k.Slot)
}

func compareLink(a, b LinkKey) int {
	if c := cmp.Compare(a.RoomA, b.RoomA); c != 0 {
		return c
	}
	if c := cmp.Compare(a.RoomB, b.RoomB); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Request, b.Request); c != 0 {
		return c
	}
	return cmp.Compare(a.Slot, b.Slot)
}

// VariableSpace is the shared index from keys to solver variables.
// Keys may be registered concurrently; Allocate then numbers them once, in sorted key order,
// and Declare creates the matching variables on a solver.
type VariableSpace struct {
	mu           sync.RWMutex
	assign       map[AssignKey]solver.Var
	link         map[LinkKey]solver.Var
	assignKeys   []AssignKey
	linkKeys     []LinkKey
	materialized bool
}

const unallocated solver.Var = -1

// NewVariableSpace returns an empty variable space.
func NewVariableSpace() *VariableSpace {
	return &VariableSpace{
		assign: make(map[AssignKey]solver.Var),
		link:   make(map[LinkKey]solver.Var),
	}
}

// RegisterAssign records an assignment key; it reports false if the key was already known.
func (vs *VariableSpace) RegisterAssign(k AssignKey) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if _, ok := vs.assign[k]; ok {
		return false
	}
	vs.assign[k] = unallocated
	return true
}

// RegisterLink records a link key; it reports false if the key was already known.
func (vs *VariableSpace) RegisterLink(k LinkKey) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if _, ok := vs.link[k]; ok {
		return false
	}
	vs.link[k] = unallocated
	return true
}

// Allocate numbers the registered keys: assignment variables first, then link variables,
// each group in ascending key order. Calling it again is a no-op.
func (vs *VariableSpace) Allocate() {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if vs.materialized {
		return
	}
	vs.assignKeys = make([]AssignKey, 0, len(vs.assign))
	for k := range vs.assign {
		vs.assignKeys = append(vs.assignKeys, k)
	}
	slices.SortFunc(vs.assignKeys, compareAssign)
	for i, k := range vs.assignKeys {
		vs.assign[k] = solver.Var(i)
	}

	vs.linkKeys = make([]LinkKey, 0, len(vs.link))
	for k := range vs.link {
		vs.linkKeys = append(vs.linkKeys, k)
	}
	slices.SortFunc(vs.linkKeys, compareLink)
	for i, k := range vs.linkKeys {
		vs.link[k] = solver.Var(len(vs.assignKeys) + i)
	}
	vs.materialized = true
}

// Declare creates the allocated variables on a fresh solver, in variable order.
func (vs *VariableSpace) Declare(s solver.Solver) error {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	if !vs.materialized {
		return fmt.Errorf("variable space is not allocated")
	}
	for _, k := range vs.assignKeys {
		if v := s.NewBoolVar(k.String()); v != vs.assign[k] {
			return fmt.Errorf("solver declared %s as variable %d, expected %d", k, v, vs.assign[k])
		}
	}
	for _, k := range vs.linkKeys {
		if v := s.NewBoolVar(k.String()); v != vs.link[k] {
			return fmt.Errorf("solver declared %s as variable %d, expected %d", k, v, vs.link[k])
		}
	}
	return nil
}

// Materialize allocates the variables and declares them on s.
func (vs *VariableSpace) Materialize(s solver.Solver) error {
	vs.Allocate()
	return vs.Declare(s)
}

// Assign returns the variable of an assignment key, if it exists and has been materialized.
func (vs *VariableSpace) Assign(k AssignKey) (solver.Var, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	v, ok := vs.assign[k]
	return v, ok && v != unallocated
}

// Link returns the variable of a link key, if it exists and has been materialized.
func (vs *VariableSpace) Link(k LinkKey) (solver.Var, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	v, ok := vs.link[k]
	return v, ok && v != unallocated
}

// AssignKeys returns the materialized assignment keys in variable order.
func (vs *VariableSpace) AssignKeys() []AssignKey {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return slices.Clone(vs.assignKeys)
}

// LinkKeys returns the materialized link keys in variable order.
func (vs *VariableSpace) LinkKeys() []LinkKey {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return slices.Clone(vs.linkKeys)
}

// NumAssign is the number of registered assignment keys.
func (vs *VariableSpace) NumAssign() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.assign)
}

// NumLink is the number of registered link keys.
func (vs *VariableSpace) NumLink() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.link)
}

// BuildVariableSpace registers the keys of every candidate: one assignment key per
// (room, request, slot) candidate and one link key per unordered pair of distinct
// candidate rooms sharing a request and slot. Requests are processed in parallel.
func BuildVariableSpace(ctx context.Context, sets []CandidateSet, workers int) (*VariableSpace, error) {
	vs := NewVariableSpace()
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, set := range sets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			roomsBySlot := make(map[int][]int)
			for _, c := range set.Candidates {
				vs.RegisterAssign(AssignKey{Room: c.Room, Request: set.Request, Slot: c.Slot})
				roomsBySlot[c.Slot] = append(roomsBySlot[c.Slot], c.Room)
			}
			for slot, rooms := range roomsBySlot {
				for i := 0; i < len(rooms); i++ {
					for j := i + 1; j < len(rooms); j++ {
						if rooms[i] == rooms[j] {
							continue
						}
						vs.RegisterLink(NewLinkKey(rooms[i], rooms[j], set.Request, slot))
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vs, nil
}
