package v1alpha1

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and slot ordering. Failures wrap
// optimizer.ErrMalformedInput.
func (r *ScheduleRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", optimizer.ErrMalformedInput, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", optimizer.ErrMalformedInput, err)
	}
	if _, err := r.ToCore(); err != nil {
		return err
	}
	if len(r.Rooms) > 0 {
		if _, err := r.Inventory(); err != nil {
			return err
		}
	}
	return nil
}

// ToCore converts the requests to core requests numbered by position.
func (r *ScheduleRequest) ToCore() ([]core.Request, error) {
	out := make([]core.Request, len(r.Requests))
	for i, spec := range r.Requests {
		slots := make([]core.TimeSlot, len(spec.Slots))
		for j, s := range spec.Slots {
			slot, err := core.ParseTimeSlot(strings.TrimSpace(s.Start), strings.TrimSpace(s.End))
			if err != nil {
				return nil, fmt.Errorf("%w: request %d slot %d: %v", optimizer.ErrMalformedInput, i, j, err)
			}
			if !slot.Valid() {
				return nil, fmt.Errorf("%w: request %d slot %d: start %s is not before end %s",
					optimizer.ErrMalformedInput, i, j, s.Start, s.End)
			}
			slots[j] = slot
		}
		out[i] = core.Request{
			ID:           i,
			Type:         strings.ToUpper(strings.TrimSpace(spec.Type)),
			Headcount:    spec.Headcount,
			Slots:        slots,
			AllowedRooms: core.RoomSet(spec.AllowedRooms...),
		}
	}
	return out, nil
}

// Inventory converts the inline rooms, keeping their order.
func (r *ScheduleRequest) Inventory() (core.Inventory, error) {
	seen := make(map[string]struct{}, len(r.Rooms))
	rooms := make([]core.Room, len(r.Rooms))
	for i, spec := range r.Rooms {
		if _, dup := seen[spec.Name]; dup {
			return core.Inventory{}, fmt.Errorf("%w: duplicate room %q", optimizer.ErrMalformedInput, spec.Name)
		}
		seen[spec.Name] = struct{}{}
		capacity := make(map[string]int, len(spec.Capacity))
		for t, n := range spec.Capacity {
			capacity[strings.ToUpper(strings.TrimSpace(t))] = n
		}
		rooms[i] = core.NewRoom(spec.Name, spec.Floor, capacity)
	}
	return core.NewInventory(rooms...), nil
}

// Apply overlays the set weights on a spec.
func (w *WeightsSpec) Apply(spec config.OptimizerSpec) config.OptimizerSpec {
	if w == nil {
		return spec
	}
	if w.Floor != nil {
		spec.FloorWeight = *w.Floor
	}
	if w.Space != nil {
		spec.SpaceWeight = *w.Space
	}
	if w.Reuse != nil {
		spec.ReuseWeight = *w.Reuse
	}
	return spec
}

// FromRoom converts a core room to its wire form.
func FromRoom(room core.Room) RoomSpec {
	capacity := make(map[string]int, len(room.Capacity))
	for t := range room.Capacity {
		capacity[t], _ = room.CapacityFor(t)
	}
	return RoomSpec{Name: room.Name, Floor: room.Floor, Capacity: capacity}
}

// NewScheduleResult converts a run result to its wire form.
func NewScheduleResult(result *optimizer.Result) ScheduleResult {
	out := ScheduleResult{
		RunID:       result.Stats.RunID,
		Strategy:    result.Stats.Strategy,
		Assignments: make([]AssignmentStatus, len(result.Assignments)),
		Breakdown:   result.Breakdown,
		Stats:       result.Stats,
	}
	for i, a := range result.Assignments {
		out.Assignments[i] = AssignmentStatus{
			RequestID: a.RequestID,
			Room:      a.RoomName,
			Start:     a.Slot.Start.Format(core.SlotLayout),
			End:       a.Slot.End.Format(core.SlotLayout),
		}
	}
	return out
}

// NewErrorResponse classifies err into a response body.
func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Code: CodeInternal, Message: err.Error()}
	var infeasible *optimizer.InfeasibleError
	switch {
	case errors.As(err, &infeasible):
		resp.Code = CodeInfeasible
		resp.Unsatisfied = infeasible.Unsatisfied
	case errors.Is(err, optimizer.ErrInfeasibleModel):
		resp.Code = CodeInfeasible
	case errors.Is(err, optimizer.ErrMalformedInput):
		resp.Code = CodeMalformedInput
	case errors.Is(err, optimizer.ErrSolver):
		resp.Code = CodeSolverError
	}
	return resp
}
