package v1alpha1

import (
	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
)

// Known space-type labels. Inventories may define others; these are the layouts the
// venue spreadsheets use.
const (
	SpaceTypeTheatre       = "THEATRE"
	SpaceTypeReception     = "RECEPTION"
	SpaceTypeBanquet       = "BANQUET"
	SpaceTypeClassroom     = "CLASSROOM"
	SpaceTypeBoardroom     = "BOARDROOM"
	SpaceTypeUShape        = "USHAPE"
	SpaceTypeHollowSquare  = "HOLLOWSQUARE"
	SpaceTypeCrescentRound = "CRESCENT_ROUND"
)

// KnownSpaceTypes lists the standard space-type labels in display order.
var KnownSpaceTypes = []string{
	SpaceTypeTheatre,
	SpaceTypeReception,
	SpaceTypeBanquet,
	SpaceTypeClassroom,
	SpaceTypeBoardroom,
	SpaceTypeUShape,
	SpaceTypeHollowSquare,
	SpaceTypeCrescentRound,
}

// SlotSpec is a candidate time slot in "2006-01-02 15:04" form.
type SlotSpec struct {
	// Start of the slot, inclusive.
	Start string `json:"start" yaml:"start" validate:"required"`
	// End of the slot, exclusive. Must be after Start.
	End string `json:"end" yaml:"end" validate:"required"`
}

// RequestSpec is a booking request on the wire.
type RequestSpec struct {
	// Type is the space-type label the request needs (e.g. "BANQUET").
	Type string `json:"type" yaml:"type" validate:"required,max=64"`

	// Headcount is the number of attendees.
	Headcount int `json:"headcount" yaml:"headcount" validate:"required,gt=0"`

	// Slots are the candidate time slots in preference order. Exactly one is booked.
	Slots []SlotSpec `json:"slots" yaml:"slots" validate:"required,min=1,dive"`

	// AllowedRooms restricts the eligible rooms by name.
	// +optional
	AllowedRooms []string `json:"allowedRooms,omitempty" yaml:"allowedRooms,omitempty" validate:"omitempty,dive,required"`
}

// RoomSpec is a room on the wire.
type RoomSpec struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Floor int    `json:"floor" yaml:"floor"`

	// Capacity maps a space-type label to the headcount the room seats in that layout.
	Capacity map[string]int `json:"capacity" yaml:"capacity" validate:"dive,keys,required,endkeys,gte=0"`
}

// WeightsSpec overrides objective weights for one run.
type WeightsSpec struct {
	Floor *float64 `json:"floor,omitempty" yaml:"floor,omitempty" validate:"omitempty,gte=0"`
	Space *float64 `json:"space,omitempty" yaml:"space,omitempty" validate:"omitempty,gte=0"`
	Reuse *float64 `json:"reuse,omitempty" yaml:"reuse,omitempty" validate:"omitempty,gte=0"`
}

// ScheduleRequest asks for one scheduling run.
type ScheduleRequest struct {
	// Rooms replaces the configured inventory for this run.
	// +optional
	Rooms []RoomSpec `json:"rooms,omitempty" yaml:"rooms,omitempty" validate:"omitempty,dive"`

	// Requests to place. Their positions are their request IDs.
	Requests []RequestSpec `json:"requests" yaml:"requests" validate:"dive"`

	// Profile selects a named weight profile.
	// +optional
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// Weights override the profile's weights.
	// +optional
	Weights *WeightsSpec `json:"weights,omitempty" yaml:"weights,omitempty"`

	// Strategy is "optimal" (default) or "greedy".
	// +optional
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty" validate:"omitempty,oneof=optimal greedy"`
}

// AssignmentStatus is one booked request.
type AssignmentStatus struct {
	RequestID int    `json:"requestId" yaml:"requestId"`
	Room      string `json:"room" yaml:"room"`
	Start     string `json:"start" yaml:"start"`
	End       string `json:"end" yaml:"end"`
}

// ScheduleResult is the outcome of a successful run.
type ScheduleResult struct {
	RunID       string              `json:"runId" yaml:"runId"`
	Strategy    string              `json:"strategy" yaml:"strategy"`
	Assignments []AssignmentStatus  `json:"assignments" yaml:"assignments"`
	Breakdown   optimizer.Breakdown `json:"breakdown" yaml:"breakdown"`
	Stats       optimizer.Stats     `json:"stats" yaml:"stats"`
}

// ErrorResponse is returned for failed runs.
type ErrorResponse struct {
	Code        string                  `json:"code" yaml:"code"`
	Message     string                  `json:"message" yaml:"message"`
	Unsatisfied []optimizer.Unsatisfied `json:"unsatisfied,omitempty" yaml:"unsatisfied,omitempty"`
}

// Error codes of ErrorResponse.
const (
	CodeMalformedInput = "MalformedInput"
	CodeInfeasible     = "InfeasibleModel"
	CodeSolverError    = "SolverError"
	CodeInternal       = "Internal"
	CodeNotFound       = "NotFound"
)
