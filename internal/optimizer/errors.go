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
	"errors"
	"fmt"
	"strings"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

var (
	// ErrInfeasibleModel is returned when no assignment satisfies every request.
	ErrInfeasibleModel = errors.New("scheduling model is infeasible")
	// ErrSolver is returned when the engine fails to reach a definitive optimal outcome.
	ErrSolver = errors.New("solver did not reach an optimal solution")
	// ErrMalformedInput is returned for requests the scheduler cannot interpret.
	ErrMalformedInput = errors.New("malformed scheduling input")
)

// Reason explains why a request has no candidate (room, slot) pair.
type Reason string

const (
	// ReasonUnknownType means no room in the inventory offers the request's space type.
	ReasonUnknownType Reason = "UnknownSpaceType"
	// ReasonInsufficientCapacity means no room offering the type seats the headcount.
	ReasonInsufficientCapacity Reason = "InsufficientCapacity"
	// ReasonRoomRestriction means rooms large enough exist but none is in the allowed set.
	ReasonRoomRestriction Reason = "RoomRestriction"
	// ReasonNoSlots means the request has no candidate time slot.
	ReasonNoSlots Reason = "NoCandidateSlots"
	// ReasonContention means candidates exist but all of them clash with other bookings.
	ReasonContention Reason = "Contention"
)

// Unsatisfied identifies a request that cannot be assigned and why.
type Unsatisfied struct {
	RequestID int    `json:"requestId" yaml:"requestId"`
	Reason    Reason `json:"reason" yaml:"reason"`
}

// InfeasibleError reports an infeasible run. Unsatisfied lists the requests that had no
// candidate at all; it is empty when every request had candidates but overlapping demand
// could not be separated.
type InfeasibleError struct {
	Unsatisfied []Unsatisfied
}

func (e *InfeasibleError) Error() string {
	if len(e.Unsatisfied) == 0 {
		return ErrInfeasibleModel.Error() + ": overlapping requests cannot all be separated"
	}
	parts := make([]string, len(e.Unsatisfied))
	for i, u := range e.Unsatisfied {
		parts[i] = fmt.Sprintf("request %d (%s)", u.RequestID, u.Reason)
	}
	return ErrInfeasibleModel.Error() + ": no candidate room for " + strings.Join(parts, ", ")
}

func (e *InfeasibleError) Unwrap() error {
	return ErrInfeasibleModel
}

// SolverError reports a solve that ended without a usable optimal solution.
type SolverError struct {
	Status solver.Status
	Cause  error
}

func (e *SolverError) Error() string {
	msg := fmt.Sprintf("%s (status %s)", ErrSolver.Error(), e.Status)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both ErrSolver and the underlying cause.
func (e *SolverError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrSolver}
	}
	return []error{ErrSolver, e.Cause}
}
