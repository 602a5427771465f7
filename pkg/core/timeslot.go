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

package core

import (
	"fmt"
	"time"
)

// SlotLayout is the text layout used for slot timestamps in request files and on the wire.
const SlotLayout = "2006-01-02 15:04"

// TimeSlot is a half-open interval [Start, End).
// Callers are expected to supply Start < End; see Valid.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// NewTimeSlot creates a TimeSlot.
func NewTimeSlot(start, end time.Time) TimeSlot {
	return TimeSlot{Start: start, End: end}
}

// ParseTimeSlot parses start and end in SlotLayout.
func ParseTimeSlot(start, end string) (TimeSlot, error) {
	s, err := time.Parse(SlotLayout, start)
	if err != nil {
		return TimeSlot{}, fmt.Errorf("parsing slot start %q: %w", start, err)
	}
	e, err := time.Parse(SlotLayout, end)
	if err != nil {
		return TimeSlot{}, fmt.Errorf("parsing slot end %q: %w", end, err)
	}
	return TimeSlot{Start: s, End: e}, nil
}

// Overlaps reports whether the two half-open intervals intersect.
// Touching endpoints do not overlap. The check does not validate either slot.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Valid reports whether Start is strictly before End.
func (s TimeSlot) Valid() bool {
	return s.Start.Before(s.End)
}

// Duration returns End - Start.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// String formats the slot as "start - end" in SlotLayout.
func (s TimeSlot) String() string {
	return s.Start.Format(SlotLayout) + " - " + s.End.Format(SlotLayout)
}
