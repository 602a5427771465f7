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

// Request is a booking request for a single room during one of its candidate slots.
type Request struct {
	// ID is the index of the request in the caller-supplied list.
	ID int
	// Type is the space-type label the request needs (e.g. "BANQUET").
	Type string
	// Headcount is the number of attendees.
	Headcount int
	// Slots are the candidate time slots, in preference order. Exactly one is chosen.
	Slots []TimeSlot
	// AllowedRooms restricts the eligible rooms by name. Nil means every room is eligible.
	AllowedRooms map[string]struct{}
}

// AllowsRoom reports whether the named room is eligible for the request.
func (r Request) AllowsRoom(name string) bool {
	if r.AllowedRooms == nil {
		return true
	}
	_, ok := r.AllowedRooms[name]
	return ok
}

// Fits reports whether the room offers the request's type with enough capacity.
func (r Request) Fits(room Room) bool {
	capacity, ok := room.CapacityFor(r.Type)
	return ok && capacity >= r.Headcount
}

// RoomSet builds an AllowedRooms set from names. An empty list yields nil (no restriction).
func RoomSet(names ...string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Assignment is one realized booking: a request placed in a room for one of its slots.
type Assignment struct {
	RequestID int
	RoomName  string
	Slot      TimeSlot
}
