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

// Room is a bookable meeting room.
type Room struct {
	// Name uniquely identifies the room within an inventory.
	Name string
	// Floor is the floor number the room is on.
	Floor int
	// Capacity maps a space-type label (e.g. "THEATRE") to the headcount the room seats
	// in that layout.
	Capacity map[string]int
}

// NewRoom creates a Room, dropping negative capacity entries to zero.
func NewRoom(name string, floor int, capacity map[string]int) Room {
	c := make(map[string]int, len(capacity))
	for t, n := range capacity {
		if n < 0 {
			n = 0
		}
		c[t] = n
	}
	return Room{Name: name, Floor: floor, Capacity: c}
}

// CapacityFor returns the capacity of the room for a space type and whether the room
// offers that type at all. Negative entries read as zero.
func (r Room) CapacityFor(spaceType string) (int, bool) {
	n, ok := r.Capacity[spaceType]
	if n < 0 {
		n = 0
	}
	return n, ok
}

// Inventory is the ordered set of rooms available to a scheduling run.
// The position of a room in Rooms is its room index.
type Inventory struct {
	Rooms []Room
}

// NewInventory creates an Inventory from rooms, preserving their order.
func NewInventory(rooms ...Room) Inventory {
	return Inventory{Rooms: rooms}
}

// Len returns the number of rooms.
func (inv Inventory) Len() int {
	return len(inv.Rooms)
}

// Room returns the room at index i.
func (inv Inventory) Room(i int) Room {
	return inv.Rooms[i]
}

// Index returns the index of the room with the given name, or -1.
func (inv Inventory) Index(name string) int {
	for i, r := range inv.Rooms {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// SpaceTypes returns the set of space types offered by at least one room.
func (inv Inventory) SpaceTypes() map[string]struct{} {
	types := make(map[string]struct{})
	for _, r := range inv.Rooms {
		for t := range r.Capacity {
			types[t] = struct{}{}
		}
	}
	return types
}
