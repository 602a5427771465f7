// Package core provides the domain data structures of the room scheduler.
//
// The types in this package are the inputs and outputs of a scheduling run:
//
//   - Room: a bookable meeting room with a floor and a per-layout capacity
//   - Inventory: the ordered list of rooms a run may assign from
//   - TimeSlot: a half-open [Start, End) interval
//   - Request: a booking request with a space type, a headcount and candidate slots
//   - Assignment: the realized (request, room, slot) triple of a solved run
//
// Example usage:
//
//	inv := core.NewInventory(
//	    core.NewRoom("Salon A", 1, map[string]int{"THEATRE": 50}),
//	)
//
//	slot, _ := core.ParseTimeSlot("2024-01-01 09:00", "2024-01-01 10:00")
//	req := core.Request{ID: 0, Type: "THEATRE", Headcount: 40, Slots: []core.TimeSlot{slot}}
//
// Rooms and requests are read-only once built. The core package carries no solver or
// configuration dependencies; it is shared by the optimizer, the inventory loader and the
// presentation layers.
package core
