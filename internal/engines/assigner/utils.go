package assigner

import (
	"slices"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

// TypeSummary aggregates the rooms of an inventory offering one space type.
type TypeSummary struct {
	Type          string `json:"type" yaml:"type"`
	Rooms         int    `json:"rooms" yaml:"rooms"`
	MaxCapacity   int    `json:"maxCapacity" yaml:"maxCapacity"`
	TotalCapacity int    `json:"totalCapacity" yaml:"totalCapacity"`
}

// SummarizeInventory counts, for each space type, the rooms offering it with a positive
// capacity, their largest capacity and their total seats. The result is sorted by type.
func SummarizeInventory(inv core.Inventory) []TypeSummary {
	byType := make(map[string]*TypeSummary)
	for _, room := range inv.Rooms {
		for spaceType := range room.Capacity {
			capacity, _ := room.CapacityFor(spaceType)
			if capacity <= 0 {
				continue
			}
			s, exists := byType[spaceType]
			if !exists {
				s = &TypeSummary{Type: spaceType}
				byType[spaceType] = s
			}
			s.Rooms++
			s.TotalCapacity += capacity
			s.MaxCapacity = max(s.MaxCapacity, capacity)
		}
	}
	out := make([]TypeSummary, 0, len(byType))
	for _, s := range byType {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b TypeSummary) int {
		if a.Type < b.Type {
			return -1
		}
		if a.Type > b.Type {
			return 1
		}
		return 0
	})
	return out
}
