// Package inventory loads room inventories from CSV and Excel files.
//
// The first row is a header. Recognized columns (case-insensitive, surrounding spaces ignored):
//
//	ROOM_NAME        room name, required and unique
//	FLOOR            floor number
//	CAPACITY_<TYPE>  capacity for space type <TYPE>, e.g. CAPACITY_CRESCENT_ROUND
//
// Values that are not non-negative integers read as 0. Other columns are ignored.
package inventory
