package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

const (
	// NameColumn holds the room name.
	NameColumn = "ROOM_NAME"
	// FloorColumn holds the floor number.
	FloorColumn = "FLOOR"
	// CapacityPrefix starts every capacity column; the rest of the header is the space type.
	CapacityPrefix = "CAPACITY_"
)

var (
	// ErrMissingNameColumn is returned when the header has no ROOM_NAME column.
	ErrMissingNameColumn = errors.New("inventory header has no " + NameColumn + " column")
	// ErrDuplicateRoom is returned when two rows name the same room.
	ErrDuplicateRoom = errors.New("duplicate room name")
	// ErrUnsupportedFormat is returned for files that are neither CSV nor Excel.
	ErrUnsupportedFormat = errors.New("unsupported inventory format")
)

// Load reads an inventory file, choosing the format by extension.
// sheet selects the Excel worksheet; empty means the first one.
func Load(path, sheet string) (core.Inventory, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return core.Inventory{}, fmt.Errorf("failed to open inventory: %w", err)
		}
		defer func() { _ = f.Close() }()
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, sheet)
	default:
		return core.Inventory{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// ReadCSV parses a CSV inventory.
func ReadCSV(r io.Reader) (core.Inventory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return core.Inventory{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return FromRows(rows)
}

// ReadXLSX parses one worksheet of an Excel inventory.
func ReadXLSX(path, sheet string) (core.Inventory, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return core.Inventory{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return core.Inventory{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return FromRows(rows)
}

type columns struct {
	name     int
	floor    int
	capacity map[int]string
}

func mapHeader(header []string) (columns, error) {
	cols := columns{name: -1, floor: -1, capacity: make(map[int]string)}
	for i, h := range header {
		key := strings.ToUpper(strings.TrimSpace(h))
		switch {
		case key == NameColumn:
			cols.name = i
		case key == FloorColumn:
			cols.floor = i
		case strings.HasPrefix(key, CapacityPrefix) && len(key) > len(CapacityPrefix):
			cols.capacity[i] = strings.TrimPrefix(key, CapacityPrefix)
		}
	}
	if cols.name < 0 {
		return cols, ErrMissingNameColumn
	}
	return cols, nil
}

// FromRows builds an inventory from a header row followed by data rows, keeping row order.
// Rows with an empty name are skipped.
func FromRows(rows [][]string) (core.Inventory, error) {
	if len(rows) == 0 {
		return core.Inventory{}, ErrMissingNameColumn
	}
	cols, err := mapHeader(rows[0])
	if err != nil {
		return core.Inventory{}, err
	}

	logger := logging.Log()
	seen := make(map[string]int)
	var rooms []core.Room
	for i, row := range rows[1:] {
		rowNo := i + 2
		name := strings.TrimSpace(cell(row, cols.name))
		if name == "" {
			logger.V(logging.DEBUG).Info("Skipping inventory row without a room name", "row", rowNo)
			continue
		}
		if first, dup := seen[name]; dup {
			return core.Inventory{}, fmt.Errorf("%w %q on rows %d and %d", ErrDuplicateRoom, name, first, rowNo)
		}
		seen[name] = rowNo

		capacity := make(map[string]int, len(cols.capacity))
		for idx, spaceType := range cols.capacity {
			capacity[spaceType] = count(cell(row, idx))
		}
		rooms = append(rooms, core.NewRoom(name, count(cell(row, cols.floor)), capacity))
	}

	logger.V(logging.DEBUG).Info("Loaded room inventory", "rooms", len(rooms), "spaceTypes", len(cols.capacity))
	return core.NewInventory(rooms...), nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// count parses a non-negative integer cell; anything else is 0.
func count(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
