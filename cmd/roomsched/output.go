package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/omegabonobo/greedy-room-scheduler/api/v1alpha1"
	"github.com/omegabonobo/greedy-room-scheduler/internal/engines/assigner"
	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
)

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

func parseOutputFormat(name string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(name)); f {
	case outputTable, outputJSON, outputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", name)
	}
}

// encode writes v as JSON or YAML. It reports false for the table format.
func encode(w io.Writer, format outputFormat, v any) (bool, error) {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func writeResult(w io.Writer, format outputFormat, result v1alpha1.ScheduleResult) error {
	if done, err := encode(w, format, result); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUEST\tROOM\tSTART\tEND")
	for _, a := range result.Assignments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.RequestID, a.Room, a.Start, a.End)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	b := result.Breakdown
	_, err := fmt.Fprintf(w, "\nrun %s (%s, %s): objective %g = floor %g + space %g - reuse %g\n",
		result.RunID, result.Strategy, result.Stats.Status, b.Objective, b.Floor, b.Space, b.Reuse)
	return err
}

func writeUnsatisfied(w io.Writer, unsatisfied []optimizer.Unsatisfied) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUEST\tREASON")
	for _, u := range unsatisfied {
		fmt.Fprintf(tw, "%d\t%s\n", u.RequestID, u.Reason)
	}
	return tw.Flush()
}

// roomsView is the output of the rooms command.
type roomsView struct {
	Rooms      []v1alpha1.RoomSpec    `json:"rooms" yaml:"rooms"`
	SpaceTypes []assigner.TypeSummary `json:"spaceTypes" yaml:"spaceTypes"`
}

func writeRooms(w io.Writer, format outputFormat, view roomsView) error {
	if done, err := encode(w, format, view); done {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tFLOOR\tCAPACITY")
	for _, room := range view.Rooms {
		types := make([]string, 0, len(room.Capacity))
		for t, n := range room.Capacity {
			types = append(types, fmt.Sprintf("%s=%d", t, n))
		}
		sort.Strings(types)
		fmt.Fprintf(tw, "%s\t%d\t%s\n", room.Name, room.Floor, strings.Join(types, ","))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "TYPE\tROOMS\tMAX\tTOTAL")
	for _, s := range view.SpaceTypes {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", s.Type, s.Rooms, s.MaxCapacity, s.TotalCapacity)
	}
	return tw.Flush()
}
