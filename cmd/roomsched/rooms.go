package main

import (
	"github.com/spf13/cobra"

	"github.com/omegabonobo/greedy-room-scheduler/api/v1alpha1"
	"github.com/omegabonobo/greedy-room-scheduler/internal/engines/assigner"
)

func newRoomsCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Show the room inventory and its capacity per space type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			inv, err := a.loadInventory(true)
			if err != nil {
				return err
			}
			view := roomsView{
				Rooms:      make([]v1alpha1.RoomSpec, inv.Len()),
				SpaceTypes: assigner.SummarizeInventory(inv),
			}
			for i, room := range inv.Rooms {
				view.Rooms[i] = v1alpha1.FromRoom(room)
			}
			return writeRooms(cmd.OutOrStdout(), format, view)
		},
	}

	flags := cmd.Flags()
	addInventoryFlags(flags)
	flags.StringVarP(&output, "output", "o", "table", "output format (table, json, or yaml)")
	return cmd
}
