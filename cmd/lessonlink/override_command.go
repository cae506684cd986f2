package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lessonlink/internal/ipc"
)

func newOverrideCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "override <schedule-id> <meeting-id>",
		Short: "Manually pin a schedule to a meeting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Override(ipc.OverrideRequest{
					ScheduleID: args[0],
					MeetingID:  args[1],
				})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if jsonOut {
					return writeJSON(out, resp)
				}
				result := resp.Result
				fmt.Fprintf(out, "schedule %s pinned to meeting %s", result.Schedule.ID, result.MeetingID)
				if result.FoundInstructor != "" {
					fmt.Fprintf(out, " (%s)", result.FoundInstructor)
				}
				fmt.Fprintln(out)
				if original := result.OriginalState; original != nil {
					fmt.Fprintf(out, "previous verdict: %s", original.Status)
					if original.MeetingID != "" {
						fmt.Fprintf(out, " -> %s", original.MeetingID)
					}
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit raw JSON instead of a summary")
	return cmd
}
