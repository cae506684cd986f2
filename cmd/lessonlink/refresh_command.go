package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lessonlink/internal/ipc"
)

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch a fresh meeting and user snapshot from the provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Refresh()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s active: %d meetings, %d users\n",
					resp.SnapshotID, resp.Meetings, resp.Users)
				return nil
			})
		},
	}
}
