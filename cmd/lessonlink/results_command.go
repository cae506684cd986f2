package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lessonlink/internal/ipc"
	"lessonlink/internal/match"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "results [schedule-id]",
		Short: "Show results of the latest match batch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.ResultsRequest{}
			if len(args) == 1 {
				req.ScheduleID = args[0]
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Results(req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if jsonOut {
					return writeJSON(out, resp)
				}
				if len(resp.Results) == 0 {
					fmt.Fprintln(out, "no results; run `lessonlink match` first")
					return nil
				}
				fmt.Fprintln(out, renderResults(resp.Results))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit raw JSON instead of a table")
	return cmd
}

func renderResults(results []match.MatchResult) string {
	headers := []string{"Schedule", "Program", "Status", "Score", "Meeting", "Instructor", "Reason"}
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			result.Schedule.ID,
			result.Schedule.Program,
			string(result.Status),
			scoreCell(result),
			result.MeetingID,
			result.FoundInstructor,
			result.Reason,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
	return renderTable(headers, rows, aligns)
}

func scoreCell(result match.MatchResult) string {
	if result.Status == match.StatusNotFound || result.Status == match.StatusManual {
		return "-"
	}
	return strconv.Itoa(result.Score)
}
