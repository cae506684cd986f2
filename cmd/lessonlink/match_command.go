package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lessonlink/internal/ipc"
	"lessonlink/internal/match"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "match <schedules.json>",
		Short: "Match a batch of schedule entries against the active snapshot",
		Long: `Match reads a JSON array of schedule entries and submits them as one
batch. Use "-" to read the batch from stdin.

Each entry needs an "id" and a "program"; "date" and "time" are carried
through untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schedules, err := readSchedules(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Match(ipc.MatchRequest{Schedules: schedules})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if jsonOut {
					return writeJSON(out, resp)
				}
				fmt.Fprintf(out, "batch %s: %d schedules\n", resp.BatchID, len(resp.Results))
				fmt.Fprintln(out, renderResults(resp.Results))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit raw JSON instead of a table")
	return cmd
}

func readSchedules(path string, stdin io.Reader) ([]match.Schedule, error) {
	var reader io.Reader
	if path == "-" {
		reader = stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open batch file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	var schedules []match.Schedule
	if err := json.NewDecoder(reader).Decode(&schedules); err != nil {
		return nil, fmt.Errorf("parse batch: %w", err)
	}
	if len(schedules) == 0 {
		return nil, fmt.Errorf("batch is empty")
	}
	for i, schedule := range schedules {
		if schedule.ID == "" {
			return nil, fmt.Errorf("schedule %d has no id", i)
		}
	}
	return schedules, nil
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
