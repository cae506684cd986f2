package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lessonlink/internal/ipc"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and dataset status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderStatus(status, colorize) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
}

func renderStatus(status *ipc.StatusResponse, colorize bool) []string {
	lines := []string{
		statusLine("Daemon", status.Running, "running", "stopped", colorize),
		infoLine("PID", fmt.Sprintf("%d", status.PID)),
		infoLine("Database", status.DatabasePath),
		infoLine("Lock", status.LockPath),
	}

	ds := status.Dataset
	if !ds.Initialized {
		lines = append(lines, statusLine("Dataset", false, "", "no snapshot loaded; run `lessonlink refresh`", colorize))
		return lines
	}

	lines = append(lines,
		statusLine("Dataset", true, fmt.Sprintf("snapshot %s", ds.SnapshotID), "", colorize),
		infoLine("Fetched", ds.FetchedAt.Format(time.RFC3339)),
		infoLine("Meetings", fmt.Sprintf("%d", ds.Meetings)),
		infoLine("Users", fmt.Sprintf("%d", ds.Users)),
	)
	if ds.Matching {
		lines = append(lines, infoLine("Activity", "match batch in flight"))
	}
	if ds.Refreshing {
		lines = append(lines, infoLine("Activity", "refresh in progress"))
	}
	if ds.LastBatchID != "" {
		lines = append(lines, infoLine("Last batch", fmt.Sprintf("%s (%d results, %s)",
			ds.LastBatchID, ds.Results, ds.LastBatchAt.Format(time.RFC3339))))
	}
	return lines
}

func statusLine(label string, ok bool, okMsg, failMsg string, colorize bool) string {
	state := "OK"
	msg := okMsg
	color := ansiGreen
	if !ok {
		state = "WARN"
		msg = failMsg
		color = ansiYellow
	}
	text := fmt.Sprintf("[%s]", state)
	if msg != "" {
		text = fmt.Sprintf("[%s] %s", state, msg)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", text)
	if colorize {
		return color + base + ansiReset
	}
	return base
}

func infoLine(label, value string) string {
	return fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", strings.TrimSpace(value))
}
