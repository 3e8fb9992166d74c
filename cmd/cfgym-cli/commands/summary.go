package commands

import (
	"cfgym-backend/internal/summary"
	"cfgym-backend/lib/telemetry"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	summaryHandles  []string
	summaryVirtual  bool
	summaryDeadline string
)

func init() {
	summaryCmd.Flags().StringSliceVar(&summaryHandles, "handles", nil, "The handles to summarize, comma separated.")
	summaryCmd.Flags().BoolVar(&summaryVirtual, "virtual", false, "Count virtual participations.")
	summaryCmd.Flags().StringVar(&summaryDeadline, "deadline", "", "The virtual deadline (RFC3339), required with --virtual.")
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary <gym_id> --handles <a,b,...> [--virtual --deadline <time>]",
	Short: "Prints the contest summary of a list of handles.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gymId, err := parseGymId(args[0])
		if err != nil {
			return err
		}

		req := summary.ContestSummaryRequest{
			GymId:          gymId,
			VirtualEnabled: summaryVirtual,
			Handles:        summaryHandles,
		}
		if summaryDeadline != "" {
			deadline, err := time.Parse(time.RFC3339, summaryDeadline)
			if err != nil {
				return fmt.Errorf("parse deadline: %w", err)
			}
			req.VirtualDeadlineUtc = &deadline
		}
		err = req.Validate()
		if err != nil {
			return err
		}

		client, release, err := login(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		result, err := summary.NewService(telemetry.NewSlogAPI()).Summarize(cmd.Context(), client, req)
		if err != nil {
			return err
		}

		t := newTable()
		t.SetTitle(fmt.Sprintf("gym %d, %d problems", gymId, result.TotalProblems))
		t.AppendHeader(table.Row{"Handle", "Rank", "Solved", "Type"})
		for _, handle := range req.Handles {
			row, ok := result.Rows[strings.ToLower(handle)].Get()
			if !ok {
				t.AppendRow(table.Row{handle, "-", "-", "-"})
				continue
			}
			t.AppendRow(table.Row{handle, row.Rank, row.AcCount, row.ParticipationType})
		}
		t.Render()
		return nil
	},
}
