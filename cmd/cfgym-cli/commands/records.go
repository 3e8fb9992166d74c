package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(problemsCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(submissionsCmd)
}

var problemsCmd = &cobra.Command{
	Use:   "problems <gym_id>",
	Short: "Prints the problems of a gym.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gymId, err := parseGymId(args[0])
		if err != nil {
			return err
		}
		client, release, err := login(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		problems, err := client.Problems(cmd.Context(), gymId)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Index", "Name", "Original"})
		for _, p := range problems {
			t.AppendRow(table.Row{p.Index, p.InContestName, optional(p.OriginalProblemUrl)})
		}
		t.Render()
		return nil
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings <gym_id>",
	Short: "Prints every standing of a gym, unofficial participants included.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gymId, err := parseGymId(args[0])
		if err != nil {
			return err
		}
		client, release, err := login(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		standings, err := client.Standings(cmd.Context(), gymId)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Rank", "Handle", "Type", "Solved", "Penalty", "Problems"})
		for _, s := range standings {
			cells := make([]string, len(s.ProblemResults))
			for i, result := range s.ProblemResults {
				switch {
				case result.IsAccepted:
					cells[i] = fmt.Sprintf("%s+%d", result.Index, result.Tries)
				case result.Tries > 0:
					cells[i] = fmt.Sprintf("%s-%d", result.Index, result.Tries)
				default:
					cells[i] = result.Index
				}
			}
			t.AppendRow(table.Row{
				optional(s.Rank),
				s.Handle,
				s.ParticipationType,
				s.Solved,
				s.Penalty,
				strings.Join(cells, " "),
			})
		}
		t.Render()
		return nil
	},
}

var submissionsCmd = &cobra.Command{
	Use:   "submissions <gym_id>",
	Short: "Prints every submission of a gym, most recently judged first.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gymId, err := parseGymId(args[0])
		if err != nil {
			return err
		}
		client, release, err := login(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		submissions, err := client.Submissions(cmd.Context(), gymId)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "When (UTC)", "Handle", "Virtual", "Problem", "Language", "Verdict", "Time", "Memory"})
		for _, s := range submissions {
			t.AppendRow(table.Row{
				s.Id,
				time.Unix(s.SubmissionTimeUtc, 0).UTC().Format(time.DateTime),
				s.Handle,
				s.IsVirtual,
				s.ProblemIndex,
				s.Language,
				s.Verdict,
				fmt.Sprintf("%d ms", s.TimeMs),
				fmt.Sprintf("%d KB", s.MemoryKb),
			})
		}
		t.Render()
		return nil
	},
}
