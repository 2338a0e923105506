package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"courtwatch/internal/export"
	"courtwatch/internal/insights"
	"courtwatch/internal/scoring"
	"courtwatch/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer db.Close()

			matches, err := db.ListMatches(limit)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Println("No matches recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tSPORT\tKIND\tRESULT\tWINNER")
			for _, m := range matches {
				winner := string(m.Winner)
				if winner == "" {
					winner = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					m.ID, m.StartedAt.Format("2006-01-02 15:04"),
					m.Sport, m.Kind, m.Scoreline, winner)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum matches to list (0 for all)")
	return cmd
}

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights <match-id>",
		Short: "Show derived statistics for a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer db.Close()

			rec, err := db.GetMatch(args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("match not found: %s", args[0])
			}

			rep := insights.Analyze(rec.Events)
			fmt.Printf("Match %s (%s %s)\n\n", rec.ID, rec.Sport, rec.Kind)
			fmt.Printf("Total points:     %d\n", rep.TotalPoints)
			fmt.Printf("Lead changes:     %d\n", rep.LeadChanges)
			for _, side := range []scoring.Side{scoring.SideA, scoring.SideB} {
				fmt.Printf("Side %s: longest streak %d, biggest comeback %d, serve win rate %.0f%%\n",
					side, rep.LongestStreak[side], rep.BiggestComeback[side],
					rep.ServeWinRate(side)*100)
			}
			if len(rep.ShotBreakdown) > 0 {
				fmt.Println("\nPoints by winning shot:")
				for shot, n := range rep.ShotBreakdown {
					fmt.Printf("  %-10s %d\n", shot, n)
				}
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <match-id>",
		Short: "Export a match as validated JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer db.Close()

			rec, err := db.GetMatch(args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("match not found: %s", args[0])
			}

			exp, err := export.New()
			if err != nil {
				return err
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return exp.Write(out, export.Build(rec))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
