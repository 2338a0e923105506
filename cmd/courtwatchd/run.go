package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"courtwatch/internal/imu"
	"courtwatch/internal/scoring"
	"courtwatch/internal/sensor"
	"courtwatch/internal/session"
	"courtwatch/internal/sport"
	"courtwatch/internal/store"
	"courtwatch/internal/workout"
)

func newRunCmd() *cobra.Command {
	var (
		sportFlag string
		kindFlag  string
		target    int
		sets      int
		golden    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a live match",
		Long: `Start a live match and score it interactively.

Score commands on stdin:
  a | b      record a rally won by side A or B
  undo       revert the last rally
  status     print the current scoreline
  end        finish the match and save it`,
		RunE: func(cmd *cobra.Command, args []string) error {
			matchCfg := cfg.MatchSettings()
			if sportFlag != "" {
				sp, err := sport.Parse(sportFlag)
				if err != nil {
					return err
				}
				matchCfg.Sport = sp
			}
			if kindFlag != "" {
				kind, err := sport.ParseKind(kindFlag)
				if err != nil {
					return err
				}
				matchCfg.Kind = kind
			}
			if target > 0 {
				matchCfg.TargetScore = target
			}
			if sets > 0 {
				matchCfg.SetsToWin = sets
			}
			if cmd.Flags().Changed("golden-point") {
				matchCfg.GoldenPoint = golden
			}
			return runMatch(matchCfg)
		},
	}

	cmd.Flags().StringVar(&sportFlag, "sport", "", "sport: pickleball, tennis, or padel")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "match kind: singles or doubles")
	cmd.Flags().IntVar(&target, "target", 0, "rally-scoring game target")
	cmd.Flags().IntVar(&sets, "sets", 0, "sets needed to win the match")
	cmd.Flags().BoolVar(&golden, "golden-point", false, "sudden death at deuce (padel)")
	return cmd
}

func runMatch(matchCfg scoring.MatchConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := logger.Component("run")

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer db.Close()

	samples, err := openSensor(ctx)
	if err != nil {
		return err
	}

	mgr := session.NewManager(session.ManagerConfig{
		Tracker:         workout.NewTracker(nil, log),
		History:         db,
		Logger:          log,
		WornOnSwingHand: cfg.Player.WornOnSwingHand,
		Samples:         samples,
	})

	s, err := mgr.StartMatch(ctx, matchCfg)
	if err != nil {
		return err
	}
	defer mgr.EndMatch(context.Background())

	st := s.Status()
	fmt.Printf("Match started: %s %s (%s)\n", matchCfg.Sport, matchCfg.Kind, st.MatchID)
	fmt.Println("Enter a, b, undo, status, or end.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(strings.ToLower(scanner.Text()))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nInterrupted; saving match.")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch line {
			case "":
			case "a", "b":
				winner := scoring.SideA
				if line == "b" {
					winner = scoring.SideB
				}
				out, ok := s.RecordRally(winner)
				if !ok {
					return nil
				}
				printOutcome(s, out)
				if out.MatchWon != scoring.SideNone {
					rec := mgr.EndMatch(context.Background())
					if rec != nil {
						fmt.Printf("Match saved: %s\n", rec.ID)
					}
					return nil
				}
			case "undo":
				if s.Undo() {
					fmt.Println(s.Status().Scoreline)
				} else {
					fmt.Println("Nothing to undo.")
				}
			case "status":
				st := s.Status()
				fmt.Printf("%s  elapsed %s  shots %d\n",
					st.Scoreline, st.Elapsed.Round(time.Second), st.Shots)
			case "end", "quit", "exit":
				rec := mgr.EndMatch(context.Background())
				if rec != nil {
					fmt.Printf("Match saved: %s\n", rec.ID)
				}
				return nil
			default:
				fmt.Printf("Unknown command: %s\n", line)
			}
		}
	}
}

func printOutcome(s *session.MatchSession, out scoring.Outcome) {
	st := s.Status()
	switch {
	case out.MatchWon != scoring.SideNone:
		fmt.Printf("Match won by side %s! Final: %s\n", out.MatchWon, st.Scoreline)
	case out.SetWon != scoring.SideNone:
		fmt.Printf("Set to side %s. %s\n", out.SetWon, st.Scoreline)
	case out.GameWon != scoring.SideNone:
		fmt.Printf("Game to side %s. %s\n", out.GameWon, st.Scoreline)
	case out.TiebreakEntered:
		fmt.Printf("Tiebreak. %s\n", st.Scoreline)
	default:
		fmt.Println(st.Scoreline)
	}
}

func openSensor(ctx context.Context) (<-chan imu.Sample, error) {
	log := logger.Component("sensor")
	var src sensor.Source
	switch cfg.Sensor.Source {
	case "replay":
		src = &sensor.Replay{Path: cfg.Sensor.Path, Realtime: cfg.Sensor.Realtime, Logger: log}
	case "spool":
		src = &sensor.Spool{Dir: cfg.Sensor.Path, Logger: log}
	default:
		src = sensor.Null{}
	}
	samples, err := src.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("start sensor source: %w", err)
	}
	return samples, nil
}
