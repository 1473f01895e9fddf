package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilejump/internal/platform/tui"
	"github.com/vovakirdan/tilejump/internal/ranking"
	"github.com/vovakirdan/tilejump/internal/score"
)

var (
	flagScoresServer string
	flagScoresLocal  bool
	flagLive         bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores <map>",
	Short: "Show best times of a map",
	Long: `Display the best times of a map, fastest first.

Rankings come from the ranking server, or with --local straight from the
configured database. --live opens a scoreboard that updates every time a
new best time is accepted.

Examples:
  tilejump scores meadow
  tilejump scores meadow --live
  tilejump scores meadow --local --dsn ./tilejump.db`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresServer, "server", "", "Ranking server URL (default: client.server)")
	scoresCmd.Flags().BoolVar(&flagScoresLocal, "local", false, "Read the database instead of the server")
	scoresCmd.Flags().BoolVar(&flagLive, "live", false, "Follow updates in a scoreboard")
	scoresCmd.Flags().StringVar(&flagDriver, "driver", "", "Storage driver for --local")
	scoresCmd.Flags().StringVar(&flagDSN, "dsn", "", "Database path or connection string for --local")
}

func runScores(cmd *cobra.Command, args []string) {
	mapID := args[0]
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if flagScoresLocal {
		store := openStore(cfg)
		defer store.Close()
		svc := ranking.NewService(store, ranking.Options{Limit: cfg.Server.RankingLimit})
		rankings, err := svc.Rankings(ctx, mapID, "")
		if err != nil {
			exitf("Error loading rankings: %v", err)
		}
		printRankings(mapID, rankings)
		return
	}

	client := ranking.NewClient(serverURL(flagScoresServer, cfg), cfg.Client.User)
	rankings, err := client.Rankings(ctx, mapID)
	if err != nil {
		if ranking.IsNotFound(err) {
			exitf("Error: unknown map %q\nRun 'tilejump list' to see available maps.", mapID)
		}
		exitf("Error loading rankings: %v", err)
	}

	if !flagLive {
		printRankings(mapID, rankings)
		return
	}

	updates := make(chan []score.Ranking, 4)
	go func() {
		defer close(updates)
		err := client.Watch(ctx, mapID, func(u ranking.Update) {
			select {
			case updates <- u.Rankings:
			case <-ctx.Done():
			}
		})
		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "Live feed closed: %v\n", err)
		}
	}()

	rt := runtimeConfig(cfg)
	runErr := tui.RunScoreboard(mapID, rankings, rt.ScreenW, rt.ScreenH, updates)
	stop()
	if runErr != nil {
		exitf("Error running scoreboard: %v", runErr)
	}
}

func printRankings(mapID string, rankings []score.Ranking) {
	fmt.Printf("Best times - %s\n\n", mapID)

	if len(rankings) == 0 {
		fmt.Println("  No times recorded yet.")
		return
	}

	maxNameLen := 6 // "Player" header
	for _, r := range rankings {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	fmt.Printf("  %-4s  %-*s  %s\n", "Rank", maxNameLen, "Player", "Time")
	fmt.Printf("  %-4s  %-*s  %s\n", "----", maxNameLen, "------", "----")
	for i, r := range rankings {
		fmt.Printf("  %-4d  %-*s  %s\n", i+1, maxNameLen, r.Name, tui.FormatTime(r.Time))
	}
}
