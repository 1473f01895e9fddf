package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilejump/internal/mapfile"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Store map files in the ranking database",
	Long: `Validate map files and store them in the configured database, where
the ranking server serves them. Every level must have a spawn and a finish.
A map with the id of a stored one replaces it; its best times are kept.

Examples:
  tilejump import maps/meadow.yaml maps/cave.tmx
  tilejump import maps/*.json --driver postgres --dsn "postgres://localhost/tilejump"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagDriver, "driver", "", "Storage driver: sqlite or postgres")
	importCmd.Flags().StringVar(&flagDSN, "dsn", "", "Database path or connection string")
}

func runImport(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	store := openStore(cfg)
	defer store.Close()

	ctx := context.Background()
	failed := 0
	for _, file := range args {
		d, err := mapfile.Load(file)
		if err == nil {
			err = mapfile.Validate(d)
		}
		if err != nil {
			fmt.Printf("  %s: %v\n", file, err)
			failed++
			continue
		}
		id, err := store.SaveMap(ctx, d)
		if err != nil {
			fmt.Printf("  %s: %v\n", file, err)
			failed++
			continue
		}
		fmt.Printf("  %s -> %s\n", file, id)
	}

	if failed > 0 {
		store.Close()
		exitf("%d of %d maps not imported", failed, len(args))
	}
}
