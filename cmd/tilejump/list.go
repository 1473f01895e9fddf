package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilejump/internal/mapfile"
	"github.com/vovakirdan/tilejump/internal/ranking"
)

var flagListServer string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available maps",
	Long: `Shows the map files of the maps directory, or the maps stored on a
ranking server with --server.`,
	Run: runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListServer, "server", "", "List the maps of a ranking server")
	listCmd.Flags().StringVar(&flagMaps, "maps", "", "Maps directory (default: server.maps_dir)")
}

func runList(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	var rows [][2]string
	if flagListServer != "" {
		maps, err := ranking.NewClient(flagListServer, "").Maps(context.Background())
		if err != nil {
			exitf("Error listing maps: %v", err)
		}
		for _, m := range maps {
			rows = append(rows, [2]string{m.ID, fmt.Sprintf("%s (%d levels, %d plays)", m.Name, m.Levels, m.Plays)})
		}
	} else {
		dir := flagMaps
		if dir == "" {
			dir = cfg.Server.MapsDir
		}
		entries, err := mapfile.NewLoader(dir).List()
		if err != nil {
			exitf("Error listing maps: %v", err)
		}
		for _, e := range entries {
			rows = append(rows, [2]string{e.ID, e.Path})
		}
	}

	if len(rows) == 0 {
		fmt.Println("No maps available.")
		return
	}

	fmt.Println("Available maps:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, r := range rows {
		if len(r[0]) > maxIDLen {
			maxIDLen = len(r[0])
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Map")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "---")
	for _, r := range rows {
		fmt.Printf("  %-*s  %s\n", maxIDLen, r[0], r[1])
	}

	fmt.Println()
	fmt.Println("Run 'tilejump play <id>' to play a map.")
}
