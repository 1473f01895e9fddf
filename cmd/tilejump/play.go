package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilejump/internal/mapfile"
	"github.com/vovakirdan/tilejump/internal/platform/tui"
	"github.com/vovakirdan/tilejump/internal/ranking"
)

var (
	flagServer  string
	flagUser    string
	flagMaps    string
	flagSandbox bool
	flagWatch   bool
	flagEditor  bool
	flagOut     string
)

var playCmd = &cobra.Command{
	Use:   "play [file|id]",
	Short: "Play a map",
	Long: `Play a map file, a map id or a map picked from a list.

A path to a .json, .yaml or .tmx file is loaded directly. Any other
argument is a map id, fetched from --server when given and from the maps
directory otherwise. Without an argument a picker lists the maps.

Controls:
  A/D           - Move
  Space         - Jump (and start from the menu)
  Left/Up/Right - Physics mode 1/2/3
  V/F           - Save/load checkpoint
  Down          - Retry the map
  E             - Switch editor and sandbox
  P/Esc         - Pause
  B             - Back to the picker (when stopped)
  Q/Ctrl+C      - Quit

Editor:
  Left click    - Paint with the brush
  Right click   - Erase
  Tab           - Next brush
  Ctrl+S        - Save to --out

Examples:
  tilejump play maps/meadow.yaml --watch --sandbox
  tilejump play meadow --server http://localhost:8080 --user ana
  tilejump play --editor --out maps/new.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagServer, "server", "", "Ranking server URL to load maps from and submit times to")
	playCmd.Flags().StringVar(&flagUser, "user", "", "Name submitted with times (default: client.user or the OS user)")
	playCmd.Flags().StringVar(&flagMaps, "maps", "", "Maps directory (default: server.maps_dir)")
	playCmd.Flags().BoolVar(&flagSandbox, "sandbox", false, "Play in the editor sandbox")
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload the map file when it changes")
	playCmd.Flags().BoolVar(&flagEditor, "editor", false, "Start on a blank map in the editor")
	playCmd.Flags().StringVar(&flagOut, "out", "", "File the editor saves to")
}

func runPlay(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	logger, closeLog := interactiveLogger("tilejump")
	defer closeLog()

	opts := tui.Options{
		Config:   cfg,
		Runtime:  runtimeConfig(cfg),
		Logger:   logger,
		Sandbox:  flagSandbox,
		SavePath: flagOut,
	}

	var client *ranking.Client
	if flagServer != "" {
		client = ranking.NewClient(flagServer, playerName(flagUser, cfg))
		opts.Loader = client
		opts.Submitter = client
	}

	dir := flagMaps
	if dir == "" {
		dir = cfg.Server.MapsDir
	}
	maps := mapfile.NewLoader(dir)
	if client == nil {
		opts.Loader = maps
	}

	switch {
	case flagEditor:
		opts.Editor = true

	case len(args) == 1 && isMapFile(args[0]):
		path := args[0]
		d, err := mapfile.Load(path)
		if err != nil {
			exitf("Error loading map: %v", err)
		}
		opts.Data = &d
		if opts.SavePath == "" {
			opts.SavePath = path
		}
		if flagWatch {
			w, err := mapfile.NewWatcher(mapfile.WatchOptions{Logger: logger}, path)
			if err != nil {
				exitf("Error watching map: %v", err)
			}
			defer w.Close()
			opts.Watcher = w
			opts.WatchID = d.Meta.ID
		}

	case len(args) == 1:
		opts.MapID = args[0]

	default:
		list := func() ([]tui.MenuItem, error) {
			entries, err := maps.List()
			if err != nil {
				return nil, err
			}
			return tui.MenuItemsFromEntries(entries), nil
		}
		if client != nil {
			list = func() ([]tui.MenuItem, error) {
				summaries, err := client.Maps(context.Background())
				if err != nil {
					return nil, err
				}
				return tui.MenuItemsFromSummaries(summaries), nil
			}
		}
		if err := tui.RunSession(opts, list); err != nil {
			exitf("Error running game: %v", err)
		}
		return
	}

	if err := tui.Run(opts); err != nil {
		exitf("Error running game: %v", err)
	}
}

// isMapFile reports whether arg names an existing file of a known format.
func isMapFile(arg string) bool {
	if !mapfile.Supported(arg) {
		return false
	}
	info, err := os.Stat(filepath.Clean(arg))
	return err == nil && !info.IsDir()
}
