// tilejump is a tile platformer that runs in the terminal, with a ranking
// server for best times.
//
// Usage:
//
//	tilejump play [file|id]    - Play a map file, a map id or pick from a list
//	tilejump list              - List available maps
//	tilejump serve             - Start the ranking server (and the SSH host)
//	tilejump scores <map>      - Show best times of a map
//	tilejump import <file>...  - Store map files in the ranking database
//	tilejump decode a b c d    - Decode a submitted score tuple
//
// Global flags:
//
//	--config <path>  - Configuration file (default: search order in config.Load)
//	--log <path>     - Write logs of interactive commands to a file
package main

import (
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tilejump/internal/config"
	"github.com/vovakirdan/tilejump/internal/core"
)

var (
	// Global flags
	flagConfig  string
	flagLogFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tilejump",
	Short: "tilejump - a tile platformer in your terminal",
	Long: `tilejump is a fixed-timestep tile platformer. Run through the levels
of a map as fast as you can; a ranking server keeps the best times.

Available commands:
  play     - Play a map
  list     - Show available maps
  serve    - Start the ranking server
  scores   - View best times
  import   - Store map files in the ranking database
  decode   - Decode a score tuple

Examples:
  tilejump play maps/meadow.yaml
  tilejump play meadow --server http://localhost:8080
  tilejump play --editor --out maps/new.yaml
  tilejump serve --ssh
  tilejump scores meadow --live`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to tilejump.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log", "", "Log file for interactive commands")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(decodeCmd)
}

// loadConfig loads the configuration or exits.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		exitf("Error loading config: %v", err)
	}
	return cfg
}

// newLogger writes to stderr with a timestamp and prefix.
func newLogger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
}

// interactiveLogger returns a logger that does not draw over the TUI: the
// --log file when set, otherwise a discarding logger. The returned closer
// must be called on exit.
func interactiveLogger(prefix string) (*log.Logger, func()) {
	if flagLogFile == "" {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(config.ExpandHome(flagLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		exitf("Error opening log file: %v", err)
	}
	logger := log.NewWithOptions(f, log.Options{ReportTimestamp: true, Prefix: prefix})
	return logger, func() { f.Close() }
}

// runtimeConfig sizes the screen to the terminal.
func runtimeConfig(cfg config.Config) core.RuntimeConfig {
	rt := core.DefaultConfig()
	rt.TickRate = cfg.Loop.FPS
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rt.ScreenW = w
		rt.ScreenH = h
	}
	return rt
}

// playerName picks the ranking user: flag, config, then the OS account.
func playerName(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.Client.User != "" {
		return cfg.Client.User
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "player"
}

// serverURL picks the ranking server: flag, then config.
func serverURL(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Client.Server
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
