package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilejump/internal/config"
	"github.com/vovakirdan/tilejump/internal/mapfile"
	"github.com/vovakirdan/tilejump/internal/platform/tui"
	"github.com/vovakirdan/tilejump/internal/ranking"
	"github.com/vovakirdan/tilejump/internal/storage"
)

var (
	flagHTTPAddr    string
	flagSSH         bool
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagDriver      string
	flagDSN         string
	flagImportDir   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ranking server",
	Long: `Start the HTTP ranking API and, with --ssh, an SSH server where
users play the stored maps in their terminal.

HTTP API:
  POST /map/submit-time?id=<map>   form a,b,c,d, header X-Tilejump-User
  GET  /map/get?id=<map>           map data, counts a play
  GET  /map/list                   stored maps
  GET  /map/rankings?id=<map>      best times
  GET  /map/rankings/live?id=<map> websocket with every accepted update

Storage is sqlite by default; use --driver postgres with a connection
string in --dsn for Postgres.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.tilejump/ssh_host_key

Examples:
  tilejump serve
  tilejump serve --http :9000 --import maps
  tilejump serve --ssh --ssh-addr :2222
  tilejump serve --driver postgres --dsn "postgres://localhost/tilejump?sslmode=disable"

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP address (default: server.http_addr)")
	serveCmd.Flags().BoolVar(&flagSSH, "ssh", false, "Also start the SSH host (default: server.ssh.enabled)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh-addr", "", "SSH address (default: server.ssh.addr)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagDriver, "driver", "", "Storage driver: sqlite or postgres")
	serveCmd.Flags().StringVar(&flagDSN, "dsn", "", "Database path or connection string")
	serveCmd.Flags().StringVar(&flagImportDir, "import", "", "Store every map file of a directory before serving")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	logger := newLogger("tilejump")

	store := openStore(cfg)
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagImportDir != "" {
		if err := importDir(ctx, store, flagImportDir, logger); err != nil {
			logger.Error("Import failed", "dir", flagImportDir, "err", err)
			os.Exit(1)
		}
	}

	feed := ranking.NewFeed(logger.WithPrefix("feed"))
	svc := ranking.NewService(store, ranking.Options{
		Limit:     cfg.Server.RankingLimit,
		Publisher: feed,
		Logger:    logger.WithPrefix("ranking"),
	})
	srv := ranking.NewServer(svc, feed, logger.WithPrefix("http"))

	addr := flagHTTPAddr
	if addr == "" {
		addr = cfg.Server.HTTPAddr
	}

	errc := make(chan error, 2)
	running := 1
	go func() { errc <- srv.ListenAndServe(ctx, addr) }()

	if flagSSH || cfg.Server.SSH.Enabled {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Game = cfg
		sshCfg.Service = svc
		sshCfg.Logger = logger.WithPrefix("ssh")
		sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		sshCfg.Address = cfg.Server.SSH.Addr
		if flagSSHAddr != "" {
			sshCfg.Address = flagSSHAddr
		}
		sshCfg.HostKeyPath = cfg.Server.SSH.HostKeyPath
		if flagHostKey != "" {
			sshCfg.HostKeyPath = flagHostKey
		}

		sshSrv, err := tui.NewSSHServer(sshCfg)
		if err != nil {
			logger.Error("Cannot create SSH server", "err", err)
			os.Exit(1)
		}
		running++
		go func() { errc <- sshSrv.ListenAndServe(ctx) }()
		if _, port, err := net.SplitHostPort(sshSrv.Addr()); err == nil {
			logger.Info("Connect with: ssh localhost -p " + port)
		}
	}

	var failed error
	for range running {
		if err := <-errc; err != nil && failed == nil {
			failed = err
			stop()
		}
	}
	if failed != nil {
		logger.Error("Server error", "err", failed)
		os.Exit(1)
	}
}

// openStore opens the configured store; flags win over the config file.
func openStore(cfg config.Config) storage.Store {
	driver, dsn := cfg.Server.Storage.Driver, cfg.Server.Storage.DSN
	if flagDriver != "" {
		driver = flagDriver
	}
	if flagDSN != "" {
		dsn = flagDSN
	}
	store, err := storage.OpenDriver(driver, dsn)
	if err != nil {
		exitf("Error opening storage: %v", err)
	}
	return store
}

// importDir stores every valid map file below dir.
func importDir(ctx context.Context, store storage.Store, dir string, logger *log.Logger) error {
	entries, err := mapfile.NewLoader(dir).List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		d, err := mapfile.Load(e.Path)
		if err != nil {
			return err
		}
		if err := mapfile.Validate(d); err != nil {
			logger.Warn("Skipping unpublishable map", "file", e.Path, "err", err)
			continue
		}
		id, err := store.SaveMap(ctx, d)
		if errors.Is(err, storage.ErrDuplicateName) {
			logger.Warn("Skipping map", "file", e.Path, "err", err)
			continue
		}
		if err != nil {
			return err
		}
		logger.Info("Imported map", "id", id, "file", e.Path)
	}
	return nil
}
