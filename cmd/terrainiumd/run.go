package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/terrainium/terrainium/internal/daemoncfg"
	"github.com/terrainium/terrainium/internal/daemonsrv"
)

func runCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the daemon in the foreground",
		GroupID: "daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForeground(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "signal and replace a stale daemon still holding the socket (spec.md S5)")
	return cmd
}

// runForeground implements spec.md §4.5 end to end: load the optional
// runtime config, bind the socket (refusing or force-cleaning a stale
// one per S5), serve until SIGTERM. On SIGHUP the config is re-read and
// its history_size logged; the server keeps statestore.DefaultHistorySize
// as its history bound, and a changed root or socket_path only warns.
func runForeground(force bool) error {
	cfg, err := daemoncfg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading daemon config: %w", err)
	}

	srv := daemonsrv.New(cfg.Root, force, slog.Default())
	srv.SocketPath = cfg.SocketPath

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case unix.SIGHUP:
				slog.Info("received SIGHUP, reloading runtime config")
				reloaded, err := daemoncfg.Load(cfgFile)
				if err != nil {
					slog.Error("reloading daemon config failed, keeping current", "error", err)
					continue
				}
				if reloaded.Root != cfg.Root || reloaded.SocketPath != cfg.SocketPath {
					slog.Warn("root/socket_path changed on disk but require a restart to take effect",
						"current_root", cfg.Root, "new_root", reloaded.Root)
				}
				cfg = reloaded
				slog.Info("runtime config reloaded", "history_size", cfg.HistorySize)
			default:
				slog.Info("received signal, shutting down", "signal", sig)
				cancel()
				return
			}
		}
	}()

	go srv.Registry.RunJanitor(ctx)

	slog.Info("starting terrainiumd", "root", cfg.Root, "socket", cfg.SocketPath)
	return srv.Serve(ctx)
}
