package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/terrainium/terrainium/internal/daemoncfg"
	"github.com/terrainium/terrainium/internal/statestore"
)

func reloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "reload",
		Short:   "Signal the running daemon to re-read its runtime config",
		GroupID: "daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := daemoncfg.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading daemon config: %w", err)
			}
			return sendSignalToDaemon(cfg, "SIGHUP")
		},
	}
}

// sendSignalToDaemon finds the running daemon via its pid file under
// cfg.Root and delivers name ("SIGTERM" or "SIGHUP"), per spec.md §4.5:
// SIGHUP triggers a config re-read distinct from a full service restart.
func sendSignalToDaemon(cfg *daemoncfg.Config, name string) error {
	pid, err := readPIDFile(statestore.PidPath(cfg.Root))
	if err != nil {
		return fmt.Errorf("reading pid file: %w (is the daemon running?)", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	var sig unix.Signal
	switch name {
	case "SIGHUP":
		sig = unix.SIGHUP
	case "SIGTERM":
		sig = unix.SIGTERM
	default:
		return fmt.Errorf("unsupported signal %q", name)
	}

	if err := proc.Signal(sig); err != nil {
		return fmt.Errorf("sending %s to %d: %w", name, pid, err)
	}
	fmt.Fprintf(os.Stderr, "sent %s to terrainiumd (pid %d)\n", name, pid)
	return nil
}
