package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	svc "github.com/kardianos/service"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/terrainium/terrainium/internal/daemoncfg"
	"github.com/terrainium/terrainium/internal/statestore"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show daemon status",
		GroupID: "daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := daemoncfg.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading daemon config: %w", err)
			}

			pidPath := statestore.PidPath(cfg.Root)
			pid, err := readPIDFile(pidPath)
			if err != nil {
				fmt.Println("terrainiumd is not running")
				printServiceHint()
				return nil
			}

			proc, err := os.FindProcess(pid)
			if err != nil || proc.Signal(unix.Signal(0)) != nil {
				fmt.Println("terrainiumd is not running (stale pid file)")
				printServiceHint()
				return nil
			}

			fmt.Printf("terrainiumd is running (pid %d)\n", pid)
			fmt.Printf("  socket: %s\n", cfg.SocketPath)
			fmt.Printf("  root: %s\n", cfg.Root)
			fmt.Printf("  managed by: %s\n", managedByLabel())
			return nil
		},
	}
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// managedByLabel reports whether the process is under an installed OS
// service or a bare pid file.
func managedByLabel() string {
	if s, installed := serviceInstalled(); installed {
		label := "OS service"
		if unit := serviceUnitPath(); unit != "" {
			label += " (" + unit + ")"
		}
		if status, err := s.Status(); err == nil {
			switch status {
			case svc.StatusRunning:
				return label
			case svc.StatusStopped:
				return label + " [stopped]"
			}
		}
		return label
	}
	return "direct (pid file)"
}

func printServiceHint() {
	if s, installed := serviceInstalled(); installed {
		if status, err := s.Status(); err == nil && status == svc.StatusStopped {
			fmt.Println("  note: OS service is installed but stopped")
		}
	}
}
