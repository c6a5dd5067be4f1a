package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	svc "github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/daemoncfg"
)

const serviceName = "terrainiumd"

// svcProgram is a no-op service.Interface: kardianos/service is only used
// here for install/uninstall and OS-level start/stop, not for wrapping
// the run loop (the service unit just execs "terrainiumd run").
type svcProgram struct{}

func (p *svcProgram) Start(s svc.Service) error { return nil }
func (p *svcProgram) Stop(s svc.Service) error  { return nil }

func newServiceConfig(configPath string) *svc.Config {
	args := []string{"run"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	return &svc.Config{
		Name:        serviceName,
		DisplayName: "terrainiumd",
		Description: "Supervisor daemon for terrainium background hooks",
		Arguments:   args,
		Option: svc.KeyValue{
			"UserService":  true,
			"KeepAlive":    true,
			"RunAtLoad":    true,
			"LogOutput":    true,
			"LogDirectory": stateDir(),
		},
	}
}

func serviceInstalled() (svc.Service, bool) {
	s, err := svc.New(&svcProgram{}, newServiceConfig(""))
	if err != nil {
		return nil, false
	}
	if _, err := s.Status(); errors.Is(err, svc.ErrNotInstalled) {
		return nil, false
	}
	return s, true
}

func serviceUnitPath() string {
	platform := svc.Platform()
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(platform, "darwin"):
		return filepath.Join(home, "Library", "LaunchAgents", serviceName+".plist")
	case strings.Contains(platform, "systemd"):
		return filepath.Join(home, ".config", "systemd", "user", serviceName+".service")
	}
	return ""
}

func resolvedConfigPath() (string, error) {
	if cfgFile == "" {
		return "", nil
	}
	return filepath.Abs(cfgFile)
}

func installCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install terrainiumd as an OS service",
		GroupID: "service",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolvedConfigPath()
			if err != nil {
				return fmt.Errorf("resolving config path: %w", err)
			}

			s, err := svc.New(&svcProgram{}, newServiceConfig(configPath))
			if err != nil {
				return fmt.Errorf("creating service: %w", err)
			}

			if _, already := serviceInstalled(); already {
				if !force {
					fmt.Fprintln(os.Stderr, "service already installed (use --force to reinstall)")
					return nil
				}
				_ = s.Stop()
				if err := s.Uninstall(); err != nil {
					return fmt.Errorf("uninstalling existing service: %w", err)
				}
			}

			if err := s.Install(); err != nil {
				return fmt.Errorf("installing service: %w", err)
			}
			fmt.Fprintln(os.Stderr, "service installed")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "reinstall the service if already installed")
	return cmd
}

func removeCmd() *cobra.Command {
	var noStop bool

	cmd := &cobra.Command{
		Use:     "remove",
		Short:   "Remove the terrainiumd OS service",
		GroupID: "service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, installed := serviceInstalled(); !installed {
				fmt.Fprintln(os.Stderr, "service not installed, nothing to do")
				return nil
			}

			s, err := svc.New(&svcProgram{}, newServiceConfig(""))
			if err != nil {
				return fmt.Errorf("creating service: %w", err)
			}

			if !noStop {
				if err := s.Stop(); err != nil {
					fmt.Fprintf(os.Stderr, "failed to stop service before removal: %v\n", err)
				}
			}

			if err := s.Uninstall(); err != nil {
				return fmt.Errorf("removing service: %w", err)
			}
			fmt.Fprintln(os.Stderr, "service removed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noStop, "no-stop", false, "skip stopping the service before removing")
	return cmd
}

// enableCmd and disableCmd approximate systemd/launchd's enabled-vs-running
// distinction on top of kardianos/service, which exposes only install and
// start/stop: enable installs the service (idempotent) and, with --now,
// starts it too; disable stops it but leaves the service definition in
// place so enable --now later doesn't need to reinstall. This is a
// simplification over native enable/disable, recorded in DESIGN.md.
func enableCmd() *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:     "enable",
		Short:   "Install the service so it starts at login/boot",
		GroupID: "service",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolvedConfigPath()
			if err != nil {
				return fmt.Errorf("resolving config path: %w", err)
			}

			s, installed := serviceInstalled()
			if !installed {
				s, err = svc.New(&svcProgram{}, newServiceConfig(configPath))
				if err != nil {
					return fmt.Errorf("creating service: %w", err)
				}
				if err := s.Install(); err != nil {
					return fmt.Errorf("installing service: %w", err)
				}
				fmt.Fprintln(os.Stderr, "service installed")
			}

			if now {
				if err := s.Start(); err != nil {
					return fmt.Errorf("starting service: %w", err)
				}
				fmt.Fprintln(os.Stderr, "service started")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "also start the service immediately")
	return cmd
}

func disableCmd() *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:     "disable",
		Short:   "Stop the service without uninstalling it",
		GroupID: "service",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, installed := serviceInstalled()
			if !installed {
				fmt.Fprintln(os.Stderr, "service not installed, nothing to do")
				return nil
			}

			if now {
				if err := s.Stop(); err != nil {
					return fmt.Errorf("stopping service: %w", err)
				}
				fmt.Fprintln(os.Stderr, "service stopped")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&now, "now", true, "also stop the service immediately")
	return cmd
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Short:   "Start the installed service",
		GroupID: "service",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, installed := serviceInstalled()
			if !installed {
				return fmt.Errorf("service not installed (run 'terrainiumd install' first)")
			}
			if err := s.Start(); err != nil {
				return fmt.Errorf("starting service: %w", err)
			}
			fmt.Fprintln(os.Stderr, "service started")
			return nil
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stop",
		Short:   "Stop the installed service",
		GroupID: "service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s, installed := serviceInstalled(); installed {
				if err := s.Stop(); err != nil {
					return fmt.Errorf("stopping service: %w", err)
				}
				fmt.Fprintln(os.Stderr, "service stopped")
				return nil
			}

			cfg, err := daemoncfg.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading daemon config: %w", err)
			}
			return sendSignalToDaemon(cfg, "SIGTERM")
		},
	}
}
