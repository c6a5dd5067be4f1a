package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/terrainium/terrainium/internal/clientutil"
	"github.com/terrainium/terrainium/internal/ipc"
	"github.com/terrainium/terrainium/internal/statestore"
)

func statusCmd() *cobra.Command {
	var asJSON bool
	var recent int
	var sessionID string
	var terrainNameFlag string
	var watch bool

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Query a session's recorded state from the daemon",
		GroupID: "session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildStatusRequest(sessionID, terrainNameFlag, recent)
			if err != nil {
				return err
			}

			state, err := queryStatus(req)
			if err != nil {
				return err
			}
			printStatus(state, asJSON)

			if !watch {
				return nil
			}
			return watchStatus(req, asJSON, state)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full TerrainState as JSON")
	cmd.Flags().IntVar(&recent, "recent", 0, "1-based position in the terrain's session history (1 = most recent)")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "query a specific session id")
	cmd.Flags().StringVar(&terrainNameFlag, "terrain-name", "", "terrain name (default: the active terrain's name)")
	cmd.Flags().BoolVar(&watch, "watch", false, "(extension) re-poll status as the session's logs change, until Ctrl-C")
	cmd.MarkFlagsMutuallyExclusive("recent", "session-id")
	return cmd
}

func buildStatusRequest(sessionID, terrainNameFlag string, recent int) (ipc.StatusRequest, error) {
	name := terrainNameFlag
	if name == "" {
		if dir, _, err := clientutil.ActiveSession(); err == nil {
			name = terrainName(dir)
		} else {
			return ipc.StatusRequest{}, fmt.Errorf("--terrain-name is required outside an active terrain")
		}
	}

	req := ipc.StatusRequest{TerrainName: name}
	switch {
	case sessionID != "":
		req.SessionID = sessionID
	case recent > 0:
		index := recent - 1
		req.Recent = &index
	default:
		if _, sid, err := clientutil.ActiveSession(); err == nil {
			req.SessionID = sid
		} else {
			index := 0
			req.Recent = &index
		}
	}
	return req, nil
}

func queryStatus(req ipc.StatusRequest) (*statestore.TerrainState, error) {
	client := ipc.NewClient(clientutil.SocketPath())
	var state statestore.TerrainState
	if err := client.RoundTrip(ipc.KindStatus, req, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func printStatus(state *statestore.TerrainState, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(state)
		return
	}

	fmt.Printf("session: %s\n", state.SessionID)
	fmt.Printf("terrain: %s  biome: %s\n", state.TerrainName, state.BiomeName)
	fmt.Printf("started: %s\n", state.StartTimestamp)
	if state.EndTimestamp != "" {
		fmt.Printf("ended:   %s\n", state.EndTimestamp)
	}
	printCommandStates("constructors", state.Constructors)
	printCommandStates("destructors", state.Destructors)
}

func printCommandStates(label string, batches map[string][]statestore.CommandState) {
	for ts, cmds := range batches {
		fmt.Printf("%s[%s]:\n", label, ts)
		for i, c := range cmds {
			code := "-"
			if c.ExitCode != nil {
				code = fmt.Sprintf("%d", *c.ExitCode)
			}
			fmt.Printf("  [%d] %s: %s (exit=%s) log=%s\n", i, c.Command.Exe, c.Status, code, c.LogPath)
		}
	}
}

// watchStatus re-polls Status whenever the active session's directory
// changes on disk (new log files, state.json rewrites), printing updates
// until the process is interrupted. This is a client-side convenience,
// not a change to the daemon's request/response contract.
func watchStatus(req ipc.StatusRequest, asJSON bool, last *statestore.TerrainState) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	sessionDir := filepath.Join(clientutil.DaemonRoot(), req.TerrainName, last.SessionID)
	if err := watcher.Add(sessionDir); err != nil {
		return fmt.Errorf("watching %q: %w", sessionDir, err)
	}

	for {
		select {
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			time.Sleep(20 * time.Millisecond) // let the writer finish its rename
			state, err := queryStatus(req)
			if err != nil {
				continue
			}
			printStatus(state, asJSON)
		case err, ok := <-watcher.Errors:
			if !ok || err != nil {
				return err
			}
		}
	}
}
