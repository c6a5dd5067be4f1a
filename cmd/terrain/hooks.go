package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/terrainium/terrainium/internal/clientutil"
	"github.com/terrainium/terrainium/internal/ipc"
	"github.com/terrainium/terrainium/internal/terrain"
)

// batchTimestamp mints the timestamp string spec.md §4.7 says keys a
// CommandState batch, in a form statestore.RemoveNonNumeric can still
// reduce to a filesystem-safe numeric suffix.
func batchTimestamp() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

// runForegroundCommands executes cmds inline, blocking the shell, exactly
// as the compiled activation script would. Used by `terrain enter`, `exit`,
// `construct` and `destruct`. A failing hook is reported on stderr and the
// remaining hooks still run.
func runForegroundCommands(cmds []terrain.Command, envs map[string]string) error {
	for _, cmd := range cmds {
		c := exec.Command(cmd.Exe, cmd.Args...)
		c.Dir = cmd.Cwd
		c.Env = mergeOSEnv(envs)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "hook %s failed: %v\n", cmd.Exe, err)
		}
	}
	return nil
}

func mergeOSEnv(overrides map[string]string) []string {
	env := os.Environ()
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}

// dispatchBackgroundCommands sends an ExecuteRequest for cmds to the
// daemon and awaits its single acknowledgement, per spec.md §4.3's
// background-dispatch contract. A no-op if cmds is empty.
func dispatchBackgroundCommands(sessionID, terrainName, biomeName, terrainDir, tomlPath string, isConstructor bool, cmds []terrain.Command, envs map[string]string) error {
	if len(cmds) == 0 {
		return nil
	}

	client := ipc.NewClient(clientutil.SocketPath())
	req := ipc.ExecuteRequest{
		SessionID:     sessionID,
		TerrainName:   terrainName,
		BiomeName:     biomeName,
		TerrainDir:    terrainDir,
		TomlPath:      tomlPath,
		IsConstructor: isConstructor,
		Timestamp:     batchTimestamp(),
		Envs:          envs,
		Commands:      cmds,
	}
	return client.RoundTrip(ipc.KindExecute, req, nil)
}
