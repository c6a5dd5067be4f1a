package terrain

import "fmt"

// AutoApply controls whether the integration script enters a terrain
// without an explicit `terrain enter` invocation, and whether a `replace`
// (exec) is used instead of spawning a nested shell.
type AutoApply string

const (
	AutoApplyOff        AutoApply = "off"
	AutoApplyEnabled     AutoApply = "enabled"
	AutoApplyBackground AutoApply = "background"
	AutoApplyReplace    AutoApply = "replace"
	AutoApplyAll        AutoApply = "all"
)

// ReplacesShell reports whether this mode causes the daemon-triggered
// enter to replace (exec) the current shell rather than spawn a child.
func (a AutoApply) ReplacesShell() bool {
	return a == AutoApplyReplace || a == AutoApplyAll
}

// RunsDestructorsOnExit reports whether this mode additionally causes
// destructors to run on a subsequent shell exit.
func (a AutoApply) RunsDestructorsOnExit() bool {
	return a == AutoApplyBackground || a == AutoApplyAll
}

// Enabled reports whether this mode auto-enters at all.
func (a AutoApply) Enabled() bool {
	return a != AutoApplyOff
}

func (a AutoApply) Validate() error {
	switch a {
	case AutoApplyOff, AutoApplyEnabled, AutoApplyBackground, AutoApplyReplace, AutoApplyAll:
		return nil
	default:
		return fmt.Errorf("unsupported auto_apply mode: %q", a)
	}
}

func (a *AutoApply) UnmarshalText(text []byte) error {
	v := AutoApply(text)
	if v == "" {
		v = AutoApplyOff
	}
	if err := v.Validate(); err != nil {
		return err
	}
	*a = v
	return nil
}

func (a AutoApply) MarshalText() ([]byte, error) {
	if a == "" {
		return []byte(AutoApplyOff), nil
	}
	return []byte(a), nil
}
