package terrain

// Command is a single constructor/destructor step: an executable, its
// arguments, and an optional working directory. Cwd is resolved against
// the terrain directory at Resolve time if left empty.
type Command struct {
	Exe  string   `toml:"exe" json:"exe"`
	Args []string `toml:"args" json:"args"`
	Cwd  string   `toml:"cwd,omitempty" json:"cwd,omitempty"`
}

// Commands is an ordered pair of command sequences: those that run inline
// in the user's shell (Foreground) and those dispatched to the daemon
// (Background).
type Commands struct {
	Foreground []Command `toml:"foreground" json:"foreground"`
	Background []Command `toml:"background" json:"background"`
}

// Append concatenates another Commands onto this one, preserving order
// (self first, then other), and returns the result. Neither receiver nor
// argument is mutated.
func (c Commands) Append(other Commands) Commands {
	fg := make([]Command, 0, len(c.Foreground)+len(other.Foreground))
	fg = append(fg, c.Foreground...)
	fg = append(fg, other.Foreground...)

	bg := make([]Command, 0, len(c.Background)+len(other.Background))
	bg = append(bg, c.Background...)
	bg = append(bg, other.Background...)

	return Commands{Foreground: fg, Background: bg}
}

// Clone returns a deep copy so callers can mutate cwd/exe without aliasing
// the original config's slices.
func (c Command) Clone() Command {
	args := make([]string, len(c.Args))
	copy(args, c.Args)
	return Command{Exe: c.Exe, Args: args, Cwd: c.Cwd}
}
