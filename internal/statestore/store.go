package statestore

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JanitorInterval is how often the Registry sweeps for idle entries, matching
// the cadence the teacher's internal/context.Manager reaper runs its own
// sweep at.
const JanitorInterval = 180 * time.Second

// entry is the in-memory handle for one active session: its mutable
// TerrainState plus the lock that serializes writers touching it.
type entry struct {
	mu      sync.Mutex
	state   *TerrainState
	idle    bool
	touched time.Time
}

// Registry is the daemon's in-memory index of active sessions, grounded on
// the teacher's internal/context.Manager: a map guarded by an RWMutex for
// membership changes, with a per-entry lock so concurrent Activate/Execute/
// Deactivate calls against different sessions never block each other, and a
// periodic janitor goroutine that evicts sessions idle longer than ttl.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	root    string
	ttl     time.Duration
	log     *slog.Logger
}

// NewRegistry constructs an empty Registry rooted at root (the daemon's
// state directory). ttl is how long an idle session is kept before the
// janitor evicts it from memory (the on-disk state file is left intact).
func NewRegistry(root string, ttl time.Duration, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		root:    root,
		ttl:     ttl,
		log:     log,
	}
}

// Put registers s as the active in-memory state for its session, loading it
// fresh (e.g. on Activate) or replacing a stale in-memory copy.
func (r *Registry) Put(s *TerrainState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.SessionID] = &entry{state: s, touched: time.Now()}
}

// WithLock looks up the session, locks its per-entry mutex for the duration
// of fn, marks it recently touched, and runs fn against the live state. If
// the session isn't resident, it's loaded from disk via ReadState first.
func (r *Registry) WithLock(sessionID, terrainName string, fn func(*TerrainState) error) error {
	e, err := r.getOrLoad(sessionID, terrainName)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.touched = time.Now()
	e.idle = false
	if err := fn(e.state); err != nil {
		return err
	}
	e.idle = true
	return WriteState(r.root, e.state)
}

func (r *Registry) getOrLoad(sessionID, terrainName string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[sessionID]
	r.mu.RUnlock()
	if ok {
		return e, nil
	}

	s, err := ReadState(r.root, terrainName, sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[sessionID]; ok {
		return existing, nil
	}
	e = &entry{state: s, touched: time.Now(), idle: true}
	r.entries[sessionID] = e
	return e, nil
}

// Evict removes a session from the in-memory registry immediately, without
// waiting for the idle janitor.
func (r *Registry) Evict(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
}

// RunJanitor sweeps every JanitorInterval, evicting entries that are idle
// (no writer currently holding their lock) and untouched for longer than
// ttl. It blocks until ctx is cancelled, so callers run it in its own
// goroutine.
func (r *Registry) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	now := time.Now()
	var evicted []string

	r.mu.Lock()
	for id, e := range r.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.idle && now.Sub(e.touched) > r.ttl
		e.mu.Unlock()
		if idle {
			delete(r.entries, id)
			evicted = append(evicted, id)
		}
	}
	r.mu.Unlock()

	for _, id := range evicted {
		r.log.Debug("evicted idle session from registry", "session_id", id)
	}
}

// Len reports the number of sessions currently resident in memory.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
