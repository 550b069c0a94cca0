package offline

import "sync/atomic"

// Reachability reports whether the backend is currently reachable. Detection
// belongs to the caller; the engine only reads the signal.
type Reachability interface {
	Online() bool
}

// Flag is a Reachability the client flips over HTTP or the CLI sets from a flag.
type Flag struct {
	online atomic.Bool
}

// NewFlag creates a flag in the given state.
func NewFlag(online bool) *Flag {
	f := &Flag{}
	f.online.Store(online)
	return f
}

// Online implements Reachability.
func (f *Flag) Online() bool {
	return f.online.Load()
}

// Set stores the new state and returns the previous one.
func (f *Flag) Set(online bool) bool {
	return f.online.Swap(online)
}
