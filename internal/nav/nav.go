// Package nav names the two screens of the app and the replace-only
// transition between them.
package nav

import "sync"

// Destination is a screen of the navigation stack.
type Destination string

const (
	Auth    Destination = "Auth"
	Listing Destination = "Listing"
)

// Navigator replaces the current destination without keeping a back-stack entry.
type Navigator interface {
	Replace(d Destination)
}

// Recorder is a Navigator that remembers where it was sent. The zero value
// starts at Auth.
type Recorder struct {
	mu      sync.Mutex
	current Destination
	hops    int
}

func (r *Recorder) Replace(d Destination) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = d
	r.hops++
}

// Current returns the active destination.
func (r *Recorder) Current() Destination {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == "" {
		return Auth
	}
	return r.current
}

// Transitions reports how many times Replace was called.
func (r *Recorder) Transitions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hops
}

// Discard ignores transitions.
var Discard Navigator = discard{}

type discard struct{}

func (discard) Replace(Destination) {}
