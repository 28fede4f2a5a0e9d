package breaker

import (
	"sort"
	"sync"
)

// Registry hands out one Breaker per name so independent call sites keep
// independent state while calls to the same site share it.
type Registry struct {
	defaults Settings

	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewRegistry creates a Registry whose breakers are built from defaults
// with the Name replaced.
func NewRegistry(defaults Settings) *Registry {
	return &Registry{
		defaults: defaults,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker registered under name, creating it on first use.
func (r *Registry) Get(name string) *Breaker {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if b, ok = r.breakers[name]; ok {
		return b
	}

	s := r.defaults
	s.Name = name
	b = New(s)
	r.breakers[name] = b
	return b
}

// Snapshot describes one breaker at a point in time.
type Snapshot struct {
	Name   string `json:"name"`
	State  State  `json:"state"`
	Counts Counts `json:"counts"`
}

// Snapshots returns every registered breaker, sorted by name.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	list := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		list = append(list, b)
	}
	r.mu.RUnlock()

	out := make([]Snapshot, 0, len(list))
	for _, b := range list {
		out = append(out, Snapshot{Name: b.Name(), State: b.State(), Counts: b.Counts()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
