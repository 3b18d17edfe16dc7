package health

import (
	"sort"
	"sync"
	"time"
)

// ComponentState represents the readiness of a component.
type ComponentState struct {
	Ready   bool      `json:"ready"`
	Message string    `json:"message,omitempty"`
	Since   time.Time `json:"since"`
}

// Readiness tracks readiness for the service's long-running components.
type Readiness struct {
	mu         sync.RWMutex
	components map[string]ComponentState
	now        func() time.Time
}

func NewReadiness() *Readiness {
	return &Readiness{
		components: make(map[string]ComponentState),
		now:        time.Now,
	}
}

// Set updates readiness state for a component. Since only moves when the
// ready flag flips.
func (r *Readiness) Set(component string, ready bool, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := r.now()
	if prev, ok := r.components[component]; ok && prev.Ready == ready {
		since = prev.Since
	}
	r.components[component] = ComponentState{
		Ready:   ready,
		Message: message,
		Since:   since,
	}
}

func (r *Readiness) MarkReady(component string) {
	r.Set(component, true, "running")
}

// MarkNotReady marks a component as not ready with the provided reason.
func (r *Readiness) MarkNotReady(component, reason string) {
	if reason == "" {
		reason = "stopped"
	}
	r.Set(component, false, reason)
}

// Snapshot returns a copy of the readiness map.
func (r *Readiness) Snapshot() map[string]ComponentState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ComponentState, len(r.components))
	for k, v := range r.components {
		out[k] = v
	}
	return out
}

// Ready returns true if every registered component is ready.
func (r *Readiness) Ready() bool {
	return len(r.NotReady()) == 0 && r.count() > 0
}

// NotReady lists the components that are not ready, sorted by name.
func (r *Readiness) NotReady() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for name, state := range r.components {
		if !state.Ready {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Readiness) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}
