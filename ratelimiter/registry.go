package ratelimiter

import "sync"

// Registry maps model names to limiters. A model without an entry is not
// limited. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	limiters map[string]Limiter
}

func NewRegistry() *Registry {
	return &Registry{
		limiters: make(map[string]Limiter),
	}
}

// Get returns the limiter for model, if one is registered.
func (r *Registry) Get(model string) (Limiter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limiter, ok := r.limiters[model]
	return limiter, ok
}

// Set registers limiter for model, replacing any previous one. A nil limiter
// removes the entry.
func (r *Registry) Set(model string, limiter Limiter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter == nil {
		delete(r.limiters, model)
		return
	}
	r.limiters[model] = limiter
}
