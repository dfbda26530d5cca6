package resilience

import "sync"

// Registry holds named circuit breakers. Each engine instance carries its
// own registry, so breakers are never shared across instances.
type Registry struct {
	mu       sync.Mutex
	defaults BreakerConfig
	configs  map[string]BreakerConfig
	breakers map[string]*Breaker
}

func NewRegistry(defaults BreakerConfig) *Registry {
	return &Registry{
		defaults: defaults.withDefaults(),
		configs:  make(map[string]BreakerConfig),
		breakers: make(map[string]*Breaker),
	}
}

// Configure sets the breaker config for one dependency name. It must be
// called before the first call against that dependency; later calls have
// no effect on an already created breaker.
func (r *Registry) Configure(name string, cfg BreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg.withDefaults()
}

// Breaker returns the breaker for name, creating it on first use.
func (r *Registry) Breaker(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	cfg, ok := r.configs[name]
	if !ok {
		cfg = r.defaults
	}
	b := NewBreaker(cfg)
	r.breakers[name] = b
	return b
}
