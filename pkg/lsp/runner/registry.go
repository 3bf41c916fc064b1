package runner

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry holds one Controller per configuration URI for the life of the process.
type Registry struct {
	ctx context.Context
	cfg *Config

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry creates a Registry. Runs started by its controllers are executed in ctx, so
// cancelling ctx stops them; the context of the event that requested a run does not.
func NewRegistry(ctx context.Context, cfg Config) *Registry {
	return &Registry{
		ctx:         ctx,
		cfg:         &cfg,
		controllers: make(map[string]*Controller),
	}
}

// Controller returns the controller of configURI, creating it on first use.
func (r *Registry) Controller(configURI string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.controllers[configURI]
	if !ok {
		c = newController(r.ctx, configURI, r.cfg)
		r.controllers[configURI] = c
	}
	return c
}

// Lookup returns the controller of configURI if one exists.
func (r *Registry) Lookup(configURI string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.controllers[configURI]
	return c, ok
}

// URIs returns every configuration with a controller.
func (r *Registry) URIs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	uris := lo.Keys(r.controllers)
	slices.Sort(uris)
	return uris
}

// CancelAll cancels every run in flight.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	controllers := lo.Values(r.controllers)
	r.mu.Unlock()

	for _, c := range controllers {
		c.Cancel()
	}
}
