package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
)

// Registry manages the available trial plugins, keyed by trial type.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]ports.Plugin
}

// NewRegistry creates a registry holding the given plugins.
func NewRegistry(plugins ...ports.Plugin) *Registry {
	r := &Registry{
		plugins: make(map[string]ports.Plugin),
	}
	for _, p := range plugins {
		r.Register(p)
	}
	return r
}

// Register adds a plugin to the registry.
// If a plugin with the same type exists, it is overwritten.
func (r *Registry) Register(p ports.Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Type()] = p
}

// Lookup returns the plugin for a trial type.
func (r *Registry) Lookup(trialType string) (ports.Plugin, error) {
	r.mu.RLock()
	p, ok := r.plugins[trialType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPluginNotFound, trialType)
	}
	return p, nil
}

// Types lists the registered trial types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.plugins))
	for t := range r.plugins {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Create resolves a parameter object through the plugin named by its "type" field.
func (r *Registry) Create(params map[string]any) ([]domain.TrialConfig, error) {
	trialType, _ := params["type"].(string)
	if trialType == "" {
		return nil, fmt.Errorf("%w: missing trial type", domain.ErrPluginNotFound)
	}
	p, err := r.Lookup(trialType)
	if err != nil {
		return nil, err
	}
	return p.Create(params)
}
