// Package catalog instantiates body modules from string keys and parameters.
//
// A Registry is an explicit lookup table of factory closures. The default
// registry carries the preset parts (core, head, fin, thruster, sensor, sonar)
// plus the aliases limb and propulsion.
package catalog

import (
	"fmt"
	"maps"
	"slices"

	"github.com/pthm-cable/bodygraph/body"
	"github.com/pthm-cable/bodygraph/config"
)

// Factory builds a module for key from instantiation parameters.
type Factory func(key string, p body.Params) (body.Module, error)

// Registry maps catalog keys to module factories.
type Registry struct {
	factories    map[string]Factory
	nerveLoad    map[body.Category]float64
	streamlining map[body.Category]float64
}

// New returns an empty registry tuned by cfg. Category names in cfg must be
// known categories.
func New(cfg config.CatalogConfig) (*Registry, error) {
	r := &Registry{
		factories:    make(map[string]Factory),
		nerveLoad:    make(map[body.Category]float64, len(body.Categories)),
		streamlining: make(map[body.Category]float64, len(body.Categories)),
	}
	for _, c := range body.Categories {
		r.streamlining[c] = 1
	}
	for name, v := range cfg.NerveLoad {
		c, err := body.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("catalog nerve_load: %w", err)
		}
		r.nerveLoad[c] = v
	}
	for name, v := range cfg.Streamlining {
		c, err := body.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("catalog streamlining: %w", err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("catalog streamlining: %s must be positive, got %v", name, v)
		}
		r.streamlining[c] = v
	}
	return r, nil
}

// NewDefault returns a registry tuned by cfg with every preset registered.
func NewDefault(cfg config.CatalogConfig) (*Registry, error) {
	r, err := New(cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range presets() {
		if err := r.Register(p.key, r.presetFactory(p)); err != nil {
			return nil, err
		}
	}
	if err := r.Alias("limb", "fin"); err != nil {
		return nil, err
	}
	if err := r.Alias("propulsion", "thruster"); err != nil {
		return nil, err
	}
	return r, nil
}

// Default returns the preset registry tuned by the embedded configuration.
func Default() *Registry {
	r, err := NewDefault(config.Default().Catalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: default registry: %v", err))
	}
	return r
}

// Register adds a factory under key. Keys cannot be registered twice.
func (r *Registry) Register(key string, f Factory) error {
	if key == "" {
		return fmt.Errorf("catalog: empty key")
	}
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("catalog: key %q already registered", key)
	}
	r.factories[key] = f
	return nil
}

// Alias makes alias resolve to the factory registered under key.
func (r *Registry) Alias(alias, key string) error {
	f, ok := r.factories[key]
	if !ok {
		return fmt.Errorf("catalog: alias %q targets unknown key %q", alias, key)
	}
	return r.Register(alias, f)
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.factories[key]
	return ok
}

// Keys returns every registered key in sorted order.
func (r *Registry) Keys() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Create instantiates the module registered under key.
func (r *Registry) Create(key string, p body.Params) (body.Module, error) {
	f, ok := r.factories[key]
	if !ok {
		return body.Module{}, fmt.Errorf("catalog: unknown module type %q", key)
	}
	m, err := f(key, p)
	if err != nil {
		return body.Module{}, fmt.Errorf("catalog: create %q: %w", key, err)
	}
	return m, nil
}

// NerveLoad returns the nerve capacity a module of category c consumes.
func (r *Registry) NerveLoad(c body.Category) float64 {
	return r.nerveLoad[c]
}

// Streamlining returns the drag multiplier for category c.
func (r *Registry) Streamlining(c body.Category) float64 {
	return r.streamlining[c]
}

// Candidates returns the keys whose default instance fits point, sorted.
// Aliases are included, so callers wanting distinct parts should dedupe by name.
func (r *Registry) Candidates(point body.AttachmentPoint) []string {
	var out []string
	for _, key := range r.Keys() {
		m, err := r.Create(key, body.Params{})
		if err != nil {
			continue
		}
		if body.CanAccept(point, m) {
			out = append(out, key)
		}
	}
	return out
}
