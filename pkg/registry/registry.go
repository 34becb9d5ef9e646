// Package registry gates access to the record wizards. A wizard is reachable
// when the feature is enabled, its type is on the configured allow-list and a
// factory is registered for it. Engines are built lazily and cached per type.
package registry

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/wizard"
)

var (
	// ErrNotEnabled reports that record wizards are switched off, or that the
	// configuration could not be read.
	ErrNotEnabled = errors.New("registry: record wizards are not enabled")
	// ErrTypeNotAvailable reports a type that is not allow-listed or has no
	// registered implementation.
	ErrTypeNotAvailable = errors.New("registry: wizard type not available")
	// ErrInvalidEngine reports a factory that produced no usable engine.
	ErrInvalidEngine = errors.New("registry: invalid wizard engine")
)

// Factory constructs an engine from a configuration snapshot.
type Factory func(cfg config.Config) (wizard.Engine, error)

// Option customises a Registry.
type Option func(*Registry)

// WithLogger routes diagnostics, such as engines skipped while listing, to
// logger. A nil logger keeps the registry silent.
func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithoutBuiltins starts the registry with no factories.
func WithoutBuiltins() Option {
	return func(r *Registry) {
		r.factories = make(map[string]Factory)
	}
}

// WithFactory registers an additional factory at construction time.
func WithFactory(wizardType string, factory Factory) Option {
	return func(r *Registry) {
		r.factories[normalise(wizardType)] = factory
	}
}

// Registry maps wizard types to factories and caches built engines.
type Registry struct {
	provider config.Provider
	logger   *log.Logger

	mu        sync.Mutex
	factories map[string]Factory
	cache     map[string]wizard.Engine
}

// New creates a registry reading configuration from provider. The builtin
// wizards are registered unless WithoutBuiltins is supplied.
func New(provider config.Provider, opts ...Option) *Registry {
	r := &Registry{
		provider:  provider,
		factories: Builtins(),
		cache:     make(map[string]wizard.Engine),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func normalise(wizardType string) string {
	return strings.ToLower(strings.TrimSpace(wizardType))
}

func (r *Registry) current() (config.Config, bool) {
	if r.provider == nil {
		return config.Config{}, false
	}
	cfg, err := r.provider.Current()
	if err != nil {
		r.logf("registry: configuration unavailable, wizards disabled: %v", err)
		return config.Config{}, false
	}
	return cfg, cfg.Enabled
}

// IsEnabled reports whether wizards are switched on. Configuration errors
// count as disabled.
func (r *Registry) IsEnabled() bool {
	_, enabled := r.current()
	return enabled
}

// AvailableTypes returns the allow-listed types that have an implementation,
// in allow-list order. It is empty when wizards are disabled.
func (r *Registry) AvailableTypes() []string {
	cfg, enabled := r.current()
	if !enabled {
		return []string{}
	}
	return r.available(cfg)
}

func (r *Registry) available(cfg config.Config) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(cfg.EnabledTypes))
	seen := make(map[string]struct{}, len(cfg.EnabledTypes))
	for _, t := range cfg.EnabledTypes {
		t = normalise(t)
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := r.factories[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Engine returns the engine for wizardType, building and caching it on first
// use.
func (r *Registry) Engine(wizardType string) (wizard.Engine, error) {
	cfg, enabled := r.current()
	if !enabled {
		return nil, ErrNotEnabled
	}
	wizardType = normalise(wizardType)
	if !cfg.TypeEnabled(wizardType) {
		return nil, fmt.Errorf("%w: %q", ErrTypeNotAvailable, wizardType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if engine, ok := r.cache[wizardType]; ok {
		return engine, nil
	}
	factory, ok := r.factories[wizardType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTypeNotAvailable, wizardType)
	}
	engine, err := factory(cfg.Clone())
	if err != nil {
		return nil, fmt.Errorf("registry: build %q: %w", wizardType, err)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: factory for %q returned nil", ErrInvalidEngine, wizardType)
	}
	if got := engine.Type(); got != wizardType {
		return nil, fmt.Errorf("%w: factory for %q built %q", ErrInvalidEngine, wizardType, got)
	}
	r.cache[wizardType] = engine
	return engine, nil
}

// AllEngines returns every available engine. Types whose construction fails
// are logged and skipped.
func (r *Registry) AllEngines() []wizard.Engine {
	types := r.AvailableTypes()
	out := make([]wizard.Engine, 0, len(types))
	for _, t := range types {
		engine, err := r.Engine(t)
		if err != nil {
			r.logf("registry: skipping %q: %v", t, err)
			continue
		}
		out = append(out, engine)
	}
	return out
}

// Metadata lists the available wizards for a selection UI.
func (r *Registry) Metadata() []wizard.Metadata {
	engines := r.AllEngines()
	out := make([]wizard.Metadata, 0, len(engines))
	for _, engine := range engines {
		out = append(out, wizard.Describe(engine))
	}
	return out
}

// RegisterWizard adds or replaces the factory for wizardType and drops any
// cached engine of that type.
func (r *Registry) RegisterWizard(wizardType string, factory Factory) error {
	wizardType = normalise(wizardType)
	if wizardType == "" {
		return fmt.Errorf("registry: wizard type is required")
	}
	if factory == nil {
		return fmt.Errorf("registry: factory for %q is required", wizardType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[wizardType] = factory
	delete(r.cache, wizardType)
	return nil
}

// Invalidate drops every cached engine so the next lookup rebuilds it from
// the current configuration.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.cache)
}

// Types lists every registered type, sorted, regardless of configuration.
func (r *Registry) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
