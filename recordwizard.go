// Package recordwizard wires configuration, the wizard registry and the
// builtin DMARC, SPF, DKIM, CAA, TLSA and SRV engines together.
package recordwizard

import (
	"context"
	"fmt"
	"log"

	"github.com/poweradmin/go-recordwizard/pkg/config"
	"github.com/poweradmin/go-recordwizard/pkg/registry"
)

// Wizards is a registry backed by a reloadable configuration store.
type Wizards struct {
	*registry.Registry
	store *config.Store
	path  string
}

// New builds a registry over a fixed configuration.
func New(cfg config.Config, opts ...registry.Option) *Wizards {
	store := config.NewStore(cfg)
	return &Wizards{
		Registry: registry.New(store, opts...),
		store:    store,
	}
}

// NewFromFile loads path and builds a registry over it. Call Watch to pick
// up later edits.
func NewFromFile(path string, opts ...registry.Option) (*Wizards, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("recordwizard: %w", err)
	}
	w := New(cfg, opts...)
	w.path = path
	return w, nil
}

// Config returns the active configuration snapshot.
func (w *Wizards) Config() config.Config {
	cfg, err := w.store.Current()
	if err != nil {
		return config.Default()
	}
	return cfg
}

// Watch reloads the configuration file until ctx is done. Cached engines are
// dropped after every successful reload so they pick up the new defaults.
func (w *Wizards) Watch(ctx context.Context, logger *log.Logger) error {
	if w.path == "" {
		return fmt.Errorf("recordwizard: watch requires a configuration file")
	}
	return config.Watch(ctx, w.path, w.store, func(config.Config) {
		w.Invalidate()
	}, logger)
}
