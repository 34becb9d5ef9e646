package config

import (
	"errors"
	"sync/atomic"
)

// ErrNotLoaded is returned by an empty Store.
var ErrNotLoaded = errors.New("config: no configuration loaded")

// Store is a Provider whose snapshot can be swapped atomically, typically by
// Watch when the configuration file changes.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore returns a Store seeded with cfg.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.Set(cfg)
	return s
}

// Set replaces the current snapshot.
func (s *Store) Set(cfg Config) {
	clone := cfg.Clone()
	s.current.Store(&clone)
}

// Current implements Provider.
func (s *Store) Current() (Config, error) {
	if s == nil {
		return Config{}, ErrNotLoaded
	}
	cfg := s.current.Load()
	if cfg == nil {
		return Config{}, ErrNotLoaded
	}
	return cfg.Clone(), nil
}
