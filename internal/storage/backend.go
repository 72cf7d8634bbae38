package storage

import (
	"context"
	"fmt"

	"github.com/janpisl/gowps/internal/config"
	"github.com/janpisl/gowps/internal/inout"
)

// Kind tells the caller how to interpret a descriptor's location.
type Kind int

const (
	KindPath Kind = iota
	KindDatabase
)

// Descriptor identifies where and how a stored result can be
// retrieved.
type Descriptor struct {
	Kind     Kind   `json:"kind"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

// Backend durably delivers a finished output somewhere retrievable.
// Store is not idempotent: calling it twice may create two distinct
// locations.
type Backend interface {
	Store(ctx context.Context, output *inout.ComplexOutput) (Descriptor, error)
}

// NullBackend does nothing; used when an output is not published by
// reference. The zero descriptor signals "no reference to construct".
type NullBackend struct{}

func (NullBackend) Store(_ context.Context, _ *inout.ComplexOutput) (Descriptor, error) {
	return Descriptor{}, nil
}

// New builds the configured backend. This is the single place backend
// selection happens; the configuration snapshot is read once here.
func New(cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Backend {
	case "", "null":
		return NullBackend{}, nil
	case "file":
		return NewFileBackend(cfg.Storage), nil
	case "pg", "sqlite":
		dbCfg := cfg.Database
		dbCfg.Dialect = cfg.Storage.Backend
		return NewDatabaseBackend(dbCfg), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// OutputURL stores an output and returns the client-facing reference.
func OutputURL(ctx context.Context, b Backend, output *inout.ComplexOutput) (string, error) {
	desc, err := b.Store(ctx, output)
	if err != nil {
		return "", err
	}
	return desc.URL, nil
}
