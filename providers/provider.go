// Package providers defines the discovery interface the orchestrator
// scans through, plus a registry for provider implementations.
package providers

import (
	"context"
	"fmt"

	"github.com/finlens/finlens/types"
)

// Provider discovers resources of one type in one region. Global types
// (IAM, CloudFront) ignore the region argument.
type Provider interface {
	Name() string
	Supports(t types.ResourceType) bool
	Discover(ctx context.Context, region string, t types.ResourceType) ([]types.Resource, error)
}

// Config holds provider construction settings.
type Config struct {
	Region string // default region for client bootstrap
	Seed   int64  // mock determinism
}

// Factory creates a provider instance.
type Factory func(ctx context.Context, cfg Config) (Provider, error)

var registry = make(map[string]Factory)

// Register adds a provider factory under a name.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// New creates a provider by name.
func New(ctx context.Context, name string, cfg Config) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found", name)
	}
	return factory(ctx, cfg)
}

// Names returns the registered provider names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
