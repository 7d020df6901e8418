// Package di provides dependency injection container
package di

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/bytestream/pkg/api" //nolint:depguard
)

// Container holds the process-wide collaborators the CLI needs to run the
// server
type Container struct {
	serverFactory api.ServerFactory
	registry      *prometheus.Registry
}

// NewContainer creates a container wired for production use
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// GetRegistry returns the metrics registry, creating it with the runtime
// collectors on first use. Metrics must be registered only once per registry.
func (c *Container) GetRegistry() *prometheus.Registry {
	if c.registry == nil {
		c.registry = api.NewRegistry()
	}
	return c.registry
}

// SetRegistry replaces the metrics registry
func (c *Container) SetRegistry(reg *prometheus.Registry) {
	c.registry = reg
}
