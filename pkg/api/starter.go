package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerStarter runs a configured Server until ctx is cancelled
type ServerStarter interface {
	StartServer(ctx context.Context, server *Server, gatherer prometheus.Gatherer) error
}

// ServerFactory hands out starters. The CLI gets one from the di container so
// tests can swap in a starter that never opens a socket.
type ServerFactory interface {
	CreateServerStarter() ServerStarter
}

// StarterFunc adapts a plain function to ServerStarter
type StarterFunc func(ctx context.Context, server *Server, gatherer prometheus.Gatherer) error

// StartServer calls f
func (f StarterFunc) StartServer(ctx context.Context, server *Server, gatherer prometheus.Gatherer) error {
	return f(ctx, server, gatherer)
}

type httpServerFactory struct{}

// NewServerFactory returns the factory whose starters listen on the
// configured address
func NewServerFactory() ServerFactory {
	return httpServerFactory{}
}

func (httpServerFactory) CreateServerStarter() ServerStarter {
	return StarterFunc(StartServer)
}
