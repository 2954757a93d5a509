package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"
)

// Protocol is one gateway protocol server. Serve must return once ctx is
// cancelled and its in-flight connections have drained.
type Protocol interface {
	Name() string
	Serve(ctx context.Context, ln net.Listener) error
}

type endpoint struct {
	protocol Protocol
	addr     string
}

// Gateway supervises one listener per enabled protocol and coordinates
// cooperative shutdown of the whole set.
type Gateway struct {
	logger    *slog.Logger
	endpoints []endpoint
}

func New(logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{logger: logger}
}

// Register adds a protocol server listening on addr.
func (g *Gateway) Register(p Protocol, addr string) {
	g.endpoints = append(g.endpoints, endpoint{protocol: p, addr: addr})
}

// Run binds every registered endpoint, then serves until ctx is cancelled or
// a protocol server fails. A bind failure aborts startup.
func (g *Gateway) Run(ctx context.Context) error {
	if len(g.endpoints) == 0 {
		return fmt.Errorf("no protocol servers registered")
	}

	listeners := make([]net.Listener, 0, len(g.endpoints))
	for _, ep := range g.endpoints {
		ln, err := net.Listen("tcp", ep.addr)
		if err != nil {
			for _, open := range listeners {
				open.Close()
			}
			return fmt.Errorf("binding %s listener on %s: %w", ep.protocol.Name(), ep.addr, err)
		}
		listeners = append(listeners, ln)
		g.logger.Info("listener started", "protocol", ep.protocol.Name(), "addr", ln.Addr())
	}

	group, ctx := errgroup.WithContext(ctx)
	for i, ep := range g.endpoints {
		ln := listeners[i]
		protocol := ep.protocol
		group.Go(func() error {
			defer ln.Close()
			if err := protocol.Serve(ctx, ln); err != nil {
				return fmt.Errorf("%s server: %w", protocol.Name(), err)
			}
			g.logger.Info("listener stopped", "protocol", protocol.Name())
			return nil
		})
	}
	return group.Wait()
}
