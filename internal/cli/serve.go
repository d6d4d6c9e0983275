package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/eventhubx/eventhubx/internal/server"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	host := a.cfg.Server.Host
	if c.Host != "" {
		host = c.Host
	}
	port := a.cfg.Server.Port
	if c.Port > 0 {
		port = c.Port
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := server.New(addr, a.gw, a.store, a.engine, a.states, a.logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
