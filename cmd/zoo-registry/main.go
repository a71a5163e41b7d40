// Command zoo-registry serves a built registry.json over HTTP.
//
// It is configured entirely from the environment (and an optional .env
// file); see server.Config for the variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/flowtomic/zoo/internal/logging"
	"github.com/flowtomic/zoo/internal/server"
)

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "zoo-registry:", err)
		os.Exit(1)
	}

	logger := logging.NewServer(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, logger).Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
