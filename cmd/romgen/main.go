package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	errlog "romgen/internal/errors/logging"
	"romgen/internal/logger"
)

func main() {
	log := logger.NewColoredLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Received exit signal, stopping...")
		cancel()
	}()

	if err := newRootCommand(log).ExecuteContext(ctx); err != nil {
		errlog.Error(ctx, log, "romgen failed: "+err.Error(), err)
		cancel()
		os.Exit(1)
	}
}
