package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cli.Failf("%v", err)
		cancel()
		os.Exit(1)
	}
}
