package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/cli"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/config"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/mocknode"
)

type nodeEnv struct {
	Host     string        `env:"HOST" envDefault:"127.0.0.1"`
	Port     string        `env:"PORT" envDefault:"8545"`
	Latency  time.Duration `env:"LATENCY" envDefault:"0s"`
	Failing  string        `env:"FAILING"`
	Silent   string        `env:"SILENT"`
	Binary   string        `env:"BINARY"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	_ = godotenv.Load()

	var e nodeEnv
	if err := env.ParseWithOptions(&e, env.Options{Prefix: "MOCKNODE_"}); err != nil {
		log.Fatalf("Failed to parse environment: %v", err)
	}

	logger, err := cli.NewLogger(e.LogLevel, log.Writer())
	if err != nil {
		log.Fatal(err)
	}

	node := mocknode.New(mocknode.Options{
		Latency:     e.Latency,
		Failing:     config.SplitList(e.Failing),
		Silent:      config.SplitList(e.Silent),
		Binary:      config.SplitList(e.Binary),
		LogRequests: e.LogLevel == "debug",
		Logger:      logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = node.Serve(ctx, e.Host+":"+e.Port); err != nil {
		cancel()
		log.Fatal(err)
	}
	logger.Info("server stopped")
}
