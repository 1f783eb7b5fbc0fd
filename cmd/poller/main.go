package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ivagate/internal/config"
	"ivagate/internal/redis"
	"ivagate/internal/wallet"
	"ivagate/internal/worker"
)

// poller keeps the Redis balance cache of tracked wallets fresh.
func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	w := worker.NewPoller(rdb, wallet.NewSolana(cfg.Wallet.RPCURL), cfg.Wallet.PollInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Start(ctx)

	log.Printf("poller started (every %s)", cfg.Wallet.PollInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	cancel()
}
