package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ivagate/internal/api"
	"ivagate/internal/avatar"
	"ivagate/internal/chat"
	"ivagate/internal/classifier"
	"ivagate/internal/config"
	"ivagate/internal/notifier"
	"ivagate/internal/queue"
	"ivagate/internal/redis"
	"ivagate/internal/session"
	"ivagate/internal/storage"
	"ivagate/internal/wallet"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	repo, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer repo.Close()

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	publisher, err := queue.NewKafka(cfg.Queue)
	if err != nil {
		log.Fatalf("failed to create queue: %v", err)
	}
	defer publisher.Close()

	source := wallet.NewSolana(cfg.Wallet.RPCURL)
	broker := api.NewSSEBroker()
	sink := avatar.Throttle(avatar.Multi(avatar.LogSink{}, broker), cfg.Avatar.Cooldown)
	engine := classifier.New(cfg.ClassifierOptions())

	var nt notifier.Notifier = notifier.Nop{}
	if cfg.Notifier.BotToken != "" {
		nt = notifier.NewTelegram(cfg.Notifier)
	}

	svc := session.NewService(session.Options{
		Classifier: engine,
		Backend:    chat.NewOpenRouter(cfg.Chat),
		Repo:       repo,
		Guard:      rdb,
		Sink:       sink,
		Notifier:   nt,
		Cache:      rdb,
		Source:     source,
		History:    cfg.Chat.History,
	})

	server := api.NewServer(api.Options{
		Chat:       svc,
		Classifier: engine,
		Repo:       repo,
		Wallets:    rdb,
		Source:     source,
		Wallet:     wallet.New(cfg.WalletRegistry(), source),
		Publisher:  publisher,
		Broker:     broker,
		Sink:       sink,
	})

	go func() {
		log.Printf("server starting on %s", cfg.Server.Port)
		if err := server.Start(cfg.Server.Port); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	server.Shutdown()
}
