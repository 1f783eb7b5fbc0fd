package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

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
	"ivagate/internal/worker"
)

// consumer answers relayed stream chat from Kafka and posts the replies to
// Telegram.
func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	consumer, err := queue.NewKafkaConsumer(cfg.Queue)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	var nt notifier.Notifier = notifier.Nop{}
	if cfg.Notifier.BotToken != "" {
		nt = notifier.NewTelegram(cfg.Notifier)
	}

	svc := session.NewService(session.Options{
		Classifier: classifier.New(cfg.ClassifierOptions()),
		Backend:    chat.NewOpenRouter(cfg.Chat),
		Repo:       repo,
		Guard:      rdb,
		Sink:       avatar.Throttle(avatar.LogSink{}, cfg.Avatar.Cooldown),
		Notifier:   nt,
		Cache:      rdb,
		Source:     wallet.NewSolana(cfg.Wallet.RPCURL),
		History:    cfg.Chat.History,
	})

	w := worker.NewConsumer(consumer, svc, nil)

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Printf("consumer error: %v", err)
		}
	}()

	log.Printf("consumer started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	cancel()
}
