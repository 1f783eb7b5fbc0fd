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
	"ivagate/internal/queue"
	"ivagate/internal/redis"
	"ivagate/internal/session"
	"ivagate/internal/storage"
	"ivagate/internal/wallet"
	"ivagate/internal/worker"
)

// app runs the whole system in one process. Redis and Kafka are used when
// reachable; otherwise in-memory stand-ins take their place.
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

	source := wallet.NewSolana(cfg.Wallet.RPCURL)
	broker := api.NewSSEBroker()
	sink := avatar.Throttle(avatar.Multi(avatar.LogSink{}, broker), cfg.Avatar.Cooldown)
	engine := classifier.New(cfg.ClassifierOptions())

	svcOpts := session.Options{
		Classifier: engine,
		Backend:    chat.NewOpenRouter(cfg.Chat),
		Repo:       repo,
		Sink:       sink,
		Source:     source,
		History:    cfg.Chat.History,
	}
	serverOpts := api.Options{
		Classifier: engine,
		Repo:       repo,
		Source:     source,
		Broker:     broker,
		Sink:       sink,
	}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		log.Printf("redis unavailable, using in-memory session guard: %v", err)
	} else {
		defer rdb.Close()
		svcOpts.Guard = rdb
		svcOpts.Cache = rdb
		serverOpts.Wallets = rdb
		go worker.NewPoller(rdb, source, cfg.Wallet.PollInterval).Start(ctx)
	}

	var (
		publisher queue.Publisher
		consumer  queue.Consumer
	)
	if len(cfg.Queue.Brokers) > 0 {
		producer, err := queue.NewKafka(cfg.Queue)
		if err != nil {
			log.Fatalf("failed to create queue: %v", err)
		}
		kc, err := queue.NewKafkaConsumer(cfg.Queue)
		if err != nil {
			log.Fatalf("failed to create consumer: %v", err)
		}
		publisher, consumer = producer, kc
	} else {
		mem := queue.NewMemory(64)
		publisher, consumer = mem, mem
	}
	defer publisher.Close()
	defer consumer.Close()

	local := wallet.New(cfg.WalletRegistry(), source)
	if len(local.Adapters()) > 0 {
		if err := local.Connect(ctx, ""); err != nil {
			log.Printf("[WALLET] %v", err)
		}
		go local.Watch(ctx, cfg.Wallet.PollInterval, func(st wallet.State) {
			log.Printf("[BALANCE] %s: %.4f", st.PublicKey, st.Balance)
		})
	}

	svc := session.NewService(svcOpts)
	serverOpts.Chat = svc
	serverOpts.Wallet = local
	serverOpts.Publisher = publisher
	server := api.NewServer(serverOpts)

	w := worker.NewConsumer(consumer, svc, server)
	go func() {
		if err := w.Start(ctx); err != nil {
			log.Printf("consumer error: %v", err)
		}
	}()

	go worker.NewIdleLoop(engine, sink, local.Balance, cfg.Avatar.IdleDelay, cfg.Avatar.IdleGap).Start(ctx)

	go func() {
		log.Printf("server starting on %s", cfg.Server.Port)
		if err := server.Start(cfg.Server.Port); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	log.Printf("app started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	cancel()
	server.Shutdown()
}
