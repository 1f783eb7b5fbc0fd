package queue

import (
	"context"

	"ivagate/internal/domain"
)

type Config struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	GroupID string   `koanf:"group_id"`
}

// Publisher carries relayed stream chat lines to the consumer.
type Publisher interface {
	Publish(ctx context.Context, msg domain.Message) error
	Close() error
}

type Handler func(ctx context.Context, msg domain.Message) error

type Consumer interface {
	Consume(ctx context.Context, handler Handler) error
	Close() error
}
