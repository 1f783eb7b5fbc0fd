package storage

import (
	"context"

	"ivagate/internal/domain"
)

type ExchangeRepository interface {
	Save(ctx context.Context, ex domain.Exchange) error
	FindByID(ctx context.Context, id string) (*domain.Exchange, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.Exchange, error)
	// Recent returns the last n exchanges of a session, oldest first.
	Recent(ctx context.Context, sessionID string, n int) ([]domain.Exchange, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type Config struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}
