package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	_ "github.com/lib/pq"

	"ivagate/internal/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	wallet        TEXT NOT NULL DEFAULT '',
	text          TEXT NOT NULL,
	balance       DOUBLE PRECISION NOT NULL DEFAULT 0,
	tier          TEXT NOT NULL,
	mood          TEXT NOT NULL,
	duration_ms   BIGINT NOT NULL,
	reply         TEXT NOT NULL DEFAULT '',
	reply_mood    TEXT NOT NULL DEFAULT '',
	short_circuit BOOLEAN NOT NULL DEFAULT FALSE,
	source        TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges (session_id, created_at);
`

const exchangeColumns = `id, session_id, wallet, text, balance, tier, mood, duration_ms, reply, reply_mood, short_circuit, source, created_at`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate exchanges: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Save(ctx context.Context, ex domain.Exchange) error {
	query := `
		INSERT INTO exchanges (` + exchangeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.db.ExecContext(ctx, query,
		ex.ID,
		ex.SessionID,
		ex.Wallet,
		ex.Text,
		ex.Balance,
		ex.Tier,
		ex.Mood,
		ex.DurationMs,
		ex.Reply,
		ex.ReplyMood,
		ex.ShortCircuit,
		ex.Source,
		ex.CreatedAt,
	)

	return err
}

func (p *Postgres) FindByID(ctx context.Context, id string) (*domain.Exchange, error) {
	query := `SELECT ` + exchangeColumns + ` FROM exchanges WHERE id = $1`

	ex, err := scanExchange(p.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ex, nil
}

func (p *Postgres) FindAll(ctx context.Context, limit, offset int) ([]domain.Exchange, error) {
	query := `
		SELECT ` + exchangeColumns + `
		FROM exchanges ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`

	rows, err := p.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanExchange)
}

func (p *Postgres) Recent(ctx context.Context, sessionID string, n int) ([]domain.Exchange, error) {
	query := `
		SELECT ` + exchangeColumns + `
		FROM exchanges WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2
	`

	rows, err := p.db.QueryContext(ctx, query, sessionID, n)
	if err != nil {
		return nil, err
	}
	out, err := collect(rows, scanExchange)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (p *Postgres) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM exchanges WHERE id = $1)`

	var exists bool
	err := p.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

type scanner interface {
	Scan(dest ...any) error
}

// exchangeDest lists scan targets in exchangeColumns order; created receives
// the created_at column so each driver can pick its own time encoding.
func exchangeDest(ex *domain.Exchange, created any) []any {
	return []any{
		&ex.ID,
		&ex.SessionID,
		&ex.Wallet,
		&ex.Text,
		&ex.Balance,
		&ex.Tier,
		&ex.Mood,
		&ex.DurationMs,
		&ex.Reply,
		&ex.ReplyMood,
		&ex.ShortCircuit,
		&ex.Source,
		created,
	}
}

func scanExchange(s scanner) (*domain.Exchange, error) {
	var ex domain.Exchange
	if err := s.Scan(exchangeDest(&ex, &ex.CreatedAt)...); err != nil {
		return nil, err
	}
	return &ex, nil
}

func collect(rows *sql.Rows, scan func(scanner) (*domain.Exchange, error)) ([]domain.Exchange, error) {
	defer rows.Close()

	var exchanges []domain.Exchange
	for rows.Next() {
		ex, err := scan(rows)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, *ex)
	}

	return exchanges, rows.Err()
}
