package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "modernc.org/sqlite"

	"ivagate/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS exchanges (
    id            TEXT PRIMARY KEY,
    session_id    TEXT NOT NULL,
    wallet        TEXT NOT NULL DEFAULT '',
    text          TEXT NOT NULL,
    balance       REAL NOT NULL DEFAULT 0,
    tier          TEXT NOT NULL,
    mood          TEXT NOT NULL,
    duration_ms   INTEGER NOT NULL,
    reply         TEXT NOT NULL DEFAULT '',
    reply_mood    TEXT NOT NULL DEFAULT '',
    short_circuit INTEGER NOT NULL DEFAULT 0,
    source        TEXT NOT NULL,
    created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id, created_at);
`

// Fixed width so that created_at sorts lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite is the single-file store used for local runs and tests.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	return &SQLite{db: db}, nil
}

func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate exchanges: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Save(ctx context.Context, ex domain.Exchange) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (`+exchangeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		ex.ID,
		ex.SessionID,
		ex.Wallet,
		ex.Text,
		ex.Balance,
		string(ex.Tier),
		string(ex.Mood),
		ex.DurationMs,
		ex.Reply,
		string(ex.ReplyMood),
		ex.ShortCircuit,
		string(ex.Source),
		ex.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("save exchange: %w", err)
	}
	return nil
}

func (s *SQLite) FindByID(ctx context.Context, id string) (*domain.Exchange, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+exchangeColumns+` FROM exchanges WHERE id = ?`, id)

	ex, err := scanSQLiteExchange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load exchange: %w", err)
	}
	return ex, nil
}

func (s *SQLite) FindAll(ctx context.Context, limit, offset int) ([]domain.Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+exchangeColumns+`
		FROM exchanges ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	return collect(rows, scanSQLiteExchange)
}

func (s *SQLite) Recent(ctx context.Context, sessionID string, n int) ([]domain.Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+exchangeColumns+`
		FROM exchanges WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("recent exchanges: %w", err)
	}
	out, err := collect(rows, scanSQLiteExchange)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (s *SQLite) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM exchanges WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

func scanSQLiteExchange(s scanner) (*domain.Exchange, error) {
	var ex domain.Exchange
	var createdAt string
	if err := s.Scan(exchangeDest(&ex, &createdAt)...); err != nil {
		return nil, err
	}
	ex.CreatedAt, _ = time.Parse(sqliteTimeLayout, createdAt)
	return &ex, nil
}
