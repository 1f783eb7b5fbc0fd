package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Guard admits one in-flight message per session. Acquire hands out a
// token; Release frees the session only while that token still holds it.
type Guard interface {
	Acquire(ctx context.Context, sessionID string) (token string, ok bool, err error)
	Release(ctx context.Context, sessionID, token string) error
}

type MemoryGuard struct {
	mu   sync.Mutex
	busy map[string]string
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{busy: make(map[string]string)}
}

func (g *MemoryGuard) Acquire(_ context.Context, sessionID string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[sessionID]; ok {
		return "", false, nil
	}
	token := uuid.NewString()
	g.busy[sessionID] = token
	return token, true, nil
}

func (g *MemoryGuard) Release(_ context.Context, sessionID, token string) error {
	g.mu.Lock()
	if g.busy[sessionID] == token {
		delete(g.busy, sessionID)
	}
	g.mu.Unlock()
	return nil
}
