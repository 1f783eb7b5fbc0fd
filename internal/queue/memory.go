package queue

import (
	"context"
	"errors"
	"sync"

	"ivagate/internal/domain"
)

var ErrClosed = errors.New("queue: closed")

// Memory is an in-process queue used when no brokers are configured.
type Memory struct {
	ch        chan domain.Message
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemory(size int) *Memory {
	return &Memory{
		ch:   make(chan domain.Message, size),
		done: make(chan struct{}),
	}
}

func (m *Memory) Publish(ctx context.Context, msg domain.Message) error {
	select {
	case <-m.done:
		return ErrClosed
	default:
	}
	select {
	case m.ch <- msg:
		return nil
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.done:
			return nil
		case msg := <-m.ch:
			handler(ctx, msg)
		}
	}
}

func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}
