package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"ivagate/internal/domain"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemory(4)
	got := make(chan domain.Message, 1)
	go q.Consume(ctx, func(_ context.Context, msg domain.Message) error {
		got <- msg
		return nil
	})

	msg := domain.NewMessage("s-1", "hello", domain.SourceStream)
	if err := q.Publish(ctx, msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case m := <-got:
		if m.ID != msg.ID || m.Text != "hello" {
			t.Fatalf("consumed %+v", m)
		}
	case <-time.After(time.Second):
		t.Fatal("message not consumed")
	}
}

func TestMemoryClosed(t *testing.T) {
	q := NewMemory(1)
	q.Close()
	q.Close()
	if err := q.Publish(context.Background(), domain.Message{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Publish after Close = %v, want ErrClosed", err)
	}
	if err := q.Consume(context.Background(), nil); err != nil {
		t.Fatalf("Consume after Close = %v", err)
	}
}
