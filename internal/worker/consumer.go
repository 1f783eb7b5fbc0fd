package worker

import (
	"context"
	"errors"
	"log"

	"ivagate/internal/domain"
	"ivagate/internal/queue"
	"ivagate/internal/session"
)

// Handler is the part of session.Service the consumer needs.
type Handler interface {
	Handle(ctx context.Context, msg domain.Message) (*session.Outcome, error)
}

// Broadcaster pushes finished replies to connected viewers.
type Broadcaster interface {
	BroadcastReply(out *session.Outcome)
}

// Consumer answers relayed stream chat lines. Lines that arrive while the
// session is still busy are dropped, not queued.
type Consumer struct {
	consumer    queue.Consumer
	handler     Handler
	broadcaster Broadcaster
}

func NewConsumer(c queue.Consumer, h Handler, b Broadcaster) *Consumer {
	return &Consumer{
		consumer:    c,
		handler:     h,
		broadcaster: b,
	}
}

func (w *Consumer) Start(ctx context.Context) error {
	return w.consumer.Consume(ctx, w.handleMessage)
}

func (w *Consumer) handleMessage(ctx context.Context, msg domain.Message) error {
	log.Printf("[RECEIVED] %s/%s: %s", msg.Source, msg.Author, truncate(msg.Text, 60))

	out, err := w.handler.Handle(ctx, msg)
	if errors.Is(err, session.ErrBusy) {
		log.Printf("[BUSY] %s: dropped %s", msg.SessionID, msg.ID)
		return nil
	}
	if err != nil {
		log.Printf("[ERROR] handle %s: %v", msg.ID, err)
		return err
	}

	log.Printf("[REPLIED] %s tier=%s: %s", msg.SessionID, out.Result.Tier, truncate(out.Reply.Text, 60))

	if w.broadcaster != nil {
		w.broadcaster.BroadcastReply(out)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
