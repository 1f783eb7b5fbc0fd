package notifier

import (
	"context"
	"errors"

	"ivagate/internal/domain"
)

type Notification struct {
	Message  domain.Message
	Exchange domain.Exchange
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
