package worker

import (
	"context"
	"log"
	"time"

	"ivagate/internal/avatar"
	"ivagate/internal/mood"
)

type Idler interface {
	Idle(balance float64) mood.Cue
}

// IdleLoop plays an idle cue after an initial delay, then again each time
// the previous cue has finished plus a gap.
type IdleLoop struct {
	idler   Idler
	sink    avatar.Sink
	balance func() float64
	delay   time.Duration
	gap     time.Duration
}

func NewIdleLoop(idler Idler, sink avatar.Sink, balance func() float64, delay, gap time.Duration) *IdleLoop {
	if balance == nil {
		balance = func() float64 { return 0 }
	}
	return &IdleLoop{
		idler:   idler,
		sink:    sink,
		balance: balance,
		delay:   delay,
		gap:     gap,
	}
}

func (w *IdleLoop) Start(ctx context.Context) {
	timer := time.NewTimer(w.delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			cue := w.idler.Idle(w.balance())
			if w.sink.Play(cue) {
				log.Printf("[IDLE] %s for %s", cue.Mood, cue.Duration)
			}
			timer.Reset(cue.Duration + w.gap)
		}
	}
}
