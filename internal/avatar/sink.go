package avatar

import (
	"log"
	"time"

	"golang.org/x/time/rate"

	"ivagate/internal/mood"
)

const DefaultCooldown = time.Second

// Sink consumes mood cues. Play reports whether the cue was accepted; the
// classifier never waits on playback.
type Sink interface {
	Play(c mood.Cue) bool
}

type SinkFunc func(c mood.Cue) bool

func (f SinkFunc) Play(c mood.Cue) bool { return f(c) }

// Throttled drops cues that arrive within the cooldown of the last accepted
// one.
type Throttled struct {
	next    Sink
	limiter *rate.Limiter
}

func Throttle(next Sink, cooldown time.Duration) *Throttled {
	limit := rate.Inf
	if cooldown > 0 {
		limit = rate.Every(cooldown)
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (t *Throttled) Play(c mood.Cue) bool {
	if !t.limiter.Allow() {
		log.Printf("[AVATAR] cooldown active, dropping %s cue", c.Mood)
		return false
	}
	return t.next.Play(c)
}

// LogSink is used when no renderer is attached.
type LogSink struct {
	Prefix string
}

func (s LogSink) Play(c mood.Cue) bool {
	log.Printf("[AVATAR]%s mood=%s duration=%s", s.Prefix, c.Mood, c.Duration)
	return true
}

// Multi fans a cue out to every sink; it is accepted if any sink took it.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(c mood.Cue) bool {
		ok := false
		for _, s := range sinks {
			if s.Play(c) {
				ok = true
			}
		}
		return ok
	})
}
