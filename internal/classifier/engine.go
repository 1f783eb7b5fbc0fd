package classifier

import (
	"time"

	"ivagate/internal/access"
	"ivagate/internal/mood"
	"ivagate/internal/responses"
)

const (
	idleBase       = 8000 * time.Millisecond
	idleSpread     = 5000 * time.Millisecond
	idleTierChance = 0.3
)

type Options struct {
	Policy   access.Policy
	Ladder   mood.Ladder
	Catalog  responses.Catalog
	Analyzer *mood.Analyzer
	Rand     responses.Rand
}

func DefaultOptions() Options {
	return Options{
		Policy:  access.DefaultPolicy(),
		Ladder:  mood.DefaultLadder(),
		Catalog: responses.DefaultCatalog(),
	}
}

// Engine composes the threshold policy, mood rules and canned catalog. It
// holds no mutable state.
type Engine struct {
	policy   access.Policy
	ladder   mood.Ladder
	analyzer *mood.Analyzer
	resolver *mood.Resolver
	selector *responses.Selector
	rnd      responses.Rand
}

func New(opts Options) *Engine {
	if opts.Rand == nil {
		opts.Rand = responses.DefaultRand()
	}
	if opts.Analyzer == nil {
		opts.Analyzer = mood.NewAnalyzer()
	}
	// the ladder always tracks the configured threshold
	opts.Ladder.Policy = opts.Policy

	return &Engine{
		policy:   opts.Policy,
		ladder:   opts.Ladder,
		analyzer: opts.Analyzer,
		resolver: mood.NewResolver(opts.Ladder),
		selector: responses.NewSelector(opts.Catalog, opts.Rand),
		rnd:      opts.Rand,
	}
}

func (e *Engine) Policy() access.Policy { return e.policy }

// Ladder is the balance ladder in use, already bound to Policy.
func (e *Engine) Ladder() mood.Ladder { return e.ladder }

func (e *Engine) Evaluate(text string, balance float64) Result {
	tier := e.policy.Tier(balance)

	if tier != access.TierFull {
		canned, _ := e.selector.Select(tier, balance)
		d := e.ladder.Duration(balance)
		return Result{
			Tier:          tier,
			Mood:          e.ladder.Mood(balance),
			Duration:      d,
			DurationMs:    d.Milliseconds(),
			CannedMessage: canned,
			ShortCircuit:  true,
		}
	}

	m := e.resolver.Resolve(text, balance)
	d := mood.Duration(text, m)
	return Result{
		Tier:       tier,
		Mood:       m,
		Duration:   d,
		DurationMs: d.Milliseconds(),
	}
}

// Idle returns a cue for the avatar between turns, unrelated to chat content.
func (e *Engine) Idle(balance float64) mood.Cue {
	m := mood.Neutral
	if e.rnd.Float64() < idleTierChance {
		m = e.ladder.Mood(balance)
		if m == mood.Dismissive {
			m = mood.Thinking
		}
	}
	spread := time.Duration(e.rnd.Float64() * float64(idleSpread))
	d := (idleBase + spread).Truncate(time.Millisecond)
	return mood.Cue{Mood: m, Duration: d}
}

// AnalyzeReply derives the avatar cue for a backend reply once it arrives.
func (e *Engine) AnalyzeReply(reply string) mood.Cue {
	_, text, _ := mood.SplitTag(reply)
	m := e.analyzer.Classify(text).Base()
	return mood.Cue{Mood: m, Duration: mood.Duration(text, m)}
}
