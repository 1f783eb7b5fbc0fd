package mood

import (
	"regexp"
	"time"

	"ivagate/internal/access"
)

// Ladder is the balance-only step function used when no message content
// should influence the avatar.
type Ladder struct {
	Policy     access.Policy
	ThinkingAt float64
	HappyAt    float64
}

func DefaultLadder() Ladder {
	return Ladder{
		Policy:     access.DefaultPolicy(),
		ThinkingAt: 50,
		HappyAt:    100,
	}
}

func (l Ladder) Mood(balance float64) Mood {
	switch l.Policy.Tier(balance) {
	case access.TierNone:
		return Dismissive
	case access.TierLimited:
		return Mocking
	}
	switch {
	case balance < l.ThinkingAt:
		return Neutral
	case balance < l.HappyAt:
		return Thinking
	default:
		return Happy
	}
}

func (l Ladder) Duration(balance float64) time.Duration {
	switch l.Policy.Tier(balance) {
	case access.TierNone:
		return 1500 * time.Millisecond
	case access.TierLimited:
		return 4000 * time.Millisecond
	}
	switch {
	case balance < l.ThinkingAt:
		return 3000 * time.Millisecond
	case balance < l.HappyAt:
		return 3500 * time.Millisecond
	default:
		return 4500 * time.Millisecond
	}
}

var (
	manipulationRe = regexp.MustCompile(`(?i)\b(?:pretty please|please|come on|help me|be nice|trust me|just this once|friend|buddy|sweetheart|beautiful|smart|amazing|incredible|wonderful|awesome|fantastic)\b`)

	vulnerabilityRe = regexp.MustCompile(`(?i)\b(?:i feel (?:sad|lonely|lost|alone|empty|scared)|nobody understands|no one understands|help|lost|confused|don't know|need|desperate|please|sorry|apologi[sz]e|mistake|wrong|error|lonely|sad|depressed|worried|scared|afraid)\b`)

	// stems, so "analysis" and "patterns" count
	analyticalRe = regexp.MustCompile(`(?i)\b(?:data|analy[sz]|calculat|process|evaluat|assess|probabilit|statistic|algorithm|pattern|logic|systematic|methodical|rational|objective)`)
)

func IsManipulation(text string) bool { return manipulationRe.MatchString(text) }

func IsVulnerable(text string) bool { return vulnerabilityRe.MatchString(text) }

func IsAnalytical(text string) bool { return analyticalRe.MatchString(text) }

// Resolver picks the avatar mood for a message from a full-access holder.
type Resolver struct {
	ladder Ladder
}

func NewResolver(l Ladder) *Resolver {
	return &Resolver{ladder: l}
}

// Resolve checks manipulation, then vulnerability, then analytical content,
// and falls back to the balance ladder.
func (r *Resolver) Resolve(text string, balance float64) Mood {
	limited := r.ladder.Policy.Tier(balance) == access.TierLimited

	switch {
	case IsManipulation(text):
		if limited {
			return Mocking
		}
		return Dismissive
	case IsVulnerable(text):
		if limited {
			return Mocking
		}
		return Thinking
	case IsAnalytical(text):
		return Thinking
	}
	return r.ladder.Mood(balance)
}
