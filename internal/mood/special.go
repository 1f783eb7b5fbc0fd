package mood

import "time"

type Event string

const (
	EventWalletConnected Event = "wallet_connected"
	EventWalletCancelled Event = "wallet_cancelled"
)

var specialCues = map[Event]Cue{
	EventWalletConnected: {Mood: Thinking, Duration: 3000 * time.Millisecond},
	EventWalletCancelled: {Mood: Dismissive, Duration: 2000 * time.Millisecond},
}

// Special returns the fixed cue for a non-conversational event.
func Special(e Event) (Cue, bool) {
	c, ok := specialCues[e]
	return c, ok
}
