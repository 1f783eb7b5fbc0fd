package classifier

import (
	"time"

	"ivagate/internal/access"
	"ivagate/internal/mood"
)

// Result is the outcome of evaluating one inbound message. When
// ShortCircuit is set the caller must not contact the chat backend and
// should speak CannedMessage instead.
type Result struct {
	Tier          access.Tier   `json:"tier"`
	Mood          mood.Mood     `json:"mood"`
	Duration      time.Duration `json:"-"`
	DurationMs    int64         `json:"durationMs"`
	CannedMessage string        `json:"cannedMessage,omitempty"`
	ShortCircuit  bool          `json:"shouldShortCircuit"`
}

func (r Result) Cue() mood.Cue {
	return mood.Cue{Mood: r.Mood, Duration: r.Duration}
}

// Utterance is what the display/speech sink receives.
type Utterance struct {
	Text        string `json:"text"`
	ShouldSpeak bool   `json:"shouldSpeak"`
}

// Utterance is empty for full access; the backend reply is spoken instead.
func (r Result) Utterance() Utterance {
	if !r.ShortCircuit {
		return Utterance{}
	}
	return Utterance{Text: r.CannedMessage, ShouldSpeak: r.CannedMessage != ""}
}

type Classifier interface {
	Policy() access.Policy
	Ladder() mood.Ladder
	Evaluate(text string, balance float64) Result
	Idle(balance float64) mood.Cue
	AnalyzeReply(reply string) mood.Cue
}
