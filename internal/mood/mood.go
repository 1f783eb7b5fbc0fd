package mood

import (
	"encoding/json"
	"time"
)

// Mood drives avatar body animation. It is not the bracketed display tag
// carried by reply text; see Tag for that.
type Mood string

const (
	Neutral    Mood = "neutral"
	Happy      Mood = "happy"
	Sad        Mood = "sad"
	Angry      Mood = "angry"
	Thinking   Mood = "thinking"
	Surprised  Mood = "surprised"
	Mocking    Mood = "mocking"
	Dismissive Mood = "dismissive"

	// Extended moods. Only produced with WithExtendedMoods or by special cues.
	Analytical   Mood = "analytical"
	Predatory    Mood = "predatory"
	ColdAnalysis Mood = "cold_analysis"
)

// scoring order; also the order ties would have been broken in
var baseMoods = []Mood{Happy, Sad, Angry, Thinking, Surprised, Mocking, Dismissive}

var extendedMoods = []Mood{Analytical, Predatory, ColdAnalysis}

// Moods returns the closed set of base moods, neutral first.
func Moods() []Mood {
	return append([]Mood{Neutral}, baseMoods...)
}

func (m Mood) IsExtended() bool {
	switch m {
	case Analytical, Predatory, ColdAnalysis:
		return true
	}
	return false
}

func (m Mood) Valid() bool {
	if m.IsExtended() {
		return true
	}
	for _, b := range Moods() {
		if m == b {
			return true
		}
	}
	return false
}

// Base collapses extended moods onto the eight tags avatar sinks understand.
func (m Mood) Base() Mood {
	switch m {
	case Analytical:
		return Thinking
	case Predatory:
		return Mocking
	case ColdAnalysis:
		return Dismissive
	}
	if !m.Valid() {
		return Neutral
	}
	return m
}

// Cue is one animation instruction for the avatar sink.
type Cue struct {
	Mood     Mood
	Duration time.Duration
}

type cueJSON struct {
	Mood       Mood  `json:"mood"`
	DurationMs int64 `json:"durationMs"`
}

func (c Cue) MarshalJSON() ([]byte, error) {
	return json.Marshal(cueJSON{Mood: c.Mood, DurationMs: c.Duration.Milliseconds()})
}

func (c *Cue) UnmarshalJSON(data []byte) error {
	var v cueJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	c.Mood = v.Mood
	c.Duration = time.Duration(v.DurationMs) * time.Millisecond
	return nil
}
