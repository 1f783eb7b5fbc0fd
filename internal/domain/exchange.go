package domain

import (
	"time"

	"ivagate/internal/access"
	"ivagate/internal/mood"
)

// Exchange records one evaluated message and what Iva answered.
type Exchange struct {
	ID           string      `json:"id"`
	SessionID    string      `json:"sessionId"`
	Wallet       string      `json:"wallet,omitempty"`
	Text         string      `json:"text"`
	Balance      float64     `json:"balance"`
	Tier         access.Tier `json:"tier"`
	Mood         mood.Mood   `json:"mood"`
	DurationMs   int64       `json:"durationMs"`
	Reply        string      `json:"reply"`
	ReplyMood    mood.Mood   `json:"replyMood,omitempty"`
	ShortCircuit bool        `json:"shortCircuit"`
	Source       Source      `json:"source"`
	CreatedAt    time.Time   `json:"createdAt"`
}
