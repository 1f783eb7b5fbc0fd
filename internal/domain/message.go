package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one inbound chat line, typed by the viewer or relayed from a
// stream chat.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Wallet    string    `json:"wallet,omitempty"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text"`
	Balance   *float64  `json:"balance,omitempty"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

type Source string

const (
	SourceWeb      Source = "web"
	SourceStream   Source = "stream"
	SourceTelegram Source = "telegram"
)

func NewMessage(sessionID, text string, src Source) Message {
	return Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Text:      text,
		Source:    src,
		CreatedAt: time.Now().UTC(),
	}
}
