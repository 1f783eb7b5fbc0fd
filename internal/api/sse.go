package api

import (
	"encoding/json"
	"log"
	"sync"

	"ivagate/internal/mood"
	"ivagate/internal/session"
)

type Event struct {
	Name string
	Data string
}

// SSEBroker fans events out to every connected /api/events client. Slow
// clients miss events rather than block the sender.
type SSEBroker struct {
	clients map[chan Event]bool
	mu      sync.RWMutex
}

func NewSSEBroker() *SSEBroker {
	return &SSEBroker{clients: make(map[chan Event]bool)}
}

func (b *SSEBroker) Subscribe() chan Event {
	ch := make(chan Event, 10)
	b.mu.Lock()
	b.clients[ch] = true
	b.mu.Unlock()
	return ch
}

func (b *SSEBroker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.clients, ch)
	close(ch)
	b.mu.Unlock()
}

func (b *SSEBroker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *SSEBroker) Broadcast(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *SSEBroker) broadcastJSON(name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[ERROR] encode %s event: %v", name, err)
		return
	}
	b.Broadcast(Event{Name: name, Data: string(data)})
}

// Play makes the broker an avatar sink: cues reach the renderer as "cue"
// events.
func (b *SSEBroker) Play(c mood.Cue) bool {
	b.broadcastJSON("cue", c)
	return true
}

type replyEvent struct {
	SessionID string   `json:"sessionId"`
	Tag       mood.Tag `json:"tag"`
	Text      string   `json:"text"`
	Sentences []string `json:"sentences,omitempty"`
	Speak     bool     `json:"speak"`
}

func (b *SSEBroker) BroadcastReply(out *session.Outcome) {
	b.broadcastJSON("reply", replyEvent{
		SessionID: out.Exchange.SessionID,
		Tag:       out.Reply.Tag,
		Text:      out.Reply.Text,
		Sentences: out.Reply.Sentences,
		Speak:     out.Reply.Text != "",
	})
}
