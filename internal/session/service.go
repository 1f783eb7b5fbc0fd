package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ivagate/internal/access"
	"ivagate/internal/avatar"
	"ivagate/internal/chat"
	"ivagate/internal/classifier"
	"ivagate/internal/domain"
	"ivagate/internal/mood"
	"ivagate/internal/notifier"
	"ivagate/internal/storage"
	"ivagate/internal/wallet"
)

var ErrBusy = errors.New("session: a message is already being processed")

// Balances returns a cached balance for an address; ok is false on a miss.
type Balances interface {
	Balance(ctx context.Context, address string) (balance float64, ok bool, err error)
}

// Outcome is everything produced for one message.
type Outcome struct {
	Exchange domain.Exchange   `json:"exchange"`
	Result   classifier.Result `json:"result"`
	Reply    chat.Reply        `json:"reply"`
	ReplyCue *mood.Cue         `json:"replyCue,omitempty"`
}

type Options struct {
	Classifier classifier.Classifier
	Backend    chat.Backend
	Repo       storage.ExchangeRepository
	Guard      Guard
	Sink       avatar.Sink
	Notifier   notifier.Notifier
	Cache      Balances
	Source     wallet.BalanceSource
	History    int
}

type Service struct {
	classifier classifier.Classifier
	backend    chat.Backend
	repo       storage.ExchangeRepository
	guard      Guard
	sink       avatar.Sink
	notifier   notifier.Notifier
	cache      Balances
	source     wallet.BalanceSource
	history    int
}

func NewService(opts Options) *Service {
	if opts.Guard == nil {
		opts.Guard = NewMemoryGuard()
	}
	if opts.Sink == nil {
		opts.Sink = avatar.LogSink{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notifier.Nop{}
	}
	return &Service{
		classifier: opts.Classifier,
		backend:    opts.Backend,
		repo:       opts.Repo,
		guard:      opts.Guard,
		sink:       opts.Sink,
		notifier:   opts.Notifier,
		cache:      opts.Cache,
		source:     opts.Source,
		history:    opts.History,
	}
}

// Handle evaluates msg, plays the cue and answers with either the canned
// line or the backend reply. A session holds at most one message at a time;
// a second one is rejected with ErrBusy.
func (s *Service) Handle(ctx context.Context, msg domain.Message) (*Outcome, error) {
	token, ok, err := s.guard.Acquire(ctx, msg.SessionID)
	if err != nil {
		return nil, fmt.Errorf("acquire session %s: %w", msg.SessionID, err)
	}
	if !ok {
		return nil, ErrBusy
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), msg.SessionID, token); err != nil {
			log.Printf("[ERROR] release %s: %v", msg.SessionID, err)
		}
	}()

	balance := access.Normalize(s.resolveBalance(ctx, msg))
	res := s.classifier.Evaluate(msg.Text, balance)
	s.sink.Play(res.Cue())

	log.Printf("[CHAT] %s tier=%s mood=%s short=%v: %s", msg.SessionID, res.Tier, res.Mood, res.ShortCircuit, truncate(msg.Text, 60))

	out := &Outcome{Result: res}
	raw := res.CannedMessage
	if !res.ShortCircuit {
		raw, err = s.ask(ctx, msg)
		if err != nil {
			return nil, err
		}
		cue := s.classifier.AnalyzeReply(raw)
		s.sink.Play(cue)
		out.ReplyCue = &cue
	}
	out.Reply = chat.ParseReply(raw)

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	out.Exchange = domain.Exchange{
		ID:           uuid.NewString(),
		SessionID:    msg.SessionID,
		Wallet:       msg.Wallet,
		Text:         msg.Text,
		Balance:      balance,
		Tier:         res.Tier,
		Mood:         res.Mood,
		DurationMs:   res.DurationMs,
		Reply:        raw,
		ShortCircuit: res.ShortCircuit,
		Source:       msg.Source,
		CreatedAt:    createdAt,
	}
	if out.ReplyCue != nil {
		out.Exchange.ReplyMood = out.ReplyCue.Mood
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, out.Exchange); err != nil {
			log.Printf("[ERROR] save exchange: %v", err)
		}
	}
	if err := s.notifier.Notify(ctx, notifier.Notification{Message: msg, Exchange: out.Exchange}); err != nil {
		log.Printf("[ERROR] notify: %v", err)
	}

	return out, nil
}

func (s *Service) ask(ctx context.Context, msg domain.Message) (string, error) {
	if s.backend == nil {
		return "", fmt.Errorf("no chat backend configured")
	}
	history := s.historyFor(ctx, msg.SessionID)
	reply, err := s.backend.Reply(ctx, history, msg.Text)
	if err != nil {
		return "", fmt.Errorf("chat reply: %w", err)
	}
	return reply, nil
}

// historyFor rebuilds the conversation from stored full-access exchanges.
// Canned lines never reached the backend and are left out.
func (s *Service) historyFor(ctx context.Context, sessionID string) []chat.Turn {
	if s.repo == nil || s.history <= 0 {
		return nil
	}
	recent, err := s.repo.Recent(ctx, sessionID, s.history)
	if err != nil {
		log.Printf("[ERROR] load history %s: %v", sessionID, err)
		return nil
	}
	var turns []chat.Turn
	for _, ex := range recent {
		if ex.ShortCircuit {
			continue
		}
		turns = append(turns,
			chat.Turn{Role: chat.RoleUser, Content: ex.Text},
			chat.Turn{Role: chat.RoleAssistant, Content: ex.Reply},
		)
	}
	return turns
}

// resolveBalance prefers an explicit balance, then the poller's cache, then
// a live read. Anything unknown counts as an empty wallet.
func (s *Service) resolveBalance(ctx context.Context, msg domain.Message) float64 {
	if msg.Balance != nil {
		return *msg.Balance
	}
	if msg.Wallet == "" {
		return 0
	}
	if s.cache != nil {
		b, ok, err := s.cache.Balance(ctx, msg.Wallet)
		if err != nil {
			log.Printf("[BALANCE] cache %s: %v", msg.Wallet, err)
		}
		if ok {
			return b
		}
	}
	if s.source != nil {
		b, err := s.source.Balance(ctx, msg.Wallet)
		if err == nil {
			return b
		}
		log.Printf("[BALANCE] %s: %v", msg.Wallet, err)
	}
	return 0
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
