package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"ivagate/internal/access"
	"ivagate/internal/chat"
	"ivagate/internal/classifier"
	"ivagate/internal/domain"
	"ivagate/internal/mood"
	"ivagate/internal/storage"
)

type fixedRand struct{}

func (fixedRand) Intn(int) int     { return 0 }
func (fixedRand) Float64() float64 { return 0.5 }

type fakeBackend struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	history [][]chat.Turn
	block   chan struct{}
	entered chan struct{}
}

func (b *fakeBackend) Reply(ctx context.Context, history []chat.Turn, text string) (string, error) {
	b.mu.Lock()
	b.calls++
	b.history = append(b.history, history)
	b.mu.Unlock()
	if b.entered != nil {
		b.entered <- struct{}{}
	}
	if b.block != nil {
		<-b.block
	}
	return b.reply, b.err
}

type cueRecorder struct {
	mu   sync.Mutex
	cues []mood.Cue
}

func (r *cueRecorder) Play(c mood.Cue) bool {
	r.mu.Lock()
	r.cues = append(r.cues, c)
	r.mu.Unlock()
	return true
}

type staticCache map[string]float64

func (c staticCache) Balance(_ context.Context, addr string) (float64, bool, error) {
	b, ok := c[addr]
	return b, ok, nil
}

func newTestService(t *testing.T, backend chat.Backend, sink *cueRecorder) (*Service, *storage.SQLite) {
	t.Helper()
	repo, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	opts := classifier.DefaultOptions()
	opts.Rand = fixedRand{}
	svc := NewService(Options{
		Classifier: classifier.New(opts),
		Backend:    backend,
		Repo:       repo,
		Sink:       sink,
		Cache:      staticCache{"rich": 250, "poor": 3},
		History:    5,
	})
	return svc, repo
}

func balance(b float64) *float64 { return &b }

func TestHandleShortCircuit(t *testing.T) {
	backend := &fakeBackend{reply: "[happy]unused"}
	sink := &cueRecorder{}
	svc, repo := newTestService(t, backend, sink)

	msg := domain.NewMessage("s-1", "hello", domain.SourceWeb)
	msg.Wallet = "poor"
	out, err := svc.Handle(context.Background(), msg)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if backend.calls != 0 {
		t.Fatalf("backend called %d times for limited tier", backend.calls)
	}
	if out.Result.Tier != access.TierLimited || out.Reply.Text == "" || out.ReplyCue != nil {
		t.Fatalf("outcome = %+v", out)
	}
	if len(sink.cues) != 1 || sink.cues[0].Mood != mood.Mocking {
		t.Fatalf("cues = %+v", sink.cues)
	}

	saved, err := repo.FindByID(context.Background(), out.Exchange.ID)
	if err != nil || saved == nil || !saved.ShortCircuit || saved.Balance != 3 {
		t.Fatalf("saved exchange = %+v, %v", saved, err)
	}
}

func TestHandleFullAccess(t *testing.T) {
	backend := &fakeBackend{reply: "[sad]I hate this, it makes me furious"}
	sink := &cueRecorder{}
	svc, _ := newTestService(t, backend, sink)
	ctx := context.Background()

	first := domain.NewMessage("s-2", "let me analyze this data pattern", domain.SourceWeb)
	first.Wallet = "rich"
	out, err := svc.Handle(ctx, first)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if out.Result.Mood != mood.Thinking || out.Result.ShortCircuit {
		t.Fatalf("result = %+v", out.Result)
	}
	if out.Reply.Tag != mood.TagSad || out.ReplyCue == nil || out.ReplyCue.Mood != mood.Angry {
		t.Fatalf("reply = %+v cue = %+v", out.Reply, out.ReplyCue)
	}
	if len(sink.cues) != 2 {
		t.Fatalf("expected input and reply cues, got %+v", sink.cues)
	}

	second := domain.NewMessage("s-2", "and now?", domain.SourceWeb)
	second.Balance = balance(50)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	if _, err := svc.Handle(ctx, second); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	h := backend.history[1]
	if len(h) != 2 || h[0].Content != first.Text || h[1].Role != chat.RoleAssistant {
		t.Fatalf("history sent = %+v", h)
	}
}

func TestHandleBackendError(t *testing.T) {
	backend := &fakeBackend{err: chat.ErrEmptyReply}
	svc, _ := newTestService(t, backend, &cueRecorder{})

	msg := domain.NewMessage("s-3", "hi", domain.SourceWeb)
	msg.Balance = balance(100)
	if _, err := svc.Handle(context.Background(), msg); !errors.Is(err, chat.ErrEmptyReply) {
		t.Fatalf("err = %v, want ErrEmptyReply", err)
	}
}

func TestHandleBusy(t *testing.T) {
	backend := &fakeBackend{
		reply:   "[neutral]Wait.",
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	svc, _ := newTestService(t, backend, &cueRecorder{})
	ctx := context.Background()

	msg := domain.NewMessage("s-4", "first", domain.SourceWeb)
	msg.Balance = balance(100)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Handle(ctx, msg)
		done <- err
	}()
	<-backend.entered

	again := domain.NewMessage("s-4", "second", domain.SourceStream)
	again.Balance = balance(100)
	if _, err := svc.Handle(ctx, again); !errors.Is(err, ErrBusy) {
		t.Fatalf("concurrent Handle err = %v, want ErrBusy", err)
	}

	other := domain.NewMessage("s-5", "other session", domain.SourceWeb)
	other.Balance = balance(0)
	if _, err := svc.Handle(ctx, other); err != nil {
		t.Fatalf("other session blocked: %v", err)
	}

	close(backend.block)
	if err := <-done; err != nil {
		t.Fatalf("first Handle: %v", err)
	}
}

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()
	token, ok, _ := g.Acquire(ctx, "a")
	if !ok || token == "" {
		t.Fatal("first acquire failed")
	}
	if _, ok, _ := g.Acquire(ctx, "a"); ok {
		t.Fatal("second acquire succeeded")
	}
	g.Release(ctx, "a", token)
	if _, ok, _ := g.Acquire(ctx, "a"); !ok {
		t.Fatal("acquire after release failed")
	}
}

func TestMemoryGuardIgnoresStaleToken(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()
	stale, _, _ := g.Acquire(ctx, "a")
	g.Release(ctx, "a", stale)
	current, ok, _ := g.Acquire(ctx, "a")
	if !ok {
		t.Fatal("reacquire failed")
	}

	g.Release(ctx, "a", stale)
	if _, ok, _ := g.Acquire(ctx, "a"); ok {
		t.Fatal("stale token freed the current holder")
	}
	g.Release(ctx, "a", current)
	if _, ok, _ := g.Acquire(ctx, "a"); !ok {
		t.Fatal("current holder could not release")
	}
}

func TestHandleNormalizesNaNBalance(t *testing.T) {
	backend := &fakeBackend{reply: "[happy]unused"}
	svc, repo := newTestService(t, backend, &cueRecorder{})

	msg := domain.NewMessage("s-6", "hello", domain.SourceWeb)
	msg.Balance = balance(math.NaN())
	out, err := svc.Handle(context.Background(), msg)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if out.Result.Tier != access.TierNone || out.Exchange.Balance != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	if backend.calls != 0 {
		t.Fatal("backend called for a NaN balance")
	}
	saved, err := repo.FindByID(context.Background(), out.Exchange.ID)
	if err != nil || saved == nil || saved.Balance != 0 {
		t.Fatalf("saved exchange = %+v, %v", saved, err)
	}
}

func TestHandleHistoryCountsExchanges(t *testing.T) {
	backend := &fakeBackend{reply: "[neutral]Noted."}
	svc, _ := newTestService(t, backend, &cueRecorder{})
	svc.history = 2
	ctx := context.Background()

	start := time.Now().UTC()
	for i, text := range []string{"one", "two", "three", "four"} {
		msg := domain.NewMessage("s-7", text, domain.SourceWeb)
		msg.Balance = balance(100)
		msg.CreatedAt = start.Add(time.Duration(i) * time.Second)
		if _, err := svc.Handle(ctx, msg); err != nil {
			t.Fatalf("Handle(%s): %v", text, err)
		}
	}

	h := backend.history[3]
	if len(h) != 4 || h[0].Content != "two" || h[2].Content != "three" {
		t.Fatalf("history sent = %+v, want the last two exchanges", h)
	}
}
