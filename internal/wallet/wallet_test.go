package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type stubSource struct {
	balance atomic.Value
	err     error
}

func newStubSource(b float64) *stubSource {
	s := &stubSource{}
	s.balance.Store(b)
	return s
}

func (s *stubSource) Balance(context.Context, string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.balance.Load().(float64), nil
}

type rejectingAdapter struct{ msg string }

func (r rejectingAdapter) Name() string                            { return "Phantom" }
func (r rejectingAdapter) Connect(context.Context) (string, error) { return "", errors.New(r.msg) }
func (r rejectingAdapter) Disconnect(context.Context) error        { return nil }
func (r rejectingAdapter) Connected() bool                         { return false }
func (r rejectingAdapter) PublicKey() string                       { return "" }

func TestConnectDefaultAdapter(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewWatchOnly("Primary", "addr-1"), NewWatchOnly("Secondary", "addr-2"))
	w := New(reg, newStubSource(42))

	if err := w.Connect(ctx, ""); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	st := w.Snapshot()
	if !st.Connected || st.Adapter != "Primary" || st.PublicKey != "addr-1" || st.Balance != 42 {
		t.Fatalf("Snapshot = %+v", st)
	}

	w.Disconnect(ctx)
	if st := w.Snapshot(); st != (State{}) {
		t.Fatalf("Snapshot after disconnect = %+v", st)
	}
}

func TestConnectNamedAdapter(t *testing.T) {
	reg := NewRegistry(NewWatchOnly("Primary", "addr-1"), NewWatchOnly("Secondary", "addr-2"))
	w := New(reg, newStubSource(1))

	if err := w.Connect(context.Background(), "secondary"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := w.Snapshot().PublicKey; got != "addr-2" {
		t.Fatalf("PublicKey = %q, want addr-2", got)
	}
	if err := w.Connect(context.Background(), "Glow"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("Connect(unknown) err = %v", err)
	}
}

func TestConnectNoWallets(t *testing.T) {
	w := New(NewRegistry(), newStubSource(0))
	if err := w.Connect(context.Background(), ""); !errors.Is(err, ErrNoWallets) {
		t.Fatalf("err = %v, want ErrNoWallets", err)
	}
}

func TestConnectCancelled(t *testing.T) {
	tests := []struct {
		name    string
		adapter Adapter
	}{
		{name: "empty_address", adapter: NewWatchOnly("Empty", "")},
		{name: "user_rejected", adapter: rejectingAdapter{msg: "User rejected the request."}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := New(NewRegistry(tc.adapter), newStubSource(5))
			err := w.Connect(context.Background(), "")
			if !IsCancelled(err) {
				t.Fatalf("IsCancelled(%v) = false", err)
			}
			if st := w.Snapshot(); st.Connected || st.Balance != 0 {
				t.Fatalf("state after cancel = %+v", st)
			}
		})
	}
}

func TestIsCancelled(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: ErrCancelled, want: true},
		{err: fmt.Errorf("connect: %w", ErrCancelled), want: true},
		{err: errors.New("Transaction was Denied"), want: true},
		{err: errors.New("request canceled by user"), want: true},
		{err: errors.New("network unreachable"), want: false},
	}
	for _, tc := range tests {
		if got := IsCancelled(tc.err); got != tc.want {
			t.Errorf("IsCancelled(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRefreshKeepsLastOnError(t *testing.T) {
	ctx := context.Background()
	src := newStubSource(12)
	w := New(NewRegistry(NewWatchOnly("Primary", "addr")), src)
	if err := w.Connect(ctx, ""); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	src.err = errors.New("rpc down")
	w.Refresh(ctx)
	if got := w.Balance(); got != 12 {
		t.Fatalf("Balance after failed refresh = %v, want 12", got)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	a := NewWatchOnly("Primary", "addr")
	a.Connect(ctx)
	w := New(NewRegistry(NewWatchOnly("Idle", "other"), a), newStubSource(3))

	if !w.Restore(ctx) {
		t.Fatal("Restore found no connected adapter")
	}
	if st := w.Snapshot(); st.Adapter != "Primary" || st.Balance != 3 {
		t.Fatalf("Snapshot = %+v", st)
	}
}

func TestWatchReportsChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newStubSource(1)
	w := New(NewRegistry(NewWatchOnly("Primary", "addr")), src)
	if err := w.Connect(ctx, ""); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	changes := make(chan State, 4)
	go w.Watch(ctx, 10*time.Millisecond, func(s State) { changes <- s })

	src.balance.Store(float64(25))
	select {
	case s := <-changes:
		if s.Balance != 25 {
			t.Fatalf("change balance = %v, want 25", s.Balance)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestSolanaBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string   `json:"method"`
			Params []string `json:"params"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "getBalance" || len(req.Params) != 1 {
			t.Errorf("unexpected request %+v", req)
		}
		if req.Params[0] == "bad" {
			fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid param: WrongSize"}}`)
			return
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":2500000000}}`)
	}))
	defer srv.Close()

	s := NewSolana(srv.URL)
	got, err := s.Balance(context.Background(), "addr")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if got != 2.5 {
		t.Fatalf("Balance = %v, want 2.5", got)
	}

	if _, err := s.Balance(context.Background(), "bad"); err == nil {
		t.Fatal("expected rpc error")
	}
}
