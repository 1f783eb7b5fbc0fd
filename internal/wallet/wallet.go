package wallet

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

const DefaultPollInterval = 10 * time.Second

type Config struct {
	RPCURL       string            `koanf:"rpc_url"`
	PollInterval time.Duration     `koanf:"poll_interval"`
	Addresses    map[string]string `koanf:"addresses"`
}

// State is a point-in-time view of the connection.
type State struct {
	Connected  bool    `json:"connected"`
	Connecting bool    `json:"connecting"`
	Adapter    string  `json:"adapter,omitempty"`
	PublicKey  string  `json:"publicKey,omitempty"`
	Balance    float64 `json:"balance"`
}

// Wallet tracks a single connection and its balance. The balance is 0
// whenever no wallet is connected.
type Wallet struct {
	registry *Registry
	source   BalanceSource

	mu      sync.RWMutex
	state   State
	adapter Adapter
}

func New(registry *Registry, source BalanceSource) *Wallet {
	return &Wallet{registry: registry, source: source}
}

// Connect uses the named adapter, or the first registered one when name is
// empty. On failure the wallet is left disconnected and the error returned.
func (w *Wallet) Connect(ctx context.Context, name string) error {
	a, err := w.pick(name)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.state.Connecting = true
	w.mu.Unlock()

	key, err := a.Connect(ctx)
	if err == nil && key == "" {
		err = ErrCancelled
	}
	if err != nil {
		w.reset()
		return fmt.Errorf("connect %s: %w", a.Name(), err)
	}

	w.mu.Lock()
	w.adapter = a
	w.state = State{Connected: true, Adapter: a.Name(), PublicKey: key}
	w.mu.Unlock()

	w.Refresh(ctx)
	return nil
}

func (w *Wallet) pick(name string) (Adapter, error) {
	if name != "" {
		a, ok := w.registry.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknown, name)
		}
		return a, nil
	}
	detected := w.registry.Detect()
	if len(detected) == 0 {
		return nil, ErrNoWallets
	}
	return detected[0], nil
}

func (w *Wallet) Disconnect(ctx context.Context) {
	w.mu.RLock()
	a := w.adapter
	w.mu.RUnlock()

	if a != nil {
		if err := a.Disconnect(ctx); err != nil {
			log.Printf("[WALLET] disconnect %s: %v", a.Name(), err)
		}
	}
	w.reset()
}

// Restore adopts the first adapter that already reports a connection.
func (w *Wallet) Restore(ctx context.Context) bool {
	for _, a := range w.registry.Detect() {
		if !a.Connected() || a.PublicKey() == "" {
			continue
		}
		w.mu.Lock()
		w.adapter = a
		w.state = State{Connected: true, Adapter: a.Name(), PublicKey: a.PublicKey()}
		w.mu.Unlock()
		w.Refresh(ctx)
		return true
	}
	return false
}

// Refresh re-reads the balance. Fetch errors are logged and keep the last
// known value.
func (w *Wallet) Refresh(ctx context.Context) {
	w.mu.RLock()
	key := w.state.PublicKey
	w.mu.RUnlock()
	if key == "" {
		return
	}

	balance, err := w.source.Balance(ctx, key)
	if err != nil {
		log.Printf("[BALANCE] %s: %v", key, err)
		return
	}

	w.mu.Lock()
	if w.state.PublicKey == key {
		w.state.Balance = balance
	}
	w.mu.Unlock()
}

func (w *Wallet) Snapshot() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Wallet) Adapters() []string {
	return w.registry.Names()
}

func (w *Wallet) Balance() float64 {
	return w.Snapshot().Balance
}

// Watch refreshes the balance every interval until ctx is done, calling
// onChange whenever the balance moves.
func (w *Wallet) Watch(ctx context.Context, interval time.Duration, onChange func(State)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := w.Snapshot()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Refresh(ctx)
			cur := w.Snapshot()
			if cur != last && onChange != nil {
				onChange(cur)
			}
			last = cur
		}
	}
}

func (w *Wallet) reset() {
	w.mu.Lock()
	w.adapter = nil
	w.state = State{}
	w.mu.Unlock()
}
