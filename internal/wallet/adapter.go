package wallet

import (
	"context"
	"strings"
	"sync"
)

// Adapter is one way of obtaining a public key: a browser extension relayed
// through the API, a watch-only address from config, and so on.
type Adapter interface {
	Name() string
	Connect(ctx context.Context) (publicKey string, err error)
	Disconnect(ctx context.Context) error
	Connected() bool
	PublicKey() string
}

// WatchOnly connects to a fixed address without signing capability.
type WatchOnly struct {
	name    string
	address string

	mu        sync.Mutex
	connected bool
}

func NewWatchOnly(name, address string) *WatchOnly {
	return &WatchOnly{name: name, address: strings.TrimSpace(address)}
}

func (w *WatchOnly) Name() string { return w.name }

func (w *WatchOnly) Connect(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if w.address == "" {
		return "", ErrCancelled
	}
	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()
	return w.address, nil
}

func (w *WatchOnly) Disconnect(context.Context) error {
	w.mu.Lock()
	w.connected = false
	w.mu.Unlock()
	return nil
}

func (w *WatchOnly) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *WatchOnly) PublicKey() string {
	if !w.Connected() {
		return ""
	}
	return w.address
}

// Registry keeps adapters in registration order; the first one is the
// default when a caller does not pick.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds a, replacing any adapter with the same name.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.adapters {
		if existing.Name() == a.Name() {
			r.adapters[i] = a
			return
		}
	}
	r.adapters = append(r.adapters, a)
}

func (r *Registry) Detect() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

func (r *Registry) Lookup(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.adapters {
		if strings.EqualFold(a.Name(), name) {
			return a, true
		}
	}
	return nil, false
}

func (r *Registry) Names() []string {
	var names []string
	for _, a := range r.Detect() {
		names = append(names, a.Name())
	}
	return names
}
