package worker

import (
	"context"
	"log"
	"time"

	"ivagate/internal/wallet"
)

// WalletStore is the tracked wallet set and balance cache, backed by Redis.
type WalletStore interface {
	Wallets(ctx context.Context) ([]string, error)
	SetBalance(ctx context.Context, address string, balance float64) error
}

// Poller refreshes the cached balance of every tracked wallet.
type Poller struct {
	store    WalletStore
	source   wallet.BalanceSource
	interval time.Duration
	last     map[string]float64
}

func NewPoller(store WalletStore, source wallet.BalanceSource, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = wallet.DefaultPollInterval
	}
	return &Poller{
		store:    store,
		source:   source,
		interval: interval,
		last:     make(map[string]float64),
	}
}

func (w *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.pollAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollAll(ctx)
		}
	}
}

func (w *Poller) pollAll(ctx context.Context) {
	addresses, err := w.store.Wallets(ctx)
	if err != nil {
		log.Printf("[ERROR] list wallets: %v", err)
		return
	}

	updated, failed := 0, 0
	for _, addr := range addresses {
		balance, err := w.source.Balance(ctx, addr)
		if err != nil {
			log.Printf("[ERROR] balance %s: %v", addr, err)
			failed++
			continue
		}

		if err := w.store.SetBalance(ctx, addr, balance); err != nil {
			log.Printf("[ERROR] cache balance %s: %v", addr, err)
			failed++
			continue
		}
		updated++

		if prev, ok := w.last[addr]; !ok || prev != balance {
			log.Printf("[BALANCE] %s: %.4f", addr, balance)
		}
		w.last[addr] = balance
	}

	log.Printf("[STATS] wallets=%d, updated=%d, failed=%d", len(addresses), updated, failed)
}
