package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Needs a live server; set IVA_TEST_REDIS_ADDR to run.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("IVA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("IVA_TEST_REDIS_ADDR not set")
	}
	c, err := New(Config{Addr: addr, BalanceTTL: time.Minute, BusyTTL: time.Minute})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBalanceSnapshot(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	addr := "test-" + uuid.NewString()
	t.Cleanup(func() { c.RemoveWallet(ctx, addr) })

	if _, ok, err := c.Balance(ctx, addr); err != nil || ok {
		t.Fatalf("Balance(unset) = ok %v, err %v", ok, err)
	}
	if err := c.SetBalance(ctx, addr, 12.75); err != nil {
		t.Fatalf("SetBalance: %v", err)
	}
	b, ok, err := c.Balance(ctx, addr)
	if err != nil || !ok || b != 12.75 {
		t.Fatalf("Balance = %v, %v, %v", b, ok, err)
	}
}

func TestWalletSet(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	addr := "test-" + uuid.NewString()

	if err := c.AddWallet(ctx, addr); err != nil {
		t.Fatalf("AddWallet: %v", err)
	}
	if ok, _ := c.WalletExists(ctx, addr); !ok {
		t.Fatal("wallet not tracked after AddWallet")
	}
	if err := c.RemoveWallet(ctx, addr); err != nil {
		t.Fatalf("RemoveWallet: %v", err)
	}
	if ok, _ := c.WalletExists(ctx, addr); ok {
		t.Fatal("wallet still tracked after RemoveWallet")
	}
}

func TestBusyLock(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	session := "test-" + uuid.NewString()

	token, ok, err := c.Acquire(ctx, session)
	if err != nil || !ok || token == "" {
		t.Fatalf("first Acquire = %q, %v, %v", token, ok, err)
	}
	t.Cleanup(func() { c.Release(ctx, session, token) })

	if _, ok, _ := c.Acquire(ctx, session); ok {
		t.Fatal("second Acquire should fail while held")
	}
	if err := c.Release(ctx, session, token); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, ok, _ := c.Acquire(ctx, session); !ok {
		t.Fatal("Acquire after Release should succeed")
	}
}

func TestBusyLockStaleRelease(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	c.busyTTL = 50 * time.Millisecond
	session := "test-" + uuid.NewString()

	stale, ok, err := c.Acquire(ctx, session)
	if err != nil || !ok {
		t.Fatalf("Acquire = %v, %v", ok, err)
	}
	time.Sleep(150 * time.Millisecond)

	c.busyTTL = time.Minute
	current, ok, err := c.Acquire(ctx, session)
	if err != nil || !ok {
		t.Fatalf("Acquire after expiry = %v, %v", ok, err)
	}
	t.Cleanup(func() { c.Release(ctx, session, current) })

	if err := c.Release(ctx, session, stale); err != nil {
		t.Fatalf("Release(stale): %v", err)
	}
	if _, ok, _ := c.Acquire(ctx, session); ok {
		t.Fatal("stale token released the current holder's lock")
	}
}
