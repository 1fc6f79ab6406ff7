package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestCheckAndCommit(t *testing.T) {
	ledger := NewLedger(NewMemoryStore(1000))
	ctx := context.Background()

	if err := ledger.Check(ctx, "user-1", 600); err != nil {
		t.Fatalf("Check within limit: %v", err)
	}
	newUsed, err := ledger.Commit(ctx, "user-1", 600)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if newUsed != 600 {
		t.Fatalf("expected used 600, got %d", newUsed)
	}

	err = ledger.Check(ctx, "user-1", 500)
	var exceeded *ExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("expected ExceededError, got %v", err)
	}
	if exceeded.Used != 600 || exceeded.Limit != 1000 || exceeded.Requested != 500 {
		t.Fatalf("unexpected error detail: %+v", exceeded)
	}
}

func TestReleaseFloorsAtZero(t *testing.T) {
	ledger := NewLedger(NewMemoryStore(1000))
	ctx := context.Background()

	if _, err := ledger.Commit(ctx, "user-1", 100); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := ledger.Release(ctx, "user-1", 400); err != nil {
		t.Fatalf("Release: %v", err)
	}

	u, err := ledger.Usage(ctx, "user-1")
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if u.UsedBytes != 0 {
		t.Fatalf("expected floor at zero, got %d", u.UsedBytes)
	}
}

func TestConcurrentCommitsNeverLoseBytes(t *testing.T) {
	ledger := NewLedger(NewMemoryStore(1 << 30))
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _ = ledger.Commit(ctx, "user-1", 10)
		}()
	}
	wg.Wait()

	u, err := ledger.Usage(ctx, "user-1")
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if u.UsedBytes != workers*10 {
		t.Fatalf("expected %d used, got %d", workers*10, u.UsedBytes)
	}
}

func TestRoutedStoreSplitsGuests(t *testing.T) {
	primary := NewMemoryStore(1 << 30)
	guest := NewMemoryStore(100 << 20)
	ledger := NewLedger(&RoutedStore{Primary: primary, Guest: guest})
	ctx := context.Background()

	if _, err := ledger.Commit(ctx, "guest:abc", 50); err != nil {
		t.Fatalf("guest Commit: %v", err)
	}
	if _, err := ledger.Commit(ctx, "user-1", 70); err != nil {
		t.Fatalf("user Commit: %v", err)
	}

	gu, _ := guest.Usage(ctx, "guest:abc")
	if gu.UsedBytes != 50 {
		t.Fatalf("expected guest bytes in guest store, got %d", gu.UsedBytes)
	}
	if gu.LimitBytes != 100<<20 {
		t.Fatalf("expected guest limit 100 MiB, got %d", gu.LimitBytes)
	}
	pu, _ := primary.Usage(ctx, "user-1")
	if pu.UsedBytes != 70 {
		t.Fatalf("expected user bytes in primary store, got %d", pu.UsedBytes)
	}
}
