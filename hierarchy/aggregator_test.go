package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestCollectUsersInputOrder(t *testing.T) {
	// "A" resolves last, "B" first; output order must still follow input
	// positions, not completion order.
	delays := map[string]time.Duration{
		"A": 40 * time.Millisecond,
		"B": 0,
		"C": 10 * time.Millisecond,
	}
	users := UserFetcherFunc(func(ctx context.Context, accountID string) ([]User, error) {
		time.Sleep(delays[accountID])
		return []User{{ID: "u" + accountID, AccountID: accountID}}, nil
	})
	svc := New(nil, users, nil)

	got, err := svc.CollectUsers(context.Background(), []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := []string{"uA", "uB", "uC"}
	if fmt.Sprint(userIDs(got)) != fmt.Sprint(want) {
		t.Fatalf("users = %v, want %v", userIDs(got), want)
	}
}

func TestCollectUsersAllOrNothing(t *testing.T) {
	fetchErr := errors.New("boom")
	users := UserFetcherFunc(func(ctx context.Context, accountID string) ([]User, error) {
		if accountID == "B" {
			return nil, fetchErr
		}
		return []User{{ID: "u" + accountID, AccountID: accountID}}, nil
	})
	svc := New(nil, users, nil)

	got, err := svc.CollectUsers(context.Background(), []string{"A", "B", "C"})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("err = %v, want wrapped %v", err, fetchErr)
	}
	if !strings.Contains(err.Error(), "B") {
		t.Fatalf("error should identify the failing account: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial results, got %v", userIDs(got))
	}
}

func TestCollectUsersFanOutCap(t *testing.T) {
	var inFlight, peak int64
	users := UserFetcherFunc(func(ctx context.Context, accountID string) ([]User, error) {
		now := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if now <= old || atomic.CompareAndSwapInt64(&peak, old, now) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil, nil
	})
	svc := New(nil, users, nil).WithFanOutLimit(2)

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	if _, err := svc.CollectUsers(context.Background(), ids); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if atomic.LoadInt64(&peak) > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestCollectUsersCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	users := UserFetcherFunc(func(ctx context.Context, accountID string) ([]User, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return nil, nil
		}
	})
	svc := New(nil, users, nil).WithFanOutLimit(1)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := svc.CollectUsers(ctx, []string{"A", "B", "C"})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatal("cancellation did not stop the fan-out promptly")
	}
}

func TestCollectUsersEmptyInput(t *testing.T) {
	svc := New(nil, UserFetcherFunc(nil), nil)
	got, err := svc.CollectUsers(context.Background(), nil)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result, got %v", got)
	}
}
