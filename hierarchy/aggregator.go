package hierarchy

import (
	"context"
	"fmt"
	"sync"
)

// CollectUsers fetches the users of every listed account concurrently and
// returns them as one flat list ordered by input account position, no matter
// which fetches complete first. Fan-out width is bounded by the service's
// fan-out limit.
//
// The aggregation is all-or-nothing: the first fetch failure cancels the
// remaining work and fails the whole call, identifying the failing account.
func (s *Service) CollectUsers(ctx context.Context, accountIDs []string) ([]User, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	perAccount := make([][]User, len(accountIDs))
	sem := make(chan struct{}, s.fanOutLimit)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i, id := range accountIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				fail(ctx.Err())
				return
			}
			defer func() { <-sem }()

			users, err := s.users.FetchUsers(ctx, id)
			if err != nil {
				fail(fmt.Errorf("fetch users for account %s: %w", id, err))
				return
			}
			perAccount[i] = users
		}(i, id)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	var merged []User
	for _, users := range perAccount {
		merged = append(merged, users...)
	}
	return merged, nil
}
