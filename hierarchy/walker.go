package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Traversal-safety failures of the legacy walker. These fail closed and are
// never swallowed by tolerant mode.
var (
	// ErrAscentDepthExceeded reports that the managing chain ran past the
	// configured ascent budget.
	ErrAscentDepthExceeded = errors.New("managing chain exceeds maximum ascent depth")
	// ErrAscentCycle reports that the managing chain revisited an account.
	ErrAscentCycle = errors.New("managing chain revisits an account")
)

// WalkOptions controls AncestorUsers.
type WalkOptions struct {
	// StopAt names a terminal account: once it is selected as the next
	// ancestor the walk stops without fetching its users. Empty means walk
	// until the managing chain runs out.
	StopAt string
	// Tolerant makes a fetch failure at some level return the users
	// accumulated so far instead of failing the whole call.
	Tolerant bool
}

// AncestorUsers walks upward from accountID through the legacy single-parent
// managing chain, accumulating each level's direct users. The leaf's own
// users come first, then each ascended level's, in walk order; nothing is
// deduplicated or re-sorted.
//
// At each level the set of managing accounts is reduced to a single parent by
// picking the greatest numeric id. Multi-parent configurations are ambiguous
// under the legacy model and this selection matches its historical behavior.
//
// With opts.Tolerant set, a failed fetch ends the walk and returns whatever
// was accumulated before the failure; otherwise the call fails with no
// partial data. Cycle and depth violations always fail.
func (s *Service) AncestorUsers(ctx context.Context, accountID string, opts WalkOptions) ([]User, error) {
	var accumulated []User
	visited := make(map[string]bool)
	current := accountID

	for depth := 0; ; depth++ {
		if depth >= s.maxAscentDepth {
			return nil, fmt.Errorf("account %s: %w", current, ErrAscentDepthExceeded)
		}
		if visited[current] {
			return nil, fmt.Errorf("account %s: %w", current, ErrAscentCycle)
		}
		visited[current] = true

		users, err := s.users.FetchUsers(ctx, current)
		if err != nil {
			if opts.Tolerant {
				s.log.WithError(err).
					WithField("account_id", current).
					Warn("user fetch failed; returning users accumulated so far")
				return accumulated, nil
			}
			return nil, fmt.Errorf("fetch users for account %s: %w", current, err)
		}
		accumulated = append(accumulated, users...)

		root, err := s.topo.FetchTopology(ctx, current, AxisManaging)
		if err != nil {
			if opts.Tolerant {
				s.log.WithError(err).
					WithField("account_id", current).
					Warn("managing query failed; returning users accumulated so far")
				return accumulated, nil
			}
			return nil, fmt.Errorf("query managing accounts of %s: %w", current, err)
		}

		candidates := root.Managing
		if len(candidates) == 0 {
			return accumulated, nil
		}

		next := selectParent(candidates)
		if opts.StopAt != "" && next == opts.StopAt {
			return accumulated, nil
		}
		current = next
	}
}

// selectParent picks the candidate with the greatest numeric id. Ids that do
// not parse as integers sort below all numeric ids, ordered among themselves
// by descending string comparison so the choice stays deterministic.
func selectParent(candidates []Node) string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aerr := strconv.ParseInt(ids[i], 10, 64)
		b, berr := strconv.ParseInt(ids[j], 10, 64)
		switch {
		case aerr == nil && berr == nil:
			return a > b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return ids[i] > ids[j]
		}
	})
	return ids[0]
}
