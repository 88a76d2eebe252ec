// Package hierarchy resolves multi-tenant account relationships into flat,
// ordered results: related-account-id lists derived from server-side topology
// trees, and aggregated user lists collected across a set of accounts.
//
// The package owns no state and performs no I/O of its own; all remote reads
// go through the TopologyFetcher and UserFetcher interfaces supplied at
// construction time.
package hierarchy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tenantgrid/tenantgrid/pkg/logger"
)

// Axis selects which direction of the account hierarchy a query follows.
type Axis string

const (
	// AxisManaged selects accounts administered by the subject account.
	AxisManaged Axis = "managed"
	// AxisManaging selects accounts that administer the subject account.
	AxisManaging Axis = "managing"
	// AxisBillsTo selects the billing chain above the subject account.
	AxisBillsTo Axis = "bills_to"
)

// ParseAxis validates an axis name.
func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case AxisManaged, AxisManaging, AxisBillsTo:
		return Axis(s), nil
	}
	return "", fmt.Errorf("unknown relationship axis %q", s)
}

// Node is one account within a relationship tree as returned by the remote
// service. Trees are request-scoped and immutable after decode.
type Node struct {
	ID       string `json:"id"`
	Managed  []Node `json:"managed,omitempty"`
	Managing []Node `json:"managing,omitempty"`
	BillsTo  []Node `json:"bills_to,omitempty"`
}

// Children returns the node's child sequence along the given axis.
func (n Node) Children(axis Axis) []Node {
	switch axis {
	case AxisManaged:
		return n.Managed
	case AxisManaging:
		return n.Managing
	case AxisBillsTo:
		return n.BillsTo
	}
	return nil
}

// User is one user record belonging to a single account at fetch time. The
// credential blob is carried opaquely for callers that requested it.
type User struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	Email      string          `json:"email,omitempty"`
	Name       string          `json:"name,omitempty"`
	RoleIDs    []string        `json:"role_ids,omitempty"`
	Credential json.RawMessage `json:"user_credential,omitempty"`
}

// TopologyFetcher returns the fully server-resolved relationship tree rooted
// at one account along one axis.
type TopologyFetcher interface {
	FetchTopology(ctx context.Context, accountID string, axis Axis) (Node, error)
}

// TopologyFetcherFunc adapts a function to the TopologyFetcher interface.
type TopologyFetcherFunc func(ctx context.Context, accountID string, axis Axis) (Node, error)

func (f TopologyFetcherFunc) FetchTopology(ctx context.Context, accountID string, axis Axis) (Node, error) {
	if f == nil {
		return Node{}, nil
	}
	return f(ctx, accountID, axis)
}

// UserFetcher returns the users directly owned by one account.
type UserFetcher interface {
	FetchUsers(ctx context.Context, accountID string) ([]User, error)
}

// UserFetcherFunc adapts a function to the UserFetcher interface.
type UserFetcherFunc func(ctx context.Context, accountID string) ([]User, error)

func (f UserFetcherFunc) FetchUsers(ctx context.Context, accountID string) ([]User, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx, accountID)
}

// Default traversal limits. Account hierarchies in practice are a handful of
// levels deep; the limits exist to bound damage from cyclic remote data.
const (
	DefaultMaxTraversalDepth = 100
	DefaultMaxAscentDepth    = 32
	DefaultFanOutLimit       = 8
)

// Service resolves account relationships through the supplied fetchers.
type Service struct {
	topo  TopologyFetcher
	users UserFetcher
	log   *logger.Logger

	maxTraversalDepth int
	maxAscentDepth    int
	fanOutLimit       int
}

// New constructs a hierarchy service. Either fetcher may be nil if the caller
// only uses operations that do not need it.
func New(topo TopologyFetcher, users UserFetcher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("hierarchy")
	}
	return &Service{
		topo:              topo,
		users:             users,
		log:               log,
		maxTraversalDepth: DefaultMaxTraversalDepth,
		maxAscentDepth:    DefaultMaxAscentDepth,
		fanOutLimit:       DefaultFanOutLimit,
	}
}

// WithMaxTraversalDepth overrides the flattening depth budget used by
// RelatedAccountIDs.
func (s *Service) WithMaxTraversalDepth(depth int) *Service {
	if depth > 0 {
		s.maxTraversalDepth = depth
	}
	return s
}

// WithMaxAscentDepth overrides the legacy walker's ascent budget.
func (s *Service) WithMaxAscentDepth(depth int) *Service {
	if depth > 0 {
		s.maxAscentDepth = depth
	}
	return s
}

// WithFanOutLimit overrides the concurrent fetch cap used by CollectUsers.
func (s *Service) WithFanOutLimit(limit int) *Service {
	if limit > 0 {
		s.fanOutLimit = limit
	}
	return s
}
