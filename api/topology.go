package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tenantgrid/tenantgrid/hierarchy"
)

var _ hierarchy.TopologyFetcher = (*Client)(nil)

// Account is the service's record for one account, as returned by the
// account detail endpoint.
type Account struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Created int64  `json:"created,omitempty"`
}

// FetchTopology returns the server-resolved relationship tree rooted at the
// given account. A response without the topology root, or with a root missing
// its id, is a validation failure rather than a transport one.
func (c *Client) FetchTopology(ctx context.Context, accountID string, axis hierarchy.Axis) (hierarchy.Node, error) {
	if accountID == "" {
		return hierarchy.Node{}, fmt.Errorf("account id is required")
	}
	if _, err := hierarchy.ParseAxis(string(axis)); err != nil {
		return hierarchy.Node{}, err
	}

	endpoint := "/v2/accounts/" + url.PathEscape(accountID) + "/topology"
	query := url.Values{"relationship": []string{string(axis)}}

	var out struct {
		Topology *hierarchy.Node `json:"topology"`
	}
	if err := c.getJSON(ctx, endpoint, query, &out); err != nil {
		return hierarchy.Node{}, err
	}
	if out.Topology == nil {
		return hierarchy.Node{}, &ValidationError{Endpoint: endpoint, Field: "topology"}
	}
	if out.Topology.ID == "" {
		return hierarchy.Node{}, &ValidationError{Endpoint: endpoint, Field: "topology.id"}
	}
	return *out.Topology, nil
}

// GetAccount returns the account record for one id.
func (c *Client) GetAccount(ctx context.Context, accountID string) (Account, error) {
	if accountID == "" {
		return Account{}, fmt.Errorf("account id is required")
	}
	var out Account
	err := c.getJSON(ctx, "/v2/accounts/"+url.PathEscape(accountID), nil, &out)
	return out, err
}
