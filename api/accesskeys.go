package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AccessKey is a machine credential scoped to one account.
type AccessKey struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Key     string   `json:"key,omitempty"`
	Secret  string   `json:"secret,omitempty"`
	RoleIDs []string `json:"role_ids,omitempty"`
}

// AccessKeys lists the access keys of one account.
func (c *Client) AccessKeys(ctx context.Context, accountID string) ([]AccessKey, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}
	endpoint := "/v2/accounts/" + url.PathEscape(accountID) + "/access_keys"

	var out struct {
		AccessKeys *[]AccessKey `json:"access_keys"`
	}
	if err := c.getJSON(ctx, endpoint, nil, &out); err != nil {
		return nil, err
	}
	if out.AccessKeys == nil {
		return nil, &ValidationError{Endpoint: endpoint, Field: "access_keys"}
	}
	return *out.AccessKeys, nil
}

// CreateAccessKey mints a new access key under the given account. The secret
// is only present in this response.
func (c *Client) CreateAccessKey(ctx context.Context, accountID, name string, roleIDs []string) (AccessKey, error) {
	if accountID == "" {
		return AccessKey{}, fmt.Errorf("account id is required")
	}
	if name == "" {
		return AccessKey{}, fmt.Errorf("access key name is required")
	}
	payload := map[string]interface{}{"name": name}
	if len(roleIDs) > 0 {
		payload["role_ids"] = roleIDs
	}
	var out AccessKey
	err := c.doJSON(ctx, http.MethodPost, "/v2/accounts/"+url.PathEscape(accountID)+"/access_keys", payload, &out)
	return out, err
}

// DeleteAccessKey revokes an access key.
func (c *Client) DeleteAccessKey(ctx context.Context, accountID, keyID string) error {
	if accountID == "" || keyID == "" {
		return fmt.Errorf("account id and key id are required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/v2/accounts/"+url.PathEscape(accountID)+"/access_keys/"+url.PathEscape(keyID), nil, nil)
}
