package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tenantgrid/tenantgrid/hierarchy"
)

var _ hierarchy.UserFetcher = (*Client)(nil)

// UserListParams selects optional expansions on the user list endpoint.
type UserListParams struct {
	IncludeRoleIDs        bool
	IncludeUserCredential bool
}

// FetchUsers returns the users directly owned by one account, with no
// optional expansions.
func (c *Client) FetchUsers(ctx context.Context, accountID string) ([]hierarchy.User, error) {
	return c.AccountUsers(ctx, accountID, UserListParams{})
}

// AccountUsers returns the users directly owned by one account. A successful
// response without the users field is a validation failure.
func (c *Client) AccountUsers(ctx context.Context, accountID string, params UserListParams) ([]hierarchy.User, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}

	endpoint := "/v2/accounts/" + url.PathEscape(accountID) + "/users"
	query := url.Values{}
	if params.IncludeRoleIDs {
		query.Set("include_role_ids", strconv.FormatBool(true))
	}
	if params.IncludeUserCredential {
		query.Set("include_user_credential", strconv.FormatBool(true))
	}

	var out struct {
		Users *[]hierarchy.User `json:"users"`
	}
	if err := c.getJSON(ctx, endpoint, query, &out); err != nil {
		return nil, err
	}
	if out.Users == nil {
		return nil, &ValidationError{Endpoint: endpoint, Field: "users"}
	}
	return *out.Users, nil
}

// NewUser is the payload for creating a user under an account.
type NewUser struct {
	Email   string   `json:"email"`
	Name    string   `json:"name,omitempty"`
	RoleIDs []string `json:"role_ids,omitempty"`
}

// CreateUser creates a user under the given account.
func (c *Client) CreateUser(ctx context.Context, accountID string, user NewUser) (hierarchy.User, error) {
	if accountID == "" {
		return hierarchy.User{}, fmt.Errorf("account id is required")
	}
	if user.Email == "" {
		return hierarchy.User{}, fmt.Errorf("email is required")
	}
	var out hierarchy.User
	err := c.doJSON(ctx, http.MethodPost, "/v2/accounts/"+url.PathEscape(accountID)+"/users", user, &out)
	return out, err
}

// DeleteUser removes a user from the given account.
func (c *Client) DeleteUser(ctx context.Context, accountID, userID string) error {
	if accountID == "" || userID == "" {
		return fmt.Errorf("account id and user id are required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/v2/accounts/"+url.PathEscape(accountID)+"/users/"+url.PathEscape(userID), nil, nil)
}
