package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Role is a named permission set users and access keys can be granted.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// Roles lists the roles visible to the session's account.
func (c *Client) Roles(ctx context.Context) ([]Role, error) {
	var out struct {
		Roles *[]Role `json:"roles"`
	}
	if err := c.getJSON(ctx, "/v2/roles", nil, &out); err != nil {
		return nil, err
	}
	if out.Roles == nil {
		return nil, &ValidationError{Endpoint: "/v2/roles", Field: "roles"}
	}
	return *out.Roles, nil
}

// CreateRole defines a new role.
func (c *Client) CreateRole(ctx context.Context, name string, permissions []string) (Role, error) {
	if name == "" {
		return Role{}, fmt.Errorf("role name is required")
	}
	payload := map[string]interface{}{"name": name}
	if len(permissions) > 0 {
		payload["permissions"] = permissions
	}
	var out Role
	err := c.doJSON(ctx, http.MethodPost, "/v2/roles", payload, &out)
	return out, err
}

// DeleteRole removes a role.
func (c *Client) DeleteRole(ctx context.Context, roleID string) error {
	if roleID == "" {
		return fmt.Errorf("role id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/v2/roles/"+url.PathEscape(roleID), nil, nil)
}
