package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// UserFilters narrows ListUsers.
type UserFilters struct {
	Role   string
	Search string
}

func (f UserFilters) query() string {
	return encodeQuery(map[string]string{
		"role":   f.Role,
		"search": f.Search,
	})
}

// UserPayload is the admin-side update form for user accounts.
type UserPayload struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
}

// ListUsers returns accounts matching the filters. Admin only.
func (c *Client) ListUsers(ctx context.Context, f UserFilters) ([]User, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/users/"+f.query(), &raw); err != nil {
		return nil, err
	}
	return decodeList[User](raw)
}

// GetUser fetches one account by id.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := c.get(ctx, fmt.Sprintf("/api/users/%d/", id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser partially updates an account.
func (c *Client) UpdateUser(ctx context.Context, id int64, payload UserPayload) (*User, error) {
	var u User
	if err := c.patch(ctx, fmt.Sprintf("/api/users/%d/", id), payload, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/users/%d/", id))
}

// UpdateUserRole changes an account's role. Admin only.
func (c *Client) UpdateUserRole(ctx context.Context, id int64, role string) (*User, error) {
	body := map[string]string{"role": role}
	var u User
	if err := c.post(ctx, fmt.Sprintf("/api/users/%d/update_role/", id), body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// TechnicianFilters narrows ListTechnicians. IsAvailable is a tri-state:
// nil means no filter.
type TechnicianFilters struct {
	IsAvailable *bool
	Expertise   string
}

func (f TechnicianFilters) query() string {
	params := map[string]string{
		"expertise": f.Expertise,
	}
	if f.IsAvailable != nil {
		if *f.IsAvailable {
			params["is_available"] = "true"
		} else {
			params["is_available"] = "false"
		}
	}
	return encodeQuery(params)
}

// ListTechnicians returns technician profiles matching the filters.
func (c *Client) ListTechnicians(ctx context.Context, f TechnicianFilters) ([]Technician, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/technicians/"+f.query(), &raw); err != nil {
		return nil, err
	}
	return decodeList[Technician](raw)
}
