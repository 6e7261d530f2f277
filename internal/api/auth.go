package api

import (
	"context"
	"fmt"
)

// ObtainToken exchanges credentials for a token pair. The call is anonymous;
// a stored (possibly stale) token never rides along.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var pair TokenPair
	if err := c.post(ctx, "/api/auth/token/", body, &pair, WithoutAuth()); err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("token response carried no access token: %w", ErrInvalidResponse)
	}
	return &pair, nil
}

// RefreshToken exchanges a refresh token for a new access token. A rejected
// refresh token comes back as ErrSessionExpired or an *APIError; the caller
// decides what to do with the stored session.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	body := map[string]string{"refresh": refreshToken}
	var out struct {
		Access string `json:"access"`
	}
	if err := c.post(ctx, "/api/auth/token/refresh/", body, &out, WithoutAuth()); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("refresh response carried no access token: %w", ErrInvalidResponse)
	}
	return out.Access, nil
}

// RegisterPayload is the self-service signup form.
type RegisterPayload struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Register creates a new account. Anonymous by definition. The backend wraps
// the created record in a confirmation envelope; only the user comes back.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*User, error) {
	var out struct {
		Message string `json:"message"`
		User    *User  `json:"user"`
	}
	if err := c.post(ctx, "/api/auth/register/", payload, &out, WithoutAuth()); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("register response carried no user record: %w", ErrInvalidResponse)
	}
	return out.User, nil
}
