package identity

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// Identity describes the authenticated caller extracted from a verified
// ID token.
type Identity struct {
	UID      string
	Email    string
	IssuedAt int64
}

// Client wraps the Firebase Auth admin client behind the operations the
// service needs: account creation/deletion, session revocation and token
// verification.
type Client struct {
	auth *auth.Client
}

func NewClient(ctx context.Context, app *firebase.App) (*Client, error) {
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return &Client{auth: authClient}, nil
}

// CreateUser creates a new email/password identity and returns its UID.
func (c *Client) CreateUser(ctx context.Context, email, password string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)

	rec, err := c.auth.CreateUser(ctx, params)
	if err != nil {
		return "", mapCreateError(err)
	}

	return rec.UID, nil
}

// DeleteUser removes an identity. Returns ErrUserNotFound if it no longer
// exists, which callers treat as already-deleted.
func (c *Client) DeleteUser(ctx context.Context, uid string) error {
	if err := c.auth.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

// RevokeSessions invalidates every refresh token held by the identity.
func (c *Client) RevokeSessions(ctx context.Context, uid string) error {
	if err := c.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// VerifyToken validates a Firebase ID token and returns the caller identity.
func (c *Client) VerifyToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := c.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}

	id := &Identity{
		UID:      token.UID,
		IssuedAt: token.IssuedAt,
	}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}

	return id, nil
}

// mapCreateError folds provider failures onto the three user-facing
// categories. The SDK reports weak passwords and malformed addresses as
// plain argument errors, so those fall back to message inspection.
func mapCreateError(err error) error {
	if auth.IsEmailAlreadyExists(err) {
		return ErrEmailAlreadyInUse
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "password"):
		return ErrWeakPassword
	case strings.Contains(msg, "email"):
		return ErrInvalidEmail
	}

	return fmt.Errorf("create identity: %w", err)
}
