package backend

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for an auth session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	var session AuthSession
	err := c.authRequest(ctx, http.MethodPost, "token?grant_type=password", "", credentialsPayload{
		Email:    email,
		Password: password,
	}, &session)
	if err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign-in returned no session")
	}
	return &session, nil
}

// SignUp registers a new user and returns the created session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthSession, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	var session AuthSession
	err := c.authRequest(ctx, http.MethodPost, "signup", "", credentialsPayload{
		Email:    email,
		Password: password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the session bound to the access token.
func (c *Client) SignOut(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access token is required")
	}
	return c.authRequest(ctx, http.MethodPost, "logout", token, nil, nil)
}

// GetUser returns the identity bound to an access token.
func (c *Client) GetUser(ctx context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}

	var user User
	if err := c.authRequest(ctx, http.MethodGet, "user", token, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session is no longer valid")
	}
	return &user, nil
}
