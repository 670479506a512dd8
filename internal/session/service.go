// Package session issues guest session ids, proxies auth to the hosted
// auth service, and parses access-token claims. It also owns the
// one-time keep-or-discard decision for a guest cart at sign-in.
package session

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kiranakart/storefront/internal/cart"
	"github.com/kiranakart/storefront/internal/wishlist"
	"github.com/kiranakart/storefront/pkg/backend"
	"github.com/kiranakart/storefront/pkg/config"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
)

// AuthBackend is the hosted auth surface the service proxies.
type AuthBackend interface {
	SignIn(ctx context.Context, email, password string) (*backend.AuthSession, error)
	SignUp(ctx context.Context, email, password string) (*backend.AuthSession, error)
	SignOut(ctx context.Context, token string) error
	GetUser(ctx context.Context, token string) (*backend.User, error)
}

// SessionDTO is the token bundle returned to the client.
type SessionDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	ProfileID    string `json:"profile_id"`
	Email        string `json:"email,omitempty"`
}

// AuthResult is a sign-in or sign-up outcome. PromptCartDecision is set
// when the guest cart or wishlist is non-empty and the client should ask
// whether to keep or discard it.
type AuthResult struct {
	Session            SessionDTO `json:"session"`
	PromptCartDecision bool       `json:"prompt_cart_decision"`
}

// Credentials is the sign-in/sign-up payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ServiceParams groups dependencies for the session service.
type ServiceParams struct {
	Auth     AuthBackend
	Cart     cart.Service
	Wishlist wishlist.Service
	Config   config.SessionConfig
}

// Service exposes session issuance, auth proxying, and claim parsing.
type Service interface {
	NewGuestID() string
	SignIn(ctx context.Context, sessionID string, creds Credentials) (AuthResult, error)
	SignUp(ctx context.Context, sessionID string, creds Credentials) (AuthResult, error)
	SignOut(ctx context.Context, token string) error
	Revalidate(ctx context.Context, token string) (SessionDTO, error)
	ParseToken(token string) (string, error)
	ResolveCartPrompt(ctx context.Context, sessionID string, keep bool) error
}

type service struct {
	auth     AuthBackend
	cart     cart.Service
	wishlist wishlist.Service
	cfg      config.SessionConfig
}

// NewService builds a session service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Auth == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auth backend is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if params.Wishlist == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist service is required")
	}
	return &service{
		auth:     params.Auth,
		cart:     params.Cart,
		wishlist: params.Wishlist,
		cfg:      params.Config,
	}, nil
}

// NewGuestID issues a fresh guest session id.
func (s *service) NewGuestID() string {
	return uuid.NewString()
}

// SignIn exchanges credentials for a session and reports whether the
// guest cart decision prompt applies.
func (s *service) SignIn(ctx context.Context, sessionID string, creds Credentials) (AuthResult, error) {
	session, err := s.auth.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return AuthResult{}, err
	}
	return s.authResult(ctx, sessionID, session)
}

// SignUp registers a new account and signs it in.
func (s *service) SignUp(ctx context.Context, sessionID string, creds Credentials) (AuthResult, error) {
	session, err := s.auth.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		return AuthResult{}, err
	}
	return s.authResult(ctx, sessionID, session)
}

// SignOut revokes the access token. Local session state is untouched;
// the guest cart remains usable.
func (s *service) SignOut(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access token is required")
	}
	return s.auth.SignOut(ctx, token)
}

// Revalidate re-checks the token against the auth service. It validates
// auth only and never reads or writes cart or location state.
func (s *service) Revalidate(ctx context.Context, token string) (SessionDTO, error) {
	if strings.TrimSpace(token) == "" {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}
	user, err := s.auth.GetUser(ctx, token)
	if err != nil {
		return SessionDTO{}, err
	}
	return SessionDTO{AccessToken: token, ProfileID: user.ID, Email: user.Email}, nil
}

// ParseToken verifies the access token signature and returns the profile
// id from its subject claim.
func (s *service) ParseToken(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unexpected token signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "token has no subject")
	}
	return subject, nil
}

// ResolveCartPrompt applies the keep-or-discard decision: keeping is a
// no-op, discarding clears the guest cart and wishlist.
func (s *service) ResolveCartPrompt(ctx context.Context, sessionID string, keep bool) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if keep {
		return nil
	}
	if err := s.cart.Clear(ctx, sessionID); err != nil {
		return err
	}
	return s.wishlist.Clear(ctx, wishlist.Actor{SessionID: sessionID})
}

func (s *service) authResult(ctx context.Context, sessionID string, session *backend.AuthSession) (AuthResult, error) {
	result := AuthResult{
		Session: SessionDTO{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			ExpiresIn:    session.ExpiresIn,
			ProfileID:    session.User.ID,
			Email:        session.User.Email,
		},
	}

	if sessionID != "" {
		snapshot, err := s.cart.Snapshot(ctx, sessionID)
		if err == nil && len(snapshot.Items) > 0 {
			result.PromptCartDecision = true
		}
		if !result.PromptCartDecision {
			dto, err := s.wishlist.List(ctx, wishlist.Actor{SessionID: sessionID})
			if err == nil && dto.Count > 0 {
				result.PromptCartDecision = true
			}
		}
	}
	return result, nil
}
