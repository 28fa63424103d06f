package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer     = "dukkan-studio"
	CookieName = "JWT"
)

var ErrInvalidSession = errors.New("invalid session token")

type SessionOpts struct {
	Secret         string
	TokenDuration  time.Duration
	CookieDuration time.Duration
	SecureCookies  bool
}

// Sessions issues and verifies the signed cookie that identifies a browser.
// The token's user id is the owner key for that browser's studio state.
type Sessions struct {
	tokens *token.Service
	opts   SessionOpts
}

func NewSessions(opts SessionOpts) (*Sessions, error) {
	if opts.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	secret := opts.Secret
	svc := token.NewService(token.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return secret, nil
		}),
		TokenDuration:  opts.TokenDuration,
		CookieDuration: opts.CookieDuration,
		SecureCookies:  opts.SecureCookies,
		Issuer:         Issuer,
	})
	return &Sessions{tokens: svc, opts: opts}, nil
}

func (s *Sessions) CookieDuration() time.Duration {
	return s.opts.CookieDuration
}

func (s *Sessions) Secure() bool {
	return s.opts.SecureCookies
}

// NewOwner returns a fresh random owner id.
func NewOwner() string {
	return "studio_" + uuid.NewString()
}

// Issue signs a token for owner.
func (s *Sessions) Issue(owner string) (string, error) {
	now := time.Now()
	claims := token.Claims{
		User: &token.User{ID: owner, Name: owner},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  []string{Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tokenStr, err := s.tokens.Token(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenStr, nil
}

// Owner verifies tokenStr and returns its owner id.
func (s *Sessions) Owner(tokenStr string) (string, error) {
	claims, err := s.tokens.Parse(tokenStr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.User == nil || claims.User.ID == "" {
		return "", fmt.Errorf("%w: no user", ErrInvalidSession)
	}
	return claims.User.ID, nil
}
