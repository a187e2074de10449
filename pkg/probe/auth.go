package probe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Auth types.
const (
	AuthBearer = "bearer"
	AuthJWT    = "jwt"
)

// AuthConfig describes how probes authenticate. A zero value
// means no Authorization header is sent.
type AuthConfig struct {
	// Type is "bearer" for a static token or "jwt" for an HS256
	// token minted from Secret.
	Type string `json:"type" yaml:"type"`

	// Token is the static bearer token.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// Secret signs minted JWTs.
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`

	Issuer   string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Audience string `json:"audience,omitempty" yaml:"audience,omitempty"`

	// TTL is the minted token lifetime. Defaults to five minutes.
	TTL time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`

	// Claims are merged over the registered claims.
	Claims map[string]any `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// Validate checks that the config carries what its type needs.
func (a AuthConfig) Validate() error {
	switch a.Type {
	case AuthBearer:
		if a.Token == "" {
			return errors.New("bearer auth requires a token")
		}
	case AuthJWT:
		if a.Secret == "" {
			return errors.New("jwt auth requires a secret")
		}
	default:
		return fmt.Errorf("unknown auth type: %q", a.Type)
	}
	return nil
}

// Secrets returns the credential strings that must never appear
// in logs.
func (a AuthConfig) Secrets() []string {
	var out []string
	for _, s := range []string{a.Token, a.Secret} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// TokenSource yields the bearer token for the next request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns itself.
type StaticToken string

// Token returns the static token.
func (s StaticToken) Token(_ context.Context) (string, error) {
	return string(s), nil
}

// JWTSigner mints HS256 tokens and reuses each one until it is
// close to expiry.
type JWTSigner struct {
	cfg AuthConfig
	now func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewJWTSigner creates a signer for cfg.
func NewJWTSigner(cfg AuthConfig) *JWTSigner {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &JWTSigner{cfg: cfg, now: time.Now}
}

// Token returns a cached token or mints a new one.
func (s *JWTSigner) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// Refresh with a tenth of the lifetime left.
	if s.token != "" && now.Before(s.expires.Add(-s.cfg.TTL/10)) {
		return s.token, nil
	}

	exp := now.Add(s.cfg.TTL)
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	if s.cfg.Issuer != "" {
		claims["iss"] = s.cfg.Issuer
	}
	if s.cfg.Subject != "" {
		claims["sub"] = s.cfg.Subject
	}
	if s.cfg.Audience != "" {
		claims["aud"] = s.cfg.Audience
	}
	for k, v := range s.cfg.Claims {
		claims[k] = v
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}

	s.token = signed
	s.expires = exp
	return signed, nil
}

// NewTokenSource builds the TokenSource for cfg. A nil cfg
// yields a nil source.
func NewTokenSource(cfg *AuthConfig) (TokenSource, error) {
	if cfg == nil {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Type == AuthBearer {
		return StaticToken(cfg.Token), nil
	}
	return NewJWTSigner(*cfg), nil
}
