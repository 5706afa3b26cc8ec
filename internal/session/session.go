// Package session carries per-request identity (admin flag, verified voter)
// in a signed cookie and exposes it through the request context.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Session struct {
	ID        string
	TokenID   string
	Admin     bool
	VoterID   int64
	VoterName string
	ExpiresAt time.Time
}

// HasVoter reports whether face verification bound a voter to the session.
func (s *Session) HasVoter() bool {
	return s != nil && s.VoterID > 0
}

type claims struct {
	SID       string `json:"sid"`
	Admin     bool   `json:"adm,omitempty"`
	VoterID   int64  `json:"vid,omitempty"`
	VoterName string `json:"vnm,omitempty"`
	jwt.RegisteredClaims
}

type contextKey struct{}

// FromContext returns the request's session. It never returns nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

type Config struct {
	SecretKey    string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	cookie string
	secure bool
}

func NewManager(store Store, cfg Config) (*Manager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("session secret key required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "sv_session"
	}
	return &Manager{
		store:  store,
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.TTL,
		cookie: cfg.CookieName,
		secure: cfg.CookieSecure,
	}, nil
}

func (m *Manager) Store() Store {
	return m.store
}

// Middleware decodes the session cookie and attaches the session to the
// request context. Missing, invalid, expired or revoked tokens yield a fresh
// anonymous session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.load(r)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (m *Manager) load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookie)
	if err != nil || cookie.Value == "" {
		return newSession()
	}

	s, err := m.Decode(cookie.Value)
	if err != nil {
		return newSession()
	}

	revoked, err := m.store.IsRevoked(r.Context(), s.TokenID)
	if err != nil {
		log.Printf("[SESSION] Revocation check failed: %v", err)
		return newSession()
	}
	if revoked {
		return newSession()
	}
	return s
}

func newSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Encode signs s into a token with a fresh token id and expiry.
func (m *Manager) Encode(s *Session) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.TokenID = uuid.NewString()
	s.ExpiresAt = time.Now().Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SID:       s.ID,
		Admin:     s.Admin,
		VoterID:   s.VoterID,
		VoterName: s.VoterName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.TokenID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	return token.SignedString(m.secret)
}

// Decode verifies a token produced by Encode.
func (m *Manager) Decode(tokenString string) (*Session, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || c.SID == "" {
		return nil, errors.New("invalid session token")
	}

	s := &Session{
		ID:        c.SID,
		TokenID:   c.ID,
		Admin:     c.Admin,
		VoterID:   c.VoterID,
		VoterName: c.VoterName,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, nil
}

// Save writes s to the response cookie.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	value, err := m.Encode(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    value,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear revokes the current token and replaces s with an empty session.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.TokenID != "" {
		if err := m.store.Revoke(ctx, s.TokenID, time.Until(s.ExpiresAt)); err != nil {
			log.Printf("[SESSION] Failed to revoke token: %v", err)
		}
	}
	if s.ID != "" {
		if err := m.store.ClearCaptcha(ctx, s.ID); err != nil {
			log.Printf("[SESSION] Failed to clear captcha: %v", err)
		}
	}

	*s = Session{ID: uuid.NewString()}
	return m.Save(w, s)
}
