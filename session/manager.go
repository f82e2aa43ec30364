package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"checkin-backend/models"
	"checkin-backend/store"
)

// ErrUnauthorized covers every way a credential can be bad: wrong PIN,
// unknown event code, malformed token, expired token, revoked token. Callers
// are told nothing more specific.
var ErrUnauthorized = errors.New("unauthorized")

// Claims bind a session token to one event. No staff identity is carried;
// devices holding a valid token for an event are interchangeable.
type Claims struct {
	EventID string `json:"event_id"`
	jwt.RegisteredClaims
}

// Manager issues, validates and revokes event-scoped staff sessions.
// Sessions are stateless HS256 tokens; the only server-side state is the
// revocation set, which exists because logout must stick until the token
// would have expired anyway.
type Manager struct {
	events store.EventStore
	secret []byte
	ttl    time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

func NewManager(events store.EventStore, secret string, ttl time.Duration) *Manager {
	return &Manager{
		events:  events,
		secret:  []byte(secret),
		ttl:     ttl,
		clock:   time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Authenticate exchanges the event's shared code + PIN for a bearer session.
func (m *Manager) Authenticate(ctx context.Context, eventCode, pin string) (models.StaffSession, error) {
	event, err := m.events.EventByCode(ctx, eventCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.StaffSession{}, ErrUnauthorized
		}
		return models.StaffSession{}, fmt.Errorf("failed to look up event: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(event.PINHash), []byte(pin)); err != nil {
		return models.StaffSession{}, ErrUnauthorized
	}

	now := m.clock()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		EventID: event.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return models.StaffSession{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return models.StaffSession{
		Token:     token,
		EventID:   event.ID,
		EventName: event.Name,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate returns the event a token is scoped to. Expired, revoked,
// malformed and never-issued tokens are rejected identically.
func (m *Manager) Validate(token string) (uuid.UUID, error) {
	claims, err := m.parse(token, true)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}

	m.mu.Lock()
	_, revoked := m.revoked[claims.ID]
	m.mu.Unlock()
	if revoked {
		return uuid.Nil, ErrUnauthorized
	}

	eventID, err := uuid.Parse(claims.EventID)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return eventID, nil
}

// Revoke ends a session early. Revoking twice, or revoking a token that is
// already expired or was never valid, is a no-op.
func (m *Manager) Revoke(token string) {
	claims, err := m.parse(token, false)
	if err != nil {
		return
	}

	exp := m.clock().Add(m.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	if exp.After(m.clock()) {
		m.revoked[claims.ID] = exp
	}
}

// prune drops denylist entries whose tokens have expired on their own.
// Caller holds mu.
func (m *Manager) prune() {
	now := m.clock()
	for jti, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, jti)
		}
	}
}

func (m *Manager) parse(token string, checkExpiry bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock),
	}
	if !checkExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
