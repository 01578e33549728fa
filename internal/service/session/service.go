package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fooddelivery/internal/domain"
	tokenrepo "fooddelivery/internal/repository/token"
)

var ErrInvalidToken = errors.New("invalid token")

// Issued is a fresh anonymous session.
type Issued struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresIn int       `json:"expiresIn"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	tokens tokenrepo.Repository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// New returns a session service. A nil repository keeps tokens in memory.
func New(ttl time.Duration, tokens tokenrepo.Repository, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if tokens == nil {
		tokens = tokenrepo.NewMemory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tokens: tokens,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Issue(ctx context.Context) (*Issued, error) {
	token, err := randomToken()
	if err != nil {
		return nil, err
	}
	sessionID := uuid.NewString()
	expiresAt := s.now().UTC().Add(s.ttl)
	if err := s.tokens.Create(ctx, tokenrepo.Token{Token: token, SessionID: sessionID, ExpiresAt: expiresAt}); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}
	s.logger.Debug("session issued", zap.String("session_id", sessionID))
	return &Issued{
		Token:     token,
		SessionID: sessionID,
		ExpiresIn: s.TTLSeconds(),
		ExpiresAt: expiresAt,
	}, nil
}

// Lookup resolves a bearer token to its session id. Expired tokens are
// rejected but stay stored until PurgeExpired collects them, so the purge
// reports every expired session.
func (s *Service) Lookup(ctx context.Context, token string) (string, error) {
	t, err := s.tokens.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("lookup session token: %w", err)
	}
	if s.now().After(t.ExpiresAt) {
		return "", ErrInvalidToken
	}
	return t.SessionID, nil
}

// Revoke ends a session and returns its id.
func (s *Service) Revoke(ctx context.Context, token string) (string, error) {
	t, err := s.tokens.Delete(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("revoke session token: %w", err)
	}
	return t.SessionID, nil
}

// PurgeExpired forgets expired tokens and returns the ids of the sessions
// they belonged to.
func (s *Service) PurgeExpired(ctx context.Context) ([]string, error) {
	expired, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("purge session tokens: %w", err)
	}
	if len(expired) > 0 {
		s.logger.Info("expired sessions purged", zap.Int("count", len(expired)))
	}
	return expired, nil
}

func (s *Service) Active(ctx context.Context) (int, error) {
	return s.tokens.Count(ctx)
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
