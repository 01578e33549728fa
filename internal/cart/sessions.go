package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Sessions hands out one Engine per session, each on its own store key.
type Sessions struct {
	store     Store
	keyPrefix string
	policy    ReplacePolicy
	logger    *zap.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewSessions(store Store, keyPrefix string, policy ReplacePolicy, logger *zap.Logger) *Sessions {
	if keyPrefix == "" {
		keyPrefix = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		store:     store,
		keyPrefix: keyPrefix,
		policy:    policy,
		logger:    logger,
		engines:   make(map[string]*Engine),
	}
}

// KeyFor returns the store key used for a session's cart.
func (s *Sessions) KeyFor(sessionID string) string {
	return s.keyPrefix + ":" + sessionID
}

// Engine returns the session's engine, creating and loading it on first use.
func (s *Sessions) Engine(ctx context.Context, sessionID string) *Engine {
	s.mu.Lock()
	e, ok := s.engines[sessionID]
	if !ok {
		e = NewEngine(s.store, Options{
			Key:    s.KeyFor(sessionID),
			Policy: s.policy,
			Logger: s.logger,
		})
		s.engines[sessionID] = e
	}
	s.mu.Unlock()

	e.Load(ctx)
	return e
}

// Forget drops the in-memory engine of a session. The durable copy stays.
func (s *Sessions) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.engines, sessionID)
	s.mu.Unlock()
}

// Drop forgets a session and deletes its durable cart. It is used when the
// session ends for good, so nothing can reach the cart again.
func (s *Sessions) Drop(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	e, ok := s.engines[sessionID]
	delete(s.engines, sessionID)
	s.mu.Unlock()
	if !ok {
		e = NewEngine(s.store, Options{Key: s.KeyFor(sessionID), Logger: s.logger})
	}
	return e.Discard(ctx)
}

// Flush heals the durable copy of every live cart whose last write failed.
// It returns the first error after trying all of them.
func (s *Sessions) Flush(ctx context.Context) error {
	s.mu.Lock()
	engines := make([]*Engine, 0, len(s.engines))
	for _, e := range s.engines {
		engines = append(engines, e)
	}
	s.mu.Unlock()

	var first error
	for _, e := range engines {
		if err := e.Flush(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Len returns the number of live engines.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.engines)
}
