package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	tokenrepo "fooddelivery/internal/repository/token"
)

func TestIssueAndLookup(t *testing.T) {
	svc := New(time.Hour, nil, nil)
	issued, err := svc.Issue(context.Background())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := uuid.Parse(issued.SessionID); err != nil {
		t.Fatalf("session id is not a uuid: %q", issued.SessionID)
	}
	if len(issued.Token) != 43 || issued.ExpiresIn != 3600 {
		t.Fatalf("unexpected issued session %+v", issued)
	}

	got, err := svc.Lookup(context.Background(), issued.Token)
	if err != nil || got != issued.SessionID {
		t.Fatalf("Lookup: %q %v", got, err)
	}
	if _, err := svc.Lookup(context.Background(), "bogus"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestExpiredTokensAreRejectedAndPurged(t *testing.T) {
	svc := New(time.Minute, nil, nil)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	first, _ := svc.Issue(context.Background())
	clock = clock.Add(30 * time.Second)
	second, _ := svc.Issue(context.Background())

	clock = clock.Add(45 * time.Second)
	if _, err := svc.Lookup(context.Background(), second.Token); err != nil {
		t.Fatalf("second session expired early: %v", err)
	}

	expired, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if len(expired) != 1 || expired[0] != first.SessionID {
		t.Fatalf("expected first session purged, got %v", expired)
	}
	if n, err := svc.Active(context.Background()); err != nil || n != 1 {
		t.Fatalf("expected one active session, got %d (%v)", n, err)
	}

	clock = clock.Add(time.Hour)
	if _, err := svc.Lookup(context.Background(), second.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	svc := New(0, nil, nil)
	issued, _ := svc.Issue(context.Background())

	id, err := svc.Revoke(context.Background(), issued.Token)
	if err != nil || id != issued.SessionID {
		t.Fatalf("Revoke: %q %v", id, err)
	}
	if _, err := svc.Lookup(context.Background(), issued.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token still valid")
	}
	if _, err := svc.Revoke(context.Background(), issued.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("double revoke should fail")
	}
}

func TestPurgeReportsSessionsRejectedByLookup(t *testing.T) {
	svc := New(time.Minute, nil, nil)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()

	issued, err := svc.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clock = clock.Add(2 * time.Minute)

	if _, err := svc.Lookup(ctx, issued.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
	if _, err := svc.Lookup(ctx, issued.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected again, got %v", err)
	}

	expired, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if len(expired) != 1 || expired[0] != issued.SessionID {
		t.Fatalf("expected purge to report %s, got %v", issued.SessionID, expired)
	}
	if n, _ := svc.Active(ctx); n != 0 {
		t.Fatalf("expected no active sessions, got %d", n)
	}
}

type brokenTokens struct {
	tokenrepo.Repository
}

func (brokenTokens) Get(context.Context, string) (*tokenrepo.Token, error) {
	return nil, errors.New("connection refused")
}

func (brokenTokens) Create(context.Context, tokenrepo.Token) error {
	return errors.New("connection refused")
}

func TestStoreFailuresAreNotInvalidTokens(t *testing.T) {
	svc := New(0, brokenTokens{Repository: tokenrepo.NewMemory()}, nil)

	if _, err := svc.Issue(context.Background()); err == nil {
		t.Fatalf("expected issue to fail")
	}
	_, err := svc.Lookup(context.Background(), "whatever")
	if err == nil || errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected store error, got %v", err)
	}
}
