package cart

import (
	"context"
	"errors"
	"testing"
)

func TestSessionsIsolateCarts(t *testing.T) {
	store := newStubStore()
	sessions := NewSessions(store, "cart", ReplaceSilently, nil)
	ctx := context.Background()

	a := sessions.Engine(ctx, "alice")
	b := sessions.Engine(ctx, "bob")
	if a == b {
		t.Fatalf("sessions share an engine")
	}
	if !a.Loaded() || !b.Loaded() {
		t.Fatalf("engines not loaded on first use")
	}
	addBurger(t, a)

	if b.ItemCount() != 0 {
		t.Fatalf("bob sees alice's items")
	}
	if a.Key() != "cart:alice" || sessions.KeyFor("bob") != "cart:bob" {
		t.Fatalf("unexpected keys %q %q", a.Key(), sessions.KeyFor("bob"))
	}
	if sessions.Engine(ctx, "alice") != a {
		t.Fatalf("engine not reused")
	}
	if sessions.Len() != 2 {
		t.Fatalf("expected two engines, got %d", sessions.Len())
	}
}

func TestSessionsForgetKeepsDurableCopy(t *testing.T) {
	store := newStubStore()
	sessions := NewSessions(store, "", ReplaceSilently, nil)
	ctx := context.Background()

	addBurger(t, sessions.Engine(ctx, "s1"))
	sessions.Forget("s1")
	if sessions.Len() != 0 {
		t.Fatalf("engine not forgotten")
	}

	restored := sessions.Engine(ctx, "s1")
	if restored.ItemCount() != 2 {
		t.Fatalf("expected restored cart with 2 items, got %d", restored.ItemCount())
	}
	if restored.Key() != DefaultKey+":s1" {
		t.Fatalf("unexpected key %q", restored.Key())
	}
}

func TestSessionsDropDeletesCart(t *testing.T) {
	store := newStubStore()
	sessions := NewSessions(store, "cart", ReplaceSilently, nil)
	ctx := context.Background()

	addBurger(t, sessions.Engine(ctx, "s1"))
	if err := sessions.Drop(ctx, "s1"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if sessions.Len() != 0 || store.has("cart:s1") {
		t.Fatalf("session not dropped: live=%d stored=%v", sessions.Len(), store.has("cart:s1"))
	}
	if sessions.Engine(ctx, "s1").ItemCount() != 0 {
		t.Fatalf("dropped cart came back")
	}

	// Sessions without a live engine still lose their durable copy.
	addBurger(t, sessions.Engine(ctx, "s2"))
	sessions.Forget("s2")
	if err := sessions.Drop(ctx, "s2"); err != nil || store.has("cart:s2") {
		t.Fatalf("drop of a forgotten session: err=%v stored=%v", err, store.has("cart:s2"))
	}
}

func TestSessionsFlushHealsFailedWrites(t *testing.T) {
	store := newStubStore()
	sessions := NewSessions(store, "cart", ReplaceSilently, nil)
	ctx := context.Background()

	store.setErr = errors.New("offline")
	e := sessions.Engine(ctx, "s1")
	if _, err := e.AddItem(ctx, AddItemInput{MenuItem: burger(), Quantity: 1, Restaurant: bistro}); !IsPersistWarning(err) {
		t.Fatalf("expected persist warning, got %v", err)
	}
	if err := sessions.Flush(ctx); err == nil {
		t.Fatalf("expected flush to report the store error")
	}

	store.setErr = nil
	if err := sessions.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(store.stored(t, "cart:s1").Items) != 1 {
		t.Fatalf("flush did not heal the stored cart")
	}
}
