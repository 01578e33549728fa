package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "CART_STORE", "CART_KEY", "CART_REPLACE_POLICY", "SESSION_STORE", "SESSION_TTL_SECONDS", "AMQP_URL", "LOG_DEV"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.CartStore != StorePostgres || cfg.CartKey != "@food_delivery_cart" || cfg.CartReplacePolicy != "silent" {
		t.Fatalf("unexpected cart defaults %+v", cfg)
	}
	if cfg.SessionStore != StorePostgres {
		t.Fatalf("unexpected session store %q", cfg.SessionStore)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.SessionTTL)
	}
	if cfg.AMQPURL != "" || cfg.LogDev {
		t.Fatalf("expected messaging and dev logging off, got %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CART_STORE", "FILE")
	t.Setenv("CART_STORE_FILE", "/tmp/cart.json")
	t.Setenv("CART_REPLACE_POLICY", "Confirm")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("LOG_DEV", "true")

	cfg := FromEnv()
	if cfg.CartStore != StoreFile || cfg.CartStoreFile != "/tmp/cart.json" {
		t.Fatalf("unexpected store config %+v", cfg)
	}
	if cfg.CartReplacePolicy != "confirm" {
		t.Fatalf("expected lower-cased policy, got %q", cfg.CartReplacePolicy)
	}
	if cfg.ShutdownTimeout != 3*time.Second || !cfg.LogDev {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
}

func TestEnvDurationIgnoresGarbage(t *testing.T) {
	t.Setenv("SESSION_TTL_SECONDS", "soon")
	if got := FromEnv().SessionTTL; got != 30*24*time.Hour {
		t.Fatalf("expected default ttl, got %s", got)
	}
}
