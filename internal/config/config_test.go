package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UNZER_PRIVATE_KEY", " s-priv-test ")
	t.Setenv("RELAY_EVENTS", "payment.completed, charge , ,payment.completed")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UnzerPrivateKey != "s-priv-test" {
		t.Fatalf("private key = %q", cfg.UnzerPrivateKey)
	}
	if cfg.UnzerBaseURL != "https://api.unzer.com" {
		t.Fatalf("base url = %q", cfg.UnzerBaseURL)
	}
	if cfg.UnzerTimeout != 0 {
		t.Fatalf("expected no timeout by default, got %v", cfg.UnzerTimeout)
	}
	if len(cfg.RelayEvents) != 2 || cfg.RelayEvents[0] != "payment.completed" || cfg.RelayEvents[1] != "charge" {
		t.Fatalf("relay events = %v", cfg.RelayEvents)
	}
	if cfg.StorageTTL != 7*24*time.Hour {
		t.Fatalf("storage ttl = %v", cfg.StorageTTL)
	}
	if cfg.StorageClaimTimeout != 2*time.Minute {
		t.Fatalf("claim timeout = %v", cfg.StorageClaimTimeout)
	}
	if err := cfg.RequirePrivateKey(); err != nil {
		t.Fatalf("RequirePrivateKey: %v", err)
	}
}

func TestLoadRejectsNonPositiveClaimTimeout(t *testing.T) {
	t.Setenv("STORAGE_CLAIM_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero claim timeout")
	}
}

func TestLoadRejectsNegativeTimeout(t *testing.T) {
	t.Setenv("UNZER_TIMEOUT_SECONDS", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative timeout")
	}
}

func TestRequirePrivateKey(t *testing.T) {
	if err := (&Config{}).RequirePrivateKey(); err == nil {
		t.Fatalf("expected missing key error")
	}
}
