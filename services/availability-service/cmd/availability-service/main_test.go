package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != "8090" || cfg.GRPCPort != "9090" {
		t.Fatalf("unexpected ports %q/%q", cfg.Port, cfg.GRPCPort)
	}
	if cfg.BufferMinutes != 10 || cfg.DefaultSlotMinutes != 60 || cfg.MaxFutureBookingDays != 90 || cfg.MinAdvanceBookingHours != 24 {
		t.Fatalf("unexpected engine defaults %+v", cfg.Config)
	}
	if cfg.StrictStatusTransitions {
		t.Fatal("status transitions should be permissive by default")
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected request timeout %s", cfg.RequestTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("BUFFER_MINUTES", "15")
	t.Setenv("STRICT_STATUS_TRANSITIONS", "true")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.BufferMinutes != 15 || !cfg.StrictStatusTransitions || cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("PORT", "99999")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected invalid port to fail")
	}
	t.Setenv("PORT", "8090")
	t.Setenv("DEFAULT_SLOT_MINUTES", "0")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected zero slot length to fail")
	}
}

func TestLoadSeedUsers(t *testing.T) {
	if users, err := loadSeedUsers(""); err != nil || users != nil {
		t.Fatalf("empty path should yield no users, got %v (%v)", users, err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	body := `[{"id":"tutor-1","name":"Ana","country_iso_num":620,"role":"tutor",
		"availability":{"monday":[{"start":"09:00","end":"11:00"}]}},
		{"id":"student-1","country_iso_num":840,"role":"student"}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	users, err := loadSeedUsers(path)
	if err != nil {
		t.Fatalf("loadSeedUsers: %v", err)
	}
	if len(users) != 2 || len(users[0].Availability["monday"]) != 1 {
		t.Fatalf("unexpected users %+v", users)
	}

	if err := os.WriteFile(path, []byte(`[{"name":"no id"}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSeedUsers(path); err == nil {
		t.Fatal("expected user without id to fail")
	}
}
