package db

import (
	"context"
	"testing"
	"time"
)

func TestValueOr(t *testing.T) {
	if got := valueOr(int32(0), 10); got != 10 {
		t.Fatalf("expected fallback 10, got %d", got)
	}
	if got := valueOr(int32(4), 10); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := valueOr(time.Duration(0), time.Minute); got != time.Minute {
		t.Fatalf("expected fallback 1m, got %s", got)
	}
}

func TestReadyCheckWithoutPool(t *testing.T) {
	if err := ReadyCheck(nil)(context.Background()); err == nil {
		t.Fatal("expected error for nil pool")
	}
}
