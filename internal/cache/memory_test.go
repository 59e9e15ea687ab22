package cache

import (
	"context"
	"testing"
	"time"
)

// TestMemoryGetSet проверяет запись и чтение значения из кеша.
func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, ok := m.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	if err := m.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, ok := m.Get(ctx, "key")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "value" {
		t.Fatalf("expected value, got %s", got)
	}
}

// TestMemoryExpiry проверяет вытеснение записи по истечении TTL.
func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	current := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	if err := m.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := m.Get(ctx, "key"); !ok {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := m.Get(ctx, "key"); ok {
		t.Fatal("expected miss after expiry")
	}
}

// TestMemoryZeroTTL проверяет запись без срока жизни.
func TestMemoryZeroTTL(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	current := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	if err := m.Set(ctx, "key", "value", 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	current = current.Add(24 * time.Hour)
	if _, ok := m.Get(ctx, "key"); !ok {
		t.Fatal("expected hit for entry without ttl")
	}
}
