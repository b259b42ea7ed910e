package service

import (
	"testing"
	"time"
)

func TestMemoryResetTokenStore_ConsumeOnce(t *testing.T) {
	store := NewMemoryResetTokenStore()

	if err := store.Store("jti-1", "u1", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}

	ok, err := store.Consume("jti-1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !ok {
		t.Fatalf("expected first consume to succeed")
	}

	ok, err = store.Consume("jti-1")
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if ok {
		t.Fatalf("expected second consume to fail")
	}
}

func TestMemoryResetTokenStore_ExpiredEntry(t *testing.T) {
	store := NewMemoryResetTokenStore()

	if err := store.Store("jti-1", "u1", -time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}

	ok, err := store.Consume("jti-1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ok {
		t.Fatalf("expected expired entry not to consume")
	}
}

func TestMemoryResetTokenStore_UnknownJTI(t *testing.T) {
	store := NewMemoryResetTokenStore()

	ok, err := store.Consume("missing")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ok {
		t.Fatalf("expected unknown jti not to consume")
	}
}
