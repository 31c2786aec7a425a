package store

import (
	"context"
	"testing"
)

func TestMemKV(t *testing.T) {
	kv := NewMemKV()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := kv.Set(ctx, "lastNewsCheck", "2026-04-01T09:00:00Z"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := kv.Get(ctx, "lastNewsCheck")
	if err != nil || !ok || val != "2026-04-01T09:00:00Z" {
		t.Errorf("Get = %q ok=%v err=%v", val, ok, err)
	}

	// Overwrite keeps only the latest value.
	if err := kv.Set(ctx, "lastNewsCheck", "2026-04-02T09:00:00Z"); err != nil {
		t.Fatal(err)
	}
	val, _, _ = kv.Get(ctx, "lastNewsCheck")
	if val != "2026-04-02T09:00:00Z" {
		t.Errorf("after overwrite, Get = %q", val)
	}
}
