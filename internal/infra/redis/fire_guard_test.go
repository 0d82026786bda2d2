package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestFireGuardClaimsOncePerDay(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	first := NewFireGuard(newClient(mr), "quiz:", time.Hour)
	second := NewFireGuard(newClient(mr), "quiz:", time.Hour)

	ok, err := first.Claim(ctx, "2026-10-14")
	if err != nil || !ok {
		t.Fatalf("expected first claim to win, ok=%v err=%v", ok, err)
	}
	ok, err = second.Claim(ctx, "2026-10-14")
	if err != nil || ok {
		t.Fatalf("expected second instance to lose, ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("quiz:fired:2026-10-14"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	if err := first.Release(ctx, "2026-10-14"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.Claim(ctx, "2026-10-14")
	if err != nil || !ok {
		t.Fatalf("expected claim after release, ok=%v err=%v", ok, err)
	}
}
