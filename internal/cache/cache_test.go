package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("empty Get = %v, %v", ok, err)
	}
	val := []byte("v1")
	if err := s.Set(ctx, "k", val, 2*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val[0] = 'x'
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v1" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("entry should expire at its TTL")
	}
	if len(s.m) != 0 {
		t.Error("expired entry should be dropped")
	}
}

func TestRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Connect(ctx, "redis://127.0.0.1:1/0"); err == nil {
		t.Fatal("Connect to a closed port should fail")
	}

	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))
	defer s.Close()
	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Error("Get should surface the connection error")
	}
	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err == nil {
		t.Error("Set should surface the connection error")
	}
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
