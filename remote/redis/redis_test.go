package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 3})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.FlushDB(ctx)

	c, err := New(Config{Client: client, TTL: time.Minute})
	if err != nil {
		t.Fatalf("Failed to create Redis cache: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get(ctx, "https://example.com/missing.json"); err != nil || ok {
		t.Fatalf("miss: ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "https://example.com/s.json", []byte(`{"type":"string"}`)); err != nil {
		t.Fatal(err)
	}
	doc, ok, err := c.Get(ctx, "https://example.com/s.json")
	if err != nil || !ok || string(doc) != `{"type":"string"}` {
		t.Fatalf("got %q ok=%v err=%v", doc, ok, err)
	}
	ttl := client.TTL(ctx, "schemavalidator:remote:https://example.com/s.json").Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}
}

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error")
	}
}
