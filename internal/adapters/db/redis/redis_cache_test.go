package redis

import (
	"context"
	"testing"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/errors"
	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
)

func newCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redisv9.NewClient(&redisv9.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "user:a@b.c", `{"id":"1"}`, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, err := cache.Get(ctx, "user:a@b.c")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != `{"id":"1"}` {
		t.Fatalf("unexpected value %q", val)
	}
	if ttl := mr.TTL("user:a@b.c"); ttl != time.Minute {
		t.Fatalf("ttl want 1m got %v", ttl)
	}
}

func TestRedisCache_Miss(t *testing.T) {
	cache, _ := newCache(t)

	_, err := cache.Get(context.Background(), "absent")
	if !customErrors.IsNotFound(err) {
		t.Fatalf("absent key must be not found, got %v", err)
	}
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "reset:a@b.c", "tok", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(time.Hour + time.Second)

	if _, err := cache.Get(ctx, "reset:a@b.c"); !customErrors.IsNotFound(err) {
		t.Fatalf("expired key must be not found, got %v", err)
	}
}

func TestRedisCache_Delete(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "reset:a@b.c", "tok", time.Hour)
	if err := cache.Delete(ctx, "reset:a@b.c"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := cache.Get(ctx, "reset:a@b.c"); !customErrors.IsNotFound(err) {
		t.Fatalf("deleted key must be not found, got %v", err)
	}
	// deleting twice is fine
	if err := cache.Delete(ctx, "reset:a@b.c"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestRedisCache_ZeroTTL(t *testing.T) {
	cache, mr := newCache(t)

	_ = cache.Set(context.Background(), "k", "v", 0)
	if ttl := mr.TTL("k"); ttl != time.Hour {
		t.Fatalf("zero ttl must fall back to 1h, got %v", ttl)
	}
}

func TestRedisCache_Unavailable(t *testing.T) {
	cache, mr := newCache(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "k")
	if !customErrors.IsInternal(err) {
		t.Fatalf("connection failure must be internal, got %v", err)
	}
}
