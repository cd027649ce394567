package cache

import (
	"context"
	"testing"
	"time"
)

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	c, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil {
		c.Close()
		t.Fatal("NewRedisCache() should fail when the server is unreachable")
	}
}
