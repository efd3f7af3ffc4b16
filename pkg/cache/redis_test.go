package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigAddr(t *testing.T) {
	assert.Equal(t, "cache.local:6380", Config{Host: "cache.local", Port: "6380"}.Addr())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := NewRedisClient(ctx, Config{Host: "127.0.0.1", Port: "1", DialTimeout: 50 * time.Millisecond})

	assert.ErrorContains(t, err, "127.0.0.1:1")
}
