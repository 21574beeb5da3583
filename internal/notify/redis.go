package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultRedisChannel = "onboarding.milestones"

// RedisPublisher is the subset of the go-redis client used by RedisSink.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
}

// RedisSink publishes JSON encoded events on a Redis pub/sub channel.
type RedisSink struct {
	client  RedisPublisher
	channel string
}

// NewRedisSink wraps an existing publisher. An empty channel uses onboarding.milestones.
func NewRedisSink(client RedisPublisher, channel string) *RedisSink {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = defaultRedisChannel
	}
	return &RedisSink{client: client, channel: channel}
}

// NewRedisClient dials addr and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("notify: redis address required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("notify: redis ping: %w", err)
	}
	return client, nil
}

func (s *RedisSink) Name() string { return "redis" }

// Channel reports the pub/sub channel events are published to.
func (s *RedisSink) Channel() string { return s.channel }

func (s *RedisSink) Deliver(ctx context.Context, event Event) error {
	if s == nil || s.client == nil {
		return ErrSinkUnavailable
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, raw).Err()
}
