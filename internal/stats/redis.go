package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultRedisChannel receives every window snapshot.
	DefaultRedisChannel = "netsender:eps"

	redisRunPrefix       = "netsender:run:"
	redisSummaryTTL      = 24 * time.Hour
	defaultRedisTimeout  = 2 * time.Second
	defaultRedisDialTime = 5 * time.Second
)

// RedisOptions configures a RedisSink.
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	Channel     string
	DialTimeout time.Duration
}

// RedisSink publishes snapshots on a channel and stores the final summary
// under netsender:run:<run id>.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
	timeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, opts RedisOptions) (*RedisSink, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if opts.Channel == "" {
		opts.Channel = DefaultRedisChannel
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultRedisDialTime
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisSink{
		client:  client,
		channel: opts.Channel,
		timeout: defaultRedisTimeout,
	}, nil
}

// Channel returns the pub/sub channel snapshots are published on.
func (s *RedisSink) Channel() string {
	return s.channel
}

// SummaryKey returns the key the summary of runID is stored under.
func SummaryKey(runID string) string {
	return redisRunPrefix + runID
}

func (s *RedisSink) Window(snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}

func (s *RedisSink) Final(sum Summary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, SummaryKey(sum.RunID), payload, redisSummaryTTL)
		pipe.Publish(ctx, s.channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing summary: %w", err)
	}
	return nil
}

// Close releases the connection pool. It is idempotent.
func (s *RedisSink) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}
