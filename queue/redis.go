// Package queue carries attempts to checking workers and their run records
// back over Redis.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lexcodex/hanoibench/harness"
)

// Defaults for Options.
const (
	DefaultURL            = "redis://localhost:6379"
	DefaultName           = "hanoibench:attempts"
	DefaultResultsChannel = "hanoibench:results"
)

// Options configures the Redis connection and key names.
type Options struct {
	URL            string
	Name           string
	ResultsChannel string
	// PopTimeout bounds each BRPOP; Redis rounds it up to whole seconds.
	PopTimeout     time.Duration
	ConnectTimeout time.Duration
	Logger         *slog.Logger
}

// RedisQueue is a list-backed attempt queue with a pub/sub results channel.
// It satisfies harness.Source and harness.Sink.
type RedisQueue struct {
	client     *redis.Client
	name       string
	results    string
	popTimeout time.Duration
	logger     *slog.Logger
}

var (
	_ harness.Source = (*RedisQueue)(nil)
	_ harness.Sink   = (*RedisQueue)(nil)
)

// NewRedisQueue connects and pings the server.
func NewRedisQueue(opts Options) (*RedisQueue, error) {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.ResultsChannel == "" {
		opts.ResultsChannel = DefaultResultsChannel
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = time.Second
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{
		client:     client,
		name:       opts.Name,
		results:    opts.ResultsChannel,
		popTimeout: opts.PopTimeout,
		logger:     opts.Logger,
	}, nil
}

// Push appends an attempt to the queue.
func (q *RedisQueue) Push(ctx context.Context, a harness.Attempt) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}
	if err := q.client.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to push to queue %s: %w", q.name, err)
	}
	return nil
}

// Pop takes the oldest attempt. It returns nil, nil when nothing arrived
// within the pop timeout.
func (q *RedisQueue) Pop(ctx context.Context) (*harness.Attempt, error) {
	result, err := q.client.BRPop(ctx, q.popTimeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue %s: %w", q.name, err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP result length: %d", len(result))
	}
	var a harness.Attempt
	if err := json.Unmarshal([]byte(result[1]), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attempt: %w", err)
	}
	return &a, nil
}

// Len reports how many attempts are waiting.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}

// PublishResult announces a finished run on the results channel.
func (q *RedisQueue) PublishResult(ctx context.Context, record *harness.RunRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	if err := q.client.Publish(ctx, q.results, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", q.results, err)
	}
	return nil
}

// Subscribe streams run records from the results channel until ctx ends.
func (q *RedisQueue) Subscribe(ctx context.Context) (<-chan *harness.RunRecord, error) {
	pubsub := q.client.Subscribe(ctx, q.results)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", q.results, err)
	}

	out := make(chan *harness.RunRecord)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var record harness.RunRecord
				if err := json.Unmarshal([]byte(msg.Payload), &record); err != nil {
					q.logger.Warn("dropping malformed run record", "channel", q.results, "error", err)
					continue
				}
				select {
				case out <- &record:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the Redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
