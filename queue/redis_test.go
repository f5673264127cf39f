package queue

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/hanoibench/harness"
)

func setupQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	q, err := NewRedisQueue(Options{URL: fmt.Sprintf("redis://%s", mr.Addr())})
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q, mr
}

func TestNewRedisQueueErrors(t *testing.T) {
	_, err := NewRedisQueue(Options{URL: "invalid://url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")

	_, err = NewRedisQueue(Options{URL: "redis://localhost:99999", ConnectTimeout: 100 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestPushPopIsFIFO(t *testing.T) {
	q, mr := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, harness.Attempt{ID: "first", Disks: 3, Moves: []string{"[1,0,2]"}}))
	require.NoError(t, q.Push(ctx, harness.Attempt{ID: "second", Disks: 4, Strategy: harness.StrategyHybrid}))
	assert.True(t, mr.Exists(DefaultName))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	a, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "first", a.ID)
	assert.Equal(t, []string{"[1,0,2]"}, a.Moves)

	a, err = q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "second", a.ID)
	assert.Equal(t, harness.StrategyHybrid, a.Strategy)
}

func TestPopTimesOutWithNil(t *testing.T) {
	q, _ := setupQueue(t)
	a, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestPopRejectsMalformedPayload(t *testing.T) {
	q, mr := setupQueue(t)
	_, err := mr.Lpush(DefaultName, "not json")
	require.NoError(t, err)
	_, err = q.Pop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal attempt")
}

func TestPublishSubscribe(t *testing.T) {
	q, _ := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, err := q.Subscribe(ctx)
	require.NoError(t, err)

	a := harness.Attempt{ID: "r1", Disks: 1, Moves: []string{"[1,0,2]"}}
	require.NoError(t, q.PublishResult(ctx, &harness.RunRecord{ID: "r1", Attempt: a, Verdict: harness.Check(a), Accepted: true}))

	select {
	case rec := <-records:
		require.NotNil(t, rec)
		assert.Equal(t, "r1", rec.ID)
		assert.True(t, rec.Verdict.Solved)
		assert.True(t, rec.Accepted)
	case <-time.After(5 * time.Second):
		t.Fatal("no record received")
	}

	cancel()
	select {
	case _, ok := <-records:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("subscription did not close")
	}
}

func TestPoolOverRedis(t *testing.T) {
	q, _ := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, err := q.Subscribe(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, harness.Attempt{ID: "pooled", Disks: 2, Moves: []string{"[1,0,1]", "[2,0,2]", "[1,1,2]"}}))

	pool := &harness.Pool{Runner: &harness.Runner{}, Source: q, Sink: q, Concurrency: 2}
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	select {
	case rec := <-records:
		assert.Equal(t, "pooled", rec.ID)
		assert.True(t, rec.Verdict.Solved)
	case <-time.After(10 * time.Second):
		t.Fatal("pool produced no result")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("pool did not stop")
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPoolSkipsOversizedAttempt(t *testing.T) {
	q, _ := setupQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, err := q.Subscribe(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Push(ctx, harness.Attempt{ID: "huge", Disks: 1 << 30, Moves: []string{"[1,0,2]"}}))
	require.NoError(t, q.Push(ctx, harness.Attempt{ID: "small", Disks: 1, Moves: []string{"[1,0,2]"}}))

	var logs lockedBuffer
	pool := &harness.Pool{
		Runner:      &harness.Runner{},
		Source:      q,
		Sink:        q,
		Concurrency: 1,
		Logger:      slog.New(slog.NewTextHandler(&logs, nil)),
	}
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	select {
	case rec := <-records:
		assert.Equal(t, "small", rec.ID)
		assert.True(t, rec.Verdict.Solved)
	case <-time.After(10 * time.Second):
		t.Fatal("pool produced no result")
	}
	assert.Contains(t, logs.String(), "attempt_id=huge")
	assert.Contains(t, logs.String(), "disks must be between 1 and 32")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("pool did not stop")
	}
}
