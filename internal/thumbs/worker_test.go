package thumbs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkatsube/picc/internal/config"
	"github.com/kkkatsube/picc/internal/processor"
)

type fakeStreams struct {
	mu     sync.Mutex
	calls  []string
	added  []*redis.XAddArgs
	addErr error
}

func (f *fakeStreams) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "xadd")
	f.added = append(f.added, a)
	return redis.NewStringResult("1-1", f.addErr)
}

func (f *fakeStreams) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "xack")
	return redis.NewIntResult(1, nil)
}

func (f *fakeStreams) XAutoClaim(ctx context.Context, a *redis.XAutoClaimArgs) *redis.XAutoClaimCmd {
	return redis.NewXAutoClaimCmd(ctx)
}

func (f *fakeStreams) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	return redis.NewXStreamSliceCmd(ctx)
}

func (f *fakeStreams) XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newFailingWorker(rc *fakeStreams) *Worker {
	return &Worker{
		rc: rc,
		cfg: config.ThumbWorkerConfig{
			Stream:      "thumbs",
			Group:       "thumbs-workers",
			MaxAttempts: 3,
			MaxLen:      1000,
			BackoffBase: time.Millisecond,
		},
		client: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})},
		thumb: processor.Thumbnailer{MaxEdge: 256},
	}
}

func thumbMessage(t *testing.T, attempt string) redis.XMessage {
	t.Helper()
	raw, err := json.Marshal(ThumbJob{ImageURL: "https://example.com/a.png"})
	require.NoError(t, err)
	return redis.XMessage{ID: "1-1", Values: map[string]any{
		"payload": string(raw),
		"attempt": attempt,
	}}
}

// A failed job must land back on the stream before its message is acked, so
// an exit in between redelivers instead of dropping the retry.
func TestHandleRequeuesFailedJobBeforeAck(t *testing.T) {
	rc := &fakeStreams{}
	w := newFailingWorker(rc)

	err := w.handle(context.Background(), thumbMessage(t, "0"))
	require.NoError(t, err)

	require.Equal(t, []string{"xadd", "xack"}, rc.calls)
	require.Len(t, rc.added, 1)
	assert.Equal(t, "thumbs", rc.added[0].Stream)
	assert.Equal(t, 1, rc.added[0].Values.(map[string]any)["attempt"])
}

func TestHandleDropsAfterMaxAttempts(t *testing.T) {
	rc := &fakeStreams{}
	w := newFailingWorker(rc)

	err := w.handle(context.Background(), thumbMessage(t, "2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dropped after 3 attempts")

	// acked without a requeue: the job is gone for good
	assert.Equal(t, []string{"xack"}, rc.calls)
}

func TestHandleLeavesMessagePendingWhenRequeueFails(t *testing.T) {
	rc := &fakeStreams{addErr: errors.New("redis down")}
	w := newFailingWorker(rc)

	err := w.handle(context.Background(), thumbMessage(t, "0"))
	require.Error(t, err)

	// no ack: the pending entry is the only copy left, autoClaim picks it up
	assert.Equal(t, []string{"xadd"}, rc.calls)
}
