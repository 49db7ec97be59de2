// Package thumbs generates webp thumbnails for favorites images in the
// background, fed by a redis stream so a crash never loses a request.
package thumbs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"

	"github.com/kkkatsube/picc/internal/config"
	"github.com/kkkatsube/picc/internal/processor"
)

// Uploader is the bucket side; satisfied by the r2 storage.
type Uploader interface {
	UploadWithHook(ctx context.Context, key, contentType string, payload []byte, onSuccess func()) error
}

// streams is the slice of the redis client the worker consumes; satisfied
// by redis.UniversalClient.
type streams interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XAutoClaim(ctx context.Context, a *redis.XAutoClaimArgs) *redis.XAutoClaimCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
}

type Worker struct {
	rc       streams
	cfg      config.ThumbWorkerConfig
	uploader Uploader
	client   *http.Client
	thumb    processor.Thumbnailer
}

// Init starts the worker pool and returns the producer handlers enqueue
// through.
func Init(ctx context.Context, rc redis.UniversalClient, cfg config.ThumbWorkerConfig, uploader Uploader) *Producer {
	producer := NewProducer(rc, cfg.Stream, cfg.MaxLen)
	worker := NewWorker(rc, cfg, uploader)

	go func() {
		if err := worker.Start(ctx); err != nil {
			log.Printf("[thumb-worker] stopped: %v", err)
		}
	}()

	return producer
}

func NewWorker(rc redis.UniversalClient, cfg config.ThumbWorkerConfig, uploader Uploader) *Worker {
	return &Worker{
		rc:       rc,
		cfg:      cfg,
		uploader: uploader,
		client:   &http.Client{Timeout: 30 * time.Second},
		thumb:    processor.Thumbnailer{MaxEdge: cfg.MaxEdge},
	}
}

func (w *Worker) EnsureGroup(ctx context.Context) error {
	// Without MkStream, redis errors out when the group is created before
	// any message exists in the stream.
	err := w.rc.XGroupCreateMkStream(ctx, w.cfg.Stream, w.cfg.Group, "0").Err()
	// BUSYGROUP just means the group already exists
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (w *Worker) Start(ctx context.Context) error {
	if err := w.EnsureGroup(ctx); err != nil {
		return fmt.Errorf("failed to ensure redis group: %w", err)
	}

	log.Printf("[thumb-worker] starting consumer group=%s stream=%s workers=%d",
		w.cfg.Group, w.cfg.Stream, w.cfg.Workers,
	)

	// Adopt orphaned pending messages left behind by a crashed consumer.
	w.autoClaim(ctx)

	errCh := make(chan error, w.cfg.Workers)
	for i := 0; i < w.cfg.Workers; i++ {
		id := i
		go func() {
			err := w.loop(ctx)
			if err != nil {
				log.Printf("[thumb-worker] worker #%d stopped with error: %v", id, err)
			}
			errCh <- err
		}()
	}

	select {
	case <-ctx.Done():
		log.Printf("[thumb-worker] context canceled, stopping all workers")
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("worker loop exited with error: %w", err)
		}
		return nil
	}
}

// autoClaim takes ownership of messages another consumer received but never
// acknowledged, so a kill before XACK only delays a thumbnail instead of
// losing it.
func (w *Worker) autoClaim(ctx context.Context) {
	next := "0-0"

	// Reclaim only messages idle well past the block timeout; anything
	// younger may still be in flight on a slow worker.
	minIdle := 30 * time.Second
	if w.cfg.BlockTimeout > 0 {
		if t := w.cfg.BlockTimeout * 6; t > minIdle {
			minIdle = t
		}
	}

	for {
		msgs, start, err := w.rc.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   w.cfg.Stream,
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			MinIdle:  minIdle,
			Start:    next,
			Count:    100,
		}).Result()
		if err != nil || len(msgs) == 0 {
			return
		}
		next = start
	}
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		// XREADGROUP marks delivered messages pending for this consumer;
		// they stay on the group's PEL until handle acks them.
		streams, err := w.rc.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.cfg.Group,
			Consumer: w.cfg.Consumer,
			Streams:  []string{w.cfg.Stream, ">"},
			Count:    1,
			Block:    w.cfg.BlockTimeout,
		}).Result()
		if err != nil && err != redis.Nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		for _, s := range streams {
			for _, m := range s.Messages {
				if err := w.handle(ctx, m); err != nil {
					sentry.CaptureException(err)
				}
			}
		}
	}
}

// handle acks only after the job succeeded, was requeued, or is being
// dropped for good. A crash anywhere in between leaves the message pending
// on the group's PEL, where autoClaim adopts it on restart.
func (w *Worker) handle(ctx context.Context, m redis.XMessage) error {
	raw, ok := m.Values["payload"].(string)
	if !ok {
		w.ack(ctx, m.ID)
		return fmt.Errorf("thumb message %s has no payload", m.ID)
	}
	var job ThumbJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		w.ack(ctx, m.ID)
		return fmt.Errorf("thumb message %s: %w", m.ID, err)
	}
	attempt := toInt(m.Values["attempt"])

	err := w.process(ctx, job)
	if err == nil {
		w.ack(ctx, m.ID)
		return nil
	}
	if attempt+1 >= w.cfg.MaxAttempts {
		w.ack(ctx, m.ID)
		return fmt.Errorf("thumb for %s dropped after %d attempts: %w", job.ImageURL, attempt+1, err)
	}

	// exponential backoff, then requeue before acking so the retry cannot
	// be lost between the two
	backoff := w.cfg.BackoffBase << attempt
	timer := time.NewTimer(backoff)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		return nil
	}

	addErr := w.rc.XAdd(ctx, &redis.XAddArgs{
		Stream: w.cfg.Stream,
		MaxLen: w.cfg.MaxLen,
		Values: map[string]any{
			"payload": raw,
			"attempt": attempt + 1,
		},
	}).Err()
	if addErr != nil {
		// leave the message pending for redelivery instead
		return fmt.Errorf("requeue thumb for %s: %w", job.ImageURL, addErr)
	}

	w.ack(ctx, m.ID)
	return nil
}

func (w *Worker) ack(ctx context.Context, id string) {
	_ = w.rc.XAck(ctx, w.cfg.Stream, w.cfg.Group, id).Err()
}

func (w *Worker) process(ctx context.Context, job ThumbJob) error {
	orig, err := w.download(ctx, job.ImageURL)
	if err != nil {
		return fmt.Errorf("download %s: %w", job.ImageURL, err)
	}

	webpBytes, err := w.thumb.Thumbnail(bytes.NewReader(orig))
	if err != nil {
		return fmt.Errorf("thumbnail %s: %w", job.ImageURL, err)
	}

	return w.uploader.UploadWithHook(ctx, job.ObjectKey(), "image/webp", webpBytes, nil)
}

func (w *Worker) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case string:
		var x int
		fmt.Sscanf(t, "%d", &x)
		return x
	default:
		return 0
	}
}
