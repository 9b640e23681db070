package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "venue/internal/app/outbox"
	"venue/internal/domain/shared/events"
)

const maxBatch = 100

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// PublishRecorder observes delivery outcomes.
type PublishRecorder interface {
	OutboxSent()
	OutboxFailed()
}

// Worker relays outbox records to the broker as CloudEvents.
type Worker struct {
	Source      appoutbox.Source
	Producer    Producer
	Metrics     PublishRecorder
	Logger      *slog.Logger
	Interval    time.Duration
	TopicPrefix string
	EventSource string
	ID          string
	Backoff     []time.Duration
	Now         func() time.Time
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// Run polls until ctx is done. Store errors are logged and retried on the next tick.
func (w *Worker) Run(ctx context.Context) error {
	if w.Source == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Drain(ctx); err != nil && ctx.Err() == nil {
				w.logger().ErrorContext(ctx, "outbox relay failed", "worker", w.ID, "error", err)
			}
		}
	}
}

// Drain publishes due records until none are left or a batch is done.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	processed := 0
	for processed < maxBatch {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		ok, err := w.processOnce(ctx)
		if err != nil || !ok {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	rec, err := w.Source.Claim(ctx, w.ID)
	if err != nil || rec == nil {
		return false, err
	}
	// The outcome is recorded even when ctx was cancelled mid-publish.
	markCtx := context.WithoutCancel(ctx)
	topic := w.topicFor(rec.Name)
	payload, headers, err := w.formatPayload(rec)
	if err == nil {
		err = w.Producer.Publish(ctx, topic, rec.Aggregate, payload, headers)
	}
	if err != nil {
		if w.Metrics != nil {
			w.Metrics.OutboxFailed()
		}
		next := w.nextRetry(rec.Attempts)
		w.logger().WarnContext(ctx, "outbox publish failed",
			"event_id", rec.ID, "event", rec.Name, "attempts", rec.Attempts+1, "next_attempt_at", next, "error", err)
		return true, w.Source.MarkFailed(markCtx, rec.ID, next, err.Error())
	}
	if w.Metrics != nil {
		w.Metrics.OutboxSent()
	}
	w.logger().DebugContext(ctx, "outbox event published", "event_id", rec.ID, "topic", topic)
	return true, w.Source.MarkSent(markCtx, rec.ID)
}

func (w *Worker) formatPayload(rec *appoutbox.Claimed) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            rec.Name + ".v1",
		"source":          w.source(),
		"subject":         rec.Aggregate,
		"time":            rec.OccurredAt.UTC(),
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := rec.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func (w *Worker) topicFor(name string) string {
	return w.TopicPrefix + events.Stream(name) + ".events.v1"
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return w.now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return w.now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return w.now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.EventSource != "" {
		return w.EventSource
	}
	return "app://venue"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// LogProducer writes events to the log instead of a broker.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "event published", "topic", topic, "key", key, "payload", string(payload))
	return nil
}
