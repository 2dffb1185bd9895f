// Task 5.3: Usage recorder — event bus consumer.
// Runs as a background goroutine so accounting writes never sit on the
// chat request path.
package usage

import (
	"context"
	"log/slog"

	"github.com/zeekylabs/zeeky/internal/infra/eventbus"
)

// Recorder consumes TopicRequestCompleted events and persists them.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Start subscribes to the bus and consumes until ctx is canceled.
// Insert failures are logged, never propagated — a broken accounting
// store must not affect request handling.
func (r *Recorder) Start(ctx context.Context, bus eventbus.EventBus) {
	ch := bus.Subscribe(TopicRequestCompleted)
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-ch:
			rec, ok := evt.Payload.(Record)
			if !ok {
				r.logger.Warn("usage recorder: unexpected payload type on topic",
					slog.String("topic", evt.Topic),
				)
				continue
			}
			if err := r.store.Insert(ctx, rec); err != nil {
				r.logger.Error("usage recorder: insert failed",
					slog.String("caller_id", rec.CallerID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
