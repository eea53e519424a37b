package dialogue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const defaultMemoryQueueDepth = 128

// MemoryQueue is a channel-backed queueClient for local runs and tests.
// Delivery is at-most-once: Delete is a no-op because a received message
// is already gone from the channel.
type MemoryQueue struct {
	ch chan queueMessage
}

// NewMemoryQueue creates a MemoryQueue holding at most depth messages.
func NewMemoryQueue(depth int) *MemoryQueue {
	if depth <= 0 {
		depth = defaultMemoryQueueDepth
	}
	return &MemoryQueue{ch: make(chan queueMessage, depth)}
}

// Send enqueues a payload, blocking until there is room or ctx is done.
func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case q.ch <- queueMessage{
		ID:            uuid.NewString(),
		Body:          body,
		ReceiptHandle: uuid.NewString(),
	}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive waits up to waitSeconds for a first message, then drains
// whatever else is immediately available up to maxMessages. A nil batch
// with a nil error means the wait timed out.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if maxMessages <= 0 {
		maxMessages = 1
	}

	var deadline <-chan time.Time
	if waitSeconds > 0 {
		timer := time.NewTimer(time.Duration(waitSeconds) * time.Second)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-deadline:
		return nil, nil
	case first := <-q.ch:
		batch := make([]queueMessage, 1, maxMessages)
		batch[0] = first
		for len(batch) < maxMessages {
			select {
			case msg := <-q.ch:
				batch = append(batch, msg)
			default:
				return batch, nil
			}
		}
		return batch, nil
	}
}

// Delete is a no-op for the in-memory queue.
func (q *MemoryQueue) Delete(context.Context, string) error {
	return nil
}
