package dialogue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

type fakeProcessor struct {
	mu          sync.Mutex
	startResp   *Response
	turnResp    *Response
	lastStart   StartRequest
	lastTurn    TurnRequest
	resetCalled []string
	endCalled   []string
}

func (f *fakeProcessor) StartSession(_ context.Context, req StartRequest) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastStart = req
	return f.startResp, nil
}

func (f *fakeProcessor) ProcessTurn(_ context.Context, req TurnRequest) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTurn = req
	return f.turnResp, nil
}

func (f *fakeProcessor) ResetSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalled = append(f.resetCalled, sessionID)
	return nil
}

func (f *fakeProcessor) EndSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endCalled = append(f.endCalled, sessionID)
	return nil
}

func newTestOrchestrator(t *testing.T, processor Service) *Orchestrator {
	t.Helper()
	o := NewOrchestrator(
		processor,
		NewMemoryQueue(8),
		logging.Default(),
		WithWorkerCount(1),
		WithReceiveBatchSize(1),
		WithReceiveWaitSeconds(0),
	)
	t.Cleanup(func() { _ = o.Shutdown(context.Background()) })
	return o
}

func TestOrchestratorStartSession(t *testing.T) {
	processor := &fakeProcessor{
		startResp: &Response{SessionID: "s-1", Outcome: OutcomeRequery, Message: "What are you shopping for?"},
	}
	o := newTestOrchestrator(t, processor)

	resp, err := o.StartSession(context.Background(), StartRequest{Intent: IntentTagShopping})
	require.NoError(t, err)

	assert.Equal(t, "s-1", resp.SessionID)
	assert.Equal(t, OutcomeRequery, resp.Outcome)
	assert.Equal(t, IntentTagShopping, processor.lastStart.Intent)
}

func TestOrchestratorProcessTurn(t *testing.T) {
	processor := &fakeProcessor{
		turnResp: &Response{SessionID: "s-1", Outcome: OutcomeRecommend},
	}
	o := newTestOrchestrator(t, processor)

	resp, err := o.ProcessTurn(context.Background(), TurnRequest{SessionID: "s-1", Message: "a headset"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeRecommend, resp.Outcome)
	assert.Equal(t, "a headset", processor.lastTurn.Message)
}

func TestOrchestratorResetSession(t *testing.T) {
	processor := &fakeProcessor{}
	o := newTestOrchestrator(t, processor)

	require.NoError(t, o.ResetSession(context.Background(), "s-9"))
	assert.Equal(t, []string{"s-9"}, processor.resetCalled)
}

func TestOrchestratorEndSession(t *testing.T) {
	processor := &fakeProcessor{}
	o := newTestOrchestrator(t, processor)

	require.NoError(t, o.EndSession(context.Background(), "s-9"))
	assert.Equal(t, []string{"s-9"}, processor.endCalled)
}

func TestOrchestratorCallerContextBoundsWait(t *testing.T) {
	block := make(chan struct{})
	processor := &blockingProcessor{block: block}
	o := newTestOrchestrator(t, processor)
	// Registered after the orchestrator cleanup so the worker unblocks
	// before Shutdown waits on it.
	t.Cleanup(func() { close(block) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := o.ProcessTurn(ctx, TurnRequest{SessionID: "slow", Message: "hi"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOrchestratorShutdownStopsWorkers(t *testing.T) {
	processor := &fakeProcessor{turnResp: &Response{}}
	o := NewOrchestrator(processor, NewMemoryQueue(1), logging.Default(), WithWorkerCount(2), WithReceiveWaitSeconds(0))

	require.NoError(t, o.Shutdown(context.Background()))
	// Shutdown is idempotent.
	require.NoError(t, o.Shutdown(context.Background()))
}

type blockingProcessor struct {
	block chan struct{}
}

func (b *blockingProcessor) StartSession(context.Context, StartRequest) (*Response, error) {
	<-b.block
	return &Response{}, nil
}

func (b *blockingProcessor) ProcessTurn(context.Context, TurnRequest) (*Response, error) {
	<-b.block
	return &Response{}, nil
}

func (b *blockingProcessor) ResetSession(context.Context, string) error {
	<-b.block
	return nil
}

func (b *blockingProcessor) EndSession(context.Context, string) error {
	<-b.block
	return nil
}

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue(2)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "one"))
	require.NoError(t, q.Send(ctx, "two"))

	msgs, err := q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Body)
	assert.Equal(t, "two", msgs[1].Body)

	require.NoError(t, q.Delete(ctx, msgs[0].ReceiptHandle))
}

func TestMemoryQueueReceiveTimeout(t *testing.T) {
	q := NewMemoryQueue(1)

	start := time.Now()
	msgs, err := q.Receive(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}
