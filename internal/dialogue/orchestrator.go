package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopguide/shopguide-ai-platform/pkg/logging"
)

// Dispatcher exposes the queue-backed entrypoints used by HTTP handlers.
type Dispatcher interface {
	StartSession(ctx context.Context, req StartRequest) (*Response, error)
	ProcessTurn(ctx context.Context, req TurnRequest) (*Response, error)
	ResetSession(ctx context.Context, sessionID string) error
	EndSession(ctx context.Context, sessionID string) error
	Shutdown(ctx context.Context) error
}

// ErrOrchestratorClosed indicates the dispatcher is no longer accepting work.
var ErrOrchestratorClosed = errors.New("dialogue: orchestrator closed")

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type jobType string

const (
	jobTypeStart jobType = "start"
	jobTypeTurn  jobType = "turn"
	jobTypeReset jobType = "reset"
	jobTypeEnd   jobType = "end"
)

type queuePayload struct {
	ID        string       `json:"id"`
	Kind      jobType      `json:"kind"`
	Start     StartRequest `json:"start,omitempty"`
	Turn      TurnRequest  `json:"turn,omitempty"`
	SessionID string       `json:"session_id,omitempty"`
}

type dispatchResult struct {
	response *Response
	err      error
}

const (
	defaultWorkers          = 2
	defaultReceiveWait      = 2  // seconds
	defaultReceiveMax       = 5  // messages
	maxReceiveWaitSeconds   = 20 // SQS limit
	maxReceiveBatchMessages = 10

	queueDeleteTimeout = 5 * time.Second
	maxPollBackoff     = 5 * time.Second
)

type orchestratorConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// OrchestratorOption configures the dispatcher.
type OrchestratorOption func(*orchestratorConfig)

// WithWorkerCount overrides the number of queue polling goroutines.
func WithWorkerCount(workers int) OrchestratorOption {
	return func(cfg *orchestratorConfig) {
		if workers > 0 {
			cfg.workers = workers
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait time for each receive.
func WithReceiveWaitSeconds(seconds int) OrchestratorOption {
	return func(cfg *orchestratorConfig) {
		if seconds >= 0 {
			cfg.receiveWaitSecs = clampInt(seconds, 0, maxReceiveWaitSeconds)
		}
	}
}

// WithReceiveBatchSize overrides how many messages each poll may return.
func WithReceiveBatchSize(size int) OrchestratorOption {
	return func(cfg *orchestratorConfig) {
		if size > 0 {
			cfg.receiveBatchSize = clampInt(size, 1, maxReceiveBatchMessages)
		}
	}
}

// Orchestrator routes dialogue work through a queue before invoking the
// downstream engine. The same type serves two deployments: the API
// binary enqueues and waits, the worker binary only consumes. A caller
// is matched to its result through the pending map; a consumed job with
// no waiting caller (another process enqueued it) is simply applied.
type Orchestrator struct {
	processor Service
	queue     queueClient
	logger    *logging.Logger

	cfg orchestratorConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	pending sync.Map // job ID -> chan dispatchResult
}

var (
	_ Service    = (*Orchestrator)(nil)
	_ Dispatcher = (*Orchestrator)(nil)
)

// NewOrchestrator wires a queue-backed dispatcher around the supplied
// service and starts its polling workers.
func NewOrchestrator(processor Service, queue queueClient, logger *logging.Logger, opts ...OrchestratorOption) *Orchestrator {
	if processor == nil {
		panic("dialogue: processor cannot be nil")
	}
	if queue == nil {
		panic("dialogue: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := orchestratorConfig{
		workers:          defaultWorkers,
		receiveWaitSecs:  defaultReceiveWait,
		receiveBatchSize: defaultReceiveMax,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		processor: processor,
		queue:     queue,
		logger:    logger,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < cfg.workers; i++ {
		o.wg.Add(1)
		go o.poll(i + 1)
	}

	return o
}

// StartSession enqueues the request and blocks until a worker applies it.
func (o *Orchestrator) StartSession(ctx context.Context, req StartRequest) (*Response, error) {
	return o.enqueue(ctx, queuePayload{Kind: jobTypeStart, Start: req})
}

// ProcessTurn enqueues a dialogue turn and returns the processed output.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req TurnRequest) (*Response, error) {
	return o.enqueue(ctx, queuePayload{Kind: jobTypeTurn, Turn: req})
}

// ResetSession enqueues a session reset and waits for it to apply.
func (o *Orchestrator) ResetSession(ctx context.Context, sessionID string) error {
	_, err := o.enqueue(ctx, queuePayload{Kind: jobTypeReset, SessionID: sessionID})
	return err
}

// EndSession enqueues a session teardown and waits for it to apply.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) error {
	_, err := o.enqueue(ctx, queuePayload{Kind: jobTypeEnd, SessionID: sessionID})
	return err
}

// Shutdown stops the workers and fails any callers still waiting.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.cancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	o.pending.Range(func(key, value any) bool {
		if ch, ok := value.(chan dispatchResult); ok {
			select {
			case ch <- dispatchResult{err: ErrOrchestratorClosed}:
			default:
			}
		}
		o.pending.Delete(key)
		return true
	})

	return nil
}

func (o *Orchestrator) enqueue(ctx context.Context, payload queuePayload) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	payload.ID = uuid.NewString()
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("dialogue: failed to encode payload: %w", err)
	}

	resultCh := make(chan dispatchResult, 1)
	o.pending.Store(payload.ID, resultCh)
	defer o.pending.Delete(payload.ID)

	if err := o.queue.Send(ctx, string(body)); err != nil {
		return nil, fmt.Errorf("dialogue: failed to enqueue job: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		return res.response, res.err
	}
}

func (o *Orchestrator) poll(workerID int) {
	defer o.wg.Done()
	log := o.logger.With("worker_id", workerID)
	log.Debug("dialogue orchestrator worker started")

	backoff := time.Second

	for {
		select {
		case <-o.ctx.Done():
			log.Debug("dialogue orchestrator worker stopping")
			return
		default:
		}

		batch, err := o.queue.Receive(o.ctx, o.cfg.receiveBatchSize, o.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("failed to receive dialogue jobs", "error", err)
			time.Sleep(backoff)
			if backoff < maxPollBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range batch {
			o.handleMessage(msg)
		}
	}
}

func (o *Orchestrator) handleMessage(msg queueMessage) {
	defer o.deleteMessage(msg.ReceiptHandle)

	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		o.logger.Error("failed to decode dialogue job", "error", err, "message_id", msg.ID)
		return
	}

	var (
		resp *Response
		err  error
	)
	switch payload.Kind {
	case jobTypeStart:
		resp, err = o.processor.StartSession(o.ctx, payload.Start)
	case jobTypeTurn:
		resp, err = o.processor.ProcessTurn(o.ctx, payload.Turn)
	case jobTypeReset:
		err = o.processor.ResetSession(o.ctx, payload.SessionID)
	case jobTypeEnd:
		err = o.processor.EndSession(o.ctx, payload.SessionID)
	default:
		err = fmt.Errorf("dialogue: unknown job type %q", payload.Kind)
	}

	o.deliver(payload.ID, resp, err)
}

func (o *Orchestrator) deleteMessage(receiptHandle string) {
	ctx, cancel := context.WithTimeout(context.Background(), queueDeleteTimeout)
	defer cancel()
	if err := o.queue.Delete(ctx, receiptHandle); err != nil {
		o.logger.Error("failed to delete dialogue job", "error", err)
	}
}

func (o *Orchestrator) deliver(jobID string, resp *Response, err error) {
	value, ok := o.pending.Load(jobID)
	if !ok {
		// Enqueued by another process; the state change is already applied.
		o.logger.Debug("no waiting caller for dialogue job", "job_id", jobID)
		return
	}

	ch, ok := value.(chan dispatchResult)
	if !ok {
		o.logger.Error("dialogue orchestrator pending map corrupted", "job_id", jobID)
		o.pending.Delete(jobID)
		return
	}

	select {
	case ch <- dispatchResult{response: resp, err: err}:
	default:
	}
}
