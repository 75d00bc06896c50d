package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Auth event actions written to the audit trail.
const (
	ActionLoginSuccess = "LOGIN_SUCCESS"
	ActionLoginFailure = "LOGIN_FAILURE"
	ActionLoginLocked  = "LOGIN_LOCKED"
	ActionLogout       = "LOGOUT"
	ActionUnlock       = "UNLOCK"
)

// Event is a single authentication audit entry.
type Event struct {
	Username string
	Action   string
	IP       string
	TraceID  string
	Detail   string
	At       time.Time
}

// Sink persists audit events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// RecorderConfig configures the background writer pool.
type RecorderConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Recorder writes audit events to a sink off the request path. Events are
// buffered in memory; a full buffer drops the event rather than blocking
// the login flow.
type Recorder struct {
	sink Sink

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	events  chan queued
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

type queued struct {
	event   Event
	attempt int
}

// NewRecorder builds a recorder over the given sink.
func NewRecorder(sink Sink, cfg RecorderConfig) *Recorder {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Recorder{
		sink:       sink,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		events:     make(chan queued, cfg.BufferSize),
	}
}

// Start begins background writing. Safe to call once.
func (r *Recorder) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	r.started = true
	r.logger.Sugar().Infow("audit recorder started", "workers", r.workers)
}

// Stop cancels workers and waits for them to exit. Buffered events that
// have not been written yet are discarded.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.started = false
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Sugar().Infow("audit recorder stopped")
}

// Record queues an event for writing. Never blocks; returns an error when
// the recorder is stopped or the buffer is full.
func (r *Recorder) Record(event Event) error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()

	if !started {
		return fmt.Errorf("audit recorder not started")
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	select {
	case r.events <- queued{event: event}:
		return nil
	default:
		r.logger.Sugar().Warnw("audit buffer full, event dropped",
			"username", event.Username, "action", event.Action)
		return fmt.Errorf("audit buffer full")
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case q := <-r.events:
			if err := r.sink.Write(r.ctx, q.event); err != nil {
				r.handleFailure(q, err)
			}
		}
	}
}

func (r *Recorder) handleFailure(q queued, err error) {
	q.attempt++
	if q.attempt > r.maxRetries {
		r.logger.Sugar().Errorw("audit event dropped after retries",
			"username", q.event.Username, "action", q.event.Action, "error", err)
		return
	}
	r.logger.Sugar().Warnw("audit write failed, retrying",
		"username", q.event.Username, "action", q.event.Action, "attempt", q.attempt, "error", err)

	go func(q queued) {
		timer := time.NewTimer(r.retryDelay)
		defer timer.Stop()
		select {
		case <-r.ctx.Done():
			return
		case <-timer.C:
			select {
			case r.events <- q:
			default:
				r.logger.Sugar().Errorw("failed to requeue audit event",
					"username", q.event.Username, "action", q.event.Action)
			}
		}
	}(q)
}
