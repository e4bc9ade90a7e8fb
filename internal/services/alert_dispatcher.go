package services

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

// AlertEvaluator inspects an account snapshot and delivers an alert if needed.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, account models.Account) bool
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, account models.Account)

// Notify calls f(ctx, account).
func (f NotifierFunc) Notify(ctx context.Context, account models.Account) {
	f(ctx, account)
}

type alertJob struct {
	ctx     context.Context
	account models.Account
}

// AlertDispatcher is a Notifier that evaluates snapshots on a bounded queue
// drained by a pool of workers, so ledger operations never wait on delivery.
type AlertDispatcher struct {
	evaluator AlertEvaluator
	limiter   *rate.Limiter
	workers   int
	jobs      chan alertJob

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAlertDispatcher creates a dispatcher with the given queue size, worker
// count and delivery rate per second. A zero rate disables pacing.
func NewAlertDispatcher(evaluator AlertEvaluator, queueSize, workers int, perSecond float64) *AlertDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = max(1, int(perSecond))
	}

	return &AlertDispatcher{
		evaluator: evaluator,
		limiter:   rate.NewLimiter(limit, burst),
		workers:   workers,
		jobs:      make(chan alertJob, queueSize),
	}
}

// Start launches the workers. They exit when Stop is called or ctx is done.
func (d *AlertDispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx)
	}
	logger.Log.Infow("alert dispatcher started", "workers", d.workers, "queue", cap(d.jobs))
}

func (d *AlertDispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-d.jobs:
			if !ok {
				return
			}
			if err := d.limiter.Wait(ctx); err != nil {
				logger.Log.Warnw("alert limiter wait interrupted", "account_id", job.account.ID, "error", err)
				return
			}
			d.evaluator.Evaluate(job.ctx, job.account)
		}
	}
}

// Notify enqueues the snapshot without blocking. The alert is dropped when
// the queue is full or the dispatcher is stopped.
func (d *AlertDispatcher) Notify(ctx context.Context, account models.Account) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		logger.Log.Warnw("alert dispatcher stopped, alert dropped", "account_id", account.ID)
		return
	}

	select {
	case d.jobs <- alertJob{ctx: context.WithoutCancel(ctx), account: account}:
	default:
		logger.Log.Warnw("alert queue full, alert dropped", "account_id", account.ID)
	}
}

// Stop closes the queue and waits for the workers to drain it.
func (d *AlertDispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	logger.Log.Info("alert dispatcher stopped")
}
