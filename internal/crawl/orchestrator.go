package crawl

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
	"github.com/hyperseek/hyperseek/internal/store"
)

// minBodyLen is the shortest body worth indexing; fragments below it
// are counted as found but not ingested.
const minBodyLen = 50

// Ingestor receives crawled documents. A re-crawled id replaces the
// previous document.
type Ingestor interface {
	Reindex(ctx context.Context, doc *store.Document) error
}

// Options configures an Orchestrator.
type Options struct {
	// MaxConcurrentJobs bounds simultaneously running jobs; further
	// submissions stay pending until a slot frees.
	MaxConcurrentJobs int
	// RequestDelay is the fixed inter-request delay within one job.
	RequestDelay time.Duration
	// UserAgent is sent on outbound requests.
	UserAgent string
}

// Orchestrator runs crawl jobs through a bounded worker pool. Each
// job moves pending -> running -> completed or failed; terminal states
// are never left.
type Orchestrator struct {
	jobs     store.JobStore
	ingest   Ingestor
	adapters map[store.Source]Adapter
	pool     *ants.Pool
	opts     Options
	logger   *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	closed  bool

	wg sync.WaitGroup
}

// NewOrchestrator creates an orchestrator over the given adapters.
func NewOrchestrator(jobs store.JobStore, ingest Ingestor, adapters []Adapter,
	opts Options, logger *slog.Logger) (*Orchestrator, error) {
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = 4
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "HyperSeekBot/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(opts.MaxConcurrentJobs)
	if err != nil {
		return nil, err
	}

	bySource := make(map[store.Source]Adapter, len(adapters))
	for _, a := range adapters {
		bySource[a.Source()] = a
	}

	return &Orchestrator{
		jobs:     jobs,
		ingest:   ingest,
		adapters: bySource,
		pool:     pool,
		opts:     opts,
		logger:   logger,
		cancels:  make(map[string]context.CancelFunc),
	}, nil
}

// Submit validates the config, records a pending job, and schedules it
// on the worker pool. It returns the job id immediately; execution is
// asynchronous. A malformed config is rejected here and no job is
// created.
func (o *Orchestrator) Submit(ctx context.Context, source store.Source, cfg store.JobConfig) (string, error) {
	adapter, ok := o.adapters[source]
	if !ok {
		return "", seekerrors.InvalidConfig("unknown crawl source: " + string(source))
	}
	if err := adapter.Validate(cfg); err != nil {
		return "", err
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return "", seekerrors.New(seekerrors.ErrCodeInternal, "orchestrator is shut down", nil)
	}
	o.mu.Unlock()

	job := &store.CrawlJob{
		ID:        uuid.NewString(),
		Source:    source,
		Config:    cfg,
		Status:    store.JobPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.jobs.CreateJob(ctx, job); err != nil {
		return "", err
	}

	// Pool submission blocks while all workers are busy, which is the
	// backpressure keeping excess jobs pending; park it off the
	// caller's goroutine. The wait group tracks the job run itself, so
	// Wait and Close hold until every claimed job is terminal.
	o.wg.Add(1)
	go func() {
		err := o.pool.Submit(func() {
			defer o.wg.Done()
			o.run(job.ID, adapter)
		})
		if err != nil {
			o.failJob(job.ID, seekerrors.New(seekerrors.ErrCodeInternal, "worker pool rejected job", err))
			o.wg.Done()
		}
	}()

	return job.ID, nil
}

// Status returns the current job record.
func (o *Orchestrator) Status(ctx context.Context, jobID string) (*store.CrawlJob, error) {
	return o.jobs.GetJob(ctx, jobID)
}

// List returns recent jobs, newest first.
func (o *Orchestrator) List(ctx context.Context, limit, offset int) ([]*store.CrawlJob, error) {
	return o.jobs.ListJobs(ctx, limit, offset)
}

// Cancel stops a running job. The job finishes as failed with a
// cancellation error; cancelling an unknown or already-terminal job
// returns not-found.
func (o *Orchestrator) Cancel(jobID string) error {
	o.mu.Lock()
	cancel, ok := o.cancels[jobID]
	o.mu.Unlock()

	if !ok {
		return seekerrors.NotFound("job", jobID)
	}
	cancel()
	return nil
}

// Wait blocks until all submitted jobs have reached a terminal state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close waits for in-flight jobs and releases the pool.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.wg.Wait()
	o.pool.Release()
}

// run executes one job end to end. It is the only mutator of the job
// record after creation.
func (o *Orchestrator) run(jobID string, adapter Adapter) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	claimed, job := o.claim(ctx, jobID, cancel)
	if !claimed {
		return
	}
	defer func() {
		o.mu.Lock()
		delete(o.cancels, jobID)
		o.mu.Unlock()
	}()

	o.logger.Info("crawl job started", "job_id", jobID, "source", job.Source)

	client := NewClient(o.opts.RequestDelay, o.opts.UserAgent)
	fetchErr := adapter.Fetch(ctx, client, job.Config, func(doc *store.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		job.DocumentsFound++
		if len(strings.TrimSpace(doc.Body)) < minBodyLen {
			o.logger.Debug("skipping short document", "job_id", jobID, "doc_id", doc.ID)
			return nil
		}

		if err := o.ingest.Reindex(ctx, doc); err != nil {
			return err
		}
		job.DocumentsIngested++

		// Persist progress as documents land so a failure partway
		// still shows what was ingested.
		if err := o.jobs.UpdateJob(ctx, job); err != nil {
			o.logger.Warn("job progress update failed", "job_id", jobID, "error", err)
		}
		return nil
	})

	now := time.Now().UTC()
	job.CompletedAt = &now
	switch {
	case fetchErr == nil:
		job.Status = store.JobCompleted
		o.logger.Info("crawl job completed", "job_id", jobID,
			"found", job.DocumentsFound, "ingested", job.DocumentsIngested)
	case errors.Is(fetchErr, context.Canceled):
		job.Status = store.JobFailed
		job.Error = seekerrors.JobCancelled(fetchErr).Error()
		o.logger.Info("crawl job cancelled", "job_id", jobID, "ingested", job.DocumentsIngested)
	default:
		job.Status = store.JobFailed
		job.Error = fetchErr.Error()
		o.logger.Error("crawl job failed", "job_id", jobID, "error", fetchErr)
	}

	if err := o.jobs.UpdateJob(context.Background(), job); err != nil {
		o.logger.Error("job final update failed", "job_id", jobID, "error", err)
	}
}

// claim moves the job from pending to running exactly once and
// registers its cancel function.
func (o *Orchestrator) claim(ctx context.Context, jobID string, cancel context.CancelFunc) (bool, *store.CrawlJob) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, err := o.jobs.GetJob(ctx, jobID)
	if err != nil {
		o.logger.Error("cannot load job for claim", "job_id", jobID, "error", err)
		return false, nil
	}
	if job.Status != store.JobPending {
		return false, nil
	}

	now := time.Now().UTC()
	job.Status = store.JobRunning
	job.StartedAt = &now
	if err := o.jobs.UpdateJob(ctx, job); err != nil {
		o.logger.Error("cannot mark job running", "job_id", jobID, "error", err)
		return false, nil
	}

	o.cancels[jobID] = cancel
	return true, job
}

// failJob marks a job failed outside the normal run path.
func (o *Orchestrator) failJob(jobID string, cause error) {
	ctx := context.Background()
	job, err := o.jobs.GetJob(ctx, jobID)
	if err != nil {
		return
	}
	now := time.Now().UTC()
	job.Status = store.JobFailed
	job.Error = cause.Error()
	job.CompletedAt = &now
	_ = o.jobs.UpdateJob(ctx, job)
}
