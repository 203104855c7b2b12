package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/voicedoc-backend/internal/observe"
)

type jobSource interface {
	Next(ctx context.Context) (*Job, error)
	Done(recordingID uuid.UUID)
}

type jobProcessor interface {
	Process(ctx context.Context, job *Job) error
}

// DefaultWorkers is the pool size when none is configured.
const DefaultWorkers = 4

// Pool runs a fixed number of workers pulling from a job source.
type Pool struct {
	log     *slog.Logger
	source  jobSource
	proc    jobProcessor
	alarm   alarm
	metrics *observe.Metrics
	workers int
}

// NewPool creates a pool. alarm may be nil.
func NewPool(log *slog.Logger, source jobSource, proc jobProcessor, alarm alarm, metrics *observe.Metrics, workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if metrics == nil {
		metrics = observe.Noop()
	}
	return &Pool{
		log:     log.With("service", "worker_pool"),
		source:  source,
		proc:    proc,
		alarm:   alarm,
		metrics: metrics,
		workers: workers,
	}
}

// Run starts the workers and blocks until ctx is done. Workers stop pulling
// new jobs on cancellation but finish the job they hold, so Run returns only
// after in-flight jobs have settled.
func (p *Pool) Run(ctx context.Context) error {
	p.log.InfoContext(ctx, "worker pool started", slog.Int("workers", p.workers))

	var g errgroup.Group
	for i := range p.workers {
		g.Go(func() error {
			p.work(ctx, i)
			return nil
		})
	}
	err := g.Wait()

	p.log.InfoContext(context.WithoutCancel(ctx), "worker pool stopped")
	return err
}

func (p *Pool) work(ctx context.Context, worker int) {
	for {
		job, err := p.source.Next(ctx)
		if err != nil {
			return
		}
		p.handle(context.WithoutCancel(ctx), worker, job)
	}
}

func (p *Pool) handle(ctx context.Context, worker int, job *Job) {
	p.metrics.ActiveJobs.Add(ctx, 1)
	defer p.metrics.ActiveJobs.Add(ctx, -1)
	defer p.source.Done(job.RecordingID)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("pipeline worker panic: %v", r)
			p.log.ErrorContext(ctx, "worker panic",
				slog.Int("worker", worker),
				slog.String("recording_id", job.RecordingID.String()),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
			if p.alarm != nil {
				p.alarm.Raise(ctx, err, map[string]string{
					"component":    "pipeline",
					"recording_id": job.RecordingID.String(),
				})
			}
		}
	}()

	if err := p.proc.Process(ctx, job); err != nil {
		p.log.WarnContext(ctx, "job failed",
			slog.Int("worker", worker),
			slog.String("recording_id", job.RecordingID.String()),
			slog.Int("attempt", job.Attempt),
			slog.String("error", err.Error()),
		)
	}
}
