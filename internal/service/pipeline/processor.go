package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/transcribe"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/notify"
	"github.com/heartmarshall/voicedoc-backend/internal/observe"
	"github.com/heartmarshall/voicedoc-backend/internal/retry"
	"github.com/heartmarshall/voicedoc-backend/internal/service/analysis"
	"github.com/heartmarshall/voicedoc-backend/internal/service/audit"
)

var errEmptyTranscript = errors.New("empty transcript")

// ProcessorConfig tunes the external calls of one job.
type ProcessorConfig struct {
	TranscribeTimeout time.Duration
	Policy            retry.Policy
}

// Processor runs one job: claim, transcribe, analyze, commit.
type Processor struct {
	log         *slog.Logger
	recordings  recordingRepo
	reviews     reviewRepo
	catlogs     catlogRepo
	tx          txManager
	audit       auditLog
	audio       audioStore
	transcriber transcriber
	analyzer    analyzer
	notifier    notify.Notifier
	metrics     *observe.Metrics
	cfg         ProcessorConfig
	now         func() time.Time
}

// NewProcessor creates a processor. notifier and metrics may be nil.
func NewProcessor(
	log *slog.Logger,
	recordings recordingRepo,
	reviews reviewRepo,
	catlogs catlogRepo,
	tx txManager,
	auditLog auditLog,
	audio audioStore,
	transcriber transcriber,
	analyzer analyzer,
	notifier notify.Notifier,
	metrics *observe.Metrics,
	cfg ProcessorConfig,
) *Processor {
	if cfg.TranscribeTimeout <= 0 {
		cfg.TranscribeTimeout = 5 * time.Minute
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if metrics == nil {
		metrics = observe.Noop()
	}
	return &Processor{
		log:         log.With("service", "processor"),
		recordings:  recordings,
		reviews:     reviews,
		catlogs:     catlogs,
		tx:          tx,
		audit:       auditLog,
		audio:       audio,
		transcriber: transcriber,
		analyzer:    analyzer,
		notifier:    notifier,
		metrics:     metrics,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Process runs job to a terminal outcome. A recording that is no longer
// pending (claimed elsewhere or swept) is dropped without error. Any failure
// after the claim marks the recording failed; the job is not retried.
func (p *Processor) Process(ctx context.Context, job *Job) error {
	job.Attempt++
	start := time.Now()

	rec, err := p.recordings.GetByID(ctx, job.RecordingID)
	if err != nil {
		job.LastError = err
		return fmt.Errorf("load recording %s: %w", job.RecordingID, err)
	}
	claimed := false
	if rec.Status == domain.RecordingStatusPending {
		claimed, err = p.recordings.Claim(ctx, rec.ID, p.now().UTC())
		if err != nil {
			job.LastError = err
			return fmt.Errorf("claim recording %s: %w", rec.ID, err)
		}
	}
	if !claimed {
		p.metrics.RecordOutcome(ctx, observe.OutcomeDropped, time.Time{})
		p.log.InfoContext(ctx, "recording not pending, job dropped",
			slog.String("recording_id", rec.ID.String()),
			slog.String("status", string(rec.Status)),
		)
		return nil
	}
	rec.Status = domain.RecordingStatusProcessing

	ctx, span := observe.StartSpan(ctx, "pipeline.process",
		attribute.String("recording.id", rec.ID.String()),
		attribute.Int("job.attempt", job.Attempt),
	)
	log := observe.WithTrace(ctx, p.log).With(slog.String("recording_id", rec.ID.String()))

	item, err := p.run(ctx, rec)
	if err != nil {
		job.LastError = err
		p.fail(ctx, log, rec, err)
		p.metrics.RecordOutcome(ctx, observe.OutcomeFailed, start)
		observe.EndSpan(span, err)
		return err
	}

	p.metrics.RecordOutcome(ctx, observe.OutcomeCompleted, start)
	observe.EndSpan(span, nil)
	log.InfoContext(ctx, "recording processed",
		slog.String("review_id", item.ID.String()),
		slog.Int("categories", len(item.Extracted.Categories)),
		slog.Float64("overall_confidence", item.OverallConfidence),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (p *Processor) run(ctx context.Context, rec *domain.Recording) (*domain.ReviewItem, error) {
	p.emit(ctx, rec, domain.PhaseTranscribing, nil, "")
	tr, err := p.transcribe(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	stageStart := time.Now()
	res, err := p.analyzer.AnalyzeWithProgress(ctx, tr.Text, func(phase domain.Phase) {
		p.emit(ctx, rec, phase, nil, "")
	})
	p.metrics.ObserveStage(ctx, observe.StageAnalyze, stageStart)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	stageStart = time.Now()
	item, err := p.commit(ctx, rec, tr, res)
	p.metrics.ObserveStage(ctx, observe.StageCommit, stageStart)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	p.emit(ctx, rec, domain.PhaseQueuedForReview, &item.ID, "")
	return item, nil
}

// transcribe opens the audio afresh on every attempt, since a failed upload
// consumes the reader.
func (p *Processor) transcribe(ctx context.Context, rec *domain.Recording) (*transcribe.Result, error) {
	defer p.metrics.ObserveStage(ctx, observe.StageTranscribe, time.Now())

	var out *transcribe.Result
	err := p.cfg.Policy.Do(ctx, func(ctx context.Context) error {
		audio, err := p.audio.Open(ctx, rec.AudioRef)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return retry.Permanent(err)
			}
			return err
		}
		defer audio.Close()

		callCtx, cancel := context.WithTimeout(ctx, p.cfg.TranscribeTimeout)
		defer cancel()

		res, err := p.transcriber.Transcribe(callCtx, audio, path.Base(rec.AudioRef))
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Text) == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrPermanent, errEmptyTranscript)
	}
	return out, nil
}

// commit writes the review item, its categorization log, the recording's
// completion and the audit entry as one unit.
func (p *Processor) commit(ctx context.Context, rec *domain.Recording, tr *transcribe.Result, res *analysis.Result) (*domain.ReviewItem, error) {
	now := p.now().UTC()
	item := &domain.ReviewItem{
		ID:                uuid.New(),
		RecordingID:       rec.ID,
		UserID:            rec.UserID,
		ContextKind:       rec.ContextKind,
		PatientID:         rec.PatientID,
		Transcript:        tr.Text,
		Language:          tr.Language,
		Extracted:         res.Extracted,
		OverallConfidence: res.Extracted.OverallConfidence,
		Status:            domain.ReviewStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	catLog := &domain.CategorizationLog{
		ID:           uuid.New(),
		ReviewItemID: item.ID,
		Detections:   res.Detections,
		Prompts:      res.Prompts,
		CreatedAt:    now,
	}

	err := p.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := p.reviews.Create(ctx, item); err != nil {
			return fmt.Errorf("create review item: %w", err)
		}
		if err := p.catlogs.Create(ctx, catLog); err != nil {
			return fmt.Errorf("create categorization log: %w", err)
		}
		if err := p.recordings.MarkCompleted(ctx, rec.ID); err != nil {
			return err
		}
		_, err := p.audit.Append(ctx, domain.AuditEvent{
			Type:         domain.AuditReviewCreate,
			ResourceType: domain.ResourceReview,
			ResourceID:   item.ID,
			After:        audit.ReviewSnapshot(item),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (p *Processor) fail(ctx context.Context, log *slog.Logger, rec *domain.Recording, cause error) {
	reason := cause.Error()

	err := p.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := p.recordings.MarkFailed(ctx, rec.ID, reason); err != nil {
			return err
		}
		after := *rec
		after.Status = domain.RecordingStatusFailed
		after.ProcessingError = &reason

		_, err := p.audit.Append(ctx, domain.AuditEvent{
			Type:         domain.AuditRecordingFail,
			ResourceType: domain.ResourceRecording,
			ResourceID:   rec.ID,
			Before:       audit.RecordingSnapshot(rec),
			After:        audit.RecordingSnapshot(&after),
		})
		return err
	})
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		log.InfoContext(ctx, "recording already settled, failure not recorded",
			slog.String("cause", reason))
	case err != nil:
		log.ErrorContext(ctx, "record failure",
			slog.String("cause", reason),
			slog.String("error", err.Error()))
	default:
		log.WarnContext(ctx, "recording failed", slog.String("cause", reason))
	}

	p.emit(ctx, rec, domain.PhaseFailed, nil, reason)
}

func (p *Processor) emit(ctx context.Context, rec *domain.Recording, phase domain.Phase, reviewID *uuid.UUID, errMsg string) {
	p.notifier.Notify(ctx, notify.Event{
		UserID:      rec.UserID,
		RecordingID: rec.ID,
		ReviewID:    reviewID,
		Phase:       phase,
		Error:       errMsg,
		At:          p.now().UTC(),
	})
}
