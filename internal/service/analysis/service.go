// Package analysis turns a transcript into categorized, extracted clinical
// data by prompting a language model.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/llm"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/retry"
	"github.com/heartmarshall/voicedoc-backend/internal/service/confidence"
)

// Options tunes timeouts and fan-out. Zero values fall back to defaults.
type Options struct {
	CallTimeout           time.Duration
	ExtractionConcurrency int
}

// Result is one full analysis run.
type Result struct {
	// Detections holds every categorization verdict before partitioning.
	Detections []domain.Detection
	Extracted  domain.ExtractedData
	// Prompts maps "categorize" and each extracted category to the prompt
	// that produced it.
	Prompts map[string]string
}

// Service is shared by the processing pipeline and by reanalysis.
type Service struct {
	log        *slog.Logger
	llm        llm.Completer
	limiter    *rate.Limiter
	policy     retry.Policy
	aggregator confidence.Aggregator
	opts       Options

	categorizeSchema *jsonschema.Schema
	extractSchemas   map[domain.CategoryType]*jsonschema.Schema
}

// NewService creates an analysis service. limiter is shared by every caller
// that talks to the same model account.
func NewService(
	log *slog.Logger,
	completer llm.Completer,
	limiter *rate.Limiter,
	policy retry.Policy,
	aggregator confidence.Aggregator,
	opts Options,
) *Service {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 60 * time.Second
	}
	if opts.ExtractionConcurrency <= 0 {
		opts.ExtractionConcurrency = 3
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	s := &Service{
		log:        log.With("service", "analysis"),
		llm:        completer,
		limiter:    limiter,
		policy:     policy,
		aggregator: aggregator,
		opts:       opts,
	}
	s.buildSchemas()
	return s
}

// Categorize asks the model which categories the transcript contains. Every
// returned detection has a known type; an unknown one fails the call
// permanently.
func (s *Service) Categorize(ctx context.Context, transcript string) ([]domain.Detection, string, error) {
	prompt := categorizePrompt(transcript)

	var out categorizeOutput
	err := s.complete(ctx, llm.Request{
		System:     categorizeSystem,
		Prompt:     prompt,
		SchemaName: "categorize",
		Schema:     s.categorizeSchema,
	}, func(text string) error {
		return decodeModelJSON(text, &out)
	})
	if err != nil {
		return nil, prompt, fmt.Errorf("categorize: %w", err)
	}

	detections := make([]domain.Detection, 0, len(out.Categories))
	seen := make(map[domain.CategoryType]bool, len(out.Categories))
	for _, c := range out.Categories {
		ct := domain.CategoryType(c.Type)
		if !ct.IsValid() {
			return nil, prompt, fmt.Errorf("categorize: unknown category %q: %w", c.Type, domain.ErrPermanent)
		}
		if seen[ct] {
			continue
		}
		seen[ct] = true
		detections = append(detections, domain.Detection{Type: ct, Confidence: confidence.Clamp(c.Confidence)})
	}
	return detections, prompt, nil
}

// Extract asks the model for the structured fields of one category. The
// result keeps the detection confidence, so an accepted category never
// carries a score below the acceptance threshold.
func (s *Service) Extract(ctx context.Context, transcript string, det domain.Detection) (domain.CategoryResult, string, error) {
	prompt := extractPrompt(transcript, det.Type)

	var out extractOutput
	err := s.complete(ctx, llm.Request{
		System:     extractSystem,
		Prompt:     prompt,
		SchemaName: "extract_" + string(det.Type),
		Schema:     s.extractSchemas[det.Type],
	}, func(text string) error {
		return decodeModelJSON(text, &out)
	})
	if err != nil {
		return domain.CategoryResult{}, prompt, fmt.Errorf("extract %s: %w", det.Type, err)
	}

	data, err := domain.DecodeCategoryData(det.Type, out.Data)
	if err != nil {
		return domain.CategoryResult{}, prompt, fmt.Errorf("extract %s: %w: %w", det.Type, err, domain.ErrPermanent)
	}

	var fields map[string]float64
	if len(out.FieldConfidences) > 0 {
		fields = make(map[string]float64, len(out.FieldConfidences))
		for _, fc := range out.FieldConfidences {
			fields[fc.Field] = fc.Confidence
		}
	}

	return domain.CategoryResult{
		Type:             det.Type,
		Confidence:       det.Confidence,
		Data:             data,
		FieldConfidences: fields,
	}, prompt, nil
}

// Analyze categorizes, partitions by threshold, extracts every accepted
// category in parallel and aggregates. The accepted categories keep their
// detection order.
func (s *Service) Analyze(ctx context.Context, transcript string) (*Result, error) {
	return s.AnalyzeWithProgress(ctx, transcript, nil)
}

// AnalyzeWithProgress is Analyze that reports PhaseCategorizing and
// PhaseExtracting to onPhase as each stage starts. onPhase may be nil.
func (s *Service) AnalyzeWithProgress(ctx context.Context, transcript string, onPhase func(domain.Phase)) (*Result, error) {
	if onPhase == nil {
		onPhase = func(domain.Phase) {}
	}

	onPhase(domain.PhaseCategorizing)
	detections, catPrompt, err := s.Categorize(ctx, transcript)
	if err != nil {
		return nil, err
	}

	accepted, rejected := s.aggregator.Partition(detections)
	onPhase(domain.PhaseExtracting)

	results := make([]domain.CategoryResult, len(accepted))
	prompts := make([]string, len(accepted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ExtractionConcurrency)
	for i, det := range accepted {
		g.Go(func() error {
			res, prompt, err := s.Extract(gctx, transcript, det)
			if err != nil {
				return err
			}
			results[i] = res
			prompts[i] = prompt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	promptLog := map[string]string{"categorize": catPrompt}
	for i, det := range accepted {
		promptLog[string(det.Type)] = prompts[i]
	}

	extracted := s.aggregator.Aggregate(results, rejected)
	s.log.DebugContext(ctx, "analysis complete",
		slog.Int("detected", len(detections)),
		slog.Int("accepted", len(accepted)),
		slog.Float64("overall_confidence", extracted.OverallConfidence),
	)

	return &Result{
		Detections: detections,
		Extracted:  extracted,
		Prompts:    promptLog,
	}, nil
}

// complete runs one rate-limited, retried model call. decode failures are
// permanent: a model that returns garbage will not do better on retry.
func (s *Service) complete(ctx context.Context, req llm.Request, decode func(string) error) error {
	return s.policy.Do(ctx, func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
		defer cancel()

		text, err := s.llm.Complete(callCtx, req)
		if err != nil {
			return err
		}
		if err := decode(text); err != nil {
			return retry.Permanent(err)
		}
		return nil
	})
}

func (s *Service) buildSchemas() {
	s.extractSchemas = make(map[domain.CategoryType]*jsonschema.Schema)

	var err error
	if s.categorizeSchema, err = jsonschema.For[categorizeOutput](&jsonschema.ForOptions{}); err != nil {
		s.log.Warn("categorize schema unavailable", slog.String("error", err.Error()))
	}
	for ct, build := range extractSchemaBuilders {
		schema, err := build()
		if err != nil {
			s.log.Warn("extract schema unavailable", slog.String("category", string(ct)), slog.String("error", err.Error()))
			continue
		}
		s.extractSchemas[ct] = schema
	}
}
