package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/blob"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/llm"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/transcribe"
	"github.com/heartmarshall/voicedoc-backend/internal/auth"
	"github.com/heartmarshall/voicedoc-backend/internal/config"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
	"github.com/heartmarshall/voicedoc-backend/internal/retry"
	"github.com/heartmarshall/voicedoc-backend/internal/service/analysis"
	"github.com/heartmarshall/voicedoc-backend/internal/service/confidence"
	"github.com/heartmarshall/voicedoc-backend/internal/service/confirmation"
	"github.com/heartmarshall/voicedoc-backend/internal/service/intake"
	"github.com/heartmarshall/voicedoc-backend/internal/service/pipeline"
	"github.com/heartmarshall/voicedoc-backend/internal/service/review"
	"github.com/heartmarshall/voicedoc-backend/internal/transport/middleware"
	"github.com/heartmarshall/voicedoc-backend/internal/transport/rest"
)

// Server is the long-running process: HTTP API, worker pool and the
// periodic stale sweep.
type Server struct {
	cfg     *config.Config
	core    *Core
	log     *slog.Logger
	http    *http.Server
	pool    *pipeline.Pool
	limiter *middleware.RateLimiter
}

// ServerOption customizes NewServer.
type ServerOption func(*serverOptions)

type serverOptions struct {
	completer llm.Completer
}

// WithCompleter replaces the configured language model provider.
func WithCompleter(c llm.Completer) ServerOption {
	return func(o *serverOptions) { o.completer = c }
}

// NewServer builds the processing and transport layers on top of core.
func NewServer(cfg *config.Config, core *Core, opts ...ServerOption) (*Server, error) {
	logger := core.Log

	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	audio, err := blob.New(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open audio store: %w", err)
	}

	completer := o.completer
	if completer == nil {
		if completer, err = NewCompleter(cfg.LLM, &http.Client{Timeout: cfg.Pipeline.LLMTimeout}, logger); err != nil {
			return nil, err
		}
	}

	policy := retry.FromConfig(cfg.Retry)
	analyzer := analysis.NewService(
		logger,
		completer,
		rate.NewLimiter(rate.Limit(cfg.LLM.RPS), cfg.LLM.Burst),
		policy,
		confidence.New(cfg.Pipeline.AcceptanceThreshold, domain.AggregationStrategy(cfg.Pipeline.Aggregation)),
		analysis.Options{
			CallTimeout:           cfg.Pipeline.LLMTimeout,
			ExtractionConcurrency: cfg.Pipeline.ExtractionConcurrency,
		},
	)

	transcriber := transcribe.NewClient(cfg.Transcription, logger)

	processor := pipeline.NewProcessor(
		logger,
		core.Recordings, core.Reviews, core.Catlogs,
		core.Tx, core.Chain,
		audio, transcriber, analyzer,
		core.Notifier, core.Metrics,
		pipeline.ProcessorConfig{TranscribeTimeout: cfg.Pipeline.TranscribeTimeout, Policy: policy},
	)

	intakeSvc := intake.NewService(logger, audio, core.Recordings, core.Chain, core.Tx, core.Scheduler)
	reviewSvc := review.NewService(logger, core.Reviews, core.Catlogs, analyzer, core.Chain, core.Tx, cfg.Pipeline.UrgentAfter)
	confirmSvc := confirmation.NewService(logger, core.Reviews, core.Clinical, core.Catlogs, core.Chain, core.Tx)

	limiter := middleware.NewRateLimiter(time.Minute)

	router := rest.NewRouter(rest.Handlers{
		Recordings: rest.NewRecordingHandler(intakeSvc, cfg.Server.MaxUploadBytes, logger),
		Reviews:    rest.NewReviewHandler(reviewSvc, confirmSvc, logger),
		Events:     rest.NewEventsHandler(core.Hub, originHosts(cfg.CORS.AllowedOrigins), logger),
		Audit:      rest.NewAuditHandler(core.Chain, logger),
		Health:     rest.NewHealthHandler(core.Pool, transcriber, core.Chain, BuildVersion()),
		Metrics:    promhttp.Handler(),
	},
		middleware.Auth(auth.NewValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)),
		limiter.Limit("recordings", cfg.RateLimit.UploadsPerMinute, cfg.RateLimit.Burst),
	)

	handler := middleware.Chain(
		middleware.Recovery(logger, core.Alarm),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)(router)

	return &Server{
		cfg:  cfg,
		core: core,
		log:  logger,
		http: &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		pool:    pipeline.NewPool(logger, core.Scheduler, processor, core.Alarm, core.Metrics, cfg.Pipeline.Workers),
		limiter: limiter,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down: the listener stops
// accepting, in-flight requests and jobs finish, and Run returns.
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	n, err := s.core.Scheduler.RecoverPending(ctx)
	if err != nil {
		return fmt.Errorf("recover pending recordings: %w", err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "requeued pending recordings", slog.Int("count", n))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.InfoContext(gctx, "http server listening", slog.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down http server")
		return s.http.Shutdown(sctx)
	})

	g.Go(func() error { return s.pool.Run(gctx) })

	g.Go(func() error { return s.core.Sweeper.Run(gctx, s.cfg.Pipeline.SweepInterval) })

	g.Go(func() error { return s.resync(gctx) })

	return g.Wait()
}

// resyncGrace keeps the resync loop away from recordings whose submission
// is still between commit and Enqueue.
const resyncGrace = time.Minute

// resync periodically queues pending recordings without a job, such as
// those reset by voicedocctl requeue.
func (s *Server) resync(ctx context.Context) error {
	if s.cfg.Pipeline.ResyncInterval <= 0 {
		return nil
	}
	ticker := time.NewTicker(s.cfg.Pipeline.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.core.Scheduler.Resync(ctx, resyncGrace); err != nil && ctx.Err() == nil {
				s.log.WarnContext(ctx, "resync pending recordings", slog.String("error", err.Error()))
			}
		}
	}
}

// originHosts turns configured CORS origins into WebSocket host patterns.
func originHosts(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		out = append(out, o)
	}
	return out
}
