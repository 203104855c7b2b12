package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/voicedoc-backend/internal/adapter/alarm"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres/auditlog"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres/catlog"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres/clinical"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres/recording"
	"github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres/reviewitem"
	"github.com/heartmarshall/voicedoc-backend/internal/config"
	"github.com/heartmarshall/voicedoc-backend/internal/notify"
	"github.com/heartmarshall/voicedoc-backend/internal/observe"
	"github.com/heartmarshall/voicedoc-backend/internal/service/audit"
	"github.com/heartmarshall/voicedoc-backend/internal/service/pipeline"
)

// Core is the part of the object graph shared by the server and the
// operator tools: storage, the audit chain, notifications and the
// scheduling side of the pipeline.
type Core struct {
	Log      *slog.Logger
	Pool     *pgxpool.Pool
	Tx       *postgres.TxManager
	Alarm    *alarm.Sentry
	Metrics  *observe.Metrics
	Provider *observe.Provider

	Recordings *recording.Repo
	Reviews    *reviewitem.Repo
	Catlogs    *catlog.Repo
	Clinical   *clinical.Repo
	AuditLog   *auditlog.Repo
	Chain      *audit.Chain

	Hub       *notify.Hub
	Notifier  notify.Notifier
	Scheduler *pipeline.Scheduler
	Sweeper   *pipeline.Sweeper

	closers []func()
}

// OpenCore connects to every backing service named in cfg. The caller must
// Close the result.
func OpenCore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Core, err error) {
	c := &Core{Log: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if c.Alarm, err = alarm.NewSentry(cfg.Sentry, Version, logger); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() { c.Alarm.Flush(2 * time.Second) })

	c.Metrics = observe.Noop()
	if cfg.Telemetry.MetricsEnabled {
		if c.Provider, err = observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: Version,
		}); err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
		c.closers = append(c.closers, func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.Provider.Shutdown(sctx); err != nil {
				logger.Warn("telemetry shutdown", slog.String("error", err.Error()))
			}
		})
		if c.Metrics, err = observe.NewMetrics(c.Provider.Meter); err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
	}

	if c.Pool, err = postgres.NewPool(ctx, cfg.Database); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, c.Pool.Close)

	c.Tx = postgres.NewTxManager(c.Pool)
	c.Recordings = recording.New(c.Pool)
	c.Reviews = reviewitem.New(c.Pool)
	c.Catlogs = catlog.New(c.Pool)
	c.Clinical = clinical.New(c.Pool)
	c.AuditLog = auditlog.New(c.Pool)

	if c.Chain, err = audit.NewChain(logger, c.AuditLog, c.Tx, c.Alarm, cfg.Audit.HashAlgorithm); err != nil {
		return nil, err
	}

	if err := c.openNotifier(cfg.Notify); err != nil {
		return nil, err
	}

	c.Scheduler = pipeline.NewScheduler(logger, c.Recordings, c.Chain, c.Tx, c.Metrics, pipeline.SchedulerConfig{
		AgingInterval: cfg.Pipeline.AgingInterval,
		MaxPriority:   cfg.Pipeline.MaxPriority,
	})
	c.Sweeper = pipeline.NewSweeper(logger, c.Recordings, c.Tx, c.Chain, c.Notifier, c.Metrics, cfg.Pipeline.StaleAfter)

	return c, nil
}

// openNotifier always serves in-process subscribers and adds NATS when a
// URL is configured.
func (c *Core) openNotifier(cfg config.NotifyConfig) error {
	c.Hub = notify.NewHub(c.Log, notify.DefaultBuffer)
	if cfg.NATSURL == "" {
		c.Notifier = c.Hub
		return nil
	}

	nc, err := notify.Connect(cfg.NATSURL, c.Log)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	c.closers = append(c.closers, func() {
		if err := nc.Drain(); err != nil {
			c.Log.Warn("nats drain", slog.String("error", err.Error()))
		}
	})
	c.Notifier = notify.Multi{c.Hub, notify.NewNATSPublisher(nc, cfg.SubjectPrefix, c.Log)}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (c *Core) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
