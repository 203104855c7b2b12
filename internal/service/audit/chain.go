// Package audit maintains the tamper-evident hash chain over every state
// change in the system.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

type store interface {
	Lock(ctx context.Context) error
	TailHash(ctx context.Context) (string, error)
	HashBefore(ctx context.Context, seq int64) (string, error)
	Insert(ctx context.Context, e *domain.AuditEntry) (int64, error)
	Each(ctx context.Context, fromSeq, toSeq int64, fn func(domain.AuditEntry) error) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type alarm interface {
	Raise(ctx context.Context, err error, tags map[string]string)
}

// Chain appends and verifies audit entries. Once verification finds a broken
// link the chain trips and refuses further appends until the process is
// restarted.
type Chain struct {
	log     *slog.Logger
	store   store
	tx      txManager
	alarm   alarm
	hasher  *hasher
	tripped atomic.Bool
	now     func() time.Time
}

// NewChain creates a chain using the named hash algorithm (sha256 or
// sha3-256).
func NewChain(log *slog.Logger, store store, tx txManager, alarm alarm, algorithm string) (*Chain, error) {
	h, err := newHasher(algorithm)
	if err != nil {
		return nil, err
	}
	return &Chain{
		log:    log.With("service", "audit"),
		store:  store,
		tx:     tx,
		alarm:  alarm,
		hasher: h,
		now:    time.Now,
	}, nil
}

// Tripped reports whether an integrity failure has been detected.
func (c *Chain) Tripped() bool {
	return c.tripped.Load()
}

// Append hashes ev onto the tail of the chain. It joins the caller's
// transaction when ctx carries one, so the entry commits or rolls back with
// the change it describes.
func (c *Chain) Append(ctx context.Context, ev domain.AuditEvent) (*domain.AuditEntry, error) {
	if c.tripped.Load() {
		return nil, domain.ErrIntegrity
	}
	if !ev.Type.IsValid() {
		return nil, domain.NewValidationError("event_type", fmt.Sprintf("unknown audit event %q", ev.Type))
	}

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = c.now()
	}
	// timestamptz keeps microseconds; hash what will be read back
	ev.CreatedAt = ev.CreatedAt.UTC().Truncate(time.Microsecond)

	var err error
	if ev.Before, err = normalizeJSON(ev.Before); err != nil {
		return nil, fmt.Errorf("audit before state: %w", err)
	}
	if ev.After, err = normalizeJSON(ev.After); err != nil {
		return nil, fmt.Errorf("audit after state: %w", err)
	}

	entry := &domain.AuditEntry{AuditEvent: ev}
	err = c.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := c.store.Lock(ctx); err != nil {
			return err
		}
		prev, err := c.store.TailHash(ctx)
		if err != nil {
			return err
		}
		entry.PrevHash = prev
		if entry.RecordHash, err = c.hasher.record(ev, prev); err != nil {
			return err
		}
		entry.Seq, err = c.store.Insert(ctx, entry)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	c.log.DebugContext(ctx, "audit entry appended",
		slog.Int64("seq", entry.Seq),
		slog.String("event_type", ev.Type.String()),
		slog.String("resource_id", ev.ResourceID.String()),
	)
	return entry, nil
}

var errStop = errors.New("stop")

// Verify recomputes every entry with fromSeq <= seq <= toSeq (zero bounds
// are open) and checks the prev-hash links. A failure trips the chain and
// raises the alarm; nothing is repaired.
func (c *Chain) Verify(ctx context.Context, fromSeq, toSeq int64) (domain.VerifyResult, error) {
	res := domain.VerifyResult{Valid: true}

	prev := domain.GenesisHash
	if fromSeq > 1 {
		var err error
		if prev, err = c.store.HashBefore(ctx, fromSeq); err != nil {
			return res, fmt.Errorf("verify: predecessor of %d: %w", fromSeq, err)
		}
	}

	err := c.store.Each(ctx, fromSeq, toSeq, func(e domain.AuditEntry) error {
		res.Checked++

		if e.PrevHash != prev {
			fail(&res, e.Seq, "prev_hash does not match the preceding record_hash")
			return errStop
		}
		want, err := c.hasher.record(e.AuditEvent, e.PrevHash)
		if err != nil {
			return err
		}
		if want != e.RecordHash {
			fail(&res, e.Seq, "record_hash does not match recomputed hash")
			return errStop
		}
		prev = e.RecordHash
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return res, fmt.Errorf("verify: %w", err)
	}

	if !res.Valid {
		c.trip(ctx, *res.BrokenAt, res.Reason)
		return res, nil
	}

	c.log.InfoContext(ctx, "audit chain verified",
		slog.Int("checked", res.Checked),
		slog.Int64("from_seq", fromSeq),
		slog.Int64("to_seq", toSeq),
	)
	return res, nil
}

func (c *Chain) trip(ctx context.Context, seq int64, reason string) {
	c.tripped.Store(true)
	integrityFailures.Inc()
	c.alarm.Raise(ctx, fmt.Errorf("%w at seq %d: %s", domain.ErrIntegrity, seq, reason), map[string]string{
		"component": "audit_chain",
		"seq":       strconv.FormatInt(seq, 10),
	})
}

// Snapshot marshals v for use as an event's Before or After state. v must be
// JSON-encodable.
func Snapshot(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("audit snapshot: %v", err))
	}
	return b
}

func fail(res *domain.VerifyResult, seq int64, reason string) {
	res.Valid = false
	res.BrokenAt = &seq
	res.Reason = reason
}
