// Package auditlog persists the append-only audit hash chain.
// Hash computation lives in the audit service; this package only stores,
// serializes and streams entries.
package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// chainLockKey is the advisory lock id that serializes appenders.
const chainLockKey int64 = 0x766f6963656175 // "voiceau"

// Repo provides audit chain persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit log repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const lockSQL = `SELECT pg_advisory_xact_lock($1)`

const tailSQL = `SELECT record_hash FROM audit_log ORDER BY seq DESC LIMIT 1`

const hashBeforeSQL = `SELECT record_hash FROM audit_log WHERE seq < $1 ORDER BY seq DESC LIMIT 1`

const insertSQL = `
INSERT INTO audit_log (id, event_type, actor_id, resource_type, resource_id, before_state,
                       after_state, prev_hash, record_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING seq`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Lock takes the chain's transaction-scoped advisory lock. It must run inside
// a transaction; the lock is released on commit or rollback.
func (r *Repo) Lock(ctx context.Context) error {
	if !postgres.InTx(ctx) {
		return fmt.Errorf("audit_log lock: requires a transaction")
	}
	q := postgres.QuerierFromCtx(ctx, r.db)
	if _, err := q.Exec(ctx, lockSQL, chainLockKey); err != nil {
		return fmt.Errorf("audit_log lock: %w", err)
	}
	return nil
}

// TailHash returns the record hash of the newest entry, or domain.GenesisHash
// when the chain is empty.
func (r *Repo) TailHash(ctx context.Context) (string, error) {
	return r.hash(ctx, tailSQL)
}

// HashBefore returns the record hash of the newest entry with seq < seq, or
// domain.GenesisHash when there is none.
func (r *Repo) HashBefore(ctx context.Context, seq int64) (string, error) {
	return r.hash(ctx, hashBeforeSQL, seq)
}

func (r *Repo) hash(ctx context.Context, sql string, args ...any) (string, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var hashes []string
	if err := pgxscan.Select(ctx, q, &hashes, sql, args...); err != nil {
		return "", fmt.Errorf("audit_log read hash: %w", err)
	}
	if len(hashes) == 0 {
		return domain.GenesisHash, nil
	}
	return hashes[0], nil
}

// Insert stores a fully hashed entry and returns its sequence number.
func (r *Repo) Insert(ctx context.Context, e *domain.AuditEntry) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var seq int64
	err := q.QueryRow(ctx, insertSQL,
		e.ID, string(e.Type), e.ActorID, string(e.ResourceType), e.ResourceID,
		nullJSON(e.Before), nullJSON(e.After), e.PrevHash, e.RecordHash, e.CreatedAt,
	).Scan(&seq)
	if err != nil {
		return 0, postgres.MapError(err, "audit_entry", e.ID)
	}
	return seq, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Each streams entries with fromSeq <= seq <= toSeq in seq order and calls fn
// for every one. A zero bound is open. Iteration stops at the first error
// returned by fn.
func (r *Repo) Each(ctx context.Context, fromSeq, toSeq int64, fn func(domain.AuditEntry) error) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().
		Select("seq", "id", "event_type", "actor_id", "resource_type", "resource_id",
			"before_state", "after_state", "prev_hash", "record_hash", "created_at").
		From("audit_log").
		OrderBy("seq ASC")
	if fromSeq > 0 {
		b = b.Where(squirrel.GtOrEq{"seq": fromSeq})
	}
	if toSeq > 0 {
		b = b.Where(squirrel.LtOrEq{"seq": toSeq})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build audit range query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query audit_log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row entryRow
		if err := pgxscan.ScanRow(&row, rows); err != nil {
			return fmt.Errorf("scan audit_log row: %w", err)
		}
		if err := fn(row.toDomain()); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate audit_log: %w", err)
	}
	return nil
}

// ListByResource returns the history of one resource, oldest first.
func (r *Repo) ListByResource(ctx context.Context, rt domain.ResourceType, id uuid.UUID) ([]domain.AuditEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	query, args, err := postgres.Builder().
		Select("seq", "id", "event_type", "actor_id", "resource_type", "resource_id",
			"before_state", "after_state", "prev_hash", "record_hash", "created_at").
		From("audit_log").
		Where(squirrel.Eq{"resource_type": string(rt), "resource_id": id}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build resource history query: %w", err)
	}

	var rows []entryRow
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list audit_log for %s %s: %w", rt, id, err)
	}
	out := make([]domain.AuditEntry, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Mapping
// ---------------------------------------------------------------------------

type entryRow struct {
	Seq          int64      `db:"seq"`
	ID           uuid.UUID  `db:"id"`
	EventType    string     `db:"event_type"`
	ActorID      *uuid.UUID `db:"actor_id"`
	ResourceType string     `db:"resource_type"`
	ResourceID   uuid.UUID  `db:"resource_id"`
	Before       []byte     `db:"before_state"`
	After        []byte     `db:"after_state"`
	PrevHash     string     `db:"prev_hash"`
	RecordHash   string     `db:"record_hash"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (row entryRow) toDomain() domain.AuditEntry {
	return domain.AuditEntry{
		Seq: row.Seq,
		AuditEvent: domain.AuditEvent{
			ID:           row.ID,
			Type:         domain.AuditEventType(row.EventType),
			ActorID:      row.ActorID,
			ResourceType: domain.ResourceType(row.ResourceType),
			ResourceID:   row.ResourceID,
			Before:       row.Before,
			After:        row.After,
			CreatedAt:    row.CreatedAt,
		},
		PrevHash:   row.PrevHash,
		RecordHash: row.RecordHash,
	}
}

func nullJSON(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
