package audit

import (
	"context"
	"sync"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// memStore is an in-memory chain store. Entries are exported through the
// entries slice so tests can tamper with them.
type memStore struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	locks   int
}

func (m *memStore) Lock(context.Context) error {
	m.mu.Lock()
	m.locks++
	m.mu.Unlock()
	return nil
}

func (m *memStore) TailHash(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return domain.GenesisHash, nil
	}
	return m.entries[len(m.entries)-1].RecordHash, nil
}

func (m *memStore) HashBefore(_ context.Context, seq int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash := domain.GenesisHash
	for _, e := range m.entries {
		if e.Seq < seq {
			hash = e.RecordHash
		}
	}
	return hash, nil
}

func (m *memStore) Insert(_ context.Context, e *domain.AuditEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := int64(len(m.entries) + 1)
	stored := *e
	stored.Seq = seq
	m.entries = append(m.entries, stored)
	return seq, nil
}

func (m *memStore) Each(_ context.Context, fromSeq, toSeq int64, fn func(domain.AuditEntry) error) error {
	m.mu.Lock()
	snapshot := append([]domain.AuditEntry(nil), m.entries...)
	m.mu.Unlock()
	for _, e := range snapshot {
		if (fromSeq > 0 && e.Seq < fromSeq) || (toSeq > 0 && e.Seq > toSeq) {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// serialTx runs every transaction under one mutex, standing in for the
// advisory lock held until commit.
type serialTx struct {
	mu sync.Mutex
}

func (s *serialTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

type alarmMock struct {
	RaiseFunc func(ctx context.Context, err error, tags map[string]string)

	calls struct {
		Raise []struct {
			Err  error
			Tags map[string]string
		}
	}
	lockRaise sync.RWMutex
}

func (mock *alarmMock) Raise(ctx context.Context, err error, tags map[string]string) {
	mock.lockRaise.Lock()
	mock.calls.Raise = append(mock.calls.Raise, struct {
		Err  error
		Tags map[string]string
	}{Err: err, Tags: tags})
	mock.lockRaise.Unlock()
	if mock.RaiseFunc != nil {
		mock.RaiseFunc(ctx, err, tags)
	}
}

func (mock *alarmMock) RaiseCalls() []struct {
	Err  error
	Tags map[string]string
} {
	mock.lockRaise.RLock()
	calls := mock.calls.Raise
	mock.lockRaise.RUnlock()
	return calls
}
