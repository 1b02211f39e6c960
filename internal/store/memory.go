package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for single-process deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	records []TransactionRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// LogTransaction inserts a record and returns its ID.
func (m *MemoryStore) LogTransaction(_ context.Context, record TransactionRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record.ID = m.nextID
	m.nextID++
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	m.records = append(m.records, record)
	return record.ID, nil
}

// UpdateStatus sets the on-ledger signature and final status of a record.
func (m *MemoryStore) UpdateStatus(_ context.Context, id int64, signature string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Signature = signature
			m.records[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

// QueryByDateRange returns records with start <= Timestamp < end, newest first.
func (m *MemoryStore) QueryByDateRange(_ context.Context, start, end time.Time) ([]TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []TransactionRecord
	for _, record := range m.records {
		if !record.Timestamp.Before(start) && record.Timestamp.Before(end) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Summarize aggregates records with start <= Timestamp < end.
func (m *MemoryStore) Summarize(ctx context.Context, start, end time.Time) (*Summary, error) {
	records, err := m.QueryByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, record := range records {
		summary.TotalTransactions++
		summary.TotalAccountsClosed += record.AccountsClosed
		summary.TotalRent += record.TotalRent
		summary.TotalFees += record.ServiceFee
		summary.TreasuryShare += record.TreasuryFee
		summary.IncineratorShare += record.IncineratorFee
	}
	return summary, nil
}
