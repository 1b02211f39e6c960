package store

import (
	"context"
	"errors"
	"time"
)

// Status is the reconciliation state of a logged transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("transaction record not found")

// TransactionRecord is one reconciliation row. Monetary fields are lamports.
type TransactionRecord struct {
	ID             int64
	Timestamp      time.Time
	Wallet         string
	AccountsClosed int
	TotalRent      uint64
	ServiceFee     uint64
	TreasuryFee    uint64
	IncineratorFee uint64
	Status         Status
	Signature      string
}

// Summary aggregates records over a date range.
type Summary struct {
	TotalTransactions   int
	TotalAccountsClosed int
	TotalRent           uint64
	TotalFees           uint64
	TreasuryShare       uint64
	IncineratorShare    uint64
}

// Store persists reconciliation records. Implementations must be safe for
// concurrent use.
type Store interface {
	// LogTransaction inserts a record and returns its ID.
	LogTransaction(ctx context.Context, record TransactionRecord) (int64, error)

	// UpdateStatus sets the on-ledger signature and final status of a record.
	UpdateStatus(ctx context.Context, id int64, signature string, status Status) error

	// QueryByDateRange returns records with start <= Timestamp < end,
	// newest first.
	QueryByDateRange(ctx context.Context, start, end time.Time) ([]TransactionRecord, error)

	// Summarize aggregates records with start <= Timestamp < end.
	Summarize(ctx context.Context, start, end time.Time) (*Summary, error)
}
