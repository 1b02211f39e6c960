package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(wallet string, ts time.Time) TransactionRecord {
	return TransactionRecord{
		Timestamp:      ts,
		Wallet:         wallet,
		AccountsClosed: 2,
		TotalRent:      4_078_560,
		ServiceFee:     203_928,
		TreasuryFee:    101_964,
		IncineratorFee: 101_964,
		Status:         StatusPending,
	}
}

func TestMemoryStore_LogAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first, err := s.LogTransaction(ctx, testRecord("walletA", time.Now()))
	require.NoError(t, err)
	second, err := s.LogTransaction(ctx, testRecord("walletB", time.Now()))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestMemoryStore_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.LogTransaction(ctx, testRecord("walletA", time.Now()))
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, id, "5signature", StatusConfirmed))

	rows, err := s.QueryByDateRange(ctx, time.Time{}, time.Now().Add(time.Second))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, StatusConfirmed, rows[0].Status)
	assert.Equal(t, "5signature", rows[0].Signature)
}

func TestMemoryStore_UpdateUnknownID(t *testing.T) {
	s := NewMemoryStore()
	err := s.UpdateStatus(context.Background(), 99, "sig", StatusFailed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_QueryByDateRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err := s.LogTransaction(ctx, testRecord("old", base.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = s.LogTransaction(ctx, testRecord("inRangeEarly", base))
	require.NoError(t, err)
	_, err = s.LogTransaction(ctx, testRecord("inRangeLate", base.Add(30*time.Minute)))
	require.NoError(t, err)
	_, err = s.LogTransaction(ctx, testRecord("atEnd", base.Add(time.Hour)))
	require.NoError(t, err)

	// start inclusive, end exclusive
	rows, err := s.QueryByDateRange(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, "inRangeLate", rows[0].Wallet)
	assert.Equal(t, "inRangeEarly", rows[1].Wallet)
}

func TestMemoryStore_Summarize(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	now := time.Now()
	_, err := s.LogTransaction(ctx, testRecord("walletA", now))
	require.NoError(t, err)
	_, err = s.LogTransaction(ctx, testRecord("walletB", now))
	require.NoError(t, err)

	summary, err := s.Summarize(ctx, time.Time{}, now.Add(time.Second))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalTransactions)
	assert.Equal(t, 4, summary.TotalAccountsClosed)
	assert.Equal(t, uint64(8_157_120), summary.TotalRent)
	assert.Equal(t, uint64(407_856), summary.TotalFees)
	assert.Equal(t, uint64(203_928), summary.TreasuryShare)
	assert.Equal(t, uint64(203_928), summary.IncineratorShare)
}
