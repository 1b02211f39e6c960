package incinerator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gor-incinerator-go/internal/config"
	"gor-incinerator-go/internal/store"
)

func newTestService(t *testing.T, gateway Gateway, records store.Store) *Service {
	log := newTestLogger(t)

	fees, err := NewFeeCalculator(config.FeeConfig{
		Percentage:     5,
		RentPerAccount: config.DefaultRentPerAccount,
	})
	require.NoError(t, err)

	submitCfg := config.SubmitConfig{
		ConfirmTimeoutSec: 60,
		PollIntervalMs:    1,
		ComputeUnitPrice:  config.DefaultComputeUnitPrice,
		ComputeUnitLimit:  config.DefaultComputeUnitLimit,
	}

	classifier := NewClassifier(gateway, []string{config.DefaultBlacklist[0]}, log)
	assembler := NewAssembler(gateway, fees, submitCfg, log)
	submitter := NewSubmitter(gateway, DefaultRetryPolicy(2), submitCfg, log)
	submitter.sleep = func(context.Context, time.Duration) error { return nil }
	verifier := NewHolderVerifier(gateway, config.DiscountConfig{}, testCacheTTL(), log)

	return NewService(gateway, classifier, fees, assembler, submitter, verifier, records, log)
}

func TestService_FindClosableAccounts(t *testing.T) {
	gateway := newFakeGateway()
	wallet := solana.NewWallet().PublicKey()
	blacklistedMint := solana.MustPublicKeyFromBase58(config.DefaultBlacklist[0])
	foreignMint := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()
	gateway.addMint(foreignMint, MintInfo{Authority: &other, Decimals: 6})

	gateway.ownerAccounts = []TokenAccountRecord{
		{Address: solana.NewWallet().PublicKey(), Mint: foreignMint, Owner: wallet, RawBalance: "0"},
		{Address: solana.NewWallet().PublicKey(), Mint: blacklistedMint, Owner: wallet, RawBalance: "0"},
		{Address: solana.NewWallet().PublicKey(), Mint: foreignMint, Owner: wallet, RawBalance: "77"},
	}

	service := newTestService(t, gateway, nil)

	scan, err := service.FindClosableAccounts(context.Background(), wallet, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, scan.TotalAccounts)
	require.Len(t, scan.Eligible, 1)
	assert.Equal(t, gateway.ownerAccounts[0].Address, scan.Eligible[0].Address)
	require.NotNil(t, scan.Fee)
	assert.Equal(t, uint64(config.DefaultRentPerAccount), scan.Fee.TotalRent)
}

func TestService_FindClosableAccountsCap(t *testing.T) {
	gateway := newFakeGateway()
	wallet := solana.NewWallet().PublicKey()

	for i := 0; i < 5; i++ {
		gateway.ownerAccounts = append(gateway.ownerAccounts, TokenAccountRecord{
			Address:    solana.NewWallet().PublicKey(),
			Mint:       solana.NewWallet().PublicKey(),
			Owner:      wallet,
			RawBalance: "0",
		})
	}

	service := newTestService(t, gateway, nil)

	scan, err := service.FindClosableAccounts(context.Background(), wallet, 2)
	require.NoError(t, err)

	assert.Equal(t, 5, scan.TotalAccounts)
	assert.Len(t, scan.Eligible, 2)
}

func TestService_FindClosableAccountsBeyondBatchLimit(t *testing.T) {
	gateway := newFakeGateway()
	wallet := solana.NewWallet().PublicKey()

	// More empty accounts than fit in one transaction; discovery must still
	// succeed and leave the batching to the caller.
	for i := 0; i < config.MaxAccountsPerTx+1; i++ {
		gateway.ownerAccounts = append(gateway.ownerAccounts, TokenAccountRecord{
			Address:    solana.NewWallet().PublicKey(),
			Mint:       solana.NewWallet().PublicKey(),
			Owner:      wallet,
			RawBalance: "0",
		})
	}

	service := newTestService(t, gateway, nil)

	scan, err := service.FindClosableAccounts(context.Background(), wallet, 0)
	require.NoError(t, err)

	assert.Len(t, scan.Eligible, config.MaxAccountsPerTx+1)
	require.NotNil(t, scan.Fee)
	// The fee preview covers only the first full batch.
	assert.Equal(t, uint64(config.MaxAccountsPerTx*config.DefaultRentPerAccount), scan.Fee.TotalRent)
}

func TestService_IncinerateEndToEnd(t *testing.T) {
	gateway := newFakeGateway()
	signerKey := solana.NewWallet()
	wallet := signerKey.PublicKey()
	account := solana.NewWallet().PublicKey()

	gateway.addTokenAccount(TokenAccountRecord{
		Address: account, Mint: solana.NewWallet().PublicKey(), Owner: wallet, RawBalance: "0",
	})

	records := store.NewMemoryStore()
	service := newTestService(t, gateway, records)

	receipt, err := service.Incinerate(context.Background(), &fakeSigner{key: wallet}, []solana.PublicKey{account})
	require.NoError(t, err)

	assert.True(t, receipt.Confirmed)
	assert.Equal(t, 1, receipt.AccountsClosed)
	assert.Equal(t, uint64(0), receipt.TotalBurned)

	rows, err := records.QueryByDateRange(context.Background(), time.Time{}, time.Now().Add(time.Second))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, store.StatusConfirmed, rows[0].Status)
	assert.Equal(t, receipt.Signature.String(), rows[0].Signature)
	assert.Equal(t, wallet.String(), rows[0].Wallet)
}

func TestService_IncinerateRecordsFailure(t *testing.T) {
	gateway := newFakeGateway()
	wallet := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()

	gateway.addTokenAccount(TokenAccountRecord{
		Address: account, Mint: solana.NewWallet().PublicKey(), Owner: wallet, RawBalance: "0",
	})
	gateway.sendFunc = func(int) (solana.Signature, error) {
		return solana.Signature{}, errors.New("node unavailable")
	}

	records := store.NewMemoryStore()
	service := newTestService(t, gateway, records)

	_, err := service.Incinerate(context.Background(), &fakeSigner{key: wallet}, []solana.PublicKey{account})
	require.Error(t, err)
	assert.True(t, IsTransactionError(err))

	rows, err := records.QueryByDateRange(context.Background(), time.Time{}, time.Now().Add(time.Second))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, store.StatusFailed, rows[0].Status)
	assert.Empty(t, rows[0].Signature)
}

func TestService_IncinerateWithoutStore(t *testing.T) {
	gateway := newFakeGateway()
	wallet := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()

	gateway.addTokenAccount(TokenAccountRecord{
		Address: account, Mint: solana.NewWallet().PublicKey(), Owner: wallet, RawBalance: "0",
	})

	service := newTestService(t, gateway, nil)

	receipt, err := service.Incinerate(context.Background(), &fakeSigner{key: wallet}, []solana.PublicKey{account})
	require.NoError(t, err)
	assert.True(t, receipt.Confirmed)
}
