package incinerator

import (
	"context"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"gor-incinerator-go/internal/logger"
)

// fakeGateway is an in-memory Gateway for tests. Call counters track how
// often each lookup path was exercised.
type fakeGateway struct {
	tokenAccounts map[string]*TokenAccountRecord
	mints         map[string]*MintInfo
	ownerAccounts []TokenAccountRecord
	ownerErr      error
	accountData   map[string][]byte
	blockhash     solana.Hash

	sendFunc   func(attempt int) (solana.Signature, error)
	statusFunc func(poll int) (*SignatureStatus, error)

	mintCalls   int
	ownerCalls  int
	sendCalls   int
	statusCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		tokenAccounts: make(map[string]*TokenAccountRecord),
		mints:         make(map[string]*MintInfo),
		accountData:   make(map[string][]byte),
		blockhash:     solana.Hash{0x01, 0x02, 0x03},
	}
}

func (g *fakeGateway) addTokenAccount(record TokenAccountRecord) {
	g.tokenAccounts[record.Address.String()] = &record
}

func (g *fakeGateway) addMint(mint solana.PublicKey, info MintInfo) {
	g.mints[mint.String()] = &info
}

func (g *fakeGateway) GetTokenAccount(_ context.Context, address solana.PublicKey) (*TokenAccountRecord, error) {
	record, ok := g.tokenAccounts[address.String()]
	if !ok {
		return nil, fmt.Errorf("token account not found: %s", address)
	}
	return record, nil
}

func (g *fakeGateway) GetMint(_ context.Context, mint solana.PublicKey) (*MintInfo, error) {
	g.mintCalls++
	info, ok := g.mints[mint.String()]
	if !ok {
		return nil, fmt.Errorf("mint not found: %s", mint)
	}
	return info, nil
}

func (g *fakeGateway) FindTokenAccountsByOwner(_ context.Context, _ solana.PublicKey) ([]TokenAccountRecord, error) {
	g.ownerCalls++
	if g.ownerErr != nil {
		return nil, g.ownerErr
	}
	return g.ownerAccounts, nil
}

func (g *fakeGateway) GetAccountInfo(_ context.Context, address solana.PublicKey) ([]byte, error) {
	return g.accountData[address.String()], nil
}

func (g *fakeGateway) GetLatestBlockhash(_ context.Context) (solana.Hash, error) {
	return g.blockhash, nil
}

func (g *fakeGateway) SendTransaction(_ context.Context, _ *solana.Transaction) (solana.Signature, error) {
	g.sendCalls++
	if g.sendFunc != nil {
		return g.sendFunc(g.sendCalls)
	}
	return solana.Signature{0xAA}, nil
}

func (g *fakeGateway) GetSignatureStatus(_ context.Context, _ solana.Signature) (*SignatureStatus, error) {
	g.statusCalls++
	if g.statusFunc != nil {
		return g.statusFunc(g.statusCalls)
	}
	return &SignatureStatus{ConfirmationStatus: ConfirmationConfirmed}, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	log, err := logger.NewLogger(logger.LogConfig{
		Level:  "error",
		Format: "text",
	})
	require.NoError(t, err)
	return log
}

// fakeSigner signs nothing but satisfies TransactionSigner.
type fakeSigner struct {
	key solana.PublicKey
	err error
}

func (s *fakeSigner) PublicKey() solana.PublicKey { return s.key }

func (s *fakeSigner) Sign(_ *solana.Transaction) error { return s.err }
