package incinerator

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gor-incinerator-go/internal/config"
)

func newTestAssembler(t *testing.T, gateway Gateway, feeCfg config.FeeConfig) *Assembler {
	fees, err := NewFeeCalculator(feeCfg)
	require.NoError(t, err)
	return NewAssembler(gateway, fees, config.SubmitConfig{
		ComputeUnitPrice: config.DefaultComputeUnitPrice,
		ComputeUnitLimit: config.DefaultComputeUnitLimit,
	}, newTestLogger(t))
}

func TestAssembler_BurnPrecedesClose(t *testing.T) {
	gateway := newFakeGateway()
	wallet := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	incineratorVault := solana.NewWallet().PublicKey()

	emptyAccount := solana.NewWallet().PublicKey()
	dustAccount := solana.NewWallet().PublicKey()
	dustMint := solana.NewWallet().PublicKey()

	gateway.addTokenAccount(TokenAccountRecord{
		Address: emptyAccount, Mint: solana.NewWallet().PublicKey(), Owner: wallet, RawBalance: "0",
	})
	gateway.addTokenAccount(TokenAccountRecord{
		Address: dustAccount, Mint: dustMint, Owner: wallet, RawBalance: "500",
	})
	gateway.addMint(dustMint, MintInfo{Authority: &wallet, Decimals: 6})

	assembler := newTestAssembler(t, gateway, config.FeeConfig{
		Percentage:       5,
		RentPerAccount:   config.DefaultRentPerAccount,
		TreasuryVault:    treasury.String(),
		IncineratorVault: incineratorVault.String(),
	})

	op, err := assembler.BuildBurnOperation(context.Background(), BurnRequest{
		Wallet:   wallet,
		Accounts: []solana.PublicKey{emptyAccount, dustAccount},
	})
	require.NoError(t, err)

	// Expected: 2 compute budget, close(empty), burn(dust), close(dust),
	// 2 fee transfers.
	instructions := op.Transaction.Message.Instructions
	require.Len(t, instructions, 7)

	programIDs := make([]solana.PublicKey, len(instructions))
	for i, ix := range instructions {
		programID, err := op.Transaction.Message.Program(ix.ProgramIDIndex)
		require.NoError(t, err)
		programIDs[i] = programID
	}

	assert.Equal(t, computebudget.ProgramID, programIDs[0])
	assert.Equal(t, computebudget.ProgramID, programIDs[1])
	assert.Equal(t, token.ProgramID, programIDs[2])
	assert.Equal(t, token.ProgramID, programIDs[3])
	assert.Equal(t, token.ProgramID, programIDs[4])
	assert.Equal(t, system.ProgramID, programIDs[5])
	assert.Equal(t, system.ProgramID, programIDs[6])

	assert.Equal(t, 2, op.AccountsClosed)
	assert.Equal(t, uint64(500), op.TotalBurned)
	assert.Equal(t, uint64(2*config.DefaultRentPerAccount), op.Fee.TotalRent)
	assert.NotEmpty(t, op.SerializedTransaction)
	assert.Equal(t, []solana.PublicKey{wallet}, op.RequiredSigners)
}

func TestAssembler_RejectsEmptyRequest(t *testing.T) {
	gateway := newFakeGateway()
	assembler := newTestAssembler(t, gateway, config.FeeConfig{
		Percentage:     5,
		RentPerAccount: config.DefaultRentPerAccount,
	})

	_, err := assembler.BuildBurnOperation(context.Background(), BurnRequest{
		Wallet: solana.NewWallet().PublicKey(),
	})
	assert.True(t, IsValidationError(err))
}

func TestAssembler_RejectsOversizedRequest(t *testing.T) {
	gateway := newFakeGateway()
	assembler := newTestAssembler(t, gateway, config.FeeConfig{
		Percentage:     5,
		RentPerAccount: config.DefaultRentPerAccount,
	})

	accounts := make([]solana.PublicKey, config.MaxAccountsPerTx+1)
	for i := range accounts {
		accounts[i] = solana.NewWallet().PublicKey()
	}

	_, err := assembler.BuildBurnOperation(context.Background(), BurnRequest{
		Wallet:   solana.NewWallet().PublicKey(),
		Accounts: accounts,
	})
	assert.True(t, IsValidationError(err))
}

func TestAssembler_RejectsForeignAccount(t *testing.T) {
	gateway := newFakeGateway()
	wallet := solana.NewWallet().PublicKey()
	stranger := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()

	gateway.addTokenAccount(TokenAccountRecord{
		Address: account, Mint: solana.NewWallet().PublicKey(), Owner: stranger, RawBalance: "0",
	})

	assembler := newTestAssembler(t, gateway, config.FeeConfig{
		Percentage:     5,
		RentPerAccount: config.DefaultRentPerAccount,
	})

	_, err := assembler.BuildBurnOperation(context.Background(), BurnRequest{
		Wallet:   wallet,
		Accounts: []solana.PublicKey{account},
	})
	assert.True(t, IsValidationError(err))
}

func TestAssembler_AllOrNothing(t *testing.T) {
	gateway := newFakeGateway()
	wallet := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()

	goodAccount := solana.NewWallet().PublicKey()
	stuckAccount := solana.NewWallet().PublicKey()
	stuckMint := solana.NewWallet().PublicKey()

	gateway.addTokenAccount(TokenAccountRecord{
		Address: goodAccount, Mint: solana.NewWallet().PublicKey(), Owner: wallet, RawBalance: "0",
	})
	// A balance the wallet has no authority to burn poisons the whole batch.
	gateway.addTokenAccount(TokenAccountRecord{
		Address: stuckAccount, Mint: stuckMint, Owner: wallet, RawBalance: "9",
	})
	gateway.addMint(stuckMint, MintInfo{Authority: &other, Decimals: 0})

	assembler := newTestAssembler(t, gateway, config.FeeConfig{
		Percentage:     5,
		RentPerAccount: config.DefaultRentPerAccount,
	})

	_, err := assembler.BuildBurnOperation(context.Background(), BurnRequest{
		Wallet:   wallet,
		Accounts: []solana.PublicKey{goodAccount, stuckAccount},
	})
	assert.True(t, IsValidationError(err))
}

func TestAssembler_MissingAccountIsLedgerError(t *testing.T) {
	gateway := newFakeGateway()
	assembler := newTestAssembler(t, gateway, config.FeeConfig{
		Percentage:     5,
		RentPerAccount: config.DefaultRentPerAccount,
	})

	_, err := assembler.BuildBurnOperation(context.Background(), BurnRequest{
		Wallet:   solana.NewWallet().PublicKey(),
		Accounts: []solana.PublicKey{solana.NewWallet().PublicKey()},
	})
	assert.True(t, IsLedgerError(err))
}

func TestAssembler_HolderPaysNoFees(t *testing.T) {
	gateway := newFakeGateway()
	wallet := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	incineratorVault := solana.NewWallet().PublicKey()
	account := solana.NewWallet().PublicKey()

	gateway.addTokenAccount(TokenAccountRecord{
		Address: account, Mint: solana.NewWallet().PublicKey(), Owner: wallet, RawBalance: "0",
	})

	assembler := newTestAssembler(t, gateway, config.FeeConfig{
		Percentage:       5,
		RentPerAccount:   config.DefaultRentPerAccount,
		TreasuryVault:    treasury.String(),
		IncineratorVault: incineratorVault.String(),
	})

	op, err := assembler.BuildBurnOperation(context.Background(), BurnRequest{
		Wallet:   wallet,
		Accounts: []solana.PublicKey{account},
		Holder:   true,
	})
	require.NoError(t, err)

	// 2 compute budget + 1 close, no transfers.
	assert.Len(t, op.Transaction.Message.Instructions, 3)
	assert.Equal(t, uint64(0), op.Fee.ServiceFee)
	assert.Equal(t, op.Fee.TotalRent, op.Fee.NetAmount)
}
