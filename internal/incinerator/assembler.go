package incinerator

import (
	"context"
	"strconv"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/sirupsen/logrus"

	"gor-incinerator-go/internal/config"
	"gor-incinerator-go/internal/logger"
)

// Assembler turns a validated set of accounts into one atomic burn/close
// transaction. Per-account ordering is strict: a burn always directly
// precedes the close of the same account, and fee transfers come last.
type Assembler struct {
	gateway Gateway
	fees    *FeeCalculator
	logger  *logger.Logger

	computeUnitPrice uint64
	computeUnitLimit uint32
}

// NewAssembler creates an instruction assembler.
func NewAssembler(gateway Gateway, fees *FeeCalculator, submit config.SubmitConfig, log *logger.Logger) *Assembler {
	return &Assembler{
		gateway:          gateway,
		fees:             fees,
		logger:           log,
		computeUnitPrice: submit.ComputeUnitPrice,
		computeUnitLimit: submit.ComputeUnitLimit,
	}
}

// BuildBurnOperation assembles the atomic operation for a request.
//
// Balance and mint data are read fresh from the ledger; caller-supplied
// balances are never trusted for the non-zero branch. The request is
// all-or-nothing: any account that cannot be burned or closed aborts the
// whole assembly before a transaction is produced.
func (a *Assembler) BuildBurnOperation(ctx context.Context, req BurnRequest) (*BurnOperation, error) {
	if len(req.Accounts) == 0 {
		return nil, validationErrorf("no accounts provided to close")
	}
	if len(req.Accounts) > config.MaxAccountsPerTx {
		return nil, validationErrorf("cannot process more than %d accounts per transaction", config.MaxAccountsPerTx)
	}

	instructions := []solana.Instruction{
		computebudget.NewSetComputeUnitPriceInstruction(a.computeUnitPrice).Build(),
		computebudget.NewSetComputeUnitLimitInstruction(a.computeUnitLimit).Build(),
	}

	var totalBurned uint64
	for _, address := range req.Accounts {
		account, err := a.gateway.GetTokenAccount(ctx, address)
		if err != nil {
			return nil, ledgerErrorf(err, "token account not found: %s", address)
		}

		if !account.Owner.Equals(req.Wallet) {
			return nil, validationErrorf("account %s does not belong to wallet %s", address, req.Wallet)
		}

		amount, err := strconv.ParseUint(account.RawBalance, 10, 64)
		if err != nil {
			return nil, ledgerErrorf(err, "malformed balance for account %s", address)
		}

		if amount > 0 {
			mint, err := a.gateway.GetMint(ctx, account.Mint)
			if err != nil {
				return nil, ledgerErrorf(err, "mint not found: %s", account.Mint)
			}

			if mint.Authority == nil || !mint.Authority.Equals(req.Wallet) {
				return nil, validationErrorf(
					"token account %s has a balance (%d) but wallet is not the mint authority to burn it",
					address, amount)
			}

			instructions = append(instructions, token.NewBurnCheckedInstruction(
				amount,
				mint.Decimals,
				address,
				account.Mint,
				req.Wallet,
				[]solana.PublicKey{},
			).Build())
			totalBurned += amount
		}

		// Close always follows the burn for the same account; rent goes
		// back to the wallet.
		instructions = append(instructions, token.NewCloseAccountInstruction(
			address,
			req.Wallet,
			req.Wallet,
			[]solana.PublicKey{},
		).Build())
	}

	fee, err := a.fees.CalculateFeeWithDiscount(len(req.Accounts), req.Holder)
	if err != nil {
		return nil, err
	}

	feeInstructions, err := a.fees.FeeTransferInstructions(len(req.Accounts), req.Wallet, req.Holder)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, feeInstructions...)

	blockhash, err := a.gateway.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, ledgerErrorf(err, "failed to get latest blockhash")
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(req.Wallet),
	)
	if err != nil {
		return nil, validationErrorf("failed to build transaction: %v", err)
	}

	serialized, err := tx.ToBase64()
	if err != nil {
		return nil, validationErrorf("failed to serialize transaction: %v", err)
	}

	a.logger.WithFields(logrus.Fields{
		"wallet":       req.Wallet.String(),
		"accounts":     len(req.Accounts),
		"total_burned": totalBurned,
		"service_fee":  fee.ServiceFee,
		"instructions": len(instructions),
	}).Debug("Assembled burn operation")

	return &BurnOperation{
		Transaction:           tx,
		SerializedTransaction: serialized,
		AccountsClosed:        len(req.Accounts),
		TotalBurned:           totalBurned,
		Fee:                   fee,
		Blockhash:             blockhash,
		RequiredSigners:       []solana.PublicKey{req.Wallet},
	}, nil
}
