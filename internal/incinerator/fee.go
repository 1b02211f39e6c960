package incinerator

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"gor-incinerator-go/internal/config"
)

// FeeCalculator computes rent totals and the service fee split for a burn
// operation. All arithmetic is integer; fractions are floored and any odd
// remainder of the 50/50 split is dropped.
type FeeCalculator struct {
	rentPerAccount uint64
	feePercentage  uint64
	maxAccounts    int

	treasuryVault    *solana.PublicKey
	incineratorVault *solana.PublicKey
}

// NewFeeCalculator creates a fee calculator from validated configuration.
func NewFeeCalculator(cfg config.FeeConfig) (*FeeCalculator, error) {
	if cfg.Percentage > 100 {
		return nil, validationErrorf("fee percentage must be between 0 and 100 (got %d)", cfg.Percentage)
	}
	if cfg.RentPerAccount == 0 {
		return nil, validationErrorf("rent per account must be positive")
	}

	fc := &FeeCalculator{
		rentPerAccount: cfg.RentPerAccount,
		feePercentage:  cfg.Percentage,
		maxAccounts:    config.MaxAccountsPerTx,
	}

	if cfg.TreasuryVault != "" {
		vault, err := solana.PublicKeyFromBase58(cfg.TreasuryVault)
		if err != nil {
			return nil, validationErrorf("invalid treasury vault address: %s", cfg.TreasuryVault)
		}
		fc.treasuryVault = &vault
	}
	if cfg.IncineratorVault != "" {
		vault, err := solana.PublicKeyFromBase58(cfg.IncineratorVault)
		if err != nil {
			return nil, validationErrorf("invalid incinerator vault address: %s", cfg.IncineratorVault)
		}
		fc.incineratorVault = &vault
	}

	return fc, nil
}

// CalculateFee computes the fee breakdown for closing accountCount accounts.
func (f *FeeCalculator) CalculateFee(accountCount int) (FeeCalculation, error) {
	if accountCount <= 0 {
		return FeeCalculation{}, validationErrorf("account count must be positive")
	}
	if accountCount > f.maxAccounts {
		return FeeCalculation{}, validationErrorf("cannot close more than %d accounts per transaction", f.maxAccounts)
	}

	totalRent := uint64(accountCount) * f.rentPerAccount
	serviceFee := totalRent * f.feePercentage / 100

	// 50/50 split; the odd lamport of an odd serviceFee goes to neither party.
	treasuryFee := serviceFee / 2
	incineratorFee := serviceFee / 2

	return FeeCalculation{
		TotalRent:      totalRent,
		ServiceFee:     serviceFee,
		TreasuryFee:    treasuryFee,
		IncineratorFee: incineratorFee,
		NetAmount:      totalRent - serviceFee,
	}, nil
}

// CalculateFeeWithDiscount computes the fee breakdown, zeroing all fee fields
// for verified collection holders.
func (f *FeeCalculator) CalculateFeeWithDiscount(accountCount int, holder bool) (FeeCalculation, error) {
	if !holder {
		return f.CalculateFee(accountCount)
	}

	if accountCount <= 0 {
		return FeeCalculation{}, validationErrorf("account count must be positive")
	}
	if accountCount > f.maxAccounts {
		return FeeCalculation{}, validationErrorf("cannot close more than %d accounts per transaction", f.maxAccounts)
	}

	totalRent := uint64(accountCount) * f.rentPerAccount
	return FeeCalculation{
		TotalRent: totalRent,
		NetAmount: totalRent,
	}, nil
}

// FeeTransferInstructions builds one system transfer per non-zero fee share.
// Holders and zero shares produce no instructions. Returns nil when no fee
// recipients are configured.
func (f *FeeCalculator) FeeTransferInstructions(accountCount int, payer solana.PublicKey, holder bool) ([]solana.Instruction, error) {
	if holder {
		return nil, nil
	}
	if f.treasuryVault == nil || f.incineratorVault == nil {
		return nil, nil
	}

	calc, err := f.CalculateFee(accountCount)
	if err != nil {
		return nil, err
	}

	var instructions []solana.Instruction
	if calc.TreasuryFee > 0 {
		instructions = append(instructions, system.NewTransferInstruction(
			calc.TreasuryFee,
			payer,
			*f.treasuryVault,
		).Build())
	}
	if calc.IncineratorFee > 0 {
		instructions = append(instructions, system.NewTransferInstruction(
			calc.IncineratorFee,
			payer,
			*f.incineratorVault,
		).Build())
	}

	return instructions, nil
}
