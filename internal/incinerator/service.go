package incinerator

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"gor-incinerator-go/internal/config"
	"gor-incinerator-go/internal/logger"
	"gor-incinerator-go/internal/store"
)

// Service ties discovery, classification, fee calculation, assembly,
// submission, and reconciliation logging into the end-to-end incineration
// flow. All state is request-scoped except the holder cache inside the
// verifier.
type Service struct {
	gateway    Gateway
	classifier *Classifier
	fees       *FeeCalculator
	assembler  *Assembler
	submitter  *Submitter
	verifier   *HolderVerifier
	records    store.Store
	logger     *logger.Logger
}

// NewService wires the incinerator components together. records may be nil
// when reconciliation logging is disabled.
func NewService(
	gateway Gateway,
	classifier *Classifier,
	fees *FeeCalculator,
	assembler *Assembler,
	submitter *Submitter,
	verifier *HolderVerifier,
	records store.Store,
	log *logger.Logger,
) *Service {
	return &Service{
		gateway:    gateway,
		classifier: classifier,
		fees:       fees,
		assembler:  assembler,
		submitter:  submitter,
		verifier:   verifier,
		records:    records,
		logger:     log,
	}
}

// FindClosableAccounts discovers the wallet's token accounts and classifies
// each one. maxAccounts caps the eligible subset for convenience; a zero or
// negative cap means no cap. The assembler still rejects oversized batches,
// so this pre-truncation never bypasses the per-transaction limit.
func (s *Service) FindClosableAccounts(ctx context.Context, wallet solana.PublicKey, maxAccounts int) (*AssetScan, error) {
	accounts, err := s.gateway.FindTokenAccountsByOwner(ctx, wallet)
	if err != nil {
		return nil, ledgerErrorf(err, "failed to query token accounts for %s", wallet)
	}

	results, eligible, err := s.classifier.ClassifyBatch(ctx, accounts, wallet)
	if err != nil {
		return nil, err
	}

	if maxAccounts > 0 && len(eligible) > maxAccounts {
		eligible = eligible[:maxAccounts]
	}

	scan := &AssetScan{
		Wallet:        wallet,
		TotalAccounts: len(accounts),
		Results:       results,
		Eligible:      eligible,
	}

	if len(eligible) > 0 {
		// The preview covers at most one transaction's worth of accounts;
		// wallets with more eligible accounts are processed in batches and
		// must not fail discovery.
		previewCount := len(eligible)
		if previewCount > config.MaxAccountsPerTx {
			previewCount = config.MaxAccountsPerTx
		}
		fee, err := s.fees.CalculateFee(previewCount)
		if err != nil {
			return nil, err
		}
		scan.Fee = &fee
	}

	s.logger.WithFields(logrus.Fields{
		"wallet":   wallet.String(),
		"total":    len(accounts),
		"eligible": len(eligible),
	}).Info("Scanned wallet for closable accounts")

	return scan, nil
}

// Incinerate builds, submits, and confirms one burn/close operation for the
// given accounts. A pending reconciliation record is written after assembly;
// persistence failures are logged and never block the burn.
func (s *Service) Incinerate(ctx context.Context, signer TransactionSigner, accounts []solana.PublicKey) (*BurnReceipt, error) {
	wallet := signer.PublicKey()
	holder := s.verifier.IsDiscountEligible(ctx, wallet)

	op, err := s.assembler.BuildBurnOperation(ctx, BurnRequest{
		Wallet:   wallet,
		Accounts: accounts,
		Holder:   holder,
	})
	if err != nil {
		return nil, err
	}

	recordID := s.logPending(ctx, wallet, op)

	s.logger.LogBurnAttempt(wallet.String(), op.AccountsClosed, op.Fee.ServiceFee)

	result, submitErr := s.submitter.Execute(ctx, op.Transaction, signer)

	s.updateRecord(ctx, recordID, result)

	if submitErr != nil {
		return nil, submitErr
	}

	s.logger.LogBurnResult(result.Signature.String(), op.AccountsClosed, result.Confirmed)

	return &BurnReceipt{
		Signature:      result.Signature,
		Confirmed:      result.Confirmed,
		AccountsClosed: op.AccountsClosed,
		TotalBurned:    op.TotalBurned,
		Fee:            op.Fee,
	}, nil
}

// logPending writes the pending reconciliation record, returning 0 when the
// store is unavailable or the write fails.
func (s *Service) logPending(ctx context.Context, wallet solana.PublicKey, op *BurnOperation) int64 {
	if s.records == nil {
		return 0
	}

	id, err := s.records.LogTransaction(ctx, store.TransactionRecord{
		Timestamp:      time.Now().UTC(),
		Wallet:         wallet.String(),
		AccountsClosed: op.AccountsClosed,
		TotalRent:      op.Fee.TotalRent,
		ServiceFee:     op.Fee.ServiceFee,
		TreasuryFee:    op.Fee.TreasuryFee,
		IncineratorFee: op.Fee.IncineratorFee,
		Status:         store.StatusPending,
	})
	if err != nil {
		s.logger.WithError(err).Warn("Failed to log transaction record, continuing")
		return 0
	}
	return id
}

// updateRecord best-effort updates the reconciliation record with the
// submission outcome.
func (s *Service) updateRecord(ctx context.Context, id int64, result *SubmitResult) {
	if s.records == nil || id == 0 || result == nil {
		return
	}

	status := store.StatusFailed
	if result.Confirmed {
		status = store.StatusConfirmed
	}

	signature := ""
	if !result.Signature.IsZero() {
		signature = result.Signature.String()
	}

	if err := s.records.UpdateStatus(ctx, id, signature, status); err != nil {
		s.logger.WithError(err).Warn("Failed to update transaction record, continuing")
	}
}
