package incinerator

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"gor-incinerator-go/internal/logger"
)

// Classifier decides burn/close eligibility for token accounts.
//
// Decision order, first match wins:
//  1. blacklisted mint: never eligible, and the mint-authority lookup is
//     skipped entirely,
//  2. zero balance: eligible for close without a burn,
//  3. non-zero balance: eligible only when the wallet is the mint authority.
type Classifier struct {
	gateway   Gateway
	blacklist map[string]struct{}
	logger    *logger.Logger
}

// NewClassifier creates a classifier with the given protected-mint blacklist.
func NewClassifier(gateway Gateway, blacklist []string, log *logger.Logger) *Classifier {
	set := make(map[string]struct{}, len(blacklist))
	for _, mint := range blacklist {
		set[mint] = struct{}{}
	}
	return &Classifier{
		gateway:   gateway,
		blacklist: set,
		logger:    log,
	}
}

// Classify evaluates one token account against the wallet owner.
// A LedgerError is returned only when a required mint-authority lookup fails.
func (c *Classifier) Classify(ctx context.Context, account TokenAccountRecord, owner solana.PublicKey) (EligibilityResult, error) {
	result := EligibilityResult{Account: account}

	if _, ok := c.blacklist[account.Mint.String()]; ok {
		result.Reason = ReasonBlacklisted
		result.Comment = "Mint is blacklisted, never closable."
		return result, nil
	}

	if account.RawBalance == "0" {
		result.Eligible = true
		result.Reason = ReasonZeroBalance
		result.Comment = "Zero balance, allowing close."
		return result, nil
	}

	mint, err := c.gateway.GetMint(ctx, account.Mint)
	if err != nil {
		return result, ledgerErrorf(err, "failed to resolve mint authority for %s", account.Mint)
	}

	if mint.Authority != nil && mint.Authority.Equals(owner) {
		result.Eligible = true
		result.Reason = ReasonMintAuthorityMatch
		result.Comment = "Wallet is Mint Authority, allowing burn of non-zero balance."
		return result, nil
	}

	result.Reason = ReasonNonZeroNotAuthority
	result.Comment = "Non-zero balance and wallet is not the mint authority."
	return result, nil
}

// ClassifyBatch classifies every account in input order and returns the full
// result set plus the eligible subset, also in input order.
func (c *Classifier) ClassifyBatch(ctx context.Context, accounts []TokenAccountRecord, owner solana.PublicKey) ([]EligibilityResult, []TokenAccountRecord, error) {
	results := make([]EligibilityResult, 0, len(accounts))
	var eligible []TokenAccountRecord

	for _, account := range accounts {
		result, err := c.Classify(ctx, account, owner)
		if err != nil {
			return nil, nil, err
		}

		c.logger.WithFields(logrus.Fields{
			"account":  account.Address.String(),
			"mint":     account.Mint.String(),
			"eligible": result.Eligible,
			"reason":   string(result.Reason),
		}).Debug("Classified token account")

		results = append(results, result)
		if result.Eligible {
			eligible = append(eligible, account)
		}
	}

	return results, eligible, nil
}
