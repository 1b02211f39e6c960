package incinerator

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"gor-incinerator-go/internal/config"
	"gor-incinerator-go/internal/logger"
)

// RetryPolicy bounds the send-retry loop. Backoff maps a 1-based attempt
// number to the delay slept after that attempt fails.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// DefaultRetryPolicy retries up to the configured maximum with exponential
// backoff: 1s, 2s, 4s, doubling per attempt.
func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}
}

// Submitter signs, sends, and confirms assembled operations.
//
// Send failures are retried per the policy. On-chain failures and
// confirmation timeouts are terminal: a transaction that the ledger rejected
// will not pass on a resend, and a timed-out one may still land later, so
// resending it risks a duplicate.
type Submitter struct {
	gateway        Gateway
	policy         RetryPolicy
	confirmTimeout time.Duration
	pollInterval   time.Duration
	logger         *logger.Logger

	// sleep is injectable so tests can observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSubmitter creates a transaction submitter.
func NewSubmitter(gateway Gateway, policy RetryPolicy, cfg config.SubmitConfig, log *logger.Logger) *Submitter {
	return &Submitter{
		gateway:        gateway,
		policy:         policy,
		confirmTimeout: time.Duration(cfg.ConfirmTimeoutSec) * time.Second,
		pollInterval:   time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		logger:         log,
		sleep:          sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Execute signs and submits the operation, then waits for confirmation.
//
// The returned SubmitResult always carries the last signature and attempt
// count; err is non-nil for exhausted retries, on-chain failure, and
// confirmation timeout.
func (s *Submitter) Execute(ctx context.Context, tx *solana.Transaction, signer TransactionSigner) (*SubmitResult, error) {
	result := &SubmitResult{}

	if err := signer.Sign(tx); err != nil {
		return result, &TransactionError{Message: "failed to sign transaction", Err: err}
	}

	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		result.Attempts = attempt

		sig, err := s.gateway.SendTransaction(ctx, tx)
		if err != nil {
			lastErr = err
			s.logger.WithFields(logrus.Fields{
				"attempt":     attempt,
				"max_retries": s.policy.MaxAttempts,
			}).WithError(err).Warn("Transaction send failed, retrying")

			if attempt < s.policy.MaxAttempts {
				if serr := s.sleep(ctx, s.policy.Backoff(attempt)); serr != nil {
					return result, &TransactionError{Message: "submission cancelled", Attempts: attempt, Err: serr}
				}
			}
			continue
		}

		result.Signature = sig
		s.logger.WithFields(logrus.Fields{
			"signature": sig.String(),
			"attempt":   attempt,
		}).Info("Transaction sent")

		return s.confirm(ctx, result)
	}

	return result, &TransactionError{
		Message:  "failed to send transaction after retries",
		Attempts: s.policy.MaxAttempts,
		Err:      lastErr,
	}
}

// confirm polls signature status until success, on-chain failure, or the
// wall-clock ceiling. Transient poll errors are swallowed and polling
// continues.
func (s *Submitter) confirm(ctx context.Context, result *SubmitResult) (*SubmitResult, error) {
	deadline := time.Now().Add(s.confirmTimeout)

	for time.Now().Before(deadline) {
		status, err := s.gateway.GetSignatureStatus(ctx, result.Signature)
		if err != nil {
			s.logger.WithError(err).Debug("Error checking transaction status, continuing to poll")
		} else if status != nil {
			if status.Err != nil {
				s.logger.WithFields(logrus.Fields{
					"signature": result.Signature.String(),
					"error":     status.Err,
				}).Error("Transaction failed on chain")
				return result, &TransactionError{
					Message:  "transaction failed on chain",
					Attempts: result.Attempts,
				}
			}
			if status.ConfirmationStatus != "" {
				result.Confirmed = true
				s.logger.WithTransaction(result.Signature.String()).Info("Transaction confirmed")
				return result, nil
			}
		}

		if serr := s.sleep(ctx, s.pollInterval); serr != nil {
			return result, &TransactionError{Message: "confirmation cancelled", Attempts: result.Attempts, Err: serr}
		}
	}

	// The operation may still land after the ceiling; the caller owns
	// reconciliation of timed-out submissions.
	result.TimedOut = true
	s.logger.WithFields(logrus.Fields{
		"signature":  result.Signature.String(),
		"timeout_ms": s.confirmTimeout.Milliseconds(),
	}).Warn("Transaction confirmation timeout")

	return result, &TransactionError{
		Message:  "transaction confirmation timed out",
		Attempts: result.Attempts,
	}
}
