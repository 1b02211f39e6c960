package incinerator

import (
	"errors"
	"fmt"
)

// ValidationError means the caller's input is structurally or semantically
// invalid. It is never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// LedgerError means required on-chain data could not be fetched. Reads
// surfacing this are retryable by the caller.
type LedgerError struct {
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

func ledgerErrorf(err error, format string, args ...interface{}) *LedgerError {
	return &LedgerError{Message: fmt.Sprintf(format, args...), Err: err}
}

// TransactionError means submission exhausted its retries or the transaction
// failed on chain. Terminal.
type TransactionError struct {
	Message  string
	Attempts int
	Err      error
}

func (e *TransactionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsLedgerError reports whether err is (or wraps) a LedgerError.
func IsLedgerError(err error) bool {
	var le *LedgerError
	return errors.As(err, &le)
}

// IsTransactionError reports whether err is (or wraps) a TransactionError.
func IsTransactionError(err error) bool {
	var te *TransactionError
	return errors.As(err, &te)
}
