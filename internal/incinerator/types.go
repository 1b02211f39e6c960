package incinerator

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// TokenAccountRecord represents one on-ledger token account owned by a wallet.
// RawBalance is the smallest-unit amount as a decimal string; eligibility
// decisions compare it against "0" exactly and never parse it as a float.
type TokenAccountRecord struct {
	Address    solana.PublicKey
	Mint       solana.PublicKey
	Owner      solana.PublicKey
	RawBalance string
	Decimals   uint8
}

// MintInfo holds the mint fields the incinerator cares about. Authority is nil
// when the mint authority has been revoked.
type MintInfo struct {
	Authority *solana.PublicKey
	Decimals  uint8
	Supply    uint64
}

// SignatureStatus is the processing state of a submitted transaction.
// Err is non-nil when the transaction failed on chain.
type SignatureStatus struct {
	Err                interface{}
	ConfirmationStatus string
}

// Signature confirmation levels as reported by the ledger.
const (
	ConfirmationProcessed = "processed"
	ConfirmationConfirmed = "confirmed"
	ConfirmationFinalized = "finalized"
)

// Gateway is the ledger-access capability the incinerator core depends on.
// Every call is fallible, potentially slow, and honors context cancellation.
type Gateway interface {
	// GetTokenAccount fetches and decodes a token account. The returned
	// record has Decimals unset; decimals are resolved from the mint when a
	// burn is required.
	GetTokenAccount(ctx context.Context, address solana.PublicKey) (*TokenAccountRecord, error)

	// GetMint fetches and decodes mint state for a token type.
	GetMint(ctx context.Context, mint solana.PublicKey) (*MintInfo, error)

	// FindTokenAccountsByOwner lists all token accounts owned by a wallet.
	FindTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]TokenAccountRecord, error)

	// GetAccountInfo returns the raw data of an arbitrary account, or a
	// nil slice when the account does not exist.
	GetAccountInfo(ctx context.Context, address solana.PublicKey) ([]byte, error)

	// GetLatestBlockhash returns a recent blockhash for transaction assembly.
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)

	// SendTransaction submits a signed transaction with fast (processed)
	// acknowledgment preference.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)

	// GetSignatureStatus returns the status of a submitted signature, or
	// (nil, nil) while the ledger does not know the signature yet.
	GetSignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)
}

// TransactionSigner signs assembled transactions. Implemented by wallet.Wallet.
type TransactionSigner interface {
	PublicKey() solana.PublicKey
	Sign(tx *solana.Transaction) error
}

// ReasonCode explains an eligibility decision.
type ReasonCode string

const (
	ReasonZeroBalance         ReasonCode = "zero_balance"
	ReasonMintAuthorityMatch  ReasonCode = "mint_authority_match"
	ReasonNonZeroNotAuthority ReasonCode = "non_zero_not_authority"
	ReasonBlacklisted         ReasonCode = "blacklisted"
)

// EligibilityResult is the outcome of classifying one token account.
// Exactly one reason code applies; Blacklisted overrides everything else.
type EligibilityResult struct {
	Account  TokenAccountRecord
	Eligible bool
	Reason   ReasonCode
	Comment  string
}

// FeeCalculation is the rent/fee breakdown for one burn operation, all
// amounts in lamports.
type FeeCalculation struct {
	TotalRent      uint64
	ServiceFee     uint64
	TreasuryFee    uint64
	IncineratorFee uint64
	NetAmount      uint64
}

// BurnRequest is the unit of work passed into the assembler.
type BurnRequest struct {
	Wallet   solana.PublicKey
	Accounts []solana.PublicKey

	// Holder zeroes the service fee for verified collection holders.
	Holder bool
}

// BurnOperation is a fully assembled, unsigned atomic operation together with
// everything a caller needs to sign and track it.
type BurnOperation struct {
	Transaction           *solana.Transaction
	SerializedTransaction string // base64, suitable for external signing
	AccountsClosed        int
	TotalBurned           uint64
	Fee                   FeeCalculation
	Blockhash             solana.Hash
	RequiredSigners       []solana.PublicKey
}

// SubmitResult is the outcome of a submission attempt sequence.
type SubmitResult struct {
	Signature solana.Signature
	Confirmed bool
	Attempts  int
	TimedOut  bool
}

// AssetScan is the discovery summary for a wallet. Fee previews the first
// batch: it covers min(len(Eligible), MaxAccountsPerTx) accounts.
type AssetScan struct {
	Wallet        solana.PublicKey
	TotalAccounts int
	Results       []EligibilityResult
	Eligible      []TokenAccountRecord
	Fee           *FeeCalculation
}

// BurnReceipt is returned to the caller after an end-to-end incineration.
type BurnReceipt struct {
	Signature      solana.Signature
	Confirmed      bool
	AccountsClosed int
	TotalBurned    uint64
	Fee            FeeCalculation
}
