package config

import "github.com/gagliardetto/solana-go"

// Network constants
const (
	GorbaganaMainnetRPC = "https://rpc.gorbagana.wtf"
	SolanaMainnetRPC    = "https://api.mainnet-beta.solana.com"
	SolanaDevnetRPC     = "https://api.devnet.solana.com"

	LamportsPerGor = 1_000_000_000
)

// Incinerator constants
const (
	// MaxAccountsPerTx is the hard per-transaction account cap. It is tied to
	// the ledger's compute/size limits for a single atomic transaction and is
	// enforced by the assembler, which rejects oversized batches rather than
	// truncating them.
	MaxAccountsPerTx = 14

	// DefaultRentPerAccount is the rent-exempt minimum held by a token
	// account, in lamports (0.00203928 GOR).
	DefaultRentPerAccount = 2_039_280

	// DefaultFeePercentage is the service fee taken from reclaimed rent.
	DefaultFeePercentage = 5

	// HolderFeePercentage applies to verified collection holders.
	HolderFeePercentage = 0
)

// Submission constants
const (
	DefaultMaxRetries        = 10
	DefaultConfirmTimeoutSec = 60
	DefaultPollIntervalMs    = 1000

	DefaultComputeUnitPrice = 1000   // micro-lamports per compute unit
	DefaultComputeUnitLimit = 45_000 // units
)

// Program addresses (identical to Solana's)
var (
	SystemProgramID = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	TokenProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

	// Metaplex token metadata program, used for holder verification.
	MetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// DefaultBlacklist lists mints that must never be closed through the
// incinerator regardless of balance or authority.
var DefaultBlacklist = []string{
	"EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", // USDC
}

// GetRPCEndpoint returns RPC endpoint based on network
func GetRPCEndpoint(network string) string {
	switch network {
	case "gorbagana":
		return GorbaganaMainnetRPC
	case "mainnet":
		return SolanaMainnetRPC
	case "devnet":
		return SolanaDevnetRPC
	default:
		return GorbaganaMainnetRPC
	}
}

// ConvertGorToLamports converts GOR to lamports
func ConvertGorToLamports(gor float64) uint64 {
	return uint64(gor * LamportsPerGor)
}

// ConvertLamportsToGor converts lamports to GOR
func ConvertLamportsToGor(lamports uint64) float64 {
	return float64(lamports) / LamportsPerGor
}
