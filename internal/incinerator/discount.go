package incinerator

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"gor-incinerator-go/internal/config"
	"gor-incinerator-go/internal/logger"
)

// metadataUpdateAuthorityOffset is where the update authority starts in a
// Metaplex metadata account: one key byte, then 32 bytes of authority.
const metadataUpdateAuthorityOffset = 1

// HolderVerifier resolves whether a wallet qualifies for the zero-fee tier by
// holding a verified collection token. Results are cached per wallet with a
// TTL; lookup errors resolve to false so a verification outage never blocks
// or misprices a burn.
type HolderVerifier struct {
	gateway Gateway
	cache   *gocache.Cache
	logger  *logger.Logger

	enabled         bool
	verifiedMints   map[string]struct{}
	updateAuthority *solana.PublicKey
}

// NewHolderVerifier creates a holder verifier with a TTL cache.
func NewHolderVerifier(gateway Gateway, cfg config.DiscountConfig, ttl CacheTTL, log *logger.Logger) *HolderVerifier {
	mints := make(map[string]struct{}, len(cfg.VerifiedMints))
	for _, mint := range cfg.VerifiedMints {
		mints[mint] = struct{}{}
	}

	v := &HolderVerifier{
		gateway:       gateway,
		cache:         gocache.New(ttl.TTL, ttl.Cleanup),
		logger:        log,
		enabled:       cfg.Enabled,
		verifiedMints: mints,
	}

	if cfg.UpdateAuthority != "" {
		if authority, err := solana.PublicKeyFromBase58(cfg.UpdateAuthority); err == nil {
			v.updateAuthority = &authority
		}
	}

	return v
}

// CacheTTL bundles the cache expiry knobs so tests can shrink them.
type CacheTTL struct {
	TTL     time.Duration
	Cleanup time.Duration
}

// DefaultCacheTTL is the production holder-cache policy: 5 minute entries.
func DefaultCacheTTL(ttl time.Duration) CacheTTL {
	return CacheTTL{TTL: ttl, Cleanup: 10 * time.Minute}
}

// IsDiscountEligible reports whether the wallet holds a verified collection
// token. Both positive and negative outcomes are cached; errors are absorbed
// into false and not cached, so the next call retries the lookup.
func (v *HolderVerifier) IsDiscountEligible(ctx context.Context, wallet solana.PublicKey) bool {
	if !v.enabled {
		return false
	}

	key := wallet.String()
	if cached, found := v.cache.Get(key); found {
		return cached.(bool)
	}

	// Without any verification criteria nothing can qualify.
	if len(v.verifiedMints) == 0 && v.updateAuthority == nil {
		v.cache.Set(key, false, gocache.DefaultExpiration)
		return false
	}

	accounts, err := v.gateway.FindTokenAccountsByOwner(ctx, wallet)
	if err != nil {
		v.logger.WithError(err).Warn("Holder verification lookup failed, applying standard fee")
		return false
	}

	for _, account := range accounts {
		// Collection tokens hold exactly one indivisible unit.
		if account.RawBalance != "1" {
			continue
		}

		holder, err := v.verifyMint(ctx, account.Mint)
		if err != nil {
			v.logger.WithFields(logrus.Fields{
				"mint": account.Mint.String(),
			}).WithError(err).Debug("Mint verification failed, skipping")
			continue
		}
		if holder {
			v.cache.Set(key, true, gocache.DefaultExpiration)
			return true
		}
	}

	v.cache.Set(key, false, gocache.DefaultExpiration)
	return false
}

// verifyMint checks one candidate mint against the verified-mints whitelist
// and the collection's metadata update authority.
func (v *HolderVerifier) verifyMint(ctx context.Context, mint solana.PublicKey) (bool, error) {
	if _, ok := v.verifiedMints[mint.String()]; ok {
		return true, nil
	}

	if v.updateAuthority == nil {
		return false, nil
	}

	metadataAddress, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			config.MetadataProgramID.Bytes(),
			mint.Bytes(),
		},
		config.MetadataProgramID,
	)
	if err != nil {
		return false, err
	}

	data, err := v.gateway.GetAccountInfo(ctx, metadataAddress)
	if err != nil {
		return false, err
	}
	if len(data) < metadataUpdateAuthorityOffset+solana.PublicKeyLength {
		return false, nil
	}

	authority := solana.PublicKeyFromBytes(data[metadataUpdateAuthorityOffset : metadataUpdateAuthorityOffset+solana.PublicKeyLength])
	return authority.Equals(*v.updateAuthority), nil
}
