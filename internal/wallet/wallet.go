package wallet

import (
	"encoding/json"
	"fmt"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/tyler-smith/go-bip39"

	"gor-incinerator-go/internal/config"
	"gor-incinerator-go/internal/incinerator"
)

// Wallet holds the signing keypair for the burn wallet. It accepts a base58
// private key, a keypair JSON array, or a BIP-39 mnemonic.
type Wallet struct {
	account types.Account
	pubkey  solana.PublicKey
	logger  *logrus.Logger
}

var _ incinerator.TransactionSigner = (*Wallet)(nil)

// NewWallet creates a wallet from the first configured key material.
func NewWallet(cfg config.WalletConfig, logger *logrus.Logger) (*Wallet, error) {
	var (
		account types.Account
		err     error
	)

	switch {
	case cfg.PrivateKey != "":
		account, err = types.AccountFromBase58(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
	case cfg.KeypairJSON != "":
		account, err = accountFromKeypairJSON(cfg.KeypairJSON)
		if err != nil {
			return nil, err
		}
	case cfg.Mnemonic != "":
		account, err = accountFromMnemonic(cfg.Mnemonic)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("no wallet credentials configured")
	}

	pubkey := solana.PublicKeyFromBytes(account.PublicKey.Bytes())

	wallet := &Wallet{
		account: account,
		pubkey:  pubkey,
		logger:  logger,
	}

	logger.WithFields(logrus.Fields{
		"public_key": pubkey.String(),
	}).Info("Wallet initialized")

	return wallet, nil
}

// accountFromKeypairJSON parses the solana-keygen JSON byte-array format.
func accountFromKeypairJSON(raw string) (types.Account, error) {
	var ints []int
	if err := json.Unmarshal([]byte(raw), &ints); err != nil {
		return types.Account{}, fmt.Errorf("invalid keypair JSON: %w", err)
	}
	if len(ints) < 32 {
		return types.Account{}, fmt.Errorf("keypair JSON too short: %d bytes", len(ints))
	}

	seed := make([]byte, 32)
	for i := 0; i < 32; i++ {
		if ints[i] < 0 || ints[i] > 255 {
			return types.Account{}, fmt.Errorf("keypair JSON byte out of range at index %d", i)
		}
		seed[i] = byte(ints[i])
	}

	account, err := types.AccountFromSeed(seed)
	if err != nil {
		return types.Account{}, fmt.Errorf("invalid keypair seed: %w", err)
	}
	return account, nil
}

// accountFromMnemonic derives a keypair from a BIP-39 mnemonic phrase.
func accountFromMnemonic(mnemonic string) (types.Account, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return types.Account{}, fmt.Errorf("invalid mnemonic phrase")
	}
	seed := bip39.NewSeed(mnemonic, "")
	account, err := types.AccountFromSeed(seed[:32])
	if err != nil {
		return types.Account{}, fmt.Errorf("failed to derive account from mnemonic: %w", err)
	}
	return account, nil
}

// PublicKey returns the wallet's public key.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.pubkey
}

// Sign signs every required signature slot owned by this wallet.
func (w *Wallet) Sign(tx *solana.Transaction) error {
	privateKey := solana.PrivateKey(w.account.PrivateKey)
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pubkey) {
			return &privateKey
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}
