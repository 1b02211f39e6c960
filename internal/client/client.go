package client

import (
	"context"
	"fmt"
	"strconv"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"gor-incinerator-go/internal/config"
	"gor-incinerator-go/internal/incinerator"
	"gor-incinerator-go/internal/logger"
)

// Client implements incinerator.Gateway over a JSON-RPC ledger endpoint.
type Client struct {
	client *rpc.Client
	logger *logger.Logger
}

// ClientConfig contains configuration for the ledger client
type ClientConfig struct {
	RPCEndpoint string
	APIKey      string
}

var _ incinerator.Gateway = (*Client)(nil)

// NewClient creates a new ledger RPC client
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	var rpcClient *rpc.Client
	if cfg.APIKey != "" {
		rpcClient = rpc.NewWithHeaders(cfg.RPCEndpoint, map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
		})
	} else {
		rpcClient = rpc.New(cfg.RPCEndpoint)
	}

	return &Client{
		client: rpcClient,
		logger: log,
	}
}

// GetTokenAccount fetches and decodes one SPL token account.
func (c *Client) GetTokenAccount(ctx context.Context, address solana.PublicKey) (*incinerator.TokenAccountRecord, error) {
	result, err := c.client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentProcessed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo failed for %s: %w", address, err)
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("token account not found: %s", address)
	}

	var state token.Account
	if err := bin.NewBinDecoder(result.Value.Data.GetBinary()).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode token account %s: %w", address, err)
	}

	return &incinerator.TokenAccountRecord{
		Address:    address,
		Mint:       state.Mint,
		Owner:      state.Owner,
		RawBalance: strconv.FormatUint(state.Amount, 10),
	}, nil
}

// GetMint fetches and decodes mint state.
func (c *Client) GetMint(ctx context.Context, mint solana.PublicKey) (*incinerator.MintInfo, error) {
	result, err := c.client.GetAccountInfoWithOpts(ctx, mint, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentProcessed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo failed for mint %s: %w", mint, err)
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("mint not found: %s", mint)
	}

	var state token.Mint
	if err := bin.NewBinDecoder(result.Value.Data.GetBinary()).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode mint %s: %w", mint, err)
	}

	return &incinerator.MintInfo{
		Authority: state.MintAuthority,
		Decimals:  state.Decimals,
		Supply:    state.Supply,
	}, nil
}

// FindTokenAccountsByOwner lists all SPL token accounts owned by a wallet.
func (c *Client) FindTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]incinerator.TokenAccountRecord, error) {
	programID := config.TokenProgramID
	result, err := c.client.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentProcessed,
			Encoding:   solana.EncodingBase64,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner failed: %w", err)
	}

	records := make([]incinerator.TokenAccountRecord, 0, len(result.Value))
	for _, account := range result.Value {
		var state token.Account
		if err := bin.NewBinDecoder(account.Account.Data.GetBinary()).Decode(&state); err != nil {
			// Malformed account data is skipped, not fatal.
			c.logger.WithField("account", account.Pubkey.String()).
				WithError(err).Warn("Skipping malformed token account")
			continue
		}
		records = append(records, incinerator.TokenAccountRecord{
			Address:    account.Pubkey,
			Mint:       state.Mint,
			Owner:      state.Owner,
			RawBalance: strconv.FormatUint(state.Amount, 10),
		})
	}

	return records, nil
}

// GetAccountInfo returns the raw data of an account, or nil when it does not
// exist.
func (c *Client) GetAccountInfo(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	result, err := c.client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentProcessed,
		Encoding:   solana.EncodingBase64,
	})
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo failed for %s: %w", address, err)
	}
	if result == nil || result.Value == nil {
		return nil, nil
	}
	return result.Value.Data.GetBinary(), nil
}

// GetLatestBlockhash returns a recent blockhash.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.client.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	return result.Value.Blockhash, nil
}

// SendTransaction submits a signed transaction with processed preflight
// commitment for fast acknowledgment.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sendTransaction failed: %w", err)
	}
	return sig, nil
}

// GetSignatureStatus returns the status of one signature, or (nil, nil) while
// the ledger does not know it yet.
func (c *Client) GetSignatureStatus(ctx context.Context, sig solana.Signature) (*incinerator.SignatureStatus, error) {
	result, err := c.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, fmt.Errorf("getSignatureStatuses failed: %w", err)
	}
	if result == nil || len(result.Value) == 0 || result.Value[0] == nil {
		return nil, nil
	}

	status := result.Value[0]
	return &incinerator.SignatureStatus{
		Err:                status.Err,
		ConfirmationStatus: string(status.ConfirmationStatus),
	}, nil
}

// GetBalance returns a wallet's balance in lamports.
func (c *Client) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	result, err := c.client.GetBalance(ctx, address, rpc.CommitmentProcessed)
	if err != nil {
		return 0, fmt.Errorf("getBalance failed: %w", err)
	}
	return result.Value, nil
}
