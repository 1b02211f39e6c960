package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	"gor-incinerator-go/pkg/utils"
)

// Config represents the application configuration
type Config struct {
	// Network settings
	Network   string `mapstructure:"network" yaml:"network"`
	RPCUrl    string `mapstructure:"rpc_url" yaml:"rpc_url"`
	RPCAPIKey string `mapstructure:"rpc_api_key" yaml:"rpc_api_key"`

	// Wallet settings
	Wallet WalletConfig `mapstructure:"wallet" yaml:"wallet"`

	// Fee settings
	Fees FeeConfig `mapstructure:"fees" yaml:"fees"`

	// Burn settings
	Burn BurnConfig `mapstructure:"burn" yaml:"burn"`

	// Holder discount settings
	Discount DiscountConfig `mapstructure:"discount" yaml:"discount"`

	// Submission settings
	Submit SubmitConfig `mapstructure:"submit" yaml:"submit"`

	// Logging settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// WalletConfig contains wallet credential material. Exactly one of the three
// fields must be set.
type WalletConfig struct {
	PrivateKey  string `mapstructure:"private_key" yaml:"private_key"`   // base58-encoded 64-byte key
	KeypairJSON string `mapstructure:"keypair_json" yaml:"keypair_json"` // JSON byte array, seed is the first 32 bytes
	Mnemonic    string `mapstructure:"mnemonic" yaml:"mnemonic"`         // BIP-39 phrase
}

// FeeConfig contains service fee settings
type FeeConfig struct {
	Percentage       uint64 `mapstructure:"percentage" yaml:"percentage"`               // 0-100 inclusive
	RentPerAccount   uint64 `mapstructure:"rent_per_account" yaml:"rent_per_account"`   // lamports
	TreasuryVault    string `mapstructure:"treasury_vault" yaml:"treasury_vault"`       // first fee recipient
	IncineratorVault string `mapstructure:"incinerator_vault" yaml:"incinerator_vault"` // second fee recipient
}

// BurnConfig contains burn/close settings
type BurnConfig struct {
	MaxAccounts int      `mapstructure:"max_accounts" yaml:"max_accounts"`
	Blacklist   []string `mapstructure:"blacklist" yaml:"blacklist"`
}

// DiscountConfig contains holder verification settings for the 0% fee tier
type DiscountConfig struct {
	Enabled         bool     `mapstructure:"enabled" yaml:"enabled"`
	VerifiedMints   []string `mapstructure:"verified_mints" yaml:"verified_mints"`
	UpdateAuthority string   `mapstructure:"update_authority" yaml:"update_authority"`
	CacheTTLMinutes int      `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
}

// SubmitConfig contains transaction submission settings
type SubmitConfig struct {
	MaxRetries        int    `mapstructure:"max_retries" yaml:"max_retries"`
	ConfirmTimeoutSec int    `mapstructure:"confirm_timeout_sec" yaml:"confirm_timeout_sec"`
	PollIntervalMs    int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	ComputeUnitPrice  uint64 `mapstructure:"compute_unit_price" yaml:"compute_unit_price"`
	ComputeUnitLimit  uint32 `mapstructure:"compute_unit_limit" yaml:"compute_unit_limit"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	LogToFile   bool   `mapstructure:"log_to_file" yaml:"log_to_file"`
	LogFilePath string `mapstructure:"log_file_path" yaml:"log_file_path"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string, envPath string) (*Config, error) {
	config := &Config{}

	if err := loadEnvFile(envPath); err != nil && envPath != "" {
		return nil, err
	}

	setDefaults()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("incinerator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/gor-incinerator/")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("INCINERATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, continue with defaults and env vars
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// loadEnvFile loads environment variables from a .env file
func loadEnvFile(envPath string) error {
	var envFiles []string
	if envPath != "" {
		envFiles = append(envFiles, envPath)
	}
	envFiles = append(envFiles, ".env", "configs/.env")

	var envFile string
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			envFile = file
			break
		}
	}
	if envFile == "" {
		if envPath != "" {
			return fmt.Errorf("specified .env file not found: %s", envPath)
		}
		return nil
	}

	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}
		os.Setenv(key, value)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// bindEnvVariables manually binds environment variables that viper might miss
func bindEnvVariables() {
	viper.BindEnv("network", "INCINERATOR_NETWORK")
	viper.BindEnv("rpc_url", "INCINERATOR_RPC_URL")
	viper.BindEnv("rpc_api_key", "INCINERATOR_RPC_API_KEY")

	viper.BindEnv("wallet.private_key", "INCINERATOR_WALLET_PRIVATE_KEY")
	viper.BindEnv("wallet.keypair_json", "INCINERATOR_WALLET_KEYPAIR_JSON")
	viper.BindEnv("wallet.mnemonic", "INCINERATOR_WALLET_MNEMONIC")

	viper.BindEnv("fees.percentage", "INCINERATOR_FEES_PERCENTAGE")
	viper.BindEnv("fees.rent_per_account", "INCINERATOR_FEES_RENT_PER_ACCOUNT")
	viper.BindEnv("fees.treasury_vault", "INCINERATOR_FEES_TREASURY_VAULT")
	viper.BindEnv("fees.incinerator_vault", "INCINERATOR_FEES_INCINERATOR_VAULT")

	viper.BindEnv("burn.max_accounts", "INCINERATOR_BURN_MAX_ACCOUNTS")
	viper.BindEnv("burn.blacklist", "INCINERATOR_BURN_BLACKLIST")

	viper.BindEnv("discount.enabled", "INCINERATOR_DISCOUNT_ENABLED")
	viper.BindEnv("discount.verified_mints", "INCINERATOR_DISCOUNT_VERIFIED_MINTS")
	viper.BindEnv("discount.update_authority", "INCINERATOR_DISCOUNT_UPDATE_AUTHORITY")

	viper.BindEnv("submit.max_retries", "INCINERATOR_SUBMIT_MAX_RETRIES")
	viper.BindEnv("submit.confirm_timeout_sec", "INCINERATOR_SUBMIT_CONFIRM_TIMEOUT_SEC")

	viper.BindEnv("logging.level", "INCINERATOR_LOGGING_LEVEL")
	viper.BindEnv("logging.format", "INCINERATOR_LOGGING_FORMAT")
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("network", "gorbagana")
	viper.SetDefault("rpc_url", "")

	viper.SetDefault("fees.percentage", DefaultFeePercentage)
	viper.SetDefault("fees.rent_per_account", DefaultRentPerAccount)

	viper.SetDefault("burn.max_accounts", MaxAccountsPerTx)
	viper.SetDefault("burn.blacklist", DefaultBlacklist)

	viper.SetDefault("discount.enabled", false)
	viper.SetDefault("discount.cache_ttl_minutes", 5)

	viper.SetDefault("submit.max_retries", DefaultMaxRetries)
	viper.SetDefault("submit.confirm_timeout_sec", DefaultConfirmTimeoutSec)
	viper.SetDefault("submit.poll_interval_ms", DefaultPollIntervalMs)
	viper.SetDefault("submit.compute_unit_price", DefaultComputeUnitPrice)
	viper.SetDefault("submit.compute_unit_limit", DefaultComputeUnitLimit)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.log_to_file", false)
	viper.SetDefault("logging.log_file_path", "logs/incinerator.log")
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.RPCUrl == "" {
		config.RPCUrl = GetRPCEndpoint(config.Network)
	}

	if config.Wallet.PrivateKey == "" && config.Wallet.KeypairJSON == "" && config.Wallet.Mnemonic == "" {
		return fmt.Errorf("wallet credential material is required: set wallet.private_key, wallet.keypair_json or wallet.mnemonic")
	}

	if config.Fees.Percentage > 100 {
		return fmt.Errorf("fees.percentage must be between 0 and 100 (got %d)", config.Fees.Percentage)
	}
	if config.Fees.RentPerAccount == 0 {
		return fmt.Errorf("fees.rent_per_account must be positive")
	}

	// Fee recipients are optional as a pair: when both are unset no fee is
	// collected, but a half-configured pair is a misconfiguration.
	if (config.Fees.TreasuryVault == "") != (config.Fees.IncineratorVault == "") {
		return fmt.Errorf("fees.treasury_vault and fees.incinerator_vault must be set together")
	}
	for _, addr := range []string{config.Fees.TreasuryVault, config.Fees.IncineratorVault, config.Discount.UpdateAuthority} {
		if addr == "" {
			continue
		}
		if _, err := solana.PublicKeyFromBase58(addr); err != nil {
			return fmt.Errorf("invalid address %q: %w", addr, err)
		}
	}

	for _, mint := range config.Burn.Blacklist {
		if err := utils.ValidateAddress(mint); err != nil {
			return fmt.Errorf("burn.blacklist: %w", err)
		}
	}
	for _, mint := range config.Discount.VerifiedMints {
		if err := utils.ValidateAddress(mint); err != nil {
			return fmt.Errorf("discount.verified_mints: %w", err)
		}
	}

	if config.Burn.MaxAccounts <= 0 || config.Burn.MaxAccounts > MaxAccountsPerTx {
		return fmt.Errorf("burn.max_accounts must be between 1 and %d (got %d)", MaxAccountsPerTx, config.Burn.MaxAccounts)
	}

	if config.Submit.MaxRetries < 1 {
		return fmt.Errorf("submit.max_retries must be at least 1")
	}
	if config.Submit.ConfirmTimeoutSec < 1 {
		return fmt.Errorf("submit.confirm_timeout_sec must be at least 1")
	}
	if config.Submit.PollIntervalMs < 1 {
		return fmt.Errorf("submit.poll_interval_ms must be at least 1")
	}

	if config.Logging.LogToFile {
		logDir := filepath.Dir(config.Logging.LogFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	return nil
}

// ConfirmTimeout returns the confirmation ceiling as a duration
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.Submit.ConfirmTimeoutSec) * time.Second
}

// PollInterval returns the status poll interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Submit.PollIntervalMs) * time.Millisecond
}

// DiscountCacheTTL returns the holder cache time-to-live
func (c *Config) DiscountCacheTTL() time.Duration {
	if c.Discount.CacheTTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Discount.CacheTTLMinutes) * time.Minute
}
