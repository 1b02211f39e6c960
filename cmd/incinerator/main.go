package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"gor-incinerator-go/internal/client"
	"gor-incinerator-go/internal/config"
	"gor-incinerator-go/internal/incinerator"
	"gor-incinerator-go/internal/logger"
	"gor-incinerator-go/internal/store"
	"gor-incinerator-go/internal/wallet"
	"gor-incinerator-go/pkg/utils"
)

const Version = "1.0.0"

// CLI flags
var (
	configFile  = flag.String("config", "", "Path to config file")
	envFile     = flag.String("env", "", "Path to .env file")
	network     = flag.String("network", "", "Network to use (mainnet/devnet)")
	logLevel    = flag.String("log-level", "", "Log level (debug/info/warn/error)")
	dryRun      = flag.Bool("dry-run", false, "Scan and report without submitting transactions")
	maxAccounts = flag.Int("max", 0, "Maximum accounts to close per transaction (1-14)")
	accountList = flag.String("accounts", "", "Comma-separated token account addresses to incinerate (skips discovery)")
	loop        = flag.Bool("loop", false, "Keep scanning at a fixed interval")
	interval    = flag.Duration("interval", 5*time.Minute, "Scan interval in loop mode")
)

// App wires the incinerator service and its dependencies.
type App struct {
	config  *config.Config
	logger  *logger.Logger
	client  *client.Client
	wallet  *wallet.Wallet
	service *incinerator.Service
	records store.Store
	ctx     context.Context
	cancel  context.CancelFunc
}

func main() {
	flag.Parse()

	cfg := loadConfigurationWithOverrides()
	log := initializeLogger(cfg)

	app, err := NewApp(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create application")
	}

	if err := app.Run(); err != nil {
		log.WithError(err).Fatal("Incinerator run failed")
	}
}

func loadConfigurationWithOverrides() *config.Config {
	cfg, err := config.LoadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	applyCliOverrides(cfg)

	return cfg
}

func applyCliOverrides(cfg *config.Config) {
	if *network != "" {
		cfg.Network = *network
		cfg.RPCUrl = config.GetRPCEndpoint(*network)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *maxAccounts > 0 {
		if *maxAccounts > config.MaxAccountsPerTx {
			fmt.Fprintf(os.Stderr, "Warning: -max %d exceeds the per-transaction limit, using %d\n",
				*maxAccounts, config.MaxAccountsPerTx)
			*maxAccounts = config.MaxAccountsPerTx
		}
		cfg.Burn.MaxAccounts = *maxAccounts
	}
}

func initializeLogger(cfg *config.Config) *logger.Logger {
	log, err := logger.NewLogger(logger.LogConfig{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		LogToFile:   cfg.Logging.LogToFile,
		LogFilePath: cfg.Logging.LogFilePath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return log
}

// NewApp builds the full component graph from configuration.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	ledger := client.NewClient(client.ClientConfig{
		RPCEndpoint: cfg.RPCUrl,
		APIKey:      cfg.RPCAPIKey,
	}, log)

	walletInstance, err := wallet.NewWallet(cfg.Wallet, log.Logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	fees, err := incinerator.NewFeeCalculator(cfg.Fees)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid fee configuration: %w", err)
	}

	classifier := incinerator.NewClassifier(ledger, cfg.Burn.Blacklist, log)
	assembler := incinerator.NewAssembler(ledger, fees, cfg.Submit, log)
	submitter := incinerator.NewSubmitter(ledger, incinerator.DefaultRetryPolicy(cfg.Submit.MaxRetries), cfg.Submit, log)
	verifier := incinerator.NewHolderVerifier(ledger, cfg.Discount, incinerator.DefaultCacheTTL(cfg.DiscountCacheTTL()), log)
	records := store.NewMemoryStore()

	service := incinerator.NewService(ledger, classifier, fees, assembler, submitter, verifier, records, log)

	return &App{
		config:  cfg,
		logger:  log,
		client:  ledger,
		wallet:  walletInstance,
		service: service,
		records: records,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Run executes one scan-and-burn pass, or keeps passing at the configured
// interval in loop mode.
func (a *App) Run() error {
	a.logger.LogStartup(Version, a.config.Network, a.config.RPCUrl)

	balance, err := a.client.GetBalance(a.ctx, a.wallet.PublicKey())
	if err != nil {
		return fmt.Errorf("failed to get wallet balance: %w", err)
	}
	a.logger.WithFields(logrus.Fields{
		"wallet":      utils.ShortenAddress(a.wallet.PublicKey().String()),
		"balance_gor": config.ConvertLamportsToGor(balance),
	}).Info("Wallet ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		a.logger.LogShutdown(sig.String())
		a.cancel()
	}()

	if *accountList != "" {
		return a.incinerateExplicit()
	}

	if err := a.runOnce(); err != nil {
		return err
	}

	if !*loop {
		a.summarize()
		return nil
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			a.summarize()
			return nil
		case <-ticker.C:
			if err := a.runOnce(); err != nil {
				// Loop mode keeps going after a failed pass.
				a.logger.WithError(err).Error("Incineration pass failed")
			}
		}
	}
}

// runOnce scans the wallet and incinerates eligible accounts in batches.
func (a *App) runOnce() error {
	scan, err := a.service.FindClosableAccounts(a.ctx, a.wallet.PublicKey(), 0)
	if err != nil {
		return err
	}

	for _, result := range scan.Results {
		entry := a.logger.WithFields(logrus.Fields{
			"account": utils.ShortenAddress(result.Account.Address.String()),
			"mint":    utils.ShortenAddress(result.Account.Mint.String()),
			"reason":  result.Reason,
		})
		if result.Eligible {
			entry.Info(result.Comment)
		} else {
			entry.Debug(result.Comment)
		}
	}

	if len(scan.Eligible) == 0 {
		a.logger.Info("No closable token accounts found")
		return nil
	}

	if *dryRun {
		fields := logrus.Fields{"eligible": len(scan.Eligible)}
		if scan.Fee != nil {
			fields["total_rent"] = scan.Fee.TotalRent
			fields["service_fee"] = scan.Fee.ServiceFee
			fields["net_amount"] = scan.Fee.NetAmount
		}
		a.logger.WithFields(fields).Info("Dry run: no transactions submitted")
		return nil
	}

	batchSize := a.config.Burn.MaxAccounts
	for start := 0; start < len(scan.Eligible); start += batchSize {
		end := start + batchSize
		if end > len(scan.Eligible) {
			end = len(scan.Eligible)
		}

		batch := make([]solana.PublicKey, 0, end-start)
		for _, record := range scan.Eligible[start:end] {
			batch = append(batch, record.Address)
		}

		receipt, err := a.service.Incinerate(a.ctx, a.wallet, batch)
		if err != nil {
			return err
		}

		a.logger.WithFields(logrus.Fields{
			"signature":       receipt.Signature.String(),
			"accounts_closed": receipt.AccountsClosed,
			"net_amount":      receipt.Fee.NetAmount,
			"confirmed":       receipt.Confirmed,
		}).Info("Incineration batch complete")
	}

	return nil
}

// incinerateExplicit burns a caller-supplied account list in one transaction.
func (a *App) incinerateExplicit() error {
	parts := strings.Split(*accountList, ",")
	accounts := make([]solana.PublicKey, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !utils.IsValidAddress(part) {
			return fmt.Errorf("invalid account address %q", part)
		}
		address, err := solana.PublicKeyFromBase58(part)
		if err != nil {
			return fmt.Errorf("failed to parse account address %q: %w", part, err)
		}
		accounts = append(accounts, address)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no account addresses supplied")
	}

	if *dryRun {
		a.logger.WithField("accounts", len(accounts)).Info("Dry run: no transactions submitted")
		return nil
	}

	receipt, err := a.service.Incinerate(a.ctx, a.wallet, accounts)
	if err != nil {
		return err
	}

	a.logger.LogBurnResult(receipt.Signature.String(), receipt.AccountsClosed, receipt.Confirmed)
	return nil
}

// summarize logs reconciliation totals for the whole run.
func (a *App) summarize() {
	summary, err := a.records.Summarize(context.Background(), time.Time{}, time.Now().Add(time.Second))
	if err != nil || summary.TotalTransactions == 0 {
		return
	}
	a.logger.WithFields(logrus.Fields{
		"transactions":    summary.TotalTransactions,
		"accounts_closed": summary.TotalAccountsClosed,
		"total_rent":      summary.TotalRent,
		"service_fees":    summary.TotalFees,
	}).Info("Run summary")
}
