package app

import (
	"context"
	"fmt"
	"syscall"

	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/config"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/crypto"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/db"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/logger"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/repository"
	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB

	InvoiceRepo repository.InvoiceRepository

	Ledger  service.LedgerService
	Reports service.ReportService
}

// New creates a new App instance, initializing all dependencies:
// 1. Loading config
// 2. Setting up logging
// 3. Getting the encryption key from the keyring
// 4. Opening the database and running migrations
// 5. Creating the repository and services
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := logger.Setup(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	// Get keyring for secure password storage
	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err != nil {
		// No key exists, prompt user to set one
		fmt.Println("Setting up ledger encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to set password: %w", err)
		}

		if err := keyring.SetKey(password); err != nil {
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	dailyRate, err := decimal.NewFromString(cfg.Invoice.OverdueDailyRate)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("invalid overdue_daily_rate %q: %w", cfg.Invoice.OverdueDailyRate, err)
	}

	invoiceRepo := repository.NewInvoiceRepo(database)

	ledger := service.NewLedgerService(invoiceRepo, cfg.Invoice.NumberPrefix, cfg.Invoice.DefaultDueDays, dailyRate)
	reports := service.NewReportService(invoiceRepo, dailyRate)

	return &App{
		Config:      cfg,
		DB:          database,
		InvoiceRepo: invoiceRepo,
		Ledger:      ledger,
		Reports:     reports,
	}, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

// promptForPassword prompts user for a new database password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your invoice data will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Ledger encryption configured successfully")
	fmt.Println()

	return string(password), nil
}
