package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/BlackRoad-OS/blackroad-invoice-manager/internal/logger"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Business info printed on invoices
	Business BusinessConfig `yaml:"business"`

	// Logging
	Log logger.LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type InvoiceConfig struct {
	DefaultDueDays   int    `yaml:"default_due_days"`   // Days until invoice due
	DefaultTaxRate   string `yaml:"default_tax_rate"`   // Tax rate fraction, decimal string (0.0825 = 8.25%)
	NumberPrefix     string `yaml:"number_prefix"`      // Invoice number prefix (e.g., "INV")
	OverdueDailyRate string `yaml:"overdue_daily_rate"` // Daily compounding rate, decimal string
	Currency         string `yaml:"currency"`           // Default currency code
	OutputDir        string `yaml:"output_dir"`         // Directory for rendered invoices
}

type BusinessConfig struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
	Phone   string `yaml:"phone"`
}

// DefaultConfigPath returns ~/.config/blackroad-invoice/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "blackroad-invoice", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "blackroad-invoice", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "blackroad-invoice", "invoices.db"),
		},
		Invoice: InvoiceConfig{
			DefaultDueDays:   30,
			DefaultTaxRate:   "0",
			NumberPrefix:     "INV",
			OverdueDailyRate: "0.001",
			Currency:         "USD",
			OutputDir:        filepath.Join(homeDir, ".config", "blackroad-invoice", "invoices"),
		},
		Log: logger.DefaultConfig(),
	}
}

// Load loads config from the given path, or returns defaults if file doesn't
// exist. A .env file in the working directory may override the database path
// via BLACKROAD_DB_PATH.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is not an error
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if p := os.Getenv("BLACKROAD_DB_PATH"); p != "" {
		cfg.Database.Path = p
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for database, rendered
// invoices, etc.)
func (c *Config) EnsureDirectories() error {
	dbDir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	return os.MkdirAll(c.Invoice.OutputDir, 0755)
}
