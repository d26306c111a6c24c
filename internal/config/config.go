package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverSQLCipher = "sqlcipher"
	DriverRedis     = "redis"
	DriverMemory    = "memory"
)

type Config struct {
	// Record store settings
	Store StoreConfig `yaml:"store"`

	// Invoice authoring settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Page geometry and capture settings for PDF export
	Export ExportConfig `yaml:"export"`

	Log LogConfig `yaml:"log"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"`       // sqlcipher, redis or memory
	Path        string `yaml:"path"`         // Path to the encrypted database (sqlcipher)
	RedisURL    string `yaml:"redis_url"`    // redis://host:port/db or host:port
	RedisPrefix string `yaml:"redis_prefix"` // Key prefix for every record
}

type InvoiceConfig struct {
	NumberPrefix   string  `yaml:"number_prefix"`    // Invoice number prefix (e.g., "INV")
	NumberWidth    int     `yaml:"number_width"`     // Zero padding of the numeric suffix
	TaxRate        float64 `yaml:"tax_rate"`         // Tax rate as decimal (0.05 = 5%)
	DefaultDueDays int     `yaml:"default_due_days"` // Days until invoice due
	OutputDir      string  `yaml:"output_dir"`       // Directory for exported PDFs
}

type ExportConfig struct {
	PageWidthMM       float64 `yaml:"page_width_mm"`
	PageHeightMM      float64 `yaml:"page_height_mm"`
	MarginTopMM       float64 `yaml:"margin_top_mm"`
	MarginBottomMM    float64 `yaml:"margin_bottom_mm"`
	Scale             float64 `yaml:"scale"` // Capture resolution multiplier
	CrossOriginImages bool    `yaml:"cross_origin_images"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "invoicedesk")
}

// DefaultConfigPath returns ~/.config/invoicedesk/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := configDir()

	return &Config{
		Store: StoreConfig{
			Driver:      DriverSQLCipher,
			Path:        filepath.Join(dir, "invoicedesk.db"),
			RedisURL:    "localhost:6379",
			RedisPrefix: "invoicedesk:",
		},
		Invoice: InvoiceConfig{
			NumberPrefix:   "INV",
			NumberWidth:    6,
			TaxRate:        0.05,
			DefaultDueDays: 30,
			OutputDir:      filepath.Join(dir, "invoices"),
		},
		Export: ExportConfig{
			PageWidthMM:       210,
			PageHeightMM:      297,
			Scale:             2,
			CrossOriginImages: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Validate checks values that would otherwise fail much later, at export time
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLCipher:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlcipher driver")
		}
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Invoice.NumberPrefix == "" {
		return errors.New("invoice.number_prefix must not be empty")
	}
	if c.Invoice.NumberWidth < 1 {
		return errors.New("invoice.number_width must be at least 1")
	}
	if c.Invoice.TaxRate < 0 || c.Invoice.TaxRate >= 1 {
		return fmt.Errorf("invoice.tax_rate %v must be in [0, 1)", c.Invoice.TaxRate)
	}
	if c.Invoice.DefaultDueDays < 0 {
		return errors.New("invoice.default_due_days cannot be negative")
	}

	e := c.Export
	if e.PageWidthMM <= 0 || e.PageHeightMM <= 0 {
		return errors.New("export page size must be positive")
	}
	if e.MarginTopMM < 0 || e.MarginBottomMM < 0 {
		return errors.New("export margins cannot be negative")
	}
	if e.MarginTopMM+e.MarginBottomMM >= e.PageHeightMM {
		return errors.New("export margins leave no usable page height")
	}
	if e.Scale <= 0 {
		return errors.New("export.scale must be positive")
	}
	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the database and export directories
func (c *Config) EnsureDirectories() error {
	if c.Store.Driver == DriverSQLCipher {
		if err := os.MkdirAll(filepath.Dir(c.Store.Path), 0700); err != nil {
			return err
		}
	}

	return os.MkdirAll(c.Invoice.OutputDir, 0755)
}
