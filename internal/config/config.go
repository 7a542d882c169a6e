// Package config provides configuration structures and defaults for ledgerdb.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MikhailWahib/ledgerdb/internal/balancer"
	"github.com/MikhailWahib/ledgerdb/internal/database"
	"github.com/MikhailWahib/ledgerdb/internal/logging"
	"github.com/MikhailWahib/ledgerdb/internal/page"
)

const (
	defaultDataDir  = "data"
	defaultSlotSize = 128
	defaultFsync    = "always"
	defaultLogLevel = "info"
	defaultStrategy = "round-robin"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Account configures one ledger.
type Account struct {
	ID    int   `yaml:"id"`
	Limit int64 `yaml:"limit"`
}

// Balancer configures upstream selection for the proxy in front of the service.
type Balancer struct {
	Strategy  string   `yaml:"strategy"`
	Upstreams []string `yaml:"upstreams"`
}

// Config holds every tunable of a ledgerdb process.
type Config struct {
	DataDir          string    `yaml:"data_dir"`
	SlotSize         int       `yaml:"slot_size"`
	Fsync            string    `yaml:"fsync"`
	TruncateTornPage bool      `yaml:"truncate_torn_page"`
	LogLevel         string    `yaml:"log_level"`
	Accounts         []Account `yaml:"accounts"`
	Balancer         Balancer  `yaml:"balancer"`
}

// DefaultConfig returns a Config struct populated with default values.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  defaultDataDir,
		SlotSize: defaultSlotSize,
		Fsync:    defaultFsync,
		LogLevel: defaultLogLevel,
		Accounts: []Account{
			{ID: 1, Limit: 100_000},
			{ID: 2, Limit: 80_000},
			{ID: 3, Limit: 1_000_000},
			{ID: 4, Limit: 10_000_000},
			{ID: 5, Limit: 500_000},
		},
		Balancer: Balancer{
			Strategy:  defaultStrategy,
			Upstreams: []string{"api01:3000", "api02:3000"},
		},
	}
}

// FillDefaults sets any zero-value fields in the Config to their default values.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.SlotSize == 0 {
		c.SlotSize = def.SlotSize
	}
	if c.Fsync == "" {
		c.Fsync = def.Fsync
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if len(c.Accounts) == 0 {
		c.Accounts = def.Accounts
	}
	if c.Balancer.Strategy == "" {
		c.Balancer.Strategy = def.Balancer.Strategy
	}
	if len(c.Balancer.Upstreams) == 0 {
		c.Balancer.Upstreams = def.Balancer.Upstreams
	}
}

// Validate checks the config once, before anything is opened.
func (c *Config) Validate() error {
	var errs []error
	if err := page.ValidateSlotSize(c.SlotSize); err != nil {
		errs = append(errs, err)
	}
	if _, err := database.ParseFsyncMode(c.Fsync); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := balancer.ParseStrategy(c.Balancer.Strategy); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[int]bool, len(c.Accounts))
	for _, acc := range c.Accounts {
		if seen[acc.ID] {
			errs = append(errs, fmt.Errorf("account %d configured twice", acc.ID))
		}
		seen[acc.ID] = true
		if acc.Limit < 0 {
			errs = append(errs, fmt.Errorf("account %d has negative limit %d", acc.ID, acc.Limit))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Load reads a YAML config file. An empty path returns the defaults.
// Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.FillDefaults()
	return cfg, nil
}
