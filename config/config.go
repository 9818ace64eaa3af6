package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradelog/journal"
	"github.com/rustyeddy/tradelog/market"
)

// EnvPrefix is prepended to every environment override, e.g. TRADELOG_ACCOUNT_BALANCE.
const EnvPrefix = "TRADELOG"

const (
	ProviderStatic = "static"
	ProviderHTTP   = "http"
	ProviderOANDA  = "oanda"
)

// Config is the tradelog configuration file.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account" envconfig:"ACCOUNT"`
	Journal JournalConfig `json:"journal" yaml:"journal" envconfig:"JOURNAL"`
	Rates   RatesConfig   `json:"rates" yaml:"rates" envconfig:"RATES"`
	Log     LogConfig     `json:"log" yaml:"log" envconfig:"LOG"`
}

// AccountConfig seeds the journal's account settings on first use.
type AccountConfig struct {
	Currency    string  `json:"currency" yaml:"currency" envconfig:"CURRENCY"`
	Balance     float64 `json:"balance" yaml:"balance" envconfig:"BALANCE"`
	RiskPercent float64 `json:"risk_percent" yaml:"risk_percent" envconfig:"RISK_PERCENT"` // 1 = 1%
	DefaultLots float64 `json:"default_lots,omitempty" yaml:"default_lots,omitempty" envconfig:"DEFAULT_LOTS"`
	Leverage    float64 `json:"leverage" yaml:"leverage" envconfig:"LEVERAGE"`
}

type JournalConfig struct {
	DBPath    string   `json:"db_path" yaml:"db_path" envconfig:"DB_PATH"`
	Checklist []string `json:"checklist,omitempty" yaml:"checklist,omitempty" envconfig:"CHECKLIST"`
}

type RatesConfig struct {
	Provider string `json:"provider" yaml:"provider" envconfig:"PROVIDER"` // static, http or oanda
	URL      string `json:"url,omitempty" yaml:"url,omitempty" envconfig:"URL"`
	TTL      string `json:"ttl,omitempty" yaml:"ttl,omitempty" envconfig:"TTL"` // e.g. "5m"

	// oanda only; the token is usually set through TRADELOG_RATES_TOKEN
	AccountID string   `json:"account_id,omitempty" yaml:"account_id,omitempty" envconfig:"ACCOUNT_ID"`
	Token     string   `json:"token,omitempty" yaml:"token,omitempty" envconfig:"TOKEN"`
	Pairs     []string `json:"pairs,omitempty" yaml:"pairs,omitempty" envconfig:"PAIRS"`

	Static map[string]float64 `json:"static,omitempty" yaml:"static,omitempty" ignored:"true"`
}

// ParseTTL converts the ttl string to a time.Duration; empty means zero.
func (r RatesConfig) ParseTTL() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(r.TTL)
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" envconfig:"LEVEL"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
// Keys missing from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// Load reads path when it is non-empty, otherwise starts from Default, then
// applies environment overrides and validates the result.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays TRADELOG_* variables onto c. envFile, when it exists,
// is loaded first; variables already set in the environment win.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("process environment: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a file (YAML or JSON based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Account.Currency) != 3 {
		return fmt.Errorf("account.currency must be a 3 letter code")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Account.RiskPercent <= 0 || c.Account.RiskPercent > 100 {
		return fmt.Errorf("account.risk_percent must be between 0 and 100")
	}
	if c.Account.DefaultLots < 0 {
		return fmt.Errorf("account.default_lots cannot be negative")
	}
	if c.Account.Leverage < 0 {
		return fmt.Errorf("account.leverage cannot be negative")
	}
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	switch c.Rates.Provider {
	case "", ProviderStatic:
	case ProviderHTTP:
		if c.Rates.URL == "" {
			return fmt.Errorf("rates.url required for http provider")
		}
	case ProviderOANDA:
		if c.Rates.AccountID == "" || c.Rates.Token == "" {
			return fmt.Errorf("rates.account_id and rates.token required for oanda provider")
		}
	default:
		return fmt.Errorf("rates.provider must be 'static', 'http' or 'oanda'")
	}
	for pair, r := range c.Rates.Static {
		if !strings.Contains(pair, "/") || r <= 0 {
			return fmt.Errorf("rates.static: bad entry %q: %v", pair, r)
		}
	}
	if ttl, err := c.Rates.ParseTTL(); err != nil || ttl < 0 {
		return fmt.Errorf("rates.ttl must be a duration like 5m: %q", c.Rates.TTL)
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// AccountSettings converts the account section to journal defaults.
func (c *Config) AccountSettings() journal.AccountSettings {
	return journal.AccountSettings{
		StartingBalance:    c.Account.Balance,
		CurrentBalance:     c.Account.Balance,
		Currency:           strings.ToUpper(c.Account.Currency),
		DefaultRiskPercent: c.Account.RiskPercent,
		DefaultLots:        c.Account.DefaultLots,
		Leverage:           c.Account.Leverage,
	}
}

// Checklist returns the configured pre-trade checklist or the built-in one.
func (c *Config) Checklist() []string {
	if len(c.Journal.Checklist) > 0 {
		return c.Journal.Checklist
	}
	return journal.DefaultChecklist
}

// StaticRates returns the static rate table as a market.Rates.
func (c *Config) StaticRates() market.Rates {
	out := make(market.Rates, len(c.Rates.Static))
	for k, v := range c.Rates.Static {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency:    "USD",
			Balance:     10000,
			RiskPercent: 1,
			Leverage:    100,
		},
		Journal: JournalConfig{
			DBPath: "./tradelog.db",
		},
		Rates: RatesConfig{
			Provider: ProviderStatic,
			TTL:      "5m",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
