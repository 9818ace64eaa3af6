package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradelog/config"
	"github.com/rustyeddy/tradelog/internal/logging"
	"github.com/rustyeddy/tradelog/journal"
	"github.com/rustyeddy/tradelog/market"
	"github.com/rustyeddy/tradelog/pricing"
)

const version = "0.3.0"

// RootConfig holds the persistent flags and what PersistentPreRunE derives
// from them.
type RootConfig struct {
	ConfigPath string
	EnvFile    string
	DBPath     string
	LogLevel   string

	Cfg *config.Config
	Log *logrus.Logger

	// Now and Source are replaced in tests.
	Now    func() time.Time
	Source pricing.RateSource
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&RootConfig{Now: time.Now})
}

func newRootCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tradelog",
		Short:         "Tradelog: position sizing and a trading journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.EnvFile, "env-file", ".env", "Dotenv file with TRADELOG_* overrides")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite journal database (overrides journal.db_path)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.setup(cmd.ErrOrStderr())
	}

	cmd.AddCommand(
		newCalcCmd(rc),
		newTradeCmd(rc),
		newStatsCmd(rc),
		newSettingsCmd(rc),
		newInstrumentsCmd(),
		newRatesCmd(rc),
		newConfigCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tradelog %s\n", version)
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (rc *RootConfig) setup(stderr io.Writer) error {
	cfg, err := config.Load(rc.ConfigPath, rc.EnvFile)
	if err != nil {
		return err
	}
	if rc.DBPath != "" {
		cfg.Journal.DBPath = rc.DBPath
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = rc.LogLevel
	}
	rc.Cfg = cfg
	rc.Log = logging.New(cfg.Log.Level, stderr)
	return nil
}

func (rc *RootConfig) openStore() (*journal.Store, error) {
	s, err := journal.Open(rc.Cfg.Journal.DBPath, journal.Options{
		Logger:    rc.Log,
		Checklist: rc.Cfg.Checklist(),
		Defaults:  rc.Cfg.AccountSettings(),
		Now:       rc.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return s, nil
}

func (rc *RootConfig) rateSource() pricing.RateSource {
	if rc.Source != nil {
		return rc.Source
	}
	r := rc.Cfg.Rates
	switch r.Provider {
	case config.ProviderHTTP:
		return pricing.NewHTTPSource(r.URL)
	case config.ProviderOANDA:
		return pricing.NewOANDASource(r.URL, r.Token, r.AccountID, r.Pairs)
	}
	return pricing.StaticSource(rc.Cfg.StaticRates())
}

// rates fills a fresh cache from the configured source. A failed fetch is
// logged and leaves the calculators on their built-in fallbacks.
func (rc *RootConfig) rates(ctx context.Context) (*pricing.RateCache, market.Rates) {
	ttl, _ := rc.Cfg.Rates.ParseTTL()
	cache := pricing.NewRateCache(ttl, pricing.WithClock(rc.Now), pricing.WithLogger(rc.Log))
	if err := cache.Refresh(ctx, rc.rateSource()); err != nil {
		rc.Log.WithError(err).Warn("using fallback exchange rates")
	}
	return cache, cache.Snapshot()
}
