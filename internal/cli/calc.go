package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradelog/market"
	"github.com/rustyeddy/tradelog/risk"
)

type calcOptions struct {
	symbol     string
	entry      float64
	stop       float64
	takeProfit float64
	risk       float64
	balance    float64
	leverage   float64
	currency   string
	rates      []string
}

func newCalcCmd(rc *RootConfig) *cobra.Command {
	o := &calcOptions{}

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Size a position from account risk",
		Long: `Compute the lot size that risks a fixed percent of the account balance.

Balance, risk percent, leverage and account currency default to the
journal's account settings.

Example:
  tradelog calc --symbol EUR/USD --entry 1.1000 --stop 1.0950 --tp 1.1100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, rc, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.symbol, "symbol", "s", "", "instrument symbol, e.g. EUR/USD")
	f.Float64VarP(&o.entry, "entry", "e", 0, "entry price")
	f.Float64Var(&o.stop, "stop", 0, "stop-loss price")
	f.Float64Var(&o.takeProfit, "tp", 0, "take-profit price (optional)")
	f.Float64VarP(&o.risk, "risk", "r", 0, "risk percent of balance (1 = 1%)")
	f.Float64Var(&o.balance, "balance", 0, "account balance")
	f.Float64Var(&o.leverage, "leverage", 0, "leverage, 100 for 1:100")
	f.StringVar(&o.currency, "currency", "", "account currency")
	f.StringSliceVar(&o.rates, "rate", nil, "exchange rate override PAIR=RATE, e.g. USD/JPY=151.2 (repeatable)")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("stop")

	return cmd
}

func runCalc(cmd *cobra.Command, rc *RootConfig, o *calcOptions) error {
	ctx := cmd.Context()

	s, err := rc.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	acct, err := s.Settings(ctx)
	if err != nil {
		return err
	}

	in := risk.Inputs{
		Balance:         acct.CurrentBalance,
		AccountCurrency: acct.Currency,
		RiskPercent:     acct.DefaultRiskPercent,
		Entry:           o.entry,
		StopLoss:        o.stop,
		TakeProfit:      o.takeProfit,
		Leverage:        acct.Leverage,
	}
	f := cmd.Flags()
	if f.Changed("balance") {
		in.Balance = o.balance
	}
	if f.Changed("risk") {
		in.RiskPercent = o.risk
	}
	if f.Changed("leverage") {
		in.Leverage = o.leverage
	}
	if f.Changed("currency") {
		in.AccountCurrency = strings.ToUpper(o.currency)
	}
	if inst, ok := market.Lookup(strings.ToUpper(o.symbol)); ok {
		in.Instrument = &inst
	}

	cache, _ := rc.rates(ctx)
	for _, kv := range o.rates {
		pair, rate, err := parseRate(kv)
		if err != nil {
			return err
		}
		cache.Set(pair, rate)
	}
	in.Rates = cache.Snapshot()

	res := risk.Calculate(in)
	printCalc(cmd.OutOrStdout(), in, res)
	if res.HasError {
		rc.Log.WithField("symbol", o.symbol).Debug("calculation rejected")
		return errors.New(res.ErrorMessage)
	}
	return nil
}

// parseRate reads a PAIR=RATE override.
func parseRate(kv string) (string, float64, error) {
	pair, val, ok := strings.Cut(kv, "=")
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if !ok || len(pair) != 7 || pair[3] != '/' {
		return "", 0, fmt.Errorf("rate %q: want PAIR=RATE like USD/JPY=151.2", kv)
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || rate <= 0 {
		return "", 0, fmt.Errorf("rate %q: rate must be a positive number", kv)
	}
	return pair, rate, nil
}

func money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func printCalc(w io.Writer, in risk.Inputs, res risk.Result) {
	cur := in.AccountCurrency
	if in.Instrument != nil {
		fmt.Fprintf(w, "%s  entry %v  stop %v (%s pips)\n",
			in.Instrument.Symbol, in.Entry, in.StopLoss, decimal.NewFromFloat(res.StopPips).StringFixed(1))
	}
	fmt.Fprintf(w, "Lot size:       %s (raw %s)\n",
		decimal.NewFromFloat(res.LotSize).StringFixed(2), decimal.NewFromFloat(res.RawLotSize).StringFixed(4))
	fmt.Fprintf(w, "Lots:           %s standard / %s mini / %s micro\n",
		money(res.StandardLots), money(res.MiniLots), money(res.MicroLots))
	pct := 0.0
	if in.Balance > 0 {
		pct = risk.RiskPct(res.RiskAmount, in.Balance) * 100
	}
	fmt.Fprintf(w, "Risk:           %s %s (%s%%)\n", money(res.RiskAmount), cur, money(pct))
	fmt.Fprintf(w, "Pip value:      %s %s per lot\n", money(res.PipValue), cur)
	fmt.Fprintf(w, "Margin:         %s %s\n", money(res.MarginRequired), cur)
	if in.TakeProfit > 0 {
		fmt.Fprintf(w, "Take profit:    %s %s (%s pips, R:R %s)\n",
			money(res.TakeProfitAmount), cur, decimal.NewFromFloat(res.TakeProfitPips).StringFixed(1), money(res.RiskReward))
		fmt.Fprintf(w, "Balance:        %s after loss / %s after win\n", money(res.BalanceAfterLoss), money(res.BalanceAfterWin))
	} else {
		fmt.Fprintf(w, "Balance:        %s after loss\n", money(res.BalanceAfterLoss))
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "warning: %s\n", res.WarningMessage())
	}
}
