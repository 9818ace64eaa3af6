package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradelog/journal"
	"github.com/rustyeddy/tradelog/market"
	"github.com/rustyeddy/tradelog/pkg/id"
	"github.com/rustyeddy/tradelog/risk"
)

func newTradeCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Record and query journal trades",
		Long: `Record, edit and query trades in the SQLite journal.

Examples:
  tradelog trade add --symbol EUR/USD --direction buy --entry 1.1 --stop 1.095
  tradelog trade finalize <trade-id> --outcome profit --pl 212.50
  tradelog trade list --from 2024-06-01 --format org`,
	}

	cmd.AddCommand(
		newTradeAddCmd(rc),
		newTradeListCmd(rc),
		newTradeShowCmd(rc),
		newTradeEditCmd(rc),
		newTradeFinalizeCmd(rc),
		newTradeDeleteCmd(rc),
		newTradeExportCmd(rc),
		newTradeImportCmd(rc),
	)
	return cmd
}

type tradeFlags struct {
	symbol     string
	direction  string
	entry      float64
	stop       float64
	takeProfit float64
	lots       float64
	rating     int
	notes      string
	checklist  []int
	at         string
}

func (tf *tradeFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&tf.symbol, "symbol", "s", "", "instrument symbol, e.g. EUR/USD")
	f.StringVarP(&tf.direction, "direction", "d", "", "buy or sell")
	f.Float64VarP(&tf.entry, "entry", "e", 0, "entry price")
	f.Float64Var(&tf.stop, "stop", 0, "stop-loss price")
	f.Float64Var(&tf.takeProfit, "tp", 0, "take-profit price")
	f.Float64VarP(&tf.lots, "lots", "l", 0, "position size in lots (sized from risk when omitted)")
	f.IntVar(&tf.rating, "rating", 0, "discipline rating 0-5")
	f.StringVarP(&tf.notes, "notes", "n", "", "free-form notes")
	f.IntSliceVar(&tf.checklist, "checklist", nil, "completed checklist items, e.g. 0,1,3")
	f.StringVar(&tf.at, "time", "", "trade time: RFC3339, 2006-01-02 15:04 or 2006-01-02")
}

// apply copies the flags that were set onto t.
func (tf *tradeFlags) apply(cmd *cobra.Command, t *journal.Trade) error {
	f := cmd.Flags()
	if f.Changed("symbol") {
		t.Symbol = strings.ToUpper(tf.symbol)
	}
	if f.Changed("direction") {
		t.Direction = journal.Direction(strings.ToUpper(tf.direction))
	}
	if f.Changed("entry") {
		t.EntryPrice = tf.entry
	}
	if f.Changed("stop") {
		t.StopLoss = tf.stop
	}
	if f.Changed("tp") {
		t.TakeProfit = tf.takeProfit
	}
	if f.Changed("lots") {
		t.Lots = tf.lots
	}
	if f.Changed("rating") {
		t.Rating = tf.rating
	}
	if f.Changed("notes") {
		t.Notes = tf.notes
	}
	if f.Changed("checklist") {
		t.Checklist = tf.checklist
	}
	if f.Changed("time") {
		at, err := parseTime(tf.at, time.Local)
		if err != nil {
			return fmt.Errorf("time: %w", err)
		}
		t.TradeTime = at
	}
	return nil
}

func newTradeAddCmd(rc *RootConfig) *cobra.Command {
	tf := &tradeFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new pending trade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			var t journal.Trade
			if err := tf.apply(cmd, &t); err != nil {
				return err
			}

			if !cmd.Flags().Changed("lots") {
				acct, err := s.Settings(ctx)
				if err != nil {
					return err
				}
				t.Lots = acct.DefaultLots
				if t.StopLoss > 0 {
					_, rates := rc.rates(ctx)
					t.Lots = sizeFromRisk(rc.Log, t, acct, rates)
				}
			}

			if err := s.Create(ctx, &t); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.ID)
			return nil
		},
	}
	tf.register(cmd)
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("direction")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}

// sizeFromRisk runs the position calculator for t; on a rejected
// calculation it keeps the account's default lot size.
func sizeFromRisk(log logrus.FieldLogger, t journal.Trade, acct journal.AccountSettings, rates market.Rates) float64 {
	in := risk.Inputs{
		Balance:         acct.CurrentBalance,
		AccountCurrency: acct.Currency,
		RiskPercent:     acct.DefaultRiskPercent,
		Entry:           t.EntryPrice,
		StopLoss:        t.StopLoss,
		TakeProfit:      t.TakeProfit,
		Leverage:        acct.Leverage,
		Rates:           rates,
	}
	if inst, ok := market.Lookup(t.Symbol); ok {
		in.Instrument = &inst
	}
	res := risk.Calculate(in)
	for _, w := range res.Warnings {
		log.WithField("symbol", t.Symbol).Warn(w)
	}
	if res.HasError {
		log.WithField("symbol", t.Symbol).Warn(res.ErrorMessage)
		return acct.DefaultLots
	}
	return res.LotSize
}

func newTradeListCmd(rc *RootConfig) *cobra.Command {
	var from, to, format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades ordered by trade time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			var trades []journal.Trade
			if from == "" && to == "" {
				trades, err = s.List(ctx)
			} else {
				var start, end time.Time
				if start, end, err = rangeBounds(time.Local, from, to); err != nil {
					return fmt.Errorf("date: %w", err)
				}
				trades, err = s.ListBetween(ctx, start, end)
			}
			if err != nil {
				return fmt.Errorf("query trades: %w", err)
			}
			return writeTrades(cmd.OutOrStdout(), format, trades, s.Checklist())
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day (inclusive), YYYY-MM-DD")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "table, org or csv")
	return cmd
}

func newTradeShowCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show one trade as org-mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get trade: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradeOrg(t, s.Checklist()))
			return nil
		},
	}
}

func newTradeEditCmd(rc *RootConfig) *cobra.Command {
	tf := &tradeFlags{}
	cmd := &cobra.Command{
		Use:   "edit <trade-id>",
		Short: "Change fields of a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get trade: %w", err)
			}
			if err := tf.apply(cmd, &t); err != nil {
				return err
			}
			acct, err := s.Settings(ctx)
			if err != nil {
				return err
			}
			_, rates := rc.rates(ctx)
			return s.Update(ctx, &t, acct.Currency, rates)
		},
	}
	tf.register(cmd)
	return cmd
}

func newTradeFinalizeCmd(rc *RootConfig) *cobra.Command {
	var outcome string
	var pl, exit float64
	var keepBalance bool
	cmd := &cobra.Command{
		Use:   "finalize <trade-id>",
		Short: "Close a pending trade with its outcome and realized P/L",
		Long: `Close a pending trade. Give the realized P/L with --pl, or an exit
price with --exit to have it computed from pips, pip value and lots.
The outcome follows the sign of the P/L unless --outcome is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := cmd.Flags()
			if f.Changed("pl") == f.Changed("exit") {
				return fmt.Errorf("exactly one of --pl or --exit is required")
			}

			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			acct, err := s.Settings(ctx)
			if err != nil {
				return err
			}
			_, rates := rc.rates(ctx)

			if f.Changed("exit") {
				t, err := s.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get trade: %w", err)
				}
				if pl, err = t.PLAt(exit, acct.Currency, rates); err != nil {
					return err
				}
			}
			out := journal.OutcomeFor(pl)
			if outcome != "" {
				out = journal.Outcome(strings.ToUpper(outcome))
			}

			var t journal.Trade
			if keepBalance {
				t, err = s.Finalize(ctx, args[0], out, pl, acct.Currency, rates)
			} else {
				t, acct, err = s.FinalizeAndBook(ctx, args[0], out, pl, rates)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s R=%s balance %s %s\n",
				t.ID, t.Outcome, money(t.PL()), money(t.RMultiple), money(acct.CurrentBalance), acct.Currency)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outcome, "outcome", "o", "", "profit, loss or breakeven (default from the P/L sign)")
	cmd.Flags().Float64Var(&pl, "pl", 0, "realized profit or loss in account currency")
	cmd.Flags().Float64Var(&exit, "exit", 0, "exit price; computes the P/L")
	cmd.Flags().BoolVar(&keepBalance, "keep-balance", false, "do not add the P/L to the account balance")
	return cmd
}

func newTradeDeleteCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Delete(cmd.Context(), args[0])
		},
	}
}

func newTradeExportCmd(rc *RootConfig) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every trade as CSV or org-mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			trades, err := s.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("query trades: %w", err)
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := writeTrades(w, format, trades, s.Checklist()); err != nil {
				return err
			}
			rc.Log.WithFields(logrus.Fields{"trades": len(trades), "format": format}).Info("journal exported")
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or org")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newTradeImportCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import trades from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			trades, err := journal.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			for i := range trades {
				t := &trades[i]
				if t.ID != "" && !id.Valid(t.ID) {
					// a fresh id is stamped from the trade time on insert
					rc.Log.WithField("id", t.ID).Warn("replacing malformed trade id")
					t.ID = ""
				}
				if err := s.Create(ctx, t); err != nil {
					return fmt.Errorf("trade %d: %w", i+1, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d trades\n", len(trades))
			return nil
		},
	}
}

func writeTrades(w io.Writer, format string, trades []journal.Trade, checklist []string) error {
	switch format {
	case "csv":
		return journal.WriteCSV(w, trades)
	case "org":
		_, err := fmt.Fprint(w, journal.FormatTradesOrg(trades, checklist))
		return err
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTIME\tSYMBOL\tDIR\tENTRY\tLOTS\tPLAN R:R\tOUTCOME\tP/L\tR")
		for _, t := range trades {
			pl := "-"
			if t.RealizedPL != nil {
				pl = money(*t.RealizedPL)
			}
			rr := "-"
			if x := t.PlannedRR(); x > 0 {
				rr = money(x)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.TradeTime.Local().Format("2006-01-02 15:04"), t.Symbol, t.Direction,
				t.EntryPrice, money(t.Lots), rr, t.Outcome, pl, money(t.RMultiple))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q", s)
}

// rangeBounds turns inclusive YYYY-MM-DD days into a [start, end) window.
// An empty side is open.
func rangeBounds(loc *time.Location, from, to string) (time.Time, time.Time, error) {
	start := time.Unix(0, 0)
	end := time.Date(9999, 1, 1, 0, 0, 0, 0, loc)
	if from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, nil
}
