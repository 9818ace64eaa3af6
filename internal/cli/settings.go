package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSettingsCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the account settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the account settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			a, err := s.Settings(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Currency:          %s\n", a.Currency)
			fmt.Fprintf(w, "Starting balance:  %s\n", money(a.StartingBalance))
			fmt.Fprintf(w, "Current balance:   %s\n", money(a.CurrentBalance))
			fmt.Fprintf(w, "Risk per trade:    %s%%\n", money(a.DefaultRiskPercent))
			fmt.Fprintf(w, "Default lots:      %s\n", money(a.DefaultLots))
			fmt.Fprintf(w, "Leverage:          1:%v\n", a.Leverage)
			return nil
		},
	}

	var currency string
	var starting, current, riskPct, lots, leverage float64
	set := &cobra.Command{
		Use:   "set",
		Short: "Change account settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			a, err := s.Settings(ctx)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("currency") {
				a.Currency = strings.ToUpper(currency)
			}
			if f.Changed("starting-balance") {
				a.StartingBalance = starting
			}
			if f.Changed("balance") {
				a.CurrentBalance = current
			}
			if f.Changed("risk") {
				a.DefaultRiskPercent = riskPct
			}
			if f.Changed("lots") {
				a.DefaultLots = lots
			}
			if f.Changed("leverage") {
				a.Leverage = leverage
			}
			if err := s.SaveSettings(ctx, &a); err != nil {
				return err
			}
			rc.Log.WithField("currency", a.Currency).Info("settings saved")
			return nil
		},
	}
	f := set.Flags()
	f.StringVar(&currency, "currency", "", "account currency")
	f.Float64Var(&starting, "starting-balance", 0, "starting balance")
	f.Float64Var(&current, "balance", 0, "current balance")
	f.Float64Var(&riskPct, "risk", 0, "default risk percent (1 = 1%)")
	f.Float64Var(&lots, "lots", 0, "default lot size")
	f.Float64Var(&leverage, "leverage", 0, "leverage, 100 for 1:100")

	cmd.AddCommand(show, set)
	return cmd
}
