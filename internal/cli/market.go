package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradelog/market"
	"github.com/rustyeddy/tradelog/pricing"
)

var categories = []market.Category{market.Forex, market.Index, market.Metal, market.Crypto, market.Commodity}

func newInstrumentsCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "instruments",
		Short: "List the instrument catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SYMBOL\tCATEGORY\tQUOTE\tCONTRACT\tPIP")
			for _, c := range categories {
				if category != "" && string(c) != category {
					continue
				}
				for _, inst := range market.ByCategory(c) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%v\n",
						inst.Symbol, inst.Category, inst.QuoteCurrency, inst.ContractSize, inst.PipSize)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only list one category")
	return cmd
}

func newRatesCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rates [PAIR...]",
		Short: "Show exchange rates from the configured source",
		Long: `Fetch rates from the configured source and print them. With pair
arguments only those are printed; a pair the source did not return is
shown with the fallback the calculators would use instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, snap := rc.rates(cmd.Context())

			w := cmd.OutOrStdout()
			if len(args) > 0 {
				for _, p := range args {
					p = strings.ToUpper(p)
					r, err := cache.Get(p)
					if errors.Is(err, pricing.ErrNoRate) {
						from, to, _ := strings.Cut(p, "/")
						fb, src := market.ConversionRate(nil, from, to)
						fmt.Fprintf(w, "%-8s %v (%s)\n", p, fb, src)
						continue
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%-8s %v\n", p, r)
				}
				return nil
			}

			if !cache.Fresh() {
				fmt.Fprintln(w, "no live rates; calculators use built-in fallbacks")
			}
			pairs := make([]string, 0, len(snap))
			for p := range snap {
				pairs = append(pairs, p)
			}
			sort.Strings(pairs)
			for _, p := range pairs {
				fmt.Fprintf(w, "%-8s %v\n", p, snap[p])
			}
			return nil
		},
	}
}
