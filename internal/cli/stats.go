package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradelog/stats"
)

func newStatsCmd(rc *RootConfig) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize journal performance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rc.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			trades, err := s.List(ctx)
			if err != nil {
				return fmt.Errorf("query trades: %w", err)
			}
			acct, err := s.Settings(ctx)
			if err != nil {
				return err
			}

			now := rc.Now()
			snap := stats.ComputeAt(trades, acct, now)

			w := cmd.OutOrStdout()
			switch format {
			case "org":
				out, err := stats.FormatOrg(snap, now)
				if err != nil {
					return err
				}
				fmt.Fprint(w, out)
			case "text", "":
				printStats(w, snap, acct.Currency)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "text or org")
	return cmd
}

// orDash renders an empty metric as "--".
func orDash(ok bool, s string) string {
	if !ok {
		return "--"
	}
	return s
}

func printStats(w io.Writer, s stats.Snapshot, cur string) {
	closed := s.ClosedTrades > 0
	fmt.Fprintf(w, "Trades:         %d (%d closed, %d open, %d breakeven)\n",
		s.TotalTrades, s.ClosedTrades, s.OpenTrades, s.BreakevenTrades)
	fmt.Fprintf(w, "Win rate:       %s\n", orDash(closed, money(s.WinRate)+"%"))
	fmt.Fprintf(w, "Net P/L:        %s %s (this month %s)\n", money(s.TotalPL), cur, money(s.MonthPL))
	fmt.Fprintf(w, "Avg win/loss:   %s / %s\n", orDash(s.Wins > 0, money(s.AvgWin)), orDash(s.Losses > 0, money(s.AvgLoss)))
	fmt.Fprintf(w, "Profit factor:  %s\n", orDash(closed, money(s.ProfitFactor)))
	fmt.Fprintf(w, "Expectancy:     %s\n", orDash(closed, money(s.Expectancy)))
	fmt.Fprintf(w, "Avg R:          %s\n", orDash(closed, money(s.AvgRMultiple)))
	fmt.Fprintf(w, "Best/worst:     %s / %s\n", orDash(closed, money(s.BestTrade)), orDash(closed, money(s.WorstTrade)))
	fmt.Fprintf(w, "Max drawdown:   %s%% / %s %s\n", money(s.MaxDrawdownPct), money(s.MaxDrawdownAmount), cur)
	fmt.Fprintf(w, "Discipline:     %s (followed plan %s)\n",
		orDash(closed, money(s.DisciplineScore)+"%"), orDash(closed, money(s.FollowedPlanRate)+"%"))
	fmt.Fprintf(w, "Streaks:        %dW / %dL (current %+d)\n", s.MaxWinStreak, s.MaxLossStreak, s.CurrentStreak)

	if len(s.TopPairs) == 0 {
		fmt.Fprintln(w, "\nno data yet")
		return
	}
	fmt.Fprintln(w, "\nTop pairs:")
	for _, p := range s.TopPairs {
		fmt.Fprintf(w, "  %-8s %3d trades  %s  %s%%\n", p.Symbol, p.Trades, money(p.PL), money(p.WinRate))
	}
}
