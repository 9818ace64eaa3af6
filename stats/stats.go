package stats

import (
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/tradelog/journal"
)

// Snapshot is a performance summary over a trade history.
// Win/loss metrics use PROFIT and LOSS trades only; BREAKEVEN trades count
// toward totals, P/L, drawdown, months and pairs but never toward win rate.
type Snapshot struct {
	TotalTrades     int
	ClosedTrades    int
	OpenTrades      int
	BreakevenTrades int
	Wins            int
	Losses          int

	WinRate         float64 // percent
	TotalPL         float64
	TotalWinAmount  float64
	TotalLossAmount float64 // positive
	AvgWin          float64
	AvgLoss         float64 // positive
	ProfitFactor    float64
	Expectancy      float64
	AvgRMultiple    float64
	BestTrade       float64
	WorstTrade      float64

	StartingBalance   float64
	MaxDrawdownPct    float64
	MaxDrawdownAmount float64

	MonthPL  float64
	Monthly  []MonthlyPL
	TopPairs []PairStats

	DisciplineScore  float64 // percent
	FollowedPlanRate float64 // percent of closed trades

	MaxWinStreak  int
	MaxLossStreak int
	CurrentStreak int // positive wins, negative losses
}

type MonthlyPL struct {
	Month  string // "2006-01"
	PL     float64
	Trades int
}

type PairStats struct {
	Symbol  string
	Trades  int
	PL      float64
	Wins    int
	WinRate float64
}

// Compute summarizes trades as of now.
func Compute(trades []journal.Trade, settings journal.AccountSettings) Snapshot {
	return ComputeAt(trades, settings, time.Now())
}

// ComputeAt summarizes trades; now only decides which month is current.
func ComputeAt(trades []journal.Trade, settings journal.AccountSettings, now time.Time) Snapshot {
	var s Snapshot
	s.TotalTrades = len(trades)

	var closed, realized []journal.Trade
	for _, t := range trades {
		switch {
		case t.Outcome.Closed():
			closed = append(closed, t)
			realized = append(realized, t)
		case t.Outcome == journal.Breakeven:
			s.BreakevenTrades++
			realized = append(realized, t)
		case t.Outcome == journal.Pending:
			s.OpenTrades++
		}
	}
	s.ClosedTrades = len(closed)

	// chronological copies; the caller's slice is left alone
	sortByTime(closed)
	sortByTime(realized)

	for _, t := range realized {
		s.TotalPL += t.PL()
	}

	winLoss(&s, closed)
	streaks(&s, closed)
	drawdown(&s, realized, settings.CurrentBalance)
	monthly(&s, realized, now)
	s.TopPairs = pairs(realized)

	return s
}

func sortByTime(trades []journal.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].TradeTime.Before(trades[j].TradeTime)
	})
}

func winLoss(s *Snapshot, closed []journal.Trade) {
	if len(closed) == 0 {
		return
	}

	var rSum float64
	var ratingSum, followed int
	s.BestTrade = math.Inf(-1)
	s.WorstTrade = math.Inf(1)
	for _, t := range closed {
		pl := t.PL()
		if t.Outcome == journal.Profit {
			s.Wins++
			s.TotalWinAmount += pl
		} else {
			s.Losses++
			s.TotalLossAmount += math.Abs(pl)
		}
		s.BestTrade = math.Max(s.BestTrade, pl)
		s.WorstTrade = math.Min(s.WorstTrade, pl)
		rSum += t.RMultiple
		ratingSum += t.Rating
		if t.FollowedPlan {
			followed++
		}
	}

	n := float64(len(closed))
	s.WinRate = float64(s.Wins) / n * 100
	if s.Wins > 0 {
		s.AvgWin = s.TotalWinAmount / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = s.TotalLossAmount / float64(s.Losses)
	}

	switch {
	case s.TotalLossAmount > 0:
		s.ProfitFactor = s.TotalWinAmount / s.TotalLossAmount
	case s.Wins > 0:
		// no losses
		s.ProfitFactor = s.TotalWinAmount
	}

	p := s.WinRate / 100
	s.Expectancy = p*s.AvgWin - (1-p)*s.AvgLoss
	s.AvgRMultiple = rSum / n
	s.DisciplineScore = float64(ratingSum) / n / 5 * 100
	s.FollowedPlanRate = float64(followed) / n * 100
}

func streaks(s *Snapshot, closed []journal.Trade) {
	var wins, losses int
	for _, t := range closed {
		if t.Outcome == journal.Profit {
			wins++
			losses = 0
		} else {
			losses++
			wins = 0
		}
		s.MaxWinStreak = max(s.MaxWinStreak, wins)
		s.MaxLossStreak = max(s.MaxLossStreak, losses)
	}
	s.CurrentStreak = wins - losses
}

// drawdown walks the balance forward from currentBalance minus the net P/L.
// Percent and amount are maximized independently and may come from
// different points in the history.
func drawdown(s *Snapshot, realized []journal.Trade, currentBalance float64) {
	start := currentBalance - s.TotalPL
	s.StartingBalance = start

	running, peak := start, start
	for _, t := range realized {
		running += t.PL()
		if running > peak {
			peak = running
		}
		amount := peak - running
		s.MaxDrawdownAmount = math.Max(s.MaxDrawdownAmount, amount)
		if peak > 0 {
			s.MaxDrawdownPct = math.Max(s.MaxDrawdownPct, amount/peak*100)
		}
	}
}

func monthly(s *Snapshot, realized []journal.Trade, now time.Time) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	buckets := make(map[string]*MonthlyPL)
	for _, t := range realized {
		if !t.TradeTime.Before(monthStart) {
			s.MonthPL += t.PL()
		}
		key := t.TradeTime.In(now.Location()).Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &MonthlyPL{Month: key}
			buckets[key] = b
		}
		b.PL += t.PL()
		b.Trades++
	}

	s.Monthly = make([]MonthlyPL, 0, len(buckets))
	for _, b := range buckets {
		s.Monthly = append(s.Monthly, *b)
	}
	sort.Slice(s.Monthly, func(i, j int) bool {
		return s.Monthly[i].Month < s.Monthly[j].Month
	})
}

func pairs(realized []journal.Trade) []PairStats {
	bySymbol := make(map[string]*PairStats)
	closed := make(map[string]int)
	for _, t := range realized {
		p, ok := bySymbol[t.Symbol]
		if !ok {
			p = &PairStats{Symbol: t.Symbol}
			bySymbol[t.Symbol] = p
		}
		p.Trades++
		p.PL += t.PL()
		if t.Outcome.Closed() {
			closed[t.Symbol]++
		}
		if t.Outcome == journal.Profit {
			p.Wins++
		}
	}

	out := make([]PairStats, 0, len(bySymbol))
	for sym, p := range bySymbol {
		// breakeven trades count in Trades and PL, not in the win rate
		if n := closed[sym]; n > 0 {
			p.WinRate = float64(p.Wins) / float64(n) * 100
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PL != out[j].PL {
			return out[i].PL > out[j].PL
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
