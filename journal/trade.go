package journal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradelog/market"
	"github.com/rustyeddy/tradelog/risk"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTrade, fmt.Sprintf(format, args...))
}

// Validate checks the record invariants. checklistSize bounds the checklist
// indices; 0 skips the upper bound.
func (t Trade) Validate(checklistSize int) error {
	if t.Symbol == "" {
		return invalid("symbol is required")
	}
	if t.Direction != Buy && t.Direction != Sell {
		return invalid("direction %q must be BUY or SELL", t.Direction)
	}
	if t.EntryPrice <= 0 {
		return invalid("entry price must be greater than 0")
	}
	if t.StopLoss < 0 || t.TakeProfit < 0 {
		return invalid("stop loss and take profit cannot be negative")
	}
	if t.StopLoss > 0 && t.TakeProfit > 0 {
		slAbove := t.StopLoss > t.EntryPrice
		tpAbove := t.TakeProfit > t.EntryPrice
		if slAbove == tpAbove || t.StopLoss == t.EntryPrice || t.TakeProfit == t.EntryPrice {
			return invalid("stop loss %.5f and take profit %.5f must be on opposite sides of entry %.5f",
				t.StopLoss, t.TakeProfit, t.EntryPrice)
		}
	}
	if t.Lots < 0 {
		return invalid("lots cannot be negative")
	}
	if !t.Outcome.valid() {
		return invalid("unknown outcome %q", t.Outcome)
	}
	if t.Outcome != Pending && t.RealizedPL == nil {
		return invalid("%s trade needs a realized P/L", t.Outcome)
	}
	if t.Outcome == Profit && t.PL() < 0 {
		return invalid("profit trade cannot have a negative P/L (%.2f)", t.PL())
	}
	if t.Outcome == Loss && t.PL() > 0 {
		return invalid("loss trade cannot have a positive P/L (%.2f)", t.PL())
	}
	if t.Rating < 0 || t.Rating > 5 {
		return invalid("rating %d must be between 0 and 5", t.Rating)
	}

	seen := make(map[int]bool, len(t.Checklist))
	for _, i := range t.Checklist {
		if i < 0 || (checklistSize > 0 && i >= checklistSize) {
			return invalid("checklist item %d out of range", i)
		}
		if seen[i] {
			return invalid("checklist item %d listed twice", i)
		}
		seen[i] = true
	}
	return nil
}

// InitialRisk is the money lost had the stop been hit, in accountCurrency.
func (t Trade) InitialRisk(accountCurrency string, rates market.Rates) float64 {
	if t.StopLoss <= 0 || t.Lots <= 0 {
		return 0
	}
	inst, ok := market.Lookup(t.Symbol)
	if !ok {
		return 0
	}
	pv, _ := risk.PipValue(inst, accountCurrency, t.EntryPrice, rates)
	return risk.Pips(t.EntryPrice, t.StopLoss, inst.PipSize) * pv * t.Lots
}

// PLAt is what the trade makes or loses in accountCurrency when closed at exit,
// rounded to cents.
func (t Trade) PLAt(exit float64, accountCurrency string, rates market.Rates) (float64, error) {
	if exit <= 0 {
		return 0, invalid("exit price must be positive")
	}
	inst, ok := market.Lookup(t.Symbol)
	if !ok {
		return 0, invalid("unknown symbol %q", t.Symbol)
	}
	side := decimal.NewFromInt(1)
	if (exit > t.EntryPrice) != (t.Direction == Buy) {
		side = side.Neg()
	}
	pv, _ := risk.PipValue(inst, accountCurrency, t.EntryPrice, rates)
	pips := risk.Pips(t.EntryPrice, exit, inst.PipSize)
	pl := side.Mul(decimal.NewFromFloat(pips)).Mul(decimal.NewFromFloat(pv)).Mul(decimal.NewFromFloat(t.Lots))
	return pl.Round(2).InexactFloat64(), nil
}

// OutcomeFor classifies a realized P/L.
func OutcomeFor(pl float64) Outcome {
	switch {
	case pl > 0:
		return Profit
	case pl < 0:
		return Loss
	}
	return Breakeven
}

// PlannedRR is the reward to risk the stop and target were placed at,
// 0 unless both are set.
func (t Trade) PlannedRR() float64 {
	if t.StopLoss <= 0 || t.TakeProfit <= 0 {
		return 0
	}
	return risk.RR(t.EntryPrice, t.StopLoss, t.TakeProfit)
}

// RMultiple expresses pl as a multiple of the initial risk.
func RMultiple(pl, initialRisk float64) float64 {
	if initialRisk <= 0 {
		return 0
	}
	return pl / initialRisk
}

// Finalize moves a pending trade to its final outcome.
func (t *Trade) Finalize(outcome Outcome, pl float64, accountCurrency string, rates market.Rates) error {
	if t.Outcome != Pending {
		return fmt.Errorf("trade %s: %w", t.ID, ErrNotPending)
	}
	if outcome == Pending || !outcome.valid() {
		return invalid("cannot finalize to %q", outcome)
	}
	next := *t
	next.Outcome = outcome
	next.RealizedPL = Float(pl)
	if err := next.Validate(0); err != nil {
		return err
	}
	next.RMultiple = RMultiple(pl, next.InitialRisk(accountCurrency, rates))
	*t = next
	return nil
}
