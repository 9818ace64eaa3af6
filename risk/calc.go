package risk

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	ten     = decimal.NewFromInt(10)
)

func dec(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x)
}

// RR is reward over risk for a planned trade, 0 when entry equals stop.
func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// RiskPct is the fraction of equity a planned loss represents.
func RiskPct(plannedRisk, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return plannedRisk / equity
}

// Pips is the distance between two prices in pips of the given size.
func Pips(a, b, pipSize float64) float64 {
	if pipSize <= 0 {
		return 0
	}
	return dec(a).Sub(dec(b)).Abs().Div(dec(pipSize)).InexactFloat64()
}
