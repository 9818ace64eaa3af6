// journal/journal.go
package journal

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidTrade = errors.New("invalid trade")
	ErrNotPending   = errors.New("trade is not pending")
)

type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

type Outcome string

const (
	Profit    Outcome = "PROFIT"
	Loss      Outcome = "LOSS"
	Breakeven Outcome = "BREAKEVEN"
	Pending   Outcome = "PENDING"
)

// Closed reports whether the outcome counts as a win or a loss.
func (o Outcome) Closed() bool {
	return o == Profit || o == Loss
}

func (o Outcome) valid() bool {
	switch o {
	case Profit, Loss, Breakeven, Pending:
		return true
	}
	return false
}

// Trade is one logged trade. StopLoss and TakeProfit are 0 when unset,
// RealizedPL is nil while the trade is pending.
type Trade struct {
	ID         string
	Symbol     string
	Direction  Direction
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Lots       float64

	Outcome    Outcome
	RealizedPL *float64

	Rating    int // 0-5
	Notes     string
	Checklist []int // completed checklist item indices

	TradeTime time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	RMultiple    float64
	FollowedPlan bool
}

// PL returns the realized P/L, 0 while pending.
func (t Trade) PL() float64 {
	if t.RealizedPL == nil {
		return 0
	}
	return *t.RealizedPL
}

func Float(x float64) *float64 {
	return &x
}

// AccountSettings is the per-user configuration read by the calculators.
type AccountSettings struct {
	StartingBalance    float64
	CurrentBalance     float64
	Currency           string
	DefaultRiskPercent float64
	DefaultLots        float64
	Leverage           float64
	UpdatedAt          time.Time
}

// DefaultChecklist is the pre-trade checklist a trade's Checklist indexes into.
var DefaultChecklist = []string{
	"Trend aligned on the higher timeframe",
	"Entry at a planned level",
	"Stop loss placed before entry",
	"Risk within the configured percentage",
	"Reward at least twice the risk",
	"No high-impact news in the next hour",
}

// FollowedPlanRatio is the share of checklist items that must be completed.
const FollowedPlanRatio = 0.8

func FollowedPlan(completed []int, total int) bool {
	if total <= 0 {
		return false
	}
	return float64(len(completed))/float64(total) >= FollowedPlanRatio
}
