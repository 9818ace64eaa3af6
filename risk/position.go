package risk

// EUR/USD, USD account → pip value 10 per lot, no conversion
// USD/JPY, USD account → pip value 1000 / entry per lot

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradelog/market"
	"github.com/shopspring/decimal"
)

const (
	MsgBalanceRequired    = "Account balance must be greater than 0"
	MsgInstrumentRequired = "Please select an instrument"
	MsgEntryEqualsStop    = "Entry and Stop Loss cannot be equal"
)

var (
	MinLot = decimal.RequireFromString("0.01")
	MaxLot = decimal.NewFromInt(100)

	farStopRatio = decimal.RequireFromString("0.05")
)

type Inputs struct {
	Balance         float64
	AccountCurrency string
	RiskPercent     float64 // 1.0 means 1%
	Entry           float64
	StopLoss        float64
	TakeProfit      float64 // 0 when not planned
	Instrument      *market.Instrument
	Leverage        float64 // 100 for 1:100
	Rates           market.Rates
}

// Result is recomputed on every call and never persisted.
type Result struct {
	LotSize        float64
	RawLotSize     float64
	RiskAmount     float64
	MarginRequired float64
	PipValue       float64 // per standard lot
	StopPips       float64

	TakeProfitPips   float64
	TakeProfitAmount float64
	RiskReward       float64

	BalanceAfterLoss float64
	BalanceAfterWin  float64

	StandardLots float64
	MiniLots     float64
	MicroLots    float64

	HasError     bool
	ErrorMessage string
	Warnings     []string
}

func (r Result) WarningMessage() string {
	return strings.Join(r.Warnings, " ")
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func failed(msg string) Result {
	return Result{HasError: true, ErrorMessage: msg}
}

// Calculate sizes a position so that a stop-out loses at most RiskPercent of Balance.
// Problems are reported in the Result, never by panicking.
func Calculate(in Inputs) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(fmt.Sprint(r))
		}
	}()

	switch {
	case in.Balance <= 0:
		return failed(MsgBalanceRequired)
	case in.Instrument == nil:
		return failed(MsgInstrumentRequired)
	case in.Entry <= 0, in.StopLoss <= 0:
		return Result{}
	case in.Entry == in.StopLoss:
		return failed(MsgEntryEqualsStop)
	}

	inst := *in.Instrument
	if err := inst.Validate(); err != nil {
		return failed(err.Error())
	}

	var (
		balance  = dec(in.Balance)
		entry    = dec(in.Entry)
		leverage = leverageOf(in.Leverage)
		distance = entry.Sub(dec(in.StopLoss)).Abs()
		pips     = distance.Div(dec(inst.PipSize))
	)

	res.StopPips = pips.InexactFloat64()
	if distance.GreaterThan(entry.Mul(farStopRatio)) {
		res.warn("Stop loss is %.2f%% away from entry, which is unusually far. Double-check the price.",
			distance.Div(entry).Mul(hundred).InexactFloat64())
	}

	riskTarget := balance.Mul(dec(in.RiskPercent)).Div(hundred)

	pvNum, pvDen, pvSrc := pipValueParts(inst, in.AccountCurrency, entry, in.Rates)
	pv := pvNum.Div(pvDen)
	res.PipValue = pv.InexactFloat64()

	// lots = riskTarget / (pips * pv), kept as one fraction so the floor is exact
	pipSize := dec(inst.PipSize)
	lotNum := riskTarget.Mul(pvDen).Mul(pipSize)
	lotDen := distance.Mul(pvNum)
	riskOf := func(lots decimal.Decimal) decimal.Decimal {
		return lots.Mul(distance).Mul(pvNum).Div(pipSize.Mul(pvDen))
	}

	raw, steps := decimal.Zero, decimal.Zero
	if lotDen.IsPositive() {
		raw = lotNum.Div(lotDen)
		steps, _ = lotNum.Mul(hundred).QuoRem(lotDen, 0)
	}
	res.RawLotSize = raw.InexactFloat64()

	var lots, riskAmount decimal.Decimal
	switch {
	case steps.LessThan(one):
		res.RiskAmount = riskTarget.InexactFloat64()
		res.BalanceAfterLoss = balance.Sub(riskTarget).InexactFloat64()
		res.BalanceAfterWin = in.Balance
		res.warn("Calculated lot size %s is below the broker minimum of 0.01. "+
			"Increase risk %%, reduce the stop distance, or accept a risk of %s at 0.01 lots.",
			raw.StringFixed(4), riskOf(MinLot).StringFixed(2))
		parityWarning(&res, inst, in.AccountCurrency, pvSrc)
		return res

	case lotNum.GreaterThan(MaxLot.Mul(lotDen)):
		lots = MaxLot
		riskAmount = riskOf(lots)
		res.warn("Lot size capped at %s. The %s pip stop is very tight for this risk amount, "+
			"so the actual risk is %s instead of %s.",
			MaxLot.StringFixed(2), pips.StringFixed(1), riskAmount.StringFixed(2), riskTarget.StringFixed(2))

	default:
		// whole 0.01 steps only: realized risk must not exceed the target
		lots = steps.Div(hundred)
		riskAmount = riskOf(lots)
	}

	marginReq, mSrc := margin(inst, in.AccountCurrency, lots, entry, leverage, in.Rates)

	res.LotSize = lots.InexactFloat64()
	res.RiskAmount = riskAmount.InexactFloat64()
	res.MarginRequired = marginReq.InexactFloat64()
	res.StandardLots = res.LotSize
	res.MiniLots = lots.Mul(hundred).Floor().Div(ten).InexactFloat64()
	res.MicroLots = lots.Mul(hundred).Floor().InexactFloat64()

	tpAmount := decimal.Zero
	if in.TakeProfit > 0 {
		tpPips := dec(in.TakeProfit).Sub(entry).Abs().Div(dec(inst.PipSize))
		tpAmount = tpPips.Mul(pv).Mul(lots)
		res.TakeProfitPips = tpPips.InexactFloat64()
		res.TakeProfitAmount = tpAmount.InexactFloat64()
		if pips.IsPositive() {
			res.RiskReward = tpPips.Div(pips).InexactFloat64()
		}
	}
	res.BalanceAfterLoss = balance.Sub(riskAmount).InexactFloat64()
	res.BalanceAfterWin = balance.Add(tpAmount).InexactFloat64()

	if pvSrc == market.RateParity {
		parityWarning(&res, inst, in.AccountCurrency, pvSrc)
	} else {
		parityWarning(&res, inst, in.AccountCurrency, mSrc)
	}

	if marginReq.GreaterThan(balance) {
		res.HasError = true
		res.ErrorMessage = fmt.Sprintf("Insufficient margin: %s %s required but only %s %s available",
			marginReq.StringFixed(2), in.AccountCurrency, balance.StringFixed(2), in.AccountCurrency)
		res.warn("Reduce the lot size or use higher leverage.")
	}

	return res
}

func parityWarning(res *Result, inst market.Instrument, acct string, src market.RateSource) {
	if src != market.RateParity {
		return
	}
	res.warn("No exchange rate for %s; assumed 1:1, so figures may be inaccurate.",
		market.PairKey(inst.QuoteCurrency, acct))
}
