package risk

import (
	"github.com/rustyeddy/tradelog/market"
	"github.com/shopspring/decimal"
)

// leverageOf treats a leverage of 0 or less as 1:1.
func leverageOf(x float64) decimal.Decimal {
	if x <= 0 {
		return decimal.NewFromInt(1)
	}
	return dec(x)
}

// margin is the account-currency margin to hold lots of inst at entry.
func margin(inst market.Instrument, acct string, lots, entry, leverage decimal.Decimal, rates market.Rates) (decimal.Decimal, market.RateSource) {
	// position value in quote currency
	value := lots.Mul(dec(inst.ContractSize)).Mul(entry)

	switch {
	case inst.QuoteCurrency == acct:
		return value.Div(leverage), market.RateIdentity

	case inst.QuoteCurrency == "JPY" && acct == "USD":
		r, src := market.USDJPY(rates)
		return value.Div(dec(r)).Div(leverage), src

	case inst.BaseCurrency == acct:
		return value.Div(leverage), market.RateIdentity

	default:
		r, src := market.ConversionRate(rates, inst.QuoteCurrency, acct)
		return value.Mul(dec(r)).Div(leverage), src
	}
}
