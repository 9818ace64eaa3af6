package risk

import (
	"github.com/rustyeddy/tradelog/market"
	"github.com/shopspring/decimal"
)

// PipValue is the account-currency value of one pip for one standard lot.
// The returned source reports how the currency conversion, if any, was resolved.
func PipValue(inst market.Instrument, accountCurrency string, entry float64, rates market.Rates) (float64, market.RateSource) {
	v, src := pipValue(inst, accountCurrency, dec(entry), rates)
	return v.InexactFloat64(), src
}

func pipValue(inst market.Instrument, acct string, entry decimal.Decimal, rates market.Rates) (decimal.Decimal, market.RateSource) {
	num, den, src := pipValueParts(inst, acct, entry, rates)
	return num.Div(den), src
}

// pipValueParts returns the pip value per lot as num/den, leaving the one
// inexact division to the caller.
func pipValueParts(inst market.Instrument, acct string, entry decimal.Decimal, rates market.Rates) (num, den decimal.Decimal, src market.RateSource) {
	perLot := dec(inst.ContractSize).Mul(dec(inst.PipSize))

	switch {
	case inst.QuoteCurrency == acct:
		return perLot, one, market.RateIdentity

	case inst.BaseCurrency == acct:
		if !entry.IsPositive() {
			return decimal.Zero, one, market.RateIdentity
		}
		return perLot, entry, market.RateIdentity

	case inst.QuoteCurrency == "JPY" && acct == "USD":
		r, src := market.USDJPY(rates)
		return perLot, dec(r), src

	default:
		r, src := market.ConversionRate(rates, inst.QuoteCurrency, acct)
		return perLot.Mul(dec(r)), one, src
	}
}
