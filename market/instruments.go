// market/instruments.go
package market

import (
	"fmt"
	"sort"
)

type Category string

const (
	Forex     Category = "forex"
	Index     Category = "index"
	Metal     Category = "metal"
	Crypto    Category = "crypto"
	Commodity Category = "commodity"
)

// Instrument carries the constants needed to turn a price move into money.
type Instrument struct {
	Symbol        string
	Name          string
	Category      Category
	BaseCurrency  string
	QuoteCurrency string
	ContractSize  float64 // units per standard lot
	PipSize       float64
	TickValue     float64
	TickSize      float64
}

// Validate reports a malformed catalog entry.
func (i Instrument) Validate() error {
	if i.Symbol == "" {
		return fmt.Errorf("instrument symbol is empty")
	}
	if i.ContractSize <= 0 {
		return fmt.Errorf("instrument %s: contract size must be positive", i.Symbol)
	}
	if i.PipSize <= 0 {
		return fmt.Errorf("instrument %s: pip size must be positive", i.Symbol)
	}
	return nil
}

func fx(sym, name, base, quote string, pip, tickValue float64) Instrument {
	return Instrument{
		Symbol:        sym,
		Name:          name,
		Category:      Forex,
		BaseCurrency:  base,
		QuoteCurrency: quote,
		ContractSize:  100_000,
		PipSize:       pip,
		TickValue:     tickValue,
		TickSize:      pip / 10,
	}
}

var Instruments = map[string]Instrument{
	// majors
	"EUR/USD": fx("EUR/USD", "Euro / US Dollar", "EUR", "USD", 0.0001, 1),
	"GBP/USD": fx("GBP/USD", "British Pound / US Dollar", "GBP", "USD", 0.0001, 1),
	"AUD/USD": fx("AUD/USD", "Australian Dollar / US Dollar", "AUD", "USD", 0.0001, 1),
	"NZD/USD": fx("NZD/USD", "New Zealand Dollar / US Dollar", "NZD", "USD", 0.0001, 1),
	"USD/JPY": fx("USD/JPY", "US Dollar / Japanese Yen", "USD", "JPY", 0.01, 0.65),
	"USD/CHF": fx("USD/CHF", "US Dollar / Swiss Franc", "USD", "CHF", 0.0001, 1.13),
	"USD/CAD": fx("USD/CAD", "US Dollar / Canadian Dollar", "USD", "CAD", 0.0001, 0.73),

	// minors and crosses
	"EUR/GBP": fx("EUR/GBP", "Euro / British Pound", "EUR", "GBP", 0.0001, 1.27),
	"EUR/CHF": fx("EUR/CHF", "Euro / Swiss Franc", "EUR", "CHF", 0.0001, 1.13),
	"EUR/JPY": fx("EUR/JPY", "Euro / Japanese Yen", "EUR", "JPY", 0.01, 0.65),
	"GBP/JPY": fx("GBP/JPY", "British Pound / Japanese Yen", "GBP", "JPY", 0.01, 0.65),
	"AUD/JPY": fx("AUD/JPY", "Australian Dollar / Japanese Yen", "AUD", "JPY", 0.01, 0.65),
	"EUR/AUD": fx("EUR/AUD", "Euro / Australian Dollar", "EUR", "AUD", 0.0001, 0.66),
	"GBP/CHF": fx("GBP/CHF", "British Pound / Swiss Franc", "GBP", "CHF", 0.0001, 1.13),

	// indices
	"US30": {
		Symbol: "US30", Name: "Dow Jones 30", Category: Index,
		BaseCurrency: "US30", QuoteCurrency: "USD",
		ContractSize: 1, PipSize: 1, TickValue: 0.01, TickSize: 0.01,
	},
	"NAS100": {
		Symbol: "NAS100", Name: "Nasdaq 100", Category: Index,
		BaseCurrency: "NAS100", QuoteCurrency: "USD",
		ContractSize: 1, PipSize: 1, TickValue: 0.01, TickSize: 0.01,
	},
	"SPX500": {
		Symbol: "SPX500", Name: "S&P 500", Category: Index,
		BaseCurrency: "SPX500", QuoteCurrency: "USD",
		ContractSize: 1, PipSize: 1, TickValue: 0.01, TickSize: 0.01,
	},
	"GER40": {
		Symbol: "GER40", Name: "DAX 40", Category: Index,
		BaseCurrency: "GER40", QuoteCurrency: "EUR",
		ContractSize: 1, PipSize: 1, TickValue: 0.01, TickSize: 0.01,
	},
	"UK100": {
		Symbol: "UK100", Name: "FTSE 100", Category: Index,
		BaseCurrency: "UK100", QuoteCurrency: "GBP",
		ContractSize: 1, PipSize: 1, TickValue: 0.01, TickSize: 0.01,
	},

	// metals
	"XAU/USD": {
		Symbol: "XAU/USD", Name: "Gold / US Dollar", Category: Metal,
		BaseCurrency: "XAU", QuoteCurrency: "USD",
		ContractSize: 100, PipSize: 0.01, TickValue: 1, TickSize: 0.01,
	},
	"XAG/USD": {
		Symbol: "XAG/USD", Name: "Silver / US Dollar", Category: Metal,
		BaseCurrency: "XAG", QuoteCurrency: "USD",
		ContractSize: 5000, PipSize: 0.001, TickValue: 5, TickSize: 0.001,
	},

	// crypto
	"BTC/USD": {
		Symbol: "BTC/USD", Name: "Bitcoin / US Dollar", Category: Crypto,
		BaseCurrency: "BTC", QuoteCurrency: "USD",
		ContractSize: 1, PipSize: 1, TickValue: 0.01, TickSize: 0.01,
	},
	"ETH/USD": {
		Symbol: "ETH/USD", Name: "Ethereum / US Dollar", Category: Crypto,
		BaseCurrency: "ETH", QuoteCurrency: "USD",
		ContractSize: 1, PipSize: 0.01, TickValue: 0.01, TickSize: 0.01,
	},

	// commodities
	"WTI": {
		Symbol: "WTI", Name: "US Crude Oil", Category: Commodity,
		BaseCurrency: "WTI", QuoteCurrency: "USD",
		ContractSize: 1000, PipSize: 0.01, TickValue: 10, TickSize: 0.01,
	},
	"BRENT": {
		Symbol: "BRENT", Name: "Brent Crude Oil", Category: Commodity,
		BaseCurrency: "BRENT", QuoteCurrency: "USD",
		ContractSize: 1000, PipSize: 0.01, TickValue: 10, TickSize: 0.01,
	},
	"NATGAS": {
		Symbol: "NATGAS", Name: "Natural Gas", Category: Commodity,
		BaseCurrency: "NATGAS", QuoteCurrency: "USD",
		ContractSize: 10_000, PipSize: 0.001, TickValue: 10, TickSize: 0.001,
	},
}

// Lookup returns the catalog entry for a symbol code.
func Lookup(symbol string) (Instrument, bool) {
	inst, ok := Instruments[symbol]
	return inst, ok
}

// Symbols returns every catalog symbol in sorted order.
func Symbols() []string {
	out := make([]string, 0, len(Instruments))
	for k := range Instruments {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func ByCategory(c Category) []Instrument {
	var out []Instrument
	for _, sym := range Symbols() {
		if inst := Instruments[sym]; inst.Category == c {
			out = append(out, inst)
		}
	}
	return out
}
