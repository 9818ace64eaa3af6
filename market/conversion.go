package market

// Rates maps a "FROM/TO" pair to the amount of TO one unit of FROM buys.
// USD/JPY = 154.64 means one dollar is 154.64 yen.
type Rates map[string]float64

// USDJPYFallback is used whenever a USD/JPY quote is missing from the map.
const USDJPYFallback = 154.64

// RateSource says where a conversion rate came from.
type RateSource int

const (
	RateFromMap RateSource = iota
	RateIdentity
	RateFallback
	RateParity // nothing matched, 1.0 assumed
)

func (s RateSource) String() string {
	switch s {
	case RateFromMap:
		return "map"
	case RateIdentity:
		return "identity"
	case RateFallback:
		return "fallback"
	case RateParity:
		return "parity"
	default:
		return "unknown"
	}
}

// fallbackRates are approximate and only used when the live map has no quote.
var fallbackRates = map[string]float64{
	"EUR/USD": 1.08,
	"USD/JPY": USDJPYFallback,
	"GBP/USD": 1.27,
	"USD/CHF": 0.88,
	"USD/CAD": 1.36,
	"AUD/USD": 0.66,
}

func init() {
	inverse := make(map[string]float64, len(fallbackRates))
	for pair, rate := range fallbackRates {
		inverse[pair[4:]+"/"+pair[:3]] = 1 / rate
	}
	for pair, rate := range inverse {
		fallbackRates[pair] = rate
	}
}

func PairKey(from, to string) string {
	return from + "/" + to
}

// ConversionRate converts one unit of from into to.
func ConversionRate(rates Rates, from, to string) (float64, RateSource) {
	if r, ok := rates[PairKey(from, to)]; ok && r > 0 {
		return r, RateFromMap
	}
	if from == to {
		return 1.0, RateIdentity
	}
	if r, ok := fallbackRates[PairKey(from, to)]; ok {
		return r, RateFallback
	}
	return 1.0, RateParity
}

// USDJPY returns the USD/JPY rate from the map or the fallback constant.
func USDJPY(rates Rates) (float64, RateSource) {
	if r, ok := rates["USD/JPY"]; ok && r > 0 {
		return r, RateFromMap
	}
	return USDJPYFallback, RateFallback
}
