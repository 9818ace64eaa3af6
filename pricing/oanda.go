package pricing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/rustyeddy/tradelog/market"
)

// OANDAPracticeURL is the REST host of OANDA's demo environment.
const OANDAPracticeURL = "https://api-fxpractice.oanda.com"

// DefaultPairs are the conversions the pip value and margin math ask for.
var DefaultPairs = []string{"EUR/USD", "GBP/USD", "AUD/USD", "USD/JPY", "USD/CHF", "USD/CAD"}

type oandaPrice struct {
	Instrument string `json:"instrument"`
	Bids       []struct {
		Price string `json:"price"`
	} `json:"bids"`
	Asks []struct {
		Price string `json:"price"`
	} `json:"asks"`
}

type oandaPricingResponse struct {
	Prices []oandaPrice `json:"prices"`
}

// OANDASource reads current mid prices from OANDA's v3 pricing endpoint.
type OANDASource struct {
	http      *resty.Client
	accountID string
	pairs     []string
}

func NewOANDASource(baseURL, token, accountID string, pairs []string) *OANDASource {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = OANDAPracticeURL
	}
	if len(pairs) == 0 {
		pairs = DefaultPairs
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultHTTPTimeout).
		SetRetryCount(defaultRetryCount).
		SetRetryWaitTime(defaultRetryWait).
		SetAuthToken(token)

	return &OANDASource{http: client, accountID: accountID, pairs: pairs}
}

func (s *OANDASource) Rates(ctx context.Context) (market.Rates, error) {
	if s.accountID == "" {
		return nil, fmt.Errorf("oanda: missing account id")
	}

	instruments := make([]string, len(s.pairs))
	for i, p := range s.pairs {
		instruments[i] = strings.ReplaceAll(strings.ToUpper(p), "/", "_")
	}

	var body oandaPricingResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetPathParam("account", s.accountID).
		SetQueryParam("instruments", strings.Join(instruments, ",")).
		SetResult(&body).
		Get("/v3/accounts/{account}/pricing")
	if err != nil {
		return nil, fmt.Errorf("oanda pricing: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("oanda pricing http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	out := make(market.Rates, len(body.Prices))
	for _, p := range body.Prices {
		mid, err := p.mid()
		if err != nil {
			return nil, fmt.Errorf("oanda %s: %w", p.Instrument, err)
		}
		if mid > 0 {
			out[strings.ReplaceAll(p.Instrument, "_", "/")] = mid
		}
	}
	return out, nil
}

// mid is the bid/ask midpoint of the best levels; a missing side yields the other.
func (p oandaPrice) mid() (float64, error) {
	var bid, ask float64
	var err error
	if len(p.Bids) > 0 {
		if bid, err = strconv.ParseFloat(p.Bids[0].Price, 64); err != nil {
			return 0, err
		}
	}
	if len(p.Asks) > 0 {
		if ask, err = strconv.ParseFloat(p.Asks[0].Price, 64); err != nil {
			return 0, err
		}
	}
	switch {
	case bid == 0:
		return ask, nil
	case ask == 0:
		return bid, nil
	}
	return (bid + ask) / 2, nil
}
