package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rustyeddy/tradelog/market"
)

// StaticSource serves a fixed rate map, usually from the config file.
type StaticSource market.Rates

func (s StaticSource) Rates(context.Context) (market.Rates, error) {
	out := make(market.Rates, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out, nil
}

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultRetryCount  = 2
	defaultRetryWait   = 500 * time.Millisecond
)

// ratesResponse is the body HTTPSource expects:
//
//	{"base":"USD","rates":{"USD/JPY":154.2,"EUR/USD":1.08}}
type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// HTTPSource fetches rates from a JSON endpoint.
type HTTPSource struct {
	http *resty.Client
	url  string
}

func NewHTTPSource(url string) *HTTPSource {
	client := resty.New().
		SetTimeout(defaultHTTPTimeout).
		SetRetryCount(defaultRetryCount).
		SetRetryWaitTime(defaultRetryWait).
		SetHeader("Accept", "application/json")

	return &HTTPSource{http: client, url: strings.TrimSpace(url)}
}

func (s *HTTPSource) Rates(ctx context.Context) (market.Rates, error) {
	if s.url == "" {
		return nil, fmt.Errorf("rates url is required")
	}

	var body ratesResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("get rates: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("rates API error (status %d): %s", resp.StatusCode(), resp.String())
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rates API returned no rates")
	}

	out := make(market.Rates, len(body.Rates))
	for pair, r := range body.Rates {
		pair = strings.ToUpper(pair)
		if !strings.Contains(pair, "/") && body.Base != "" {
			// bare currency codes are quoted against base
			pair = market.PairKey(strings.ToUpper(body.Base), pair)
		}
		out[pair] = r
	}
	return out, nil
}
