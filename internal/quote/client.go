package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client fetches quotes from an IEX-style REST API:
// GET {base}/stock/{symbol}/quote?token={key} -> {"symbol","companyName","latestPrice"}.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a Client against the given API base URL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type quoteResponse struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	LatestPrice decimal.Decimal `json:"latestPrice"`
}

// Lookup resolves symbol to its current quote. A 404 from the API maps to
// ErrUnknownSymbol; any other non-200 status is a provider error.
func (c *Client) Lookup(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, ErrUnknownSymbol
	}

	u := fmt.Sprintf("%s/stock/%s/quote?token=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("quote lookup %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Quote{}, ErrUnknownSymbol
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote lookup %s: unexpected status %s", symbol, resp.Status)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, fmt.Errorf("quote lookup %s: decode: %w", symbol, err)
	}
	if body.Symbol == "" {
		body.Symbol = symbol
	}
	return Quote{Symbol: body.Symbol, Name: body.CompanyName, Price: body.LatestPrice}, nil
}
