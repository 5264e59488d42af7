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
	log "github.com/sirupsen/logrus"
)

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
	Error       string `json:"Error Message"`
}

type symbolSearchResponse struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
	} `json:"bestMatches"`
}

// AlphaVantage looks up quotes from the Alpha Vantage query API.
type AlphaVantage struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAlphaVantage returns a provider for the API at baseURL.
func NewAlphaVantage(baseURL, apiKey string) *AlphaVantage {
	return &AlphaVantage{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Lookup fetches the latest price for symbol. The company name comes from a
// symbol search and falls back to the symbol itself.
func (a *AlphaVantage) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	symbol = Normalize(symbol)
	if symbol == "" {
		return nil, ErrNotFound
	}

	var result globalQuoteResponse
	if err := a.get(ctx, "GLOBAL_QUOTE", "symbol", symbol, &result); err != nil {
		return nil, err
	}
	if result.Note != "" || result.Information != "" {
		return nil, fmt.Errorf("quote provider refused request: %s%s", result.Note, result.Information)
	}
	if result.Error != "" || result.GlobalQuote.Price == "" {
		return nil, ErrNotFound
	}

	price, err := decimal.NewFromString(result.GlobalQuote.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q for %s: %w", result.GlobalQuote.Price, symbol, err)
	}

	q := &Quote{
		Symbol: result.GlobalQuote.Symbol,
		Name:   result.GlobalQuote.Symbol,
		Price:  price,
	}
	if q.Symbol == "" {
		q.Symbol = symbol
		q.Name = symbol
	}

	var search symbolSearchResponse
	if err := a.get(ctx, "SYMBOL_SEARCH", "keywords", q.Symbol, &search); err != nil {
		log.WithError(err).WithField("symbol", q.Symbol).Warn("Symbol search failed, using symbol as name")
		return q, nil
	}
	for _, match := range search.BestMatches {
		if strings.EqualFold(match.Symbol, q.Symbol) && match.Name != "" {
			q.Name = match.Name
			break
		}
	}

	return q, nil
}

func (a *AlphaVantage) get(ctx context.Context, function, param, value string, out any) error {
	query := url.Values{}
	query.Set("function", function)
	query.Set(param, value)
	query.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/query?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", function, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %s", function, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", function, err)
	}
	return nil
}
