// Package tokenrates implements the crypto-quote provider against an
// exchange ticker API that quotes tokens versus a settlement fiat.
package tokenrates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/remitflow/remitflow/pkg/config"
	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/remitflow/remitflow/pkg/provider"
)

// tickerResponse is the exchange's last-trade quote for one market.
type tickerResponse struct {
	Ticker struct {
		Last string `json:"last"`
	} `json:"ticker"`
	Error string `json:"error,omitempty"`
}

// Provider fetches token/fiat tickers over HTTP. The token is always
// the market base; callers needing the inverse pair invert the result.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a token rates provider from cfg.
func New(cfg config.TokenRates, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		baseURL:    cfg.ApiUrl,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger,
	}
}

// GetRate quotes one token against one fiat from the exchange ticker.
func (p *Provider) GetRate(ctx context.Context, token, fiat string) (*provider.RateQuote, error) {
	market := strings.ToLower(token + fiat)
	url := fmt.Sprintf("%s/%s", p.baseURL, market)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticker %s: %w", market, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ticker API returned status %d: %s", resp.StatusCode, string(body))
	}

	var ticker tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return nil, fmt.Errorf("failed to decode ticker response: %w", err)
	}
	if ticker.Error != "" {
		return nil, fmt.Errorf("%w: ticker API error: %s", domain.ErrExchangeRateUnavailable, ticker.Error)
	}

	last, err := strconv.ParseFloat(ticker.Ticker.Last, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable last price %q for %s",
			domain.ErrExchangeRateUnavailable, ticker.Ticker.Last, market)
	}

	return &provider.RateQuote{
		From:      strings.ToUpper(token),
		To:        strings.ToUpper(fiat),
		Rate:      last,
		Source:    "token-ticker",
		Timestamp: time.Now(),
	}, nil
}
