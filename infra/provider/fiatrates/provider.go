// Package fiatrates implements the fiat exchange-rate provider against
// an open.er-api.com style quote API.
package fiatrates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/remitflow/remitflow/pkg/config"
	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/remitflow/remitflow/pkg/provider"
)

const triangulationBase = "USD"

// apiResponse is the quote table the API returns for one base currency.
type apiResponse struct {
	Result    string             `json:"result"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
	ErrorType string             `json:"error-type,omitempty"`
}

// Provider fetches fiat quote tables over HTTP and triangulates through
// USD when the direct pair is missing from the base table.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a fiat rates provider from cfg.
func New(cfg config.FiatRates, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		baseURL:    cfg.ApiUrl,
		apiKey:     cfg.ApiKey,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger,
	}
}

// GetRate quotes from/to. When the from-based table has no entry for
// to, it falls back to two USD-based lookups:
// rate = (1/usd[from]) * usd[to].
func (p *Provider) GetRate(ctx context.Context, from, to string) (*provider.RateQuote, error) {
	table, err := p.fetchTable(ctx, from)
	if err != nil {
		return nil, err
	}
	if rate, ok := table.Rates[to]; ok {
		return p.quote(from, to, rate), nil
	}

	p.logger.Debug("direct pair unavailable, triangulating via USD", "from", from, "to", to)
	usd := table
	if from != triangulationBase {
		usd, err = p.fetchTable(ctx, triangulationBase)
		if err != nil {
			return nil, err
		}
	}
	fromRate, okFrom := usd.Rates[from]
	toRate, okTo := usd.Rates[to]
	if !okFrom || !okTo || fromRate == 0 {
		return nil, fmt.Errorf("%w: no triangulation path for %s/%s",
			domain.ErrExchangeRateUnavailable, from, to)
	}
	return p.quote(from, to, (1/fromRate)*toRate), nil
}

func (p *Provider) quote(from, to string, rate float64) *provider.RateQuote {
	return &provider.RateQuote{
		From:      from,
		To:        to,
		Rate:      rate,
		Source:    "fiat-api",
		Timestamp: time.Now(),
	}
}

func (p *Provider) fetchTable(ctx context.Context, base string) (*apiResponse, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rates API returned status %d: %s", resp.StatusCode, string(body))
	}

	var table apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}
	if table.Result != "" && table.Result != "success" {
		return nil, fmt.Errorf("rates API returned result=%s error=%s", table.Result, table.ErrorType)
	}
	return &table, nil
}
