// Package backend implements the REST client for the transaction
// service the engine submits transfers to and polls.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/remitflow/remitflow/pkg/config"
	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/remitflow/remitflow/pkg/provider"
)

// ErrUnauthenticated is returned when login is rejected.
var ErrUnauthenticated = errors.New("backend authentication failed")

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type initiateResponse struct {
	TransferID  string `json:"transferId"`
	Status      string `json:"status"`
	PaymentLink string `json:"paymentLink,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

type statusResponse struct {
	TransferID   string `json:"transferId"`
	Status       string `json:"status"`
	BlockchainTx string `json:"blockchainTx,omitempty"`
}

type detailsResponse struct {
	TransferID      string  `json:"transferId"`
	Status          string  `json:"status"`
	SenderCurrency  string  `json:"senderCurrency"`
	Amount          float64 `json:"amount"`
	RecipientName   string  `json:"recipientName"`
	RecipientBank   string  `json:"recipientBank"`
	RecipientAmount float64 `json:"recipientAmount"`
	Currency        string  `json:"currency"`
	Rate            float64 `json:"rate"`
	Fee             float64 `json:"fee"`
	BlockchainTx    string  `json:"blockchainTx,omitempty"`
	CompletedAt     string  `json:"completedAt,omitempty"`
}

type historyItem struct {
	TransferID string `json:"transferId"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client implements provider.TransferBackend over HTTP with bearer
// authentication. The access token is re-acquired when its exp claim is
// inside the configured refresh window.
type Client struct {
	baseURL       string
	email         string
	password      string
	refreshWindow time.Duration
	httpClient    *http.Client
	logger        *slog.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

var _ provider.TransferBackend = (*Client)(nil)

// New creates a backend client from cfg.
func New(cfg config.Backend, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		email:         cfg.Email,
		password:      cfg.Password,
		refreshWindow: cfg.TokenRefresh,
		httpClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		logger:        logger,
	}
}

// token returns a usable access token, logging in when the cached one
// is absent or about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.expiresAt) > c.refreshWindow {
		return c.accessToken, nil
	}

	body, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnauthenticated, resp.StatusCode)
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if login.AccessToken == "" {
		return "", ErrUnauthenticated
	}

	c.accessToken = login.AccessToken
	c.expiresAt = tokenExpiry(login.AccessToken)
	c.logger.Debug("backend login succeeded", "user", login.User.Email, "expires_at", c.expiresAt)
	return c.accessToken, nil
}

// tokenExpiry extracts the exp claim without verifying the signature;
// the client only needs it to schedule re-login, trust comes from TLS.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Now().Add(5 * time.Minute)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Now().Add(5 * time.Minute)
	}
	return exp.Time
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		if err := json.NewDecoder(resp.Body).Decode(&ae); err == nil {
			msg := ae.Message
			if msg == "" {
				msg = ae.Error
			}
			if msg != "" {
				return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// InitiateTransfer creates a transaction from the submitted draft.
func (c *Client) InitiateTransfer(ctx context.Context, req provider.InitiateRequest) (*domain.Transaction, error) {
	payload := map[string]any{
		"idempotencyKey":    req.IdempotencyKey,
		"method":            req.Method,
		"recipientName":     req.RecipientName,
		"recipientCurrency": req.RecipientCurrency,
		"recipientBank":     req.RecipientBank,
		"recipientAccount":  req.RecipientAccount,
		"senderCurrency":    req.SenderCurrency,
		"amount":            req.Amount,
		"recipientAmount":   req.RecipientAmount,
		"fee":               req.Fee,
		"rate":              req.Rate,
	}
	if req.Card != nil {
		payload["card"] = map[string]string{
			"number": req.Card.Number,
			"cvc":    req.Card.CVC,
			"expiry": req.Card.Expiry,
		}
	}

	var out initiateResponse
	if err := c.do(ctx, http.MethodPost, "/transfer/initiate", payload, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransferSubmission, err)
	}
	return &domain.Transaction{
		ID:          out.TransferID,
		Status:      domain.NormalizeStatus(out.Status),
		PaymentLink: out.PaymentLink,
	}, nil
}

// CalculateTransfer asks the backend for its rate and fee preview.
func (c *Client) CalculateTransfer(ctx context.Context, req provider.CalculateRequest) (*provider.CalculateResponse, error) {
	payload := map[string]any{
		"senderCurrency":    req.SenderCurrency,
		"recipientCurrency": req.RecipientCurrency,
		"amount":            req.Amount,
	}
	var out provider.CalculateResponse
	if err := c.do(ctx, http.MethodPost, "/transfer/calculate", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransferStatus fetches the current lifecycle status of a transaction.
func (c *Client) TransferStatus(ctx context.Context, id string) (*provider.StatusResponse, error) {
	var out statusResponse
	if err := c.do(ctx, http.MethodGet, "/transfer/status/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &provider.StatusResponse{
		TransferID:   out.TransferID,
		Status:       domain.NormalizeStatus(out.Status),
		BlockchainTx: out.BlockchainTx,
	}, nil
}

// TransferDetails fetches the full settlement breakdown.
func (c *Client) TransferDetails(ctx context.Context, id string) (*domain.TransferDetails, error) {
	var out detailsResponse
	if err := c.do(ctx, http.MethodGet, "/transfer/details/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	details := &domain.TransferDetails{
		ID:              out.TransferID,
		Status:          domain.NormalizeStatus(out.Status),
		SenderCurrency:  out.SenderCurrency,
		Amount:          out.Amount,
		RecipientName:   out.RecipientName,
		RecipientBank:   out.RecipientBank,
		RecipientAmount: out.RecipientAmount,
		Currency:        out.Currency,
		Rate:            out.Rate,
		Fee:             out.Fee,
		BlockchainTx:    out.BlockchainTx,
	}
	if out.CompletedAt != "" {
		if ts, err := time.Parse(time.RFC3339, out.CompletedAt); err == nil {
			details.CompletedAt = ts
		}
	}
	return details, nil
}

// History lists the most recent transactions.
func (c *Client) History(ctx context.Context, limit int) ([]domain.Transaction, error) {
	var out []historyItem
	path := fmt.Sprintf("/transactions/history?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(out))
	for _, item := range out {
		tx := domain.Transaction{
			ID:     item.TransferID,
			Status: domain.NormalizeStatus(item.Status),
		}
		if item.CreatedAt != "" {
			if ts, err := time.Parse(time.RFC3339, item.CreatedAt); err == nil {
				tx.CreatedAt = ts
			}
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
