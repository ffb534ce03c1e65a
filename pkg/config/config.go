// Package config defines the application configuration, loaded from the
// environment with optional .env support.
package config

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port int    `envconfig:"PORT" default:"3000"`
}

type Log struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"`
	File   string `envconfig:"FILE" default:"logs/remitflow.log"`
}

type Backend struct {
	BaseURL      string        `envconfig:"BASE_URL" default:"http://localhost:8080"`
	Email        string        `envconfig:"EMAIL"`
	Password     string        `envconfig:"PASSWORD"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	TokenRefresh time.Duration `envconfig:"TOKEN_REFRESH_WINDOW" default:"1m"`
}

type FiatRates struct {
	ApiUrl      string        `envconfig:"API_URL" default:"https://open.er-api.com/v6/latest"`
	ApiKey      string        `envconfig:"API_KEY"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

type TokenRates struct {
	ApiUrl      string        `envconfig:"API_URL" default:"https://indodax.com/api/ticker"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

type Rates struct {
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	// Fallback holds last-resort static rates keyed "FROM-TO", consulted
	// when every provider path fails.
	Fallback map[string]float64 `envconfig:"FALLBACK" default:"USDT-IDR:15500,USD-IDR:15400,IDR-USDT:0.0000645"`
	// InversePairs lists pairs answered by inverting the forward token
	// quote, because the provider only supports the token as base.
	InversePairs []string `envconfig:"INVERSE_PAIRS" default:"IDR:USDT"`
}

type Transfer struct {
	// FeePercentage is the flat service fee rate applied to the amount.
	FeePercentage      float64  `envconfig:"FEE_PERCENTAGE" default:"0.015"`
	FiatCurrencies     []string `envconfig:"FIAT_CURRENCIES" default:"USD,EUR,GBP,SGD,IDR"`
	TokenCurrencies    []string `envconfig:"TOKEN_CURRENCIES" default:"USDT,USDC,BTC,ETH"`
	SettlementCurrency string   `envconfig:"SETTLEMENT_CURRENCY" default:"IDR"`
}

type Polling struct {
	Interval       time.Duration `envconfig:"INTERVAL" default:"15s"`
	MaxDuration    time.Duration `envconfig:"MAX_DURATION" default:"30m"`
	MaxPolls       int           `envconfig:"MAX_POLLS" default:"120"`
	ErrorThreshold int           `envconfig:"ERROR_THRESHOLD" default:"5"`
}

type Webhook struct {
	Secret string `envconfig:"SECRET"`
}

type Redis struct {
	URL string `envconfig:"URL"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type App struct {
	Env        string     `envconfig:"APP_ENV" default:"development"`
	Server     Server     `envconfig:"SERVER"`
	Log        Log        `envconfig:"LOG"`
	Backend    Backend    `envconfig:"BACKEND"`
	FiatRates  FiatRates  `envconfig:"FIAT_RATES"`
	TokenRates TokenRates `envconfig:"TOKEN_RATES"`
	Rates      Rates      `envconfig:"RATES"`
	Transfer   Transfer   `envconfig:"TRANSFER"`
	Polling    Polling    `envconfig:"POLLING"`
	Webhook    Webhook    `envconfig:"WEBHOOK"`
	Redis      Redis      `envconfig:"REDIS"`
	RateLimit  RateLimit  `envconfig:"RATE_LIMIT"`
}

// IsProduction reports whether the process runs with production semantics.
func (a *App) IsProduction() bool { return a.Env == "production" }

// Load reads .env when present, then resolves the App config from the
// environment.
func Load(logger *slog.Logger) (*App, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, using system environment variables")
	} else {
		logger.Info("environment variables loaded from .env file")
	}
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
