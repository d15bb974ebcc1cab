package gemini

import (
	"log/slog"
	"net/http"
	"time"
)

// Config for the Gemini extraction client. The credential is intentionally
// NOT part of the config: it is resolved per session and passed with every
// request, so the client stays oblivious to where it came from.
type Config struct {
	BaseURL string        // default https://generativelanguage.googleapis.com
	Model   string        // e.g. "gemini-2.5-flash"
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}
