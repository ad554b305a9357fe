package azure

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the Azure OpenAI client.
type Config struct {
	Endpoint    string        // resource endpoint, e.g. https://myres.openai.azure.com
	APIKey      string        // if empty, falls back to env AZURE_OPENAI_KEY
	APIVersion  string        // e.g. "2024-12-01-preview"
	Deployment  string        // deployment name, e.g. "gpt-4.1"
	Temperature float32
	TopP        float32
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("AZURE_OPENAI_KEY")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-12-01-preview"
	}
	if cfg.Deployment == "" {
		cfg.Deployment = "gpt-4.1"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 1.0
	}
	if cfg.TopP == 0 {
		cfg.TopP = 1.0
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 5000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}
