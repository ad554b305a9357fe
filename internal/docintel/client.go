// Package docintel is a thin client for the Azure Document Intelligence
// analyze API. The service is treated as a black box: we submit a file, poll
// the operation, and consume only the per-page text content.
package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quadtech/invoice-extractor/constants"
	"github.com/quadtech/invoice-extractor/internal/extract"
)

type Config struct {
	Endpoint   string
	Key        string
	APIVersion string        // default "2024-11-30"
	ModelID    string        // default "prebuilt-invoice"
	Timeout    time.Duration // overall http client timeout
	PollEvery  time.Duration // default 2s
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-11-30"
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "prebuilt-invoice"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
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

type analyzeResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		Content string `json:"content"`
		Pages   []struct {
			PageNumber int `json:"pageNumber"`
			Lines      []struct {
				Content string `json:"content"`
			} `json:"lines"`
		} `json:"pages"`
	} `json:"analyzeResult"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract submits the file for analysis and blocks until the operation
// completes, returning the page-segmented text content.
func (c *Client) Extract(ctx context.Context, path string) (extract.TextExtractionResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return extract.TextExtractionResult{}, fmt.Errorf("read file: %w", err)
	}

	c.log.Info("docintel.analyze.start",
		"req_id", rid,
		"file", filepath.Base(path),
		"bytes", len(data),
		"model", c.cfg.ModelID,
	)

	opURL, err := c.submit(ctx, path, data)
	if err != nil {
		c.log.Error("docintel.analyze.submit_error", "req_id", rid, "error", err)
		return extract.TextExtractionResult{}, err
	}

	res, err := c.poll(ctx, opURL)
	if err != nil {
		c.log.Error("docintel.analyze.poll_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return extract.TextExtractionResult{}, err
	}

	out := extract.TextExtractionResult{
		Text:     pageText(res),
		Pages:    len(res.AnalyzeResult.Pages),
		Method:   "docintel",
		Duration: time.Since(start),
	}
	c.log.Info("docintel.analyze.ok",
		"req_id", rid,
		"pages", out.Pages,
		"text_len", len(out.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (c *Client) submit(ctx context.Context, path string, data []byte) (string, error) {
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s&features=ocrHighResolution",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.ModelID, c.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType(path))
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("docintel http error: %w", err)
	}
	defer closeBody(resp.Body, c.log)

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("docintel status %d: %s", resp.StatusCode, string(raw))
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("docintel response missing Operation-Location header")
	}
	return opURL, nil
}

func (c *Client) poll(ctx context.Context, opURL string) (*analyzeResult, error) {
	ticker := time.NewTicker(c.cfg.PollEvery)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build poll request: %w", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("docintel poll error: %w", err)
		}
		raw, err := io.ReadAll(resp.Body)
		closeBody(resp.Body, c.log)
		if err != nil {
			return nil, fmt.Errorf("read poll response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("docintel poll status %d: %s", resp.StatusCode, string(raw))
		}

		var res analyzeResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, fmt.Errorf("decode poll response: %w", err)
		}
		switch res.Status {
		case "succeeded":
			return &res, nil
		case "failed":
			if res.Error != nil {
				return nil, fmt.Errorf("docintel analysis failed: %s: %s", res.Error.Code, res.Error.Message)
			}
			return nil, fmt.Errorf("docintel analysis failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// pageText joins per-page line content; falls back to the flat content field
// when the service returns no line structure.
func pageText(res *analyzeResult) string {
	var b strings.Builder
	for _, page := range res.AnalyzeResult.Pages {
		for _, line := range page.Lines {
			b.WriteString(line.Content)
			b.WriteString("\n")
		}
	}
	if b.Len() == 0 {
		return res.AnalyzeResult.Content
	}
	return b.String()
}

func contentType(path string) string {
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}

func closeBody(body io.ReadCloser, logger *slog.Logger) {
	if err := body.Close(); err != nil {
		logger.Warn("docintel.response_body_close_error", "error", err)
	}
}
