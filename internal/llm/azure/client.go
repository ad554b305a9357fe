package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quadtech/invoice-extractor/internal/llm"
)

// ExtractInvoice implements llm.InvoiceExtractor against an Azure OpenAI
// chat/completions deployment. The returned string is the raw message content;
// cleaning and schema enforcement happen downstream in the normalizer.
func (c *Client) ExtractInvoice(ctx context.Context, req llm.ExtractRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if req.CurrentDate == "" {
		req.CurrentDate = time.Now().Format("2006-01-02")
	}

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"deployment", c.cfg.Deployment,
		"temp", c.cfg.Temperature,
		"text_len", len(req.DocumentText),
		"body_models", len(req.BodyModels),
		"file", req.Filename,
	)

	body := map[string]any{
		"model":             c.cfg.Deployment,
		"temperature":       c.cfg.Temperature,
		"top_p":             c.cfg.TopP,
		"max_tokens":        c.cfg.MaxTokens,
		"frequency_penalty": 0.0,
		"presence_penalty":  0.0,
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req.BodyModels)},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
		},
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Deployment, c.cfg.APIVersion)

	raw, _, err := llm.SendJSON(ctx, c.http, url, body, map[string]string{
		"api-key": c.cfg.APIKey,
	}, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode azure openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in azure openai response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
