package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: file -> document text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "docintel" | "pdf-text"
	Duration time.Duration
	Warnings []string
}
