// Package pdftext extracts text from digitally-born PDFs locally, so invoices
// with an embedded text layer never need a round trip to the cloud OCR
// service. Scanned PDFs come back empty and fall through to Document
// Intelligence.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/quadtech/invoice-extractor/internal/extract"
)

// MinTextLen is the threshold below which an extraction is considered to have
// no usable text layer.
const MinTextLen = 40

type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract pulls the embedded text layer from a PDF. It returns an error when
// the file is not a readable PDF or carries no usable text, so callers can
// fall back to the OCR service.
func (e *Extractor) Extract(ctx context.Context, path string) (extract.TextExtractionResult, error) {
	start := time.Now()

	pages, err := pageCount(path)
	if err != nil {
		return extract.TextExtractionResult{}, fmt.Errorf("validate pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return extract.TextExtractionResult{}, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return extract.TextExtractionResult{}, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("pdftext.close_failed", "path", path, "error", cerr)
		}
	}()

	var b strings.Builder
	var warnings []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", pageNum, err))
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := b.String()
	if len(strings.TrimSpace(text)) < MinTextLen {
		return extract.TextExtractionResult{}, fmt.Errorf("no usable text layer (%d chars)", len(strings.TrimSpace(text)))
	}

	res := extract.TextExtractionResult{
		Text:     text,
		Pages:    pages,
		Method:   "pdf-text",
		Duration: time.Since(start),
		Warnings: warnings,
	}
	e.logger.Debug("pdftext.extract.ok", "path", path, "pages", pages, "text_len", len(text))
	return res, nil
}

// pageCount validates the file with pdfcpu (relaxed mode) and returns the
// page count.
func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf context: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("ensure page count: %w", err)
	}
	return pdfCtx.PageCount, nil
}
