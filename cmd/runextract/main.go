package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quadtech/invoice-extractor/constants"
	"github.com/quadtech/invoice-extractor/internal/bodymodels"
	"github.com/quadtech/invoice-extractor/internal/common"
	"github.com/quadtech/invoice-extractor/internal/docintel"
	"github.com/quadtech/invoice-extractor/internal/llm"
	"github.com/quadtech/invoice-extractor/internal/llm/azure"
	"github.com/quadtech/invoice-extractor/internal/normalize"
	"github.com/quadtech/invoice-extractor/internal/pdftext"
)

// runextract runs the full extraction for a single file and prints the
// normalized record to stdout. Useful for debugging prompts and services
// without touching the database.
func main() {
	var (
		file    = flag.String("file", "", "invoice file to extract (required)")
		rawOnly = flag.Bool("raw", false, "print the raw model output instead of the normalized record")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if *file == "" {
		logger.Error("--file is required")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	filename := filepath.Base(*file)
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		logger.Error("unsupported file type", "ext", ext)
		os.Exit(1)
	}

	// Stage 1: document text
	var text string
	if constants.MapExtToFormat(ext) == constants.PDF {
		if res, err := pdftext.NewExtractor(logger).Extract(ctx, *file); err == nil {
			text = res.Text
		}
	}
	if text == "" {
		ocr := docintel.NewClient(docintel.Config{
			Endpoint:   cfg.DocIntel.Endpoint,
			Key:        cfg.DocIntel.Key,
			APIVersion: cfg.DocIntel.APIVersion,
			ModelID:    cfg.DocIntel.ModelID,
			Timeout:    cfg.DocIntel.Timeout,
		}, logger)
		res, err := ocr.Extract(ctx, *file)
		if err != nil {
			logger.Error("text extraction failed", "error", err)
			os.Exit(1)
		}
		text = res.Text
	}

	// Stage 2: candidate JSON
	extractor := azure.NewClient(azure.Config{
		Endpoint:    cfg.LLM.Endpoint,
		APIKey:      cfg.LLM.Key,
		APIVersion:  cfg.LLM.APIVersion,
		Deployment:  cfg.LLM.Deployment,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	raw, err := extractor.ExtractInvoice(ctx, llm.ExtractRequest{
		DocumentText: text,
		Filename:     filename,
		BodyModels:   bodymodels.Load(cfg.Paths.BodyModelsFile, logger),
	})
	if err != nil {
		logger.Error("invoice extraction failed", "error", err)
		os.Exit(1)
	}
	if *rawOnly {
		fmt.Println(raw)
		return
	}

	rec, diag := normalize.New(normalize.Config{}, logger).Normalize(raw, filename)
	if diag != nil {
		logger.Warn("model output was not valid JSON, printing defaults", "error", diag.Err)
	}
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		logger.Error("encode failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
