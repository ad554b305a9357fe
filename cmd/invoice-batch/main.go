package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quadtech/invoice-extractor/internal/bodymodels"
	"github.com/quadtech/invoice-extractor/internal/common"
	"github.com/quadtech/invoice-extractor/internal/docintel"
	"github.com/quadtech/invoice-extractor/internal/export"
	"github.com/quadtech/invoice-extractor/internal/llm/azure"
	"github.com/quadtech/invoice-extractor/internal/normalize"
	"github.com/quadtech/invoice-extractor/internal/pdftext"
	"github.com/quadtech/invoice-extractor/internal/pipeline"
	"github.com/quadtech/invoice-extractor/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem   = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir     = flag.String("dir", "", "directory of invoice files to process (required)")
		out     = flag.String("out", "", "output directory for JSON results (defaults to INVOICE_OUTPUT_DIR)")
		xlsx    = flag.String("xlsx", "", "output XLSX file path (optional)")
		enhance = flag.Bool("enhance", true, "enhance images before OCR upload")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *out == "" {
		*out = cfg.Paths.OutputDir
	}

	dbURL := cfg.Database.URL
	if *inmem {
		dbURL = "file:batch?mode=memory&cache=shared"
	}
	db, err := repository.Open(ctx, repository.Config{
		URL:             dbURL,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewInvoiceRepository(db, logger)
	models := bodymodels.Load(cfg.Paths.BodyModelsFile, logger)

	ocr := docintel.NewClient(docintel.Config{
		Endpoint:   cfg.DocIntel.Endpoint,
		Key:        cfg.DocIntel.Key,
		APIVersion: cfg.DocIntel.APIVersion,
		ModelID:    cfg.DocIntel.ModelID,
		Timeout:    cfg.DocIntel.Timeout,
	}, logger)

	extractor := azure.NewClient(azure.Config{
		Endpoint:    cfg.LLM.Endpoint,
		APIKey:      cfg.LLM.Key,
		APIVersion:  cfg.LLM.APIVersion,
		Deployment:  cfg.LLM.Deployment,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	proc := pipeline.New(
		pipeline.Config{CacheDir: filepath.Join(*out, "cache"), EnhanceImages: *enhance},
		pdftext.NewExtractor(logger),
		ocr,
		extractor,
		normalize.New(normalize.Config{}, logger),
		repo,
		models,
		logger,
	)

	results, err := proc.ProcessFolder(ctx, *dir)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	items := make([]export.Item, 0, len(results))
	failed := 0
	for _, r := range results {
		items = append(items, export.Item{Filename: r.Filename, Record: r.Record})
		if r.Err != nil {
			failed++
		}
	}
	if err := export.WriteJSONFiles(*out, items, logger); err != nil {
		logger.Error("failed to write JSON output", "error", err)
		os.Exit(1)
	}

	if *xlsx != "" {
		data, err := export.NewService(repo, logger).InvoicesXLSX(ctx)
		if err != nil {
			logger.Error("failed to build XLSX", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsx, data, 0o644); err != nil {
			logger.Error("failed to write XLSX", "path", *xlsx, "error", err)
			os.Exit(1)
		}
		logger.Info("xlsx written", "path", *xlsx)
	}

	logger.Info("batch complete", "files", len(results), "failed", failed, "out", *out)
}
