package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/quadtech/invoice-extractor/constants"
	"github.com/quadtech/invoice-extractor/internal/common"
	"github.com/quadtech/invoice-extractor/internal/entity"
	"github.com/quadtech/invoice-extractor/internal/extract"
	"github.com/quadtech/invoice-extractor/internal/imageprep"
	"github.com/quadtech/invoice-extractor/internal/llm"
	"github.com/quadtech/invoice-extractor/internal/normalize"
	"github.com/quadtech/invoice-extractor/internal/repository"
)

// Config carries the processor knobs that are not collaborators.
type Config struct {
	// CacheDir receives enhanced image copies before OCR upload.
	CacheDir string
	// EnhanceImages toggles the pre-OCR image cleanup pass.
	EnhanceImages bool
	// Now is the processing clock; defaults to time.Now.
	Now func() time.Time
}

// Processor runs one file through both extraction stages and persists the
// outcome. Every input file yields exactly one record: when a stage fails the
// record is the minimal fallback and the job finishes with an error status.
type Processor struct {
	cfg        Config
	pdfText    extract.TextExtractor // optional local text layer shortcut
	ocr        extract.TextExtractor
	extractor  llm.InvoiceExtractor
	normalizer *normalize.Normalizer
	repo       repository.InvoiceRepository
	bodyModels []string
	schema     map[string]any
	logger     *slog.Logger
}

func New(
	cfg Config,
	pdfText extract.TextExtractor,
	ocr extract.TextExtractor,
	extractor llm.InvoiceExtractor,
	normalizer *normalize.Normalizer,
	repo repository.InvoiceRepository,
	bodyModels []string,
	logger *slog.Logger,
) *Processor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:        cfg,
		pdfText:    pdfText,
		ocr:        ocr,
		extractor:  extractor,
		normalizer: normalizer,
		repo:       repo,
		bodyModels: bodyModels,
		schema:     llm.BuildInvoiceJSONSchema(),
		logger:     logger,
	}
}

// Result is the per-file outcome of a processing run.
type Result struct {
	Filename string
	RecordID uuid.UUID
	Record   entity.InvoiceRecord
	Status   constants.JobStatus
	Err      error
}

// ProcessFolder processes every allowed file in dir, in filename order.
// It returns one Result per file; per-file failures are captured in the
// Result rather than aborting the batch.
func (p *Processor) ProcessFolder(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read invoice folder: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			p.logger.Warn("pipeline.skip_unsupported", "filename", e.Name())
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	p.logger.Info("pipeline.folder.start", "dir", dir, "files", len(paths))

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, p.ProcessFile(ctx, path))
	}

	p.logger.Info("pipeline.folder.done", "dir", dir, "records", len(results))
	return results, nil
}

// ProcessFile runs the full pipeline for one file. It always returns a
// Result carrying a record; Err is set when the fallback path was taken.
func (p *Processor) ProcessFile(ctx context.Context, path string) Result {
	filename := filepath.Base(path)
	started := p.cfg.Now()
	p.logger.Info("pipeline.file.start", "filename", filename)

	file, job, err := p.register(ctx, path, filename)
	if err != nil {
		return p.fail(ctx, nil, filename, fmt.Errorf("register file: %w", err))
	}

	text, err := p.extractText(ctx, path, job.Format)
	if err != nil {
		return p.fail(ctx, job, filename, fmt.Errorf("text extraction: %w", err))
	}
	if err := p.repo.MarkJobText(ctx, job.ID, text); err != nil {
		p.logger.Error("pipeline.mark_text_failed", "filename", filename, "error", err)
	}

	raw, err := p.extractor.ExtractInvoice(ctx, llm.ExtractRequest{
		DocumentText: text,
		Filename:     filename,
		CurrentDate:  p.cfg.Now().Format("2006-01-02"),
		BodyModels:   p.bodyModels,
	})
	if err != nil {
		return p.fail(ctx, job, filename, fmt.Errorf("invoice extraction: %w", err))
	}

	if verr := llm.ValidateJSONAgainstSchema(p.schema, []byte(normalize.StripFences(raw))); verr != nil {
		p.logger.Warn("pipeline.schema_mismatch", "filename", filename, "error", verr)
	}

	rec, diag := p.normalizer.Normalize(raw, filename)
	if diag != nil {
		p.logger.Warn("pipeline.normalize_fallback", "filename", filename, "error", diag.Err)
	}

	recID, err := p.repo.UpsertRecord(ctx, file.ID, job.ID, constants.JobStatusCompleted, rec)
	if err != nil {
		return p.fail(ctx, job, filename, fmt.Errorf("persist record: %w", err))
	}
	if err := p.repo.FinishJob(ctx, job.ID, constants.JobStatusCompleted, "", raw); err != nil {
		p.logger.Error("pipeline.finish_job_failed", "filename", filename, "error", err)
	}

	p.logger.Info("pipeline.file.done",
		"filename", filename,
		"record_id", recID.String(),
		"elapsed_ms", time.Since(started).Milliseconds())

	return Result{Filename: filename, RecordID: recID, Record: rec, Status: constants.JobStatusCompleted}
}

func (p *Processor) register(ctx context.Context, path, filename string) (*entity.InvoiceFile, *entity.ExtractJob, error) {
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	ext := constants.NormalizeExt(filepath.Ext(filename))
	file := &entity.InvoiceFile{
		SourcePath: path,
		Filename:   filename,
		FileExt:    ext,
		FileSize:   size,
	}
	if err := p.repo.SaveFile(ctx, file); err != nil {
		return nil, nil, err
	}
	job, err := p.repo.StartJob(ctx, file.ID, constants.MapExtToFormat(ext))
	if err != nil {
		return nil, nil, err
	}
	return file, job, nil
}

// extractText runs Stage 1. PDFs try the local text layer first and fall
// back to OCR when the document is scanned. Images optionally go through an
// enhancement pass before upload.
func (p *Processor) extractText(ctx context.Context, path, format string) (string, error) {
	if format == constants.PDF && p.pdfText != nil {
		res, err := p.pdfText.Extract(ctx, path)
		if err == nil {
			p.logger.Info("pipeline.text.local", "filename", filepath.Base(path), "pages", res.Pages)
			return res.Text, nil
		}
		p.logger.Info("pipeline.text.local_fallback", "filename", filepath.Base(path), "reason", err.Error())
	}

	ocrPath := path
	if format == constants.IMAGE && p.cfg.EnhanceImages {
		enhanced, err := imageprep.EnhanceForOCR(path, p.cfg.CacheDir)
		if err != nil {
			p.logger.Warn("pipeline.enhance_failed", "filename", filepath.Base(path), "error", err)
		} else {
			ocrPath = enhanced
		}
	}

	res, err := p.ocr.Extract(ctx, ocrPath)
	if err != nil {
		return "", err
	}
	for _, w := range res.Warnings {
		p.logger.Warn("pipeline.ocr_warning", "filename", filepath.Base(path), "warning", w)
	}
	return res.Text, nil
}

// fail closes out a run with the minimal fallback record so the batch still
// emits one record per input file.
func (p *Processor) fail(ctx context.Context, job *entity.ExtractJob, filename string, cause error) Result {
	cause = fmt.Errorf("%w: %v", common.ErrExtraction, cause)
	p.logger.Error("pipeline.file.error", "filename", filename, "error", cause)

	rec := p.normalizer.Minimal(filename)
	res := Result{Filename: filename, Record: rec, Status: constants.JobStatusError, Err: cause}
	if job == nil {
		return res
	}

	if err := p.repo.FinishJob(ctx, job.ID, constants.JobStatusError, cause.Error(), ""); err != nil {
		p.logger.Error("pipeline.finish_job_failed", "filename", filename, "error", err)
	}
	recID, err := p.repo.UpsertRecord(ctx, job.FileID, job.ID, constants.JobStatusError, rec)
	if err != nil {
		p.logger.Error("pipeline.persist_fallback_failed", "filename", filename, "error", err)
		return res
	}
	res.RecordID = recID
	return res
}
