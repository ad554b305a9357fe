package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quadtech/invoice-extractor/constants"
	"github.com/quadtech/invoice-extractor/internal/common"
	"github.com/quadtech/invoice-extractor/internal/entity"
)

// StoredRecord is an invoice record together with its processing metadata.
type StoredRecord struct {
	ID        uuid.UUID            `json:"id"`
	FileID    uuid.UUID            `json:"file_id"`
	JobID     uuid.UUID            `json:"job_id"`
	Filename  string               `json:"filename"`
	Status    string               `json:"status"`
	Reviewed  bool                 `json:"reviewed"`
	Record    entity.InvoiceRecord `json:"record"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type InvoiceRepository interface {
	SaveFile(ctx context.Context, f *entity.InvoiceFile) error
	StartJob(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error)
	MarkJobText(ctx context.Context, jobID uuid.UUID, text string) error
	FinishJob(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, errorMessage, rawResponse string) error
	UpsertRecord(ctx context.Context, fileID, jobID uuid.UUID, status constants.JobStatus, rec entity.InvoiceRecord) (uuid.UUID, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*StoredRecord, error)
	ListRecords(ctx context.Context) ([]*StoredRecord, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, rec entity.InvoiceRecord, reviewed bool) error
}

type invoiceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *sql.DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) SaveFile(ctx context.Context, f *entity.InvoiceFile) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoice_file (id, source_path, filename, file_ext, file_size, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID.String(), f.SourcePath, f.Filename, f.FileExt, f.FileSize, f.UploadedAt)
	if err != nil {
		r.logger.Error("repository.save_file_failed", "filename", f.Filename, "error", err)
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

func (r *invoiceRepository) StartJob(ctx context.Context, fileID uuid.UUID, format string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:        uuid.New(),
		FileID:    fileID,
		Format:    format,
		Status:    string(constants.JobStatusRunning),
		StartedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extract_job (id, file_id, format, status, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		job.ID.String(), fileID.String(), format, job.Status, job.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("start job: %w", err)
	}
	return job, nil
}

func (r *invoiceRepository) MarkJobText(ctx context.Context, jobID uuid.UUID, text string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extract_job SET status = $1, document_text = $2 WHERE id = $3`,
		string(constants.JobStatusTextOK), text, jobID.String())
	if err != nil {
		return fmt.Errorf("mark job text: %w", err)
	}
	return nil
}

func (r *invoiceRepository) FinishJob(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, errorMessage, rawResponse string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extract_job SET status = $1, error_message = $2, raw_response = $3, finished_at = $4 WHERE id = $5`,
		string(status), errorMessage, rawResponse, time.Now().UTC(), jobID.String())
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

func (r *invoiceRepository) UpsertRecord(ctx context.Context, fileID, jobID uuid.UUID, status constants.JobStatus, rec entity.InvoiceRecord) (uuid.UUID, error) {
	blob, err := json.Marshal(rec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode record: %w", err)
	}
	now := time.Now().UTC()

	var existing string
	err = r.db.QueryRowContext(ctx,
		`SELECT id FROM invoice_record WHERE file_id = $1`, fileID.String()).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id := uuid.New()
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO invoice_record (id, file_id, job_id, status, reviewed, record_json, updated_at)
			 VALUES ($1, $2, $3, $4, 0, $5, $6)`,
			id.String(), fileID.String(), jobID.String(), string(status), string(blob), now)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert record: %w", err)
		}
		return id, nil
	case err != nil:
		return uuid.Nil, fmt.Errorf("lookup record: %w", err)
	}

	id, err := uuid.Parse(existing)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse record id: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE invoice_record SET job_id = $1, status = $2, record_json = $3, updated_at = $4 WHERE id = $5`,
		jobID.String(), string(status), string(blob), now, existing)
	if err != nil {
		return uuid.Nil, fmt.Errorf("update record: %w", err)
	}
	return id, nil
}

const recordColumns = `r.id, r.file_id, r.job_id, f.filename, r.status, r.reviewed, r.record_json, r.updated_at`

func (r *invoiceRepository) GetRecord(ctx context.Context, id uuid.UUID) (*StoredRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+`
		 FROM invoice_record r JOIN invoice_file f ON f.id = r.file_id
		 WHERE r.id = $1`, id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return rec, err
}

func (r *invoiceRepository) ListRecords(ctx context.Context) ([]*StoredRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+`
		 FROM invoice_record r JOIN invoice_file f ON f.id = r.file_id
		 ORDER BY r.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *invoiceRepository) UpdateRecord(ctx context.Context, id uuid.UUID, rec entity.InvoiceRecord, reviewed bool) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	reviewedInt := 0
	if reviewed {
		reviewedInt = 1
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoice_record SET record_json = $1, reviewed = $2, updated_at = $3 WHERE id = $4`,
		string(blob), reviewedInt, time.Now().UTC(), id.String())
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*StoredRecord, error) {
	var (
		rec                 StoredRecord
		idS, fileIDS, jobID string
		reviewed            int
		blob                string
	)
	if err := row.Scan(&idS, &fileIDS, &jobID, &rec.Filename, &rec.Status, &reviewed, &blob, &rec.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if rec.ID, err = uuid.Parse(idS); err != nil {
		return nil, fmt.Errorf("parse record id: %w", err)
	}
	if rec.FileID, err = uuid.Parse(fileIDS); err != nil {
		return nil, fmt.Errorf("parse file id: %w", err)
	}
	if rec.JobID, err = uuid.Parse(jobID); err != nil {
		return nil, fmt.Errorf("parse job id: %w", err)
	}
	rec.Reviewed = reviewed != 0
	if err := json.Unmarshal([]byte(blob), &rec.Record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}
