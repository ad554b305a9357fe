package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadtech/invoice-extractor/constants"
	"github.com/quadtech/invoice-extractor/internal/common"
	"github.com/quadtech/invoice-extractor/internal/entity"
)

func newTestRepo(t *testing.T) InvoiceRepository {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{URL: "file:" + t.Name() + "?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewInvoiceRepository(db, nil)
}

func sampleRecord() entity.InvoiceRecord {
	return entity.InvoiceRecord{
		VIN:        "1FDUF5GT3KDA00001",
		Make:       "Ford",
		Components: []entity.Component{{ID: 3167729, Name: "Body", Attributes: []entity.Attribute{}}},
		Documents: []entity.DocumentRef{{
			Date: "2025-06-10", Type: "Invoice", Path: "img/invoices/bodyinvoices/-/a.pdf",
		}},
	}
}

func TestJobLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	file := &entity.InvoiceFile{SourcePath: "/in/a.pdf", Filename: "a.pdf", FileExt: "pdf", FileSize: 42}
	require.NoError(t, repo.SaveFile(ctx, file))
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", file.ID.String())

	job, err := repo.StartJob(ctx, file.ID, constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusRunning), job.Status)

	require.NoError(t, repo.MarkJobText(ctx, job.ID, "INVOICE TEXT"))
	require.NoError(t, repo.FinishJob(ctx, job.ID, constants.JobStatusCompleted, "", `{"vin":"1FDX"}`))
}

func TestUpsertAndFetchRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	file := &entity.InvoiceFile{SourcePath: "/in/a.pdf", Filename: "a.pdf", FileExt: "pdf"}
	require.NoError(t, repo.SaveFile(ctx, file))
	job, err := repo.StartJob(ctx, file.ID, constants.PDF)
	require.NoError(t, err)

	id, err := repo.UpsertRecord(ctx, file.ID, job.ID, constants.JobStatusCompleted, sampleRecord())
	require.NoError(t, err)

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", got.Filename)
	assert.Equal(t, "Ford", got.Record.Make)
	assert.Equal(t, string(constants.JobStatusCompleted), got.Status)
	assert.False(t, got.Reviewed)

	// second upsert for the same file updates in place
	rec2 := sampleRecord()
	rec2.Make = "Ram"
	id2, err := repo.UpsertRecord(ctx, file.ID, job.ID, constants.JobStatusCompleted, rec2)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	list, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ram", list[0].Record.Make)
}

func TestUpdateRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	file := &entity.InvoiceFile{SourcePath: "/in/b.pdf", Filename: "b.pdf", FileExt: "pdf"}
	require.NoError(t, repo.SaveFile(ctx, file))
	job, err := repo.StartJob(ctx, file.ID, constants.PDF)
	require.NoError(t, err)
	id, err := repo.UpsertRecord(ctx, file.ID, job.ID, constants.JobStatusError, sampleRecord())
	require.NoError(t, err)

	edited := sampleRecord()
	edited.Condition = "New"
	require.NoError(t, repo.UpdateRecord(ctx, id, edited, true))

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Reviewed)
	assert.Equal(t, "New", got.Record.Condition)
}

func TestGetRecordNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetRecord(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
