package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadtech/invoice-extractor/constants"
	"github.com/quadtech/invoice-extractor/internal/common"
	"github.com/quadtech/invoice-extractor/internal/extract"
	"github.com/quadtech/invoice-extractor/internal/llm"
	"github.com/quadtech/invoice-extractor/internal/normalize"
	"github.com/quadtech/invoice-extractor/internal/repository"
)

type fakeTextExtractor struct {
	text string
	err  error
}

func (f *fakeTextExtractor) Extract(ctx context.Context, path string) (extract.TextExtractionResult, error) {
	if f.err != nil {
		return extract.TextExtractionResult{}, f.err
	}
	return extract.TextExtractionResult{Text: f.text, Pages: 1, Method: "fake"}, nil
}

type fakeInvoiceExtractor struct {
	byFile map[string]string
	err    error
}

func (f *fakeInvoiceExtractor) ExtractInvoice(ctx context.Context, req llm.ExtractRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.byFile[req.Filename], nil
}

var testNow = func() time.Time {
	return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
}

func newTestProcessor(t *testing.T, ocr extract.TextExtractor, inv llm.InvoiceExtractor) (*Processor, repository.InvoiceRepository) {
	t.Helper()
	db, err := repository.Open(context.Background(),
		repository.Config{URL: "file:" + t.Name() + "?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := repository.NewInvoiceRepository(db, nil)

	norm := normalize.New(normalize.Config{Now: testNow}, slog.Default())
	proc := New(Config{Now: testNow}, nil, ocr, inv, norm, repo, []string{"Reading Classic II"}, nil)
	return proc, repo
}

func writeInvoiceFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("%PDF-1.4 stub"), 0o644))
	}
	return dir
}

func TestProcessFolderOneRecordPerFile(t *testing.T) {
	dir := writeInvoiceFiles(t, "a.pdf", "b.pdf", "notes.txt")

	ocr := &fakeTextExtractor{text: "INVOICE\nVIN 1FDUF5GT3KDA00001"}
	inv := &fakeInvoiceExtractor{byFile: map[string]string{
		"a.pdf": "```json\n{\"vin\": \"1FDUF5GT3KDA00001\", \"make\": \"Ford\"}\n```",
		"b.pdf": `{"make": "Ram", "components": [{"name": "Service Body"}]}`,
	}}
	proc, repo := newTestProcessor(t, ocr, inv)

	results, err := proc.ProcessFolder(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 2, "txt file is skipped, each allowed file yields a record")

	assert.Equal(t, "a.pdf", results[0].Filename)
	assert.Equal(t, constants.JobStatusCompleted, results[0].Status)
	assert.Equal(t, "1FDUF5GT3KDA00001", results[0].Record.VIN)
	assert.Equal(t, "Ford", results[0].Record.Make)

	assert.Equal(t, "Ram", results[1].Record.Make)
	require.Len(t, results[1].Record.Components, 1)
	assert.Equal(t, int64(3167729), results[1].Record.Components[0].ID)

	stored, err := repo.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestProcessFileDocumentDefaults(t *testing.T) {
	dir := writeInvoiceFiles(t, "inv.pdf")
	ocr := &fakeTextExtractor{text: "some text"}
	inv := &fakeInvoiceExtractor{byFile: map[string]string{"inv.pdf": `{}`}}
	proc, _ := newTestProcessor(t, ocr, inv)

	res := proc.ProcessFile(context.Background(), filepath.Join(dir, "inv.pdf"))
	require.NoError(t, res.Err)
	require.Len(t, res.Record.Documents, 1)
	assert.Equal(t, "2025-06-10", res.Record.Documents[0].Date)
	assert.Equal(t, "Invoice", res.Record.Documents[0].Type)
	assert.Equal(t, "img/invoices/bodyinvoices/-/inv.pdf", res.Record.Documents[0].Path)
}

func TestProcessFileLLMFailureYieldsMinimalRecord(t *testing.T) {
	dir := writeInvoiceFiles(t, "bad.pdf")
	ocr := &fakeTextExtractor{text: "some text"}
	inv := &fakeInvoiceExtractor{err: errors.New("model unavailable")}
	proc, repo := newTestProcessor(t, ocr, inv)

	res := proc.ProcessFile(context.Background(), filepath.Join(dir, "bad.pdf"))
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, common.ErrExtraction)
	assert.Equal(t, constants.JobStatusError, res.Status)
	assert.Equal(t, "New", res.Record.Condition)
	assert.Empty(t, res.Record.VIN)
	require.Len(t, res.Record.Documents, 1)
	assert.Equal(t, "img/invoices/bodyinvoices/-/bad.pdf", res.Record.Documents[0].Path)

	stored, err := repo.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, string(constants.JobStatusError), stored[0].Status)
}

func TestProcessFileOCRFailure(t *testing.T) {
	dir := writeInvoiceFiles(t, "scan.pdf")
	ocr := &fakeTextExtractor{err: errors.New("service down")}
	inv := &fakeInvoiceExtractor{}
	proc, _ := newTestProcessor(t, ocr, inv)

	res := proc.ProcessFile(context.Background(), filepath.Join(dir, "scan.pdf"))
	require.Error(t, res.Err)
	assert.Equal(t, constants.JobStatusError, res.Status)
	assert.Equal(t, "New", res.Record.Condition)
}

func TestProcessFileMalformedJSONStillCompletes(t *testing.T) {
	dir := writeInvoiceFiles(t, "garbled.pdf")
	ocr := &fakeTextExtractor{text: "some text"}
	inv := &fakeInvoiceExtractor{byFile: map[string]string{"garbled.pdf": "sorry, not json"}}
	proc, _ := newTestProcessor(t, ocr, inv)

	res := proc.ProcessFile(context.Background(), filepath.Join(dir, "garbled.pdf"))
	require.NoError(t, res.Err)
	assert.Equal(t, constants.JobStatusCompleted, res.Status)
	assert.Empty(t, res.Record.Condition, "decode fallback is not the minimal record")
	require.Len(t, res.Record.Documents, 1)
	assert.Equal(t, "2025-06-10", res.Record.Documents[0].Date)
}
