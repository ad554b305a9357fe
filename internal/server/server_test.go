package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadtech/invoice-extractor/constants"
	"github.com/quadtech/invoice-extractor/internal/entity"
	"github.com/quadtech/invoice-extractor/internal/export"
	"github.com/quadtech/invoice-extractor/internal/normalize"
	"github.com/quadtech/invoice-extractor/internal/repository"
)

func newTestServer(t *testing.T) (*gin.Engine, repository.InvoiceRepository, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{URL: "file:" + t.Name() + "?mode=memory&cache=shared"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := repository.NewInvoiceRepository(db, nil)

	file := &entity.InvoiceFile{SourcePath: "/in/a.pdf", Filename: "a.pdf", FileExt: "pdf"}
	require.NoError(t, repo.SaveFile(ctx, file))
	job, err := repo.StartJob(ctx, file.ID, constants.PDF)
	require.NoError(t, err)
	recID, err := repo.UpsertRecord(ctx, file.ID, job.ID, constants.JobStatusCompleted, entity.InvoiceRecord{
		VIN:        "1FDUF5GT3KDA00001",
		Make:       "Ford",
		Components: []entity.Component{},
		Documents:  []entity.DocumentRef{{Date: "2025-06-10", Type: "Invoice", Path: "img/invoices/bodyinvoices/-/a.pdf"}},
	})
	require.NoError(t, err)

	norm := normalize.New(normalize.Config{Now: func() time.Time {
		return time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	}}, nil)
	srv := New(repo, norm, export.NewService(repo, nil), nil)
	return srv.Router(), repo, recID
}

func TestListRecords(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var recs []repository.StoredRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "a.pdf", recs[0].Filename)
	assert.Equal(t, "Ford", recs[0].Record.Make)
}

func TestGetRecordNotFound(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/records/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/records/not-a-uuid", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRecordNormalizesEdits(t *testing.T) {
	router, repo, recID := newTestServer(t)

	// partial edit: missing scalars come back empty, component ids assigned
	body := `{"vin": "1FDUF5GT3KDA00002", "components": [{"name": "Liftgate"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/records/"+recID.String(), strings.NewReader(body))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := repo.GetRecord(context.Background(), recID)
	require.NoError(t, err)
	assert.True(t, got.Reviewed)
	assert.Equal(t, "1FDUF5GT3KDA00002", got.Record.VIN)
	assert.Empty(t, got.Record.Make, "scalars not in the edit are reset to empty")
	require.Len(t, got.Record.Components, 1)
	assert.Equal(t, int64(3167729), got.Record.Components[0].ID)
	require.Len(t, got.Record.Documents, 1)
	assert.Equal(t, "img/invoices/bodyinvoices/-/a.pdf", got.Record.Documents[0].Path)
}

func TestUpdateRecordRejectsBadJSON(t *testing.T) {
	router, _, recID := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/records/"+recID.String(), strings.NewReader("{broken"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkReviewed(t *testing.T) {
	router, repo, recID := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/records/"+recID.String()+"/review", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := repo.GetRecord(context.Background(), recID)
	require.NoError(t, err)
	assert.True(t, got.Reviewed)
	assert.Equal(t, "Ford", got.Record.Make, "record body untouched")
}

func TestExportXLSXRoute(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/xlsx", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, w.Body.Bytes())
}
