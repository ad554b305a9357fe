package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quadtech/invoice-extractor/internal/common"
	"github.com/quadtech/invoice-extractor/internal/export"
	"github.com/quadtech/invoice-extractor/internal/normalize"
	"github.com/quadtech/invoice-extractor/internal/repository"
)

// Server is the review API: it lets a human inspect extracted records,
// correct them, and download exports.
type Server struct {
	repo       repository.InvoiceRepository
	normalizer *normalize.Normalizer
	exporter   *export.Service
	logger     *slog.Logger
}

func New(repo repository.InvoiceRepository, normalizer *normalize.Normalizer, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{repo: repo, normalizer: normalizer, exporter: exporter, logger: logger}
}

// Router builds the gin engine with all review routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/records", s.ListRecords())
		api.GET("/records/:id", s.GetRecord())
		api.PUT("/records/:id", s.UpdateRecord())
		api.POST("/records/:id/review", s.MarkReviewed())
		api.GET("/export/xlsx", s.ExportXLSX())
	}
	return r
}

//
// GET /api/records
//

func (s *Server) ListRecords() gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := s.repo.ListRecords(c.Request.Context())
		if err != nil {
			s.logger.Error("server.list_records_failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
			return
		}
		c.JSON(http.StatusOK, recs)
	}
}

//
// GET /api/records/:id
//

func (s *Server) GetRecord() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
			return
		}
		rec, err := s.repo.GetRecord(c.Request.Context(), id)
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		if err != nil {
			s.logger.Error("server.get_record_failed", "record_id", id.String(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load record"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

//
// PUT /api/records/:id
//
// The body is the edited record JSON. It is pushed back through the schema
// normalizer before persisting, so hand edits can never break the required
// shape, and the record is marked reviewed.
//

func (s *Server) UpdateRecord() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
			return
		}

		existing, err := s.repo.GetRecord(c.Request.Context(), id)
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		if err != nil {
			s.logger.Error("server.get_record_failed", "record_id", id.String(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load record"})
			return
		}

		body, err := c.GetRawData()
		if err != nil || len(body) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		rec, diag := s.normalizer.Normalize(string(body), existing.Filename)
		if diag != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body is not valid JSON"})
			return
		}

		if err := s.repo.UpdateRecord(c.Request.Context(), id, rec, true); err != nil {
			s.logger.Error("server.update_record_failed", "record_id", id.String(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update record"})
			return
		}

		s.logger.Info("server.record_updated", "record_id", id.String())
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "record": rec, "reviewed": true})
	}
}

//
// POST /api/records/:id/review
//

func (s *Server) MarkReviewed() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
			return
		}
		existing, err := s.repo.GetRecord(c.Request.Context(), id)
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load record"})
			return
		}
		if err := s.repo.UpdateRecord(c.Request.Context(), id, existing.Record, true); err != nil {
			s.logger.Error("server.mark_reviewed_failed", "record_id", id.String(), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark reviewed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id.String(), "reviewed": true})
	}
}

//
// GET /api/export/xlsx
//

func (s *Server) ExportXLSX() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := s.exporter.InvoicesXLSX(c.Request.Context())
		if err != nil {
			s.logger.Error("server.export_failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	}
}
