package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/quadtech/invoice-extractor/internal/repository"
)

// Service produces XLSX bytes summarizing the stored invoice records.
type Service struct {
	repo   repository.InvoiceRepository
	logger *slog.Logger
}

func NewService(repo repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// InvoicesXLSX returns an XLSX workbook (as bytes) with one row per stored
// record, newest first.
func (s *Service) InvoicesXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Source File",
		"VIN",
		"Stock Number",
		"Condition",
		"Model Year",
		"Make",
		"Model",
		"Body Manufacturer",
		"Body Model",
		"Distributor",
		"Invoice Date",
		"Components",
		"Status",
		"Reviewed",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		rec := r.Record
		write(1, r.Filename)
		write(2, rec.VIN)
		write(3, rec.StockNumber)
		write(4, rec.Condition)
		write(5, rec.ModelYear)
		write(6, rec.Make)
		write(7, rec.Model)
		write(8, rec.BodyManufacturer)
		write(9, rec.BodyModel)
		write(10, rec.Distributor)
		write(11, rec.InvoiceDate)
		write(12, len(rec.Components))
		write(13, r.Status)
		if r.Reviewed {
			write(14, "yes")
		} else {
			write(14, "no")
		}

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 32) // source file
	_ = f.SetColWidth(sheet, "B", "B", 20) // vin
	_ = f.SetColWidth(sheet, "F", "G", 16) // make / model
	_ = f.SetColWidth(sheet, "H", "I", 22) // body fields
	_ = f.SetColWidth(sheet, "K", "K", 12) // invoice date

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
