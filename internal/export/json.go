package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/quadtech/invoice-extractor/internal/entity"
)

// AggregateFilename is the batch output file holding every record.
const AggregateFilename = "data.json"

// Item pairs a record with the source filename that produced it.
type Item struct {
	Filename string
	Record   entity.InvoiceRecord
}

// WriteJSONFiles writes one <stem>.json per item plus the data.json
// aggregate (an array of all records, in item order) under dir.
func WriteJSONFiles(dir string, items []Item, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	records := make([]entity.InvoiceRecord, 0, len(items))
	for _, it := range items {
		records = append(records, it.Record)

		stem := strings.TrimSuffix(it.Filename, filepath.Ext(it.Filename))
		if stem == "" {
			stem = it.Filename
		}
		path := filepath.Join(dir, stem+".json")
		if err := writeJSON(path, it.Record); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	aggPath := filepath.Join(dir, AggregateFilename)
	if err := writeJSON(aggPath, records); err != nil {
		return fmt.Errorf("write %s: %w", aggPath, err)
	}

	logger.Info("export.json.ok", "dir", dir, "records", len(records))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
