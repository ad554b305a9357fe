package normalize

import "github.com/quadtech/invoice-extractor/internal/entity"

// Minimal returns the all-defaults fallback record used when the extraction
// pipeline fails before any candidate JSON is available. It is a pure
// function of the processing date and filename. Unlike Normalize's
// decode-failure path, condition defaults to "New" here.
func (n *Normalizer) Minimal(filename string) entity.InvoiceRecord {
	return entity.InvoiceRecord{
		Condition:  "New",
		Components: []entity.Component{},
		Documents: []entity.DocumentRef{{
			Date: n.cfg.Now().Format("2006-01-02"),
			Type: DefaultDocumentType,
			Path: n.cfg.DocumentPathPrefix + filename,
		}},
	}
}
