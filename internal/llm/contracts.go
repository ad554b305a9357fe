package llm

import "context"

// ExtractRequest carries everything the extractor needs for one invoice.
type ExtractRequest struct {
	DocumentText string   // page-segmented text from stage 1
	Filename     string   // original filename, included in the prompt
	CurrentDate  string   // YYYY-MM-DD; defaults to today when empty
	BodyModels   []string // knowledge base for the body_model field
}

// InvoiceExtractor is Stage 2: document text -> candidate JSON. The returned
// string is whatever the model produced (possibly fenced or malformed); the
// schema normalizer owns turning it into a record.
type InvoiceExtractor interface {
	ExtractInvoice(ctx context.Context, req ExtractRequest) (string, error)
}
