package entity

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceFile is one ingested source document.
type InvoiceFile struct {
	ID         uuid.UUID
	SourcePath string
	Filename   string
	FileExt    string
	FileSize   int64
	UploadedAt time.Time
}
