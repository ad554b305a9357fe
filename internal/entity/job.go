package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractJob tracks one processing run for a file through both stages.
type ExtractJob struct {
	ID           uuid.UUID
	FileID       uuid.UUID
	Format       string
	Status       string
	ErrorMessage string
	DocumentText string
	RawResponse  string
	StartedAt    time.Time
	FinishedAt   *time.Time
}
