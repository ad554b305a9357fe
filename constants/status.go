package constants

// JobStatus is the canonical status for rows in extract_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"    // waiting for processing
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusTextOK    JobStatus = "TEXT_OK"   // stage 1 completed (document text extracted)
	JobStatusCompleted JobStatus = "COMPLETED" // stage 2 completed (record normalized and stored)
	JobStatusError     JobStatus = "ERROR"     // extraction failed; minimal record substituted
)
