package storage

import "time"

// Status is the processing outcome of a document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusReady, StatusFailed:
		return true
	}
	return false
}

// DocumentRecord represents an uploaded document in the database.
type DocumentRecord struct {
	ID          string    // UUID
	Filename    string    // Original upload filename
	ContentType string    // MIME type of the upload (e.g. "application/pdf")
	SizeBytes   int64     // Size of the uploaded file
	ContentHash string    // Hex SHA-256 of the file content
	Status      Status    // Processing outcome
	Error       string    // Failure reason when Status is failed
	ChunkCount  int       // Number of chunks persisted when Status is ready
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
