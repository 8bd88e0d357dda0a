package models

import (
	"encoding/json"
	"time"
)

// ProcessingStatus is the lifecycle of the asynchronous enrichment step.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

type File struct {
	ID         string  `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	StorageKey string  `json:"storage_key" db:"storage_key"`
	MimeType   string  `json:"mime_type" db:"mime_type"`
	SizeBytes  int64   `json:"size_bytes" db:"size_bytes"`
	FolderID   *string `json:"folder_id" db:"folder_id"` // NULL = root level

	ProcessingStatus ProcessingStatus `json:"processing_status" db:"processing_status"`

	// Enrichment outputs, populated only after a successful Pulse call.
	PulseLanguage      *string         `json:"pulse_language,omitempty" db:"pulse_language"`
	PulseLineCount     *int            `json:"pulse_line_count,omitempty" db:"pulse_line_count"`
	PulseNamedEntities json.RawMessage `json:"pulse_named_entities,omitempty" db:"pulse_named_entities"`
	PulseRawMetadata   json.RawMessage `json:"pulse_raw_metadata,omitempty" db:"pulse_raw_metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EnrichmentResult holds the mapped Pulse analysis for a single file.
type EnrichmentResult struct {
	Language      string
	LineCount     int
	NamedEntities json.RawMessage
	RawMetadata   json.RawMessage
}
