package repositories

import (
	"context"

	"filedepot/internal/domain/models"
)

// FileRepository defines data access operations for files
type FileRepository interface {
	// Create inserts a file row and populates generated fields
	Create(ctx context.Context, file *models.File) error

	// GetByID retrieves a file by ID
	GetByID(ctx context.Context, id string) (*models.File, error)

	// ListByFolder lists files in a folder (root files when folderID is nil),
	// ordered by created_at descending - most recent first
	ListByFolder(ctx context.Context, folderID *string) ([]models.File, error)

	// ListByFolderIDs lists every file whose folder_id is in folderIDs
	ListByFolderIDs(ctx context.Context, folderIDs []string) ([]models.File, error)

	// GetAll retrieves every file (metadata, flat list)
	GetAll(ctx context.Context) ([]models.File, error)

	// Delete deletes a single file row
	Delete(ctx context.Context, id string) error

	// DeleteByFolderIDs deletes every file row located in folderIDs,
	// returning the number of rows removed
	DeleteByFolderIDs(ctx context.Context, folderIDs []string) (int64, error)

	// UpdateStatus sets the processing status of a file
	UpdateStatus(ctx context.Context, id string, status models.ProcessingStatus) error

	// UpdateEnrichment stores a completed enrichment result and marks the
	// file completed
	UpdateEnrichment(ctx context.Context, id string, result *models.EnrichmentResult) error
}
