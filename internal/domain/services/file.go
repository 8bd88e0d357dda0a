package services

import (
	"context"
	"io"

	"filedepot/internal/domain/models"
)

// UploadFileRequest carries the input for a file upload
type UploadFileRequest struct {
	Name      string
	MimeType  string
	SizeBytes int64
	FolderID  *string
	Content   io.Reader
}

// FileService defines file business operations
type FileService interface {
	// Upload stores the file bytes in the blob store, inserts the file row
	// with processing_status=pending, and dispatches enrichment. Enrichment
	// failure never undoes the row.
	Upload(ctx context.Context, req *UploadFileRequest) (*models.File, error)

	// GetFile retrieves file metadata
	GetFile(ctx context.Context, id string) (*models.File, error)

	// ListFiles lists files in a folder (root when nil), most recent first
	ListFiles(ctx context.Context, folderID *string) ([]models.File, error)

	// DeleteFile removes the row and the corresponding blob. A blob that is
	// already missing is logged and tolerated.
	DeleteFile(ctx context.Context, id string) error

	// ReadContent returns the file's blob as text
	ReadContent(ctx context.Context, id string) (string, error)

	// UpdateContent overwrites the file's blob with the given text
	UpdateContent(ctx context.Context, id string, content string) error

	// Reprocess re-enqueues enrichment for an existing file
	Reprocess(ctx context.Context, id string) error
}
