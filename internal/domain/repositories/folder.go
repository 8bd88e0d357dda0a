package repositories

import (
	"context"

	"filedepot/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// ListChildren lists immediate child folders of parentID,
	// or root folders when parentID is nil
	ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error)

	// ListChildIDs returns the ids of folders whose parent is in parentIDs.
	// It is the frontier query for descendant-closure computation.
	ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error)

	// GetAll retrieves every folder (flat list)
	GetAll(ctx context.Context) ([]models.Folder, error)

	// Delete deletes a single folder row. The reported bool is false when
	// no row matched, which callers may treat as an already-deleted no-op.
	Delete(ctx context.Context, id string) (bool, error)
}
