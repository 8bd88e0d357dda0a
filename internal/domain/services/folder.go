package services

import (
	"context"

	"filedepot/internal/domain/models"
)

// CreateFolderRequest carries the input for folder creation
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// FolderContents bundles a folder with its immediate children
type FolderContents struct {
	Folder  *models.Folder  `json:"folder"`
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
}

// FolderService defines folder business operations
type FolderService interface {
	// CreateFolder creates a folder under an existing parent (or at root)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder with its immediate child folders and files
	GetFolder(ctx context.Context, id string) (*FolderContents, error)

	// ListFolders lists direct children of parentID (root folders when nil)
	ListFolders(ctx context.Context, parentID *string) ([]models.Folder, error)

	// DeleteFolderTree removes the folder, every transitive descendant
	// folder, and every file in that subtree, atomically with respect to
	// the relational store. Blob cleanup is best-effort.
	DeleteFolderTree(ctx context.Context, id string) error
}
