package services

import (
	"context"

	"filedepot/internal/domain/models"
)

// TreeService builds the nested folder/file tree for navigation
type TreeService interface {
	// GetTree builds the full tree from the flat folder and file relations
	GetTree(ctx context.Context) (*models.Tree, error)
}
