package service

import (
	"context"
	"log/slog"

	"filedepot/internal/domain/models"
	"filedepot/internal/domain/repositories"
	"filedepot/internal/domain/services"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		logger:     logger,
	}
}

// GetTree builds the nested folder/file tree from the flat relations.
// O(n) in folders plus files; each node is visited exactly once by id, so a
// corrupted cyclic parent relation cannot make the build loop. A folder
// whose parent_id references a missing folder is excluded from the output
// entirely - neither attached nor surfaced at top level.
func (s *treeService) GetTree(ctx context.Context) (*models.Tree, error) {
	allFolders, err := s.folderRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	allFiles, err := s.fileRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// First pass: create all folder nodes
	folderMap := make(map[string]*models.FolderTreeNode, len(allFolders))
	var rootFolderIDs []string

	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			CreatedAt: folder.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Files:     []models.FileTreeNode{},
		}
	}

	// Second pass: nest folders by connecting children to parents
	for _, folder := range allFolders {
		node := folderMap[folder.ID]
		if folder.ParentID == nil {
			rootFolderIDs = append(rootFolderIDs, folder.ID)
		} else if parent, exists := folderMap[*folder.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		}
		// Dangling parent reference: dropped
	}

	// Third pass: attach files to their folders
	rootFiles := make([]models.FileTreeNode, 0)
	for _, file := range allFiles {
		fileNode := models.FileTreeNode{
			ID:               file.ID,
			Name:             file.Name,
			FolderID:         file.FolderID,
			MimeType:         file.MimeType,
			SizeBytes:        file.SizeBytes,
			ProcessingStatus: file.ProcessingStatus,
			UpdatedAt:        file.UpdatedAt,
		}

		if file.FolderID == nil {
			rootFiles = append(rootFiles, fileNode)
		} else if parent, exists := folderMap[*file.FolderID]; exists {
			parent.Files = append(parent.Files, fileNode)
		}
	}

	rootFolders := make([]*models.FolderTreeNode, 0, len(rootFolderIDs))
	for _, folderID := range rootFolderIDs {
		if node, exists := folderMap[folderID]; exists {
			rootFolders = append(rootFolders, node)
		}
	}

	tree := &models.Tree{
		Folders: rootFolders,
		Files:   rootFiles,
	}

	s.logger.Debug("tree built",
		"folder_count", len(allFolders),
		"file_count", len(allFiles),
	)

	return tree, nil
}
