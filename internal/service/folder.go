package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"filedepot/internal/blob"
	"filedepot/internal/config"
	"filedepot/internal/domain"
	"filedepot/internal/domain/models"
	"filedepot/internal/domain/repositories"
	"filedepot/internal/domain/services"
)

// deleteTreeTimeout bounds the wall-clock duration of the cascading-delete
// transaction so a stalled closure computation or blob cleanup cannot hold
// row locks indefinitely.
const deleteTreeTimeout = 30 * time.Second

var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

type folderService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	blobs      blob.Store
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	blobs blob.Store,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		blobs:      blobs,
		txManager:  txManager,
		logger:     logger,
	}
}

// CreateFolder creates a new folder under an existing parent, or at root
// when no parent is given.
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Referential integrity before insertion: the parent must resolve
	if req.ParentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	folder := &models.Folder{
		ParentID: req.ParentID,
		Name:     req.Name,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder with its immediate child folders and files
func (s *folderService) GetFolder(ctx context.Context, id string) (*services.FolderContents, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	childFolders, err := s.folderRepo.ListChildren(ctx, &folder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child folders: %w", err)
	}

	files, err := s.fileRepo.ListByFolder(ctx, &folder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return &services.FolderContents{
		Folder:  folder,
		Folders: childFolders,
		Files:   files,
	}, nil
}

// ListFolders lists direct children of parentID, or root folders when nil
func (s *folderService) ListFolders(ctx context.Context, parentID *string) ([]models.Folder, error) {
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	return s.folderRepo.ListChildren(ctx, parentID)
}

// DeleteFolderTree removes the folder, all transitive descendant folders,
// and every file anywhere in that subtree. Relational cleanup happens in a
// single transaction; blob cleanup is best-effort and never aborts it.
func (s *folderService) DeleteFolderTree(ctx context.Context, id string) error {
	// Resolve early so callers get ErrNotFound without opening a transaction
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, deleteTreeTimeout)
	defer cancel()

	var blobFailures int
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		// Breadth-first descendant closure over the parent relation. The
		// root id is part of the closure so files directly inside the
		// deleted folder are collected too.
		closure, err := s.collectDescendants(ctx, id)
		if err != nil {
			return &domain.StorageError{Op: "collect descendants", Err: err}
		}

		files, err := s.fileRepo.ListByFolderIDs(ctx, closure)
		if err != nil {
			return &domain.StorageError{Op: "list subtree files", Err: err}
		}

		// Blob deletions are logged individually and never abort the
		// transaction: a stray blob is recoverable garbage, a dangling
		// relational reference would break every future listing.
		for _, f := range files {
			if err := s.blobs.Delete(ctx, f.StorageKey); err != nil {
				blobFailures++
				s.logger.Warn("blob cleanup failed, continuing",
					"file_id", f.ID,
					"storage_key", f.StorageKey,
					"error", err,
				)
			}
		}

		if _, err := s.fileRepo.DeleteByFolderIDs(ctx, closure); err != nil {
			return &domain.StorageError{Op: "delete subtree files", Err: err}
		}

		// Deleting the root row cascades to descendant folder rows via the
		// store's parent_id constraint.
		deleted, err := s.folderRepo.Delete(ctx, id)
		if err != nil {
			return &domain.StorageError{Op: "delete folder", Err: err}
		}
		if !deleted {
			// A concurrent delete of an enclosing subtree already removed
			// the row; the end state is the one we wanted.
			s.logger.Info("folder already deleted concurrently", "id", id)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder tree deleted",
		"id", id,
		"name", folder.Name,
		"blob_failures", blobFailures,
	)

	return nil
}

// collectDescendants computes the descendant closure of root, root included,
// with repeated frontier queries against the parent relation. The seen set
// makes the walk terminate even on a corrupted cyclic relation.
func (s *folderService) collectDescendants(ctx context.Context, root string) ([]string, error) {
	closure := []string{root}
	seen := map[string]struct{}{root: {}}
	frontier := []string{root}

	for len(frontier) > 0 {
		children, err := s.folderRepo.ListChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, child := range children {
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			closure = append(closure, child)
			frontier = append(frontier, child)
		}
	}

	return closure, nil
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
		),
	)
}
