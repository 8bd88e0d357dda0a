package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"filedepot/internal/blob"
	"filedepot/internal/capabilities"
	"filedepot/internal/config"
	"filedepot/internal/domain"
	"filedepot/internal/domain/models"
	"filedepot/internal/domain/repositories"
	"filedepot/internal/domain/services"
)

// EnrichmentDispatcher hands files to the asynchronous enrichment pipeline.
type EnrichmentDispatcher interface {
	// Enqueue schedules enrichment for the file. It reports false when the
	// queue is full or the dispatcher is stopped; the file stays in its
	// current processing status.
	Enqueue(fileID string) bool
}

type fileService struct {
	fileRepo   repositories.FileRepository
	folderRepo repositories.FolderRepository
	blobs      blob.Store
	dispatcher EnrichmentDispatcher
	caps       *capabilities.Registry
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	blobs blob.Store,
	dispatcher EnrichmentDispatcher,
	caps *capabilities.Registry,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		blobs:      blobs,
		dispatcher: dispatcher,
		caps:       caps,
		logger:     logger,
	}
}

// Upload writes the blob, inserts the file row with processing_status
// pending, and dispatches enrichment. The row persists even when dispatch
// or later enrichment fails.
func (s *fileService) Upload(ctx context.Context, req *services.UploadFileRequest) (*models.File, error) {
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := s.validateUploadRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID); err != nil {
			return nil, err
		}
	}

	// The key is generated, never derived from the name alone, so two
	// uploads of "notes.txt" cannot collide in the blob store.
	key := storageKey(req.Name)

	written, err := s.blobs.Write(ctx, key, req.Content)
	if err != nil {
		return nil, &domain.StorageError{Op: "write blob", Err: err}
	}

	file := &models.File{
		Name:             req.Name,
		StorageKey:       key,
		MimeType:         req.MimeType,
		SizeBytes:        written,
		FolderID:         req.FolderID,
		ProcessingStatus: models.StatusPending,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Keep the no-row-without-blob direction of the invariant intact:
		// without a row the blob is unreachable, so remove it.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned blob cleanup failed",
				"storage_key", key,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"size_bytes", file.SizeBytes,
		"mime_type", file.MimeType,
		"folder_id", file.FolderID,
	)

	s.dispatch(file)

	return file, nil
}

// GetFile retrieves file metadata
func (s *fileService) GetFile(ctx context.Context, id string) (*models.File, error) {
	return s.fileRepo.GetByID(ctx, id)
}

// ListFiles lists files in a folder, most recent first
func (s *fileService) ListFiles(ctx context.Context, folderID *string) ([]models.File, error) {
	if folderID != nil && *folderID == "" {
		folderID = nil
	}
	return s.fileRepo.ListByFolder(ctx, folderID)
}

// DeleteFile removes the row and the corresponding blob. A blob that is
// already missing (or fails to delete) is logged and tolerated so the
// user-visible delete never blocks on blob-store inconsistency.
func (s *fileService) DeleteFile(ctx context.Context, id string) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
		s.logger.Warn("blob delete failed after row removal",
			"file_id", id,
			"storage_key", file.StorageKey,
			"error", err,
		)
	}

	s.logger.Info("file deleted", "id", id, "name", file.Name)

	return nil
}

// ReadContent returns the file's blob as text
func (s *fileService) ReadContent(ctx context.Context, id string) (string, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	data, err := s.blobs.Read(ctx, file.StorageKey)
	if err != nil {
		return "", &domain.StorageError{Op: "read blob", Err: err}
	}

	return string(data), nil
}

// UpdateContent overwrites the file's blob with the given text
func (s *fileService) UpdateContent(ctx context.Context, id string, content string) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.blobs.Write(ctx, file.StorageKey, strings.NewReader(content)); err != nil {
		return &domain.StorageError{Op: "write blob", Err: err}
	}

	s.logger.Info("file content updated", "id", id, "name", file.Name)

	return nil
}

// Reprocess resets the file to pending and re-enqueues enrichment
func (s *fileService) Reprocess(ctx context.Context, id string) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.caps.IsEnrichable(file.MimeType) {
		return fmt.Errorf("%w: %q is not an enrichable format", domain.ErrValidation, file.MimeType)
	}

	if err := s.fileRepo.UpdateStatus(ctx, id, models.StatusPending); err != nil {
		return err
	}

	if !s.dispatcher.Enqueue(id) {
		s.logger.Warn("enrichment queue full, reprocess deferred", "file_id", id)
	}

	return nil
}

// dispatch enqueues enrichment for eligible formats. Ineligible uploads keep
// their pending status and are never dispatched.
func (s *fileService) dispatch(file *models.File) {
	if !s.caps.IsEnrichable(file.MimeType) {
		s.logger.Debug("skipping enrichment for mime type",
			"file_id", file.ID,
			"mime_type", file.MimeType,
		)
		return
	}

	if !s.dispatcher.Enqueue(file.ID) {
		s.logger.Warn("enrichment queue full, file left pending", "file_id", file.ID)
	}
}

// validateUploadRequest validates a file upload request
func (s *fileService) validateUploadRequest(req *services.UploadFileRequest) error {
	if req.Content == nil {
		return fmt.Errorf("file content is required")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFileNameLength),
		),
		validation.Field(&req.MimeType,
			validation.Required,
			validation.Length(1, config.MaxMimeTypeLength),
		),
	)
}

// storageKey builds a unique blob key from a fresh UUID and the sanitized
// original name, mirroring "<unique>-<name>" upload keys.
func storageKey(name string) string {
	sanitized := strings.Join(strings.Fields(filepath.Base(name)), "_")
	if sanitized == "" || sanitized == "." {
		sanitized = "file"
	}
	return uuid.New().String() + "-" + sanitized
}
