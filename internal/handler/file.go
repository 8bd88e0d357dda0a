package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"filedepot/internal/config"
	"filedepot/internal/domain/models"
	"filedepot/internal/domain/services"
	"filedepot/internal/httputil"
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService services.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService services.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// ListFiles lists files in a folder, most recent first
// GET /api/files?parentId=ID
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folderID := httputil.OptionalQueryID(r, "parentId")

	files, err := h.fileService.ListFiles(r.Context(), folderID)
	if err != nil {
		handleError(w, err)
		return
	}

	if files == nil {
		files = []models.File{}
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// Upload accepts a multipart form with a "file" part and an optional
// "folderId" field
// POST /api/files
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	var folderID *string
	if v := r.FormValue("folderId"); v != "" {
		folderID = &v
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	created, err := h.fileService.Upload(r.Context(), &services.UploadFileRequest{
		Name:      header.Filename,
		MimeType:  mimeType,
		SizeBytes: header.Size,
		FolderID:  folderID,
		Content:   file,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, created)
}

// GetFile retrieves file metadata
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	file, err := h.fileService.GetFile(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile deletes a file row and its blob
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetContent returns the file's blob as text
// GET /api/files/{id}/content
func (h *FileHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	content, err := h.fileService.ReadContent(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"content": content})
}

// UpdateContent overwrites the file's blob with the submitted text
// PUT /api/files/{id}/content
func (h *FileHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	var req struct {
		Content *string `json:"content"`
	}
	if err := httputil.ParseJSON(w, r, config.MaxContentBytes, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == nil {
		httputil.RespondError(w, http.StatusBadRequest, "content must be a string")
		return
	}

	if err := h.fileService.UpdateContent(r.Context(), id, *req.Content); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"message": "file saved"})
}

// Reprocess re-runs enrichment for a file
// POST /api/files/{id}/reprocess
func (h *FileHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "file ID is required")
		return
	}

	if err := h.fileService.Reprocess(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusAccepted, map[string]string{"message": "reprocessing scheduled"})
}
