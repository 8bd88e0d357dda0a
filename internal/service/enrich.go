package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"filedepot/internal/blob"
	"filedepot/internal/domain"
	"filedepot/internal/domain/models"
	"filedepot/internal/domain/repositories"
	"filedepot/internal/pulse"
)

// Extractor is the external document-analysis collaborator.
type Extractor interface {
	Extract(ctx context.Context, filename, mimeType string, content []byte) (*pulse.Result, error)
}

// EnricherConfig holds enrichment worker pool configuration.
type EnricherConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// DefaultEnricherConfig returns the default pool configuration.
func DefaultEnricherConfig() EnricherConfig {
	return EnricherConfig{
		Workers:    3,
		QueueSize:  64,
		JobTimeout: 2 * time.Minute,
	}
}

// Enricher runs the asynchronous enrichment pipeline: it pulls queued file
// ids, marks them processing, sends the blob to the extraction service, and
// writes the result back. A file deleted mid-flight is dropped silently.
type Enricher struct {
	cfg       EnricherConfig
	fileRepo  repositories.FileRepository
	blobs     blob.Store
	extractor Extractor
	logger    *slog.Logger

	jobs    chan string
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
}

// NewEnricher creates an enrichment worker pool.
func NewEnricher(
	cfg EnricherConfig,
	fileRepo repositories.FileRepository,
	blobs blob.Store,
	extractor Extractor,
	logger *slog.Logger,
) *Enricher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultEnricherConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultEnricherConfig().QueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultEnricherConfig().JobTimeout
	}

	return &Enricher{
		cfg:       cfg,
		fileRepo:  fileRepo,
		blobs:     blobs,
		extractor: extractor,
		logger:    logger,
		jobs:      make(chan string, cfg.QueueSize),
	}
}

// Start launches the workers.
func (e *Enricher) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("enricher is already running")
	}
	e.running = true
	e.mu.Unlock()

	workerCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	for i := 0; i < e.cfg.Workers; i++ {
		e.wg.Add(1)
		go func(id int) {
			defer e.wg.Done()
			e.run(workerCtx, id)
		}(i + 1)
	}

	e.logger.Info("enrichment workers started", "workers", e.cfg.Workers)
	return nil
}

// Stop stops the pool, waiting for in-flight jobs until ctx expires.
func (e *Enricher) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("enrichment workers stopped")
		return nil
	case <-ctx.Done():
		e.logger.Warn("timeout waiting for enrichment workers to stop")
		return ctx.Err()
	}
}

// Enqueue implements EnrichmentDispatcher. It never blocks: a full queue or
// a stopped pool reports false and leaves the file in its current status.
func (e *Enricher) Enqueue(fileID string) bool {
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if !running {
		return false
	}

	select {
	case e.jobs <- fileID:
		return true
	default:
		return false
	}
}

func (e *Enricher) run(ctx context.Context, workerID int) {
	logger := e.logger.With("worker", workerID)
	for {
		select {
		case <-ctx.Done():
			return
		case fileID := <-e.jobs:
			jobCtx, cancel := context.WithTimeout(ctx, e.cfg.JobTimeout)
			e.process(jobCtx, logger, fileID)
			cancel()
		}
	}
}

// process runs one enrichment job: pending -> processing -> completed, or
// failed on any error. ErrNotFound at any step means the file was deleted
// while the job was in flight; the lost update is tolerated.
func (e *Enricher) process(ctx context.Context, logger *slog.Logger, fileID string) {
	file, err := e.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("file deleted before enrichment", "file_id", fileID)
			return
		}
		logger.Error("enrichment lookup failed", "file_id", fileID, "error", err)
		return
	}

	if err := e.fileRepo.UpdateStatus(ctx, fileID, models.StatusProcessing); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return
		}
		logger.Error("failed to mark file processing", "file_id", fileID, "error", err)
		return
	}

	content, err := e.blobs.Read(ctx, file.StorageKey)
	if err != nil {
		logger.Error("failed to read blob for enrichment",
			"file_id", fileID,
			"storage_key", file.StorageKey,
			"error", err,
		)
		e.markFailed(ctx, logger, fileID)
		return
	}

	result, err := e.extractor.Extract(ctx, file.Name, file.MimeType, content)
	if err != nil {
		logger.Error("extraction failed", "file_id", fileID, "error", err)
		e.markFailed(ctx, logger, fileID)
		return
	}

	enrichment := &models.EnrichmentResult{
		Language:      result.Language,
		LineCount:     result.LineCount,
		NamedEntities: result.NamedEntities,
		RawMetadata:   result.Raw,
	}

	if err := e.fileRepo.UpdateEnrichment(ctx, fileID, enrichment); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("file deleted during enrichment", "file_id", fileID)
			return
		}
		logger.Error("failed to store enrichment", "file_id", fileID, "error", err)
		return
	}

	logger.Info("file enriched",
		"file_id", fileID,
		"language", result.Language,
		"line_count", result.LineCount,
	)
}

func (e *Enricher) markFailed(ctx context.Context, logger *slog.Logger, fileID string) {
	if err := e.fileRepo.UpdateStatus(ctx, fileID, models.StatusFailed); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("failed to mark file failed", "file_id", fileID, "error", err)
	}
}
