package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"filedepot/internal/domain"
	"filedepot/internal/domain/models"
	"filedepot/internal/domain/repositories"
)

const fileColumns = `id, name, storage_key, mime_type, size_bytes, folder_id,
	processing_status, pulse_language, pulse_line_count, pulse_named_entities,
	pulse_raw_metadata, created_at, updated_at`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{pool: config.Pool}
}

func scanFile(row pgx.Row) (*models.File, error) {
	var f models.File
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.StorageKey,
		&f.MimeType,
		&f.SizeBytes,
		&f.FolderID,
		&f.ProcessingStatus,
		&f.PulseLanguage,
		&f.PulseLineCount,
		&f.PulseNamedEntities,
		&f.PulseRawMetadata,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFiles(rows pgx.Rows) ([]models.File, error) {
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// Create inserts a file row. processing_status defaults to pending unless the
// caller supplies one.
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ProcessingStatus == "" {
		file.ProcessingStatus = models.StatusPending
	}

	query := `
		INSERT INTO files (name, storage_key, mime_type, size_bytes, folder_id, processing_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		file.Name,
		file.StorageKey,
		file.MimeType,
		file.SizeBytes,
		file.FolderID,
		file.ProcessingStatus,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		if isPgDuplicateError(err) {
			return fmt.Errorf("storage key %q: %w", file.StorageKey, domain.ErrConflict)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM files WHERE id = $1`, fileColumns)

	file, err := scanFile(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// ListByFolder lists files in a folder ordered by created_at descending.
// The ordering is an explicit contract: most recent upload first.
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID *string) ([]models.File, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM files
			WHERE folder_id IS NULL
			ORDER BY created_at DESC
		`, fileColumns)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM files
			WHERE folder_id = $1
			ORDER BY created_at DESC
		`, fileColumns)
		args = append(args, *folderID)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return collectFiles(rows)
}

// ListByFolderIDs lists every file whose folder_id is in folderIDs.
func (r *PostgresFileRepository) ListByFolderIDs(ctx context.Context, folderIDs []string) ([]models.File, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM files WHERE folder_id = ANY($1::uuid[])`, fileColumns)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("list files by folders: %w", err)
	}

	return collectFiles(rows)
}

// GetAll retrieves every file as a flat list
func (r *PostgresFileRepository) GetAll(ctx context.Context) ([]models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM files ORDER BY created_at DESC`, fileColumns)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all files: %w", err)
	}

	return collectFiles(rows)
}

// Delete deletes a single file row
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	result, err := GetExecutor(ctx, r.pool).Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByFolderIDs deletes every file row located in folderIDs.
func (r *PostgresFileRepository) DeleteByFolderIDs(ctx context.Context, folderIDs []string) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}

	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`DELETE FROM files WHERE folder_id = ANY($1::uuid[])`, folderIDs)
	if err != nil {
		return 0, fmt.Errorf("delete files by folders: %w", err)
	}

	return result.RowsAffected(), nil
}

// UpdateStatus sets the processing status of a file
func (r *PostgresFileRepository) UpdateStatus(ctx context.Context, id string, status models.ProcessingStatus) error {
	result, err := GetExecutor(ctx, r.pool).Exec(ctx, `
		UPDATE files
		SET processing_status = $1, updated_at = now()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update file status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateEnrichment stores a completed enrichment result and marks the file
// completed. Callers tolerate ErrNotFound when the file was deleted while
// enrichment was in flight.
func (r *PostgresFileRepository) UpdateEnrichment(ctx context.Context, id string, result *models.EnrichmentResult) error {
	tag, err := GetExecutor(ctx, r.pool).Exec(ctx, `
		UPDATE files
		SET processing_status = $1,
			pulse_language = $2,
			pulse_line_count = $3,
			pulse_named_entities = $4,
			pulse_raw_metadata = $5,
			updated_at = now()
		WHERE id = $6
	`,
		models.StatusCompleted,
		result.Language,
		result.LineCount,
		result.NamedEntities,
		result.RawMetadata,
		id,
	)
	if err != nil {
		return fmt.Errorf("update file enrichment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
