package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"filedepot/internal/blob"
	"filedepot/internal/domain"
	"filedepot/internal/domain/models"
	"filedepot/internal/domain/repositories"
	"filedepot/internal/pulse"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

// fakeFolderRepo is an in-memory FolderRepository. Delete cascades to
// descendant rows the way the real store's parent_id constraint does.
type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
	order   []string

	getErr    error
	createErr error
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func (r *fakeFolderRepo) add(id string, parentID *string, name string) *models.Folder {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := &models.Folder{
		ID:        id,
		ParentID:  parentID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.folders[id] = f
	r.order = append(r.order, id)
	return f
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	folder.ID = uuid.New().String()
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = folder.CreatedAt
	cp := *folder
	r.folders[folder.ID] = &cp
	r.order = append(r.order, folder.ID)
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, id := range r.order {
		f, ok := r.folders[id]
		if !ok {
			continue
		}
		if sameParent(f.ParentID, parentID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		set[id] = struct{}{}
	}
	var out []string
	for _, id := range r.order {
		f, ok := r.folders[id]
		if !ok || f.ParentID == nil {
			continue
		}
		if _, ok := set[*f.ParentID]; ok {
			out = append(out, f.ID)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) GetAll(ctx context.Context) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Folder, 0, len(r.order))
	for _, id := range r.order {
		if f, ok := r.folders[id]; ok {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return false, nil
	}
	doomed := []string{id}
	for len(doomed) > 0 {
		victim := doomed[0]
		doomed = doomed[1:]
		delete(r.folders, victim)
		for _, f := range r.folders {
			if f.ParentID != nil && *f.ParentID == victim {
				doomed = append(doomed, f.ID)
			}
		}
	}
	return true, nil
}

func (r *fakeFolderRepo) snapshot() map[string]*models.Folder {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[string]*models.Folder, len(r.folders))
	for id, f := range r.folders {
		cp := *f
		snap[id] = &cp
	}
	return snap
}

func (r *fakeFolderRepo) restore(snap map[string]*models.Folder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.folders = snap
}

// fakeFileRepo is an in-memory FileRepository.
type fakeFileRepo struct {
	mu    sync.Mutex
	files map[string]*models.File
	order []string

	createErr             error
	deleteByFolderIDsErr  error
	updateStatusErrByCall map[int]error
	statusCalls           int
	statusHistory         []models.ProcessingStatus
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*models.File)}
}

func (r *fakeFileRepo) add(id string, folderID *string, name, key, mimeType string) *models.File {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := &models.File{
		ID:               id,
		Name:             name,
		StorageKey:       key,
		MimeType:         mimeType,
		FolderID:         folderID,
		ProcessingStatus: models.StatusPending,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	r.files[id] = f
	r.order = append(r.order, id)
	return f
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	file.ID = uuid.New().String()
	file.CreatedAt = time.Now()
	file.UpdatedAt = file.CreatedAt
	if file.ProcessingStatus == "" {
		file.ProcessingStatus = models.StatusPending
	}
	cp := *file
	r.files[file.ID] = &cp
	r.order = append(r.order, file.ID)
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFileRepo) ListByFolder(ctx context.Context, folderID *string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	// Most recent first: walk insertion order backwards
	for i := len(r.order) - 1; i >= 0; i-- {
		f, ok := r.files[r.order[i]]
		if !ok {
			continue
		}
		if sameParent(f.FolderID, folderID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) ListByFolderIDs(ctx context.Context, folderIDs []string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := make(map[string]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		set[id] = struct{}{}
	}
	var out []models.File
	for _, id := range r.order {
		f, ok := r.files[id]
		if !ok || f.FolderID == nil {
			continue
		}
		if _, ok := set[*f.FolderID]; ok {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) GetAll(ctx context.Context) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.File, 0, len(r.order))
	for _, id := range r.order {
		if f, ok := r.files[id]; ok {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	delete(r.files, id)
	return nil
}

func (r *fakeFileRepo) DeleteByFolderIDs(ctx context.Context, folderIDs []string) (int64, error) {
	if r.deleteByFolderIDsErr != nil {
		return 0, r.deleteByFolderIDsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set := make(map[string]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		set[id] = struct{}{}
	}
	var n int64
	for id, f := range r.files {
		if f.FolderID == nil {
			continue
		}
		if _, ok := set[*f.FolderID]; ok {
			delete(r.files, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeFileRepo) UpdateStatus(ctx context.Context, id string, status models.ProcessingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusCalls++
	if err, ok := r.updateStatusErrByCall[r.statusCalls]; ok {
		return err
	}
	f, ok := r.files[id]
	if !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	f.ProcessingStatus = status
	f.UpdatedAt = time.Now()
	r.statusHistory = append(r.statusHistory, status)
	return nil
}

func (r *fakeFileRepo) UpdateEnrichment(ctx context.Context, id string, result *models.EnrichmentResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	f.ProcessingStatus = models.StatusCompleted
	f.PulseLanguage = &result.Language
	lc := result.LineCount
	f.PulseLineCount = &lc
	f.PulseNamedEntities = result.NamedEntities
	f.PulseRawMetadata = result.RawMetadata
	f.UpdatedAt = time.Now()
	r.statusHistory = append(r.statusHistory, models.StatusCompleted)
	return nil
}

func (r *fakeFileRepo) snapshot() map[string]*models.File {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[string]*models.File, len(r.files))
	for id, f := range r.files {
		cp := *f
		snap[id] = &cp
	}
	return snap
}

func (r *fakeFileRepo) restore(snap map[string]*models.File) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = snap
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// fakeBlobStore is an in-memory blob.Store.
type fakeBlobStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	deleteErr map[string]error
	writeErr  error
	deleted   []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		data:      make(map[string][]byte),
		deleteErr: make(map[string]error),
	}
}

func (s *fakeBlobStore) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = buf.Bytes()
	return n, nil
}

func (s *fakeBlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, blob.ErrNotExist)
	}
	return append([]byte(nil), b...), nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.deleteErr[key]; ok {
		return err
	}
	delete(s.data, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeBlobStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// fakeTxManager snapshots both fakes and restores them when the function
// fails, approximating transactional rollback.
type fakeTxManager struct {
	folders *fakeFolderRepo
	files   *fakeFileRepo
	calls   int
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	folderSnap := m.folders.snapshot()
	fileSnap := m.files.snapshot()
	if err := fn(ctx); err != nil {
		m.folders.restore(folderSnap)
		m.files.restore(fileSnap)
		return err
	}
	return nil
}

// fakeDispatcher records enqueued file ids.
type fakeDispatcher struct {
	mu       sync.Mutex
	enqueued []string
	full     bool
}

func (d *fakeDispatcher) Enqueue(fileID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.full {
		return false
	}
	d.enqueued = append(d.enqueued, fileID)
	return true
}

func (d *fakeDispatcher) ids() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.enqueued...)
}

// fakeExtractor returns a canned result or error.
type fakeExtractor struct {
	mu     sync.Mutex
	result *pulse.Result
	err    error
	calls  int
}

func (e *fakeExtractor) Extract(ctx context.Context, filename, mimeType string, content []byte) (*pulse.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}
