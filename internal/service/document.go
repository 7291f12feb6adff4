package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"doclib/internal/cache"
	"doclib/internal/config"
	"doclib/internal/library"
	"doclib/internal/model"
	"doclib/internal/repository"
	"doclib/internal/repository/postgres"
	"doclib/internal/storage"
	"doclib/internal/uploader"
)

var (
	ErrReaderNil    = errors.New("reader is nil")
	ErrBadExtension = errors.New("file extension not accepted")
	ErrTooLarge     = errors.New("file exceeds the size limit")
)

// ListOptions narrows a document listing. A non-empty Search term takes
// precedence over the folder selection; FolderID filtering applies only when
// HasFolderFilter is set (a nil FolderID then means root-level documents).
type ListOptions struct {
	Category        string
	Search          string
	FolderID        *string
	HasFolderFilter bool
}

// UploadParams describes a single upload.
type UploadParams struct {
	Filename    string
	ContentType string
	Size        int64
	Category    string
	FolderID    *string
	UploadedBy  string
}

// BatchFile is one candidate in a multi-file batch. Open is called at most
// once, when the file's turn in the sequential batch comes up.
type BatchFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates and uploads a single file: content to object storage,
	// metadata to the database, with a storage rollback if the DB save fails.
	Upload(ctx context.Context, r io.Reader, p UploadParams) (*model.Document, error)

	// BatchUpload drives a strictly sequential multi-file upload with
	// per-file validation and independent success/fail accounting. The
	// listing cache is refreshed at most once, only if something succeeded.
	BatchUpload(ctx context.Context, files []BatchFile, folderID *string, uploadedBy string) (*uploader.Result, error)

	// List returns documents filtered per opts (read-through cached).
	List(ctx context.Context, opts ListOptions) ([]model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Download returns the document's content stream plus its metadata.
	Download(ctx context.Context, id string) (io.ReadCloser, *model.Document, error)

	// PresignDownload returns a time-limited URL for the document content.
	PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error)

	// Delete removes a document from both storage and the database.
	Delete(ctx context.Context, id string) error
}

type documentService struct {
	store    storage.Storage
	repo     repository.DocumentRepository
	folders  repository.FolderRepository
	listings *cache.Listings
	limits   config.UploadConfig
	log      *zap.Logger
	batch    *uploader.Coordinator
}

// NewDocumentService constructs a DocumentService. listings may be nil to
// run without a cache.
func NewDocumentService(
	store storage.Storage,
	repo repository.DocumentRepository,
	folders repository.FolderRepository,
	listings *cache.Listings,
	limits config.UploadConfig,
	log *zap.Logger,
) DocumentService {
	return &documentService{
		store:    store,
		repo:     repo,
		folders:  folders,
		listings: listings,
		limits:   limits,
		log:      log,
		batch:    uploader.New(limits.AcceptExt, limits.LibraryMaxBytes),
	}
}

func (s *documentService) maxSizeFor(category string) int64 {
	if category == model.CategoryBonus {
		return s.limits.BonusMaxBytes
	}
	return s.limits.LibraryMaxBytes
}

func (s *documentService) validateUpload(p UploadParams) error {
	if err := validation.Validate(p.Category, validation.In(model.CategoryLibrary, model.CategoryBonus)); err != nil {
		return fmt.Errorf("category: %w", err)
	}
	coord := uploader.New(s.limits.AcceptExt, s.maxSizeFor(p.Category))
	accepted, skipped := coord.Validate([]uploader.Candidate{{Filename: p.Filename, Size: p.Size}})
	if len(accepted) == 1 {
		return nil
	}
	if skipped[0].Reason == uploader.SkipTooLarge {
		return ErrTooLarge
	}
	return ErrBadExtension
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, p UploadParams) (*model.Document, error) {
	doc, err := s.upload(ctx, r, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return doc, nil
}

// upload performs the store-then-record flow without touching the cache, so
// BatchUpload can invalidate once for the whole batch.
func (s *documentService) upload(ctx context.Context, r io.Reader, p UploadParams) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if err := s.validateUpload(p); err != nil {
		return nil, err
	}
	folderID := normalizeParent(p.FolderID)
	if folderID != nil {
		if _, err := s.folders.FindByID(ctx, *folderID); err != nil {
			if postgres.IsNoRowsError(err) {
				return nil, ErrFolderNotFound
			}
			return nil, err
		}
	}

	// Stored object name is UUID + original extension; the original filename
	// lives in the DB row and the object metadata.
	ext := filepath.Ext(p.Filename)
	key := filepath.ToSlash(filepath.Join(p.Category, uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        p.Size,
		ContentType: p.ContentType,
		Metadata: map[string]string{
			"original-filename": p.Filename,
			"uploaded-by":       p.UploadedBy,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:          uuid.New().String(),
		Filename:    p.Filename,
		StoragePath: objInfo.Key,
		Size:        objInfo.Size,
		ContentType: p.ContentType,
		Category:    p.Category,
		FolderID:    folderID,
		UploadedBy:  p.UploadedBy,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) BatchUpload(ctx context.Context, files []BatchFile, folderID *string, uploadedBy string) (*uploader.Result, error) {
	type fileKey struct {
		name string
		size int64
	}
	queues := make(map[fileKey][]BatchFile, len(files))
	candidates := make([]uploader.Candidate, 0, len(files))
	for _, f := range files {
		k := fileKey{f.Filename, f.Size}
		queues[k] = append(queues[k], f)
		candidates = append(candidates, uploader.Candidate{Filename: f.Filename, Size: f.Size})
	}

	uploadOne := func(ctx context.Context, c uploader.Candidate) error {
		k := fileKey{c.Filename, c.Size}
		f := queues[k][0]
		queues[k] = queues[k][1:]
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		_, err = s.upload(ctx, rc, UploadParams{
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Size:        f.Size,
			Category:    model.CategoryLibrary,
			FolderID:    folderID,
			UploadedBy:  uploadedBy,
		})
		return err
	}
	progress := func(current, total int) {
		s.log.Info("batch upload progress",
			zap.Int("current", current),
			zap.Int("total", total))
	}

	res := s.batch.Run(ctx, candidates, uploadOne, progress)
	if res.ShouldRefresh() {
		s.invalidate(ctx)
	}
	return res, nil
}

func (s *documentService) List(ctx context.Context, opts ListOptions) ([]model.Document, error) {
	docs, err := s.listDocuments(ctx, opts.Category)
	if err != nil {
		return nil, err
	}
	idx := library.NewDocumentIndex(docs)

	// Search wins over folder selection when both are present.
	if opts.Search != "" {
		folders, err := s.folders.List(ctx)
		if err != nil {
			return nil, err
		}
		return idx.Search(opts.Search, library.NewFolderTree(folders)), nil
	}
	if opts.HasFolderFilter {
		return idx.In(normalizeParent(opts.FolderID)), nil
	}
	return idx.All(), nil
}

func (s *documentService) listDocuments(ctx context.Context, category string) ([]model.Document, error) {
	if s.listings != nil {
		if docs, ok := s.listings.GetDocuments(ctx, category); ok {
			return docs, nil
		}
	}
	docs, err := s.repo.List(ctx, repository.DocumentQuery{Category: category})
	if err != nil {
		return nil, err
	}
	if s.listings != nil {
		if err := s.listings.SetDocuments(ctx, category, docs); err != nil {
			s.log.Warn("document listing cache set failed", zap.Error(err))
		}
	}
	return docs, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if postgres.IsNoRowsError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Download(ctx context.Context, id string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("get from storage: %w", err)
	}
	return rc, doc, nil
}

func (s *documentService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, doc.StoragePath, expiry)
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if postgres.IsNoRowsError(err) {
			return ErrNotFound
		}
		return err
	}
	// Delete from storage first; if this fails, keep the DB row so the
	// object reference is not lost.
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *documentService) invalidate(ctx context.Context) {
	if s.listings == nil {
		return
	}
	if err := s.listings.Invalidate(ctx); err != nil {
		s.log.Warn("listing cache invalidation failed", zap.Error(err))
	}
}
