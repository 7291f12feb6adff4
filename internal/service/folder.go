package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"doclib/internal/cache"
	"doclib/internal/library"
	"doclib/internal/model"
	"doclib/internal/repository"
	"doclib/internal/repository/postgres"
	"doclib/internal/storage"
)

var (
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("not found")
	ErrParentNotFound = errors.New("parent folder not found")
	ErrFolderNotFound = errors.New("folder not found")
	ErrFolderCycle    = errors.New("folder cannot be moved into its own subtree")
)

var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

// FolderService defines the use cases for the folder forest.
type FolderService interface {
	// Create validates and inserts a new folder. The parent, when given,
	// must exist; an empty-string parent is treated as root.
	Create(ctx context.Context, req model.CreateFolderRequest) (*model.Folder, error)

	// Update renames and/or moves a folder. A move is rejected when the new
	// parent lies inside the folder's own subtree (the acyclicity invariant).
	Update(ctx context.Context, id string, req model.UpdateFolderRequest) (*model.Folder, error)

	// List returns the flat folder listing (read-through cached).
	List(ctx context.Context) ([]model.Folder, error)

	// Tree returns the nested folder forest with per-folder recursive
	// document counts and attached documents.
	Tree(ctx context.Context) (*library.Forest, error)

	// Path returns the breadcrumb trail from a root to the folder inclusive.
	Path(ctx context.Context, id string) ([]model.Folder, error)

	// Delete removes a folder, its descendant folders, and every contained
	// document, including the stored objects. Irreversible.
	Delete(ctx context.Context, id string) error
}

type folderService struct {
	folders  repository.FolderRepository
	docs     repository.DocumentRepository
	store    storage.Storage
	listings *cache.Listings
	log      *zap.Logger
}

// NewFolderService constructs a FolderService. listings may be nil to run
// without a cache (tests, degraded mode).
func NewFolderService(
	folders repository.FolderRepository,
	docs repository.DocumentRepository,
	store storage.Storage,
	listings *cache.Listings,
	log *zap.Logger,
) FolderService {
	return &folderService{folders: folders, docs: docs, store: store, listings: listings, log: log}
}

func validateFolderName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.Length(1, 255),
		validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
	)
}

// normalizeParent collapses the empty-string "no parent" form into nil at
// the ingestion boundary, before any tree logic sees it.
func normalizeParent(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func (s *folderService) Create(ctx context.Context, req model.CreateFolderRequest) (*model.Folder, error) {
	if err := validateFolderName(req.Name); err != nil {
		return nil, err
	}
	parentID := normalizeParent(req.ParentID)
	if parentID != nil {
		if _, err := s.folders.FindByID(ctx, *parentID); err != nil {
			if postgres.IsNoRowsError(err) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
	}

	now := time.Now().UTC()
	f := &model.Folder{
		ID:        uuid.New().String(),
		Name:      req.Name,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := s.folders.Create(ctx, f)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return stored, nil
}

func (s *folderService) Update(ctx context.Context, id string, req model.UpdateFolderRequest) (*model.Folder, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.folders.FindByID(ctx, id)
	if err != nil {
		if postgres.IsNoRowsError(err) {
			return nil, ErrFolderNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		if err := validateFolderName(*req.Name); err != nil {
			return nil, err
		}
		f.Name = *req.Name
	}

	switch {
	case req.MoveToRoot:
		f.ParentID = nil
	case normalizeParent(req.ParentID) != nil:
		newParent := *normalizeParent(req.ParentID)
		if _, err := s.folders.FindByID(ctx, newParent); err != nil {
			if postgres.IsNoRowsError(err) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		// The folder must never become its own ancestor.
		all, err := s.folders.List(ctx)
		if err != nil {
			return nil, err
		}
		if library.NewFolderTree(all).IsDescendant(id, newParent) {
			return nil, ErrFolderCycle
		}
		f.ParentID = &newParent
	}

	f.UpdatedAt = time.Now().UTC()
	stored, err := s.folders.Update(ctx, f)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return stored, nil
}

func (s *folderService) List(ctx context.Context) ([]model.Folder, error) {
	if s.listings != nil {
		if folders, ok := s.listings.GetFolders(ctx); ok {
			return folders, nil
		}
	}
	folders, err := s.folders.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.listings != nil {
		if err := s.listings.SetFolders(ctx, folders); err != nil {
			s.log.Warn("folder listing cache set failed", zap.Error(err))
		}
	}
	return folders, nil
}

func (s *folderService) Tree(ctx context.Context) (*library.Forest, error) {
	folders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.List(ctx, repository.DocumentQuery{})
	if err != nil {
		return nil, err
	}
	return library.BuildForest(library.NewFolderTree(folders), library.NewDocumentIndex(docs)), nil
}

func (s *folderService) Path(ctx context.Context, id string) ([]model.Folder, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	folders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	path := library.NewFolderTree(folders).PathTo(id)
	if path == nil {
		return nil, ErrFolderNotFound
	}
	return path, nil
}

func (s *folderService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if _, err := s.folders.FindByID(ctx, id); err != nil {
		if postgres.IsNoRowsError(err) {
			return ErrFolderNotFound
		}
		return err
	}

	// Remove stored objects for every document in the subtree before the row
	// delete cascades. Object deletion is best effort: a leaked object is
	// recoverable, a folder stuck half-deleted is not.
	docs, err := s.docs.ListSubtree(ctx, id)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := s.store.Delete(ctx, d.StoragePath); err != nil {
			s.log.Warn("delete stored object failed",
				zap.String("document_id", d.ID),
				zap.String("storage_path", d.StoragePath),
				zap.Error(err))
		}
	}

	if err := s.folders.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *folderService) invalidate(ctx context.Context) {
	if s.listings == nil {
		return
	}
	if err := s.listings.Invalidate(ctx); err != nil {
		s.log.Warn("listing cache invalidation failed", zap.Error(err))
	}
}
