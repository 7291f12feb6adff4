package repository

import (
	"context"

	"doclib/internal/model"
)

// FolderRepository defines data access for folders using SQL queries only.
// No business logic here, strictly persistence operations.
type FolderRepository interface {
	// Create inserts a new folder record and returns the stored row.
	Create(ctx context.Context, f *model.Folder) (*model.Folder, error)

	// FindByID returns a folder by its ID.
	FindByID(ctx context.Context, id string) (*model.Folder, error)

	// List returns every folder as a flat slice. The library package builds
	// tree structure from it; listings are always fetched wholesale.
	List(ctx context.Context) ([]model.Folder, error)

	// Update persists a rename and/or move and returns the stored row.
	Update(ctx context.Context, f *model.Folder) (*model.Folder, error)

	// Delete removes a folder by ID. Descendant folders and contained
	// documents are removed by the database's cascading foreign keys.
	// Returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}
