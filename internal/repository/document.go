package repository

import (
	"context"

	"doclib/internal/model"
)

// DocumentQuery narrows a document listing. Zero values mean "no filter";
// listings are full fetches, never paginated, and callers refetch wholesale
// after every mutation.
type DocumentQuery struct {
	Category string
}

// DocumentRepository defines data access for documents using SQL queries
// only. No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns documents matching the query as a flat slice.
	List(ctx context.Context, q DocumentQuery) ([]model.Document, error)

	// ListSubtree returns documents in folderID and every descendant folder.
	// Used to collect storage objects before a cascading folder delete.
	ListSubtree(ctx context.Context, folderID string) ([]model.Document, error)

	// Delete removes a document by ID. Returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}
