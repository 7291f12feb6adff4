package postgres

import (
	"context"
	"database/sql"

	"doclib/internal/model"
	"doclib/internal/repository"
)

// FolderPostgres is a PostgreSQL implementation of repository.FolderRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FolderPostgres struct {
	db *sql.DB
}

// NewFolderPostgres creates a new FolderPostgres repository.
func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

// Create inserts a new folder row and returns the stored record.
func (r *FolderPostgres) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	const q = `
		INSERT INTO folders (id, name, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, parent_id, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Name,
		f.ParentID,
		f.CreatedAt,
		f.UpdatedAt,
	)
	var out model.Folder
	if err := row.Scan(
		&out.ID,
		&out.Name,
		&out.ParentID,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single folder by its ID.
func (r *FolderPostgres) FindByID(ctx context.Context, id string) (*model.Folder, error) {
	const q = `
		SELECT id, name, parent_id, created_at, updated_at
		FROM folders
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var f model.Folder
	if err := row.Scan(
		&f.ID,
		&f.Name,
		&f.ParentID,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns every folder ordered by name for stable output.
func (r *FolderPostgres) List(ctx context.Context) ([]model.Folder, error) {
	const q = `
		SELECT id, name, parent_id, created_at, updated_at
		FROM folders
		ORDER BY lower(name) ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Folder, 0)
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(
			&f.ID,
			&f.Name,
			&f.ParentID,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update persists name and parent changes and returns the stored record.
func (r *FolderPostgres) Update(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	const q = `
		UPDATE folders
		SET name = $2, parent_id = $3, updated_at = $4
		WHERE id = $1
		RETURNING id, name, parent_id, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q, f.ID, f.Name, f.ParentID, f.UpdatedAt)
	var out model.Folder
	if err := row.Scan(
		&out.ID,
		&out.Name,
		&out.ParentID,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a folder by ID. The schema's ON DELETE CASCADE foreign keys
// remove descendant folders and contained documents in the same statement.
func (r *FolderPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM folders WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
