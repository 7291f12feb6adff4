package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"doclib/internal/model"
	"doclib/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var docColumns = []string{"id", "filename", "storage_path", "size", "content_type", "category", "folder_id", "uploaded_by", "created_at"}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	folder := "folder-uuid"
	doc := &model.Document{
		ID:          "test-uuid",
		Filename:    "report.pdf",
		StoragePath: "library/test-uuid.pdf",
		Size:        123,
		ContentType: "application/pdf",
		Category:    model.CategoryLibrary,
		FolderID:    &folder,
		UploadedBy:  "Agent Smith",
		CreatedAt:   now,
	}

	rows := sqlmock.NewRows(docColumns).
		AddRow(doc.ID, doc.Filename, doc.StoragePath, doc.Size, doc.ContentType, doc.Category, doc.FolderID, doc.UploadedBy, doc.CreatedAt)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.ID, doc.Filename, doc.StoragePath, doc.Size, doc.ContentType, doc.Category, doc.FolderID, doc.UploadedBy, doc.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, &folder, result.FolderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(docColumns).
			AddRow("test-id", "file.pdf", "library/file.pdf", 100, "application/pdf", model.CategoryLibrary, nil, "Agent Smith", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, "test-id", doc.ID)
		assert.Nil(t, doc.FolderID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.Error(t, err)
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("all categories", func(t *testing.T) {
		rows := sqlmock.NewRows(docColumns).
			AddRow("a", "a.pdf", "library/a.pdf", 1, "application/pdf", model.CategoryLibrary, nil, "x", time.Now()).
			AddRow("b", "b.pdf", "bonus/b.pdf", 2, "application/pdf", model.CategoryBonus, nil, "y", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY").
			WillReturnRows(rows)

		docs, err := repo.List(ctx, repository.DocumentQuery{})

		assert.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("by category", func(t *testing.T) {
		rows := sqlmock.NewRows(docColumns).
			AddRow("b", "b.pdf", "bonus/b.pdf", 2, "application/pdf", model.CategoryBonus, nil, "y", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE category = ?").
			WithArgs(model.CategoryBonus).
			WillReturnRows(rows)

		docs, err := repo.List(ctx, repository.DocumentQuery{Category: model.CategoryBonus})

		assert.NoError(t, err)
		assert.Len(t, docs, 1)
		assert.Equal(t, model.CategoryBonus, docs[0].Category)
	})
}

func TestDocumentPostgres_ListSubtree(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	folder := "child-id"
	rows := sqlmock.NewRows(docColumns).
		AddRow("a", "a.pdf", "library/a.pdf", 1, "application/pdf", model.CategoryLibrary, &folder, "x", time.Now())

	// the recursive arm must be depth-bounded so a corrupted parent chain
	// cannot loop server-side
	mock.ExpectQuery(`WITH RECURSIVE subtree(?s:.+)depth < 100`).
		WithArgs("root-id").
		WillReturnRows(rows)

	docs, err := repo.ListSubtree(ctx, "root-id")

	assert.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(ctx, "test-id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
