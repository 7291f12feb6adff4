package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"doclib/internal/model"
	"doclib/internal/service"
	serviceMocks "doclib/internal/service/mocks"
	"doclib/internal/uploader"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, field string, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range filenames {
		part, err := writer.CreateFormFile(field, name)
		require.NoError(t, err)
		part.Write([]byte("hello world"))
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		docs := []model.Document{{ID: uuid.New().String(), Filename: "test.pdf"}}
		mockSvc.On("List", mock.Anything, service.ListOptions{}).Return(docs, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Items []model.Document `json:"items"`
			Total int              `json:"total"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty folder_id means root", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, service.ListOptions{HasFolderFilter: true}).
			Return([]model.Document{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?folder_id=", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("search and folder together", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(opts service.ListOptions) bool {
			return opts.Search == "report" && opts.HasFolderFilter && opts.FolderID != nil && *opts.FolderID == "abc"
		})).Return([]model.Document{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?search=report&folder_id=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid category", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?category=archive", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_CATEGORY", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, service.ListOptions{}).
			Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents", UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "test.pdf")

		expectedDoc := &model.Document{ID: uuid.New().String(), Filename: "test.pdf"}
		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(p service.UploadParams) bool {
			return p.Filename == "test.pdf" && p.Category == model.CategoryLibrary
		})).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expectedDoc.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("rejected extension", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "notes.docx")

		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrBadExtension).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNSUPPORTED_FILE_TYPE", res.Error.Code)
	})

	t.Run("oversized file", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "big.pdf")

		mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrTooLarge).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})
}

func TestBatchUploadDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/batch", BatchUploadDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, contentType := multipartBody(t, "files", "a.pdf", "b.docx", "c.pdf")

		res := &uploader.Result{
			Total:     3,
			Attempted: 2,
			Uploaded:  2,
			Skipped: []uploader.Skipped{
				{Filename: "b.docx", Reason: uploader.SkipBadExtension},
			},
		}
		mockSvc.On("BatchUpload", mock.Anything, mock.MatchedBy(func(files []service.BatchFile) bool {
			return len(files) == 3
		}), (*string)(nil), "").Return(res, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/batch", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result uploader.Result
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 2, result.Uploaded)
		require.Len(t, result.Skipped, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no files", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("folder_id", "abc")
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/documents/batch", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILES_REQUIRED", res.Error.Code)
	})

	t.Run("oversized file reaches validation instead of 413", func(t *testing.T) {
		// An aggregate body far over any single-file limit must still get
		// through; the oversized file comes back as skipped, the valid one
		// is uploaded.
		limitedSvc := new(serviceMocks.MockDocumentService)
		limitedApp := fiber.New(fiber.Config{BodyLimit: 256 << 20})
		limitedApp.Post("/documents/batch", BatchUploadDocuments(limitedSvc))

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		big, err := writer.CreateFormFile("files", "huge.pdf")
		require.NoError(t, err)
		big.Write(bytes.Repeat([]byte("x"), 20<<20))
		small, err := writer.CreateFormFile("files", "small.pdf")
		require.NoError(t, err)
		small.Write(bytes.Repeat([]byte("y"), 1<<20))
		writer.Close()

		res := &uploader.Result{
			Total:     2,
			Attempted: 1,
			Uploaded:  1,
			Skipped: []uploader.Skipped{
				{Filename: "huge.pdf", Reason: uploader.SkipTooLarge},
			},
		}
		limitedSvc.On("BatchUpload", mock.Anything, mock.MatchedBy(func(files []service.BatchFile) bool {
			return len(files) == 2 && files[0].Filename == "huge.pdf" && files[0].Size == 20<<20
		}), (*string)(nil), "").Return(res, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/batch", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, err := limitedApp.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result uploader.Result
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, 1, result.Uploaded)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, uploader.SkipTooLarge, result.Skipped[0].Reason)
		limitedSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id", GetDocument(mockSvc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, id).
			Return(&model.Document{ID: id, Filename: "test.pdf"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/download", DownloadDocument(mockSvc))

	id := uuid.New().String()

	t.Run("streams the file", func(t *testing.T) {
		doc := &model.Document{ID: id, Filename: "test.pdf", ContentType: "application/pdf"}
		mockSvc.On("Download", mock.Anything, id).
			Return(io.NopCloser(strings.NewReader("pdf-bytes")), doc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), `filename="test.pdf"`)

		content, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "pdf-bytes", string(content))
		mockSvc.AssertExpectations(t)
	})

	t.Run("quotes in filename are escaped", func(t *testing.T) {
		doc := &model.Document{ID: id, Filename: `q3 "final" report.pdf`, ContentType: "application/pdf"}
		mockSvc.On("Download", mock.Anything, id).
			Return(io.NopCloser(strings.NewReader("pdf-bytes")), doc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `attachment; filename="q3 \"final\" report.pdf"`,
			resp.Header.Get(fiber.HeaderContentDisposition))
		mockSvc.AssertExpectations(t)
	})

	t.Run("presigned url", func(t *testing.T) {
		mockSvc.On("PresignDownload", mock.Anything, id, presignExpiry).
			Return("https://storage.example/doc?sig=abc", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download?presign=true", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "https://storage.example/doc?sig=abc", body["url"])
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
