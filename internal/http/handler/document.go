package handler

import (
	"io"
	"mime"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"doclib/internal/model"
	"doclib/internal/service"
)

const presignExpiry = 15 * time.Minute

// ListDocuments returns documents filtered by category, folder and search
// term. A search term takes precedence over the folder filter.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts := service.ListOptions{
			Category: c.Query("category"),
			Search:   c.Query("search"),
		}
		if opts.Category != "" && opts.Category != model.CategoryLibrary && opts.Category != model.CategoryBonus {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CATEGORY", "invalid category")
		}
		// folder_id distinguishes absent (no filter) from empty (root only).
		if c.Request().URI().QueryArgs().Has("folder_id") {
			opts.HasFolderFilter = true
			if v := c.Query("folder_id"); v != "" {
				opts.FolderID = &v
			}
		}

		docs, err := svc.List(c.UserContext(), opts)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"items": docs, "total": len(docs)})
	}
}

// UploadDocument accepts a single multipart file upload (field name: file)
// with optional folder_id, category and uploaded_by form fields.
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		category := c.FormValue("category", model.CategoryLibrary)
		params := service.UploadParams{
			Filename:    fh.Filename,
			ContentType: contentTypeOf(fh),
			Size:        fh.Size,
			Category:    category,
			UploadedBy:  c.FormValue("uploaded_by"),
		}
		if v := c.FormValue("folder_id"); v != "" {
			params.FolderID = &v
		}

		doc, err := svc.Upload(c.UserContext(), f, params)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// BatchUploadDocuments accepts multiple files (field name: files) and uploads
// them one at a time. Files that fail validation are skipped, a file that
// fails mid-upload does not abort the rest.
func BatchUploadDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "multipart form required")
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", "at least one file is required")
		}

		files := make([]service.BatchFile, 0, len(headers))
		for _, fh := range headers {
			fh := fh
			files = append(files, service.BatchFile{
				Filename:    fh.Filename,
				ContentType: contentTypeOf(fh),
				Size:        fh.Size,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}

		var folderID *string
		if v := c.FormValue("folder_id"); v != "" {
			folderID = &v
		}

		res, err := svc.BatchUpload(c.UserContext(), files, folderID, c.FormValue("uploaded_by"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns a single document's metadata.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument streams the stored file. With ?presign=true it returns a
// short-lived direct URL instead of proxying the bytes.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if c.QueryBool("presign") {
			url, err := svc.PresignDownload(c.UserContext(), id, presignExpiry)
			if err != nil {
				return writeServiceError(c, err)
			}
			return c.JSON(fiber.Map{"url": url, "expires_in": int(presignExpiry.Seconds())})
		}

		rc, doc, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		ct := doc.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderContentDisposition,
			mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
		return c.SendStream(rc)
	}
}

// DeleteDocument removes a document and its stored object.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func contentTypeOf(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
