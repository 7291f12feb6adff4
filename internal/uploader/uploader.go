// Package uploader drives multi-file uploads as strictly sequential batches:
// every candidate is validated up front, survivors upload one at a time, and
// the result accounts for each candidate exactly once. One file's failure
// never aborts the batch; a batch left empty after validation performs no
// upload calls.
package uploader

import (
	"context"
	"path/filepath"
	"strings"
)

// Candidate is a file offered for upload. Content is not carried here; the
// UploadFunc closes over however the bytes are obtained.
type Candidate struct {
	Filename string
	Size     int64
}

// UploadFunc performs a single upload. Errors are recorded per file and never
// propagated out of the batch.
type UploadFunc func(ctx context.Context, f Candidate) error

// Progress is invoked before each individual upload begins, so current
// reflects "attempting file N of total", not "completed N".
type Progress func(current, total int)

// SkipReason says why a candidate was rejected before any upload.
type SkipReason string

const (
	SkipBadExtension SkipReason = "bad_extension"
	SkipTooLarge     SkipReason = "too_large"
)

// Skipped is a candidate rejected during validation.
type Skipped struct {
	Filename string     `json:"filename"`
	Reason   SkipReason `json:"reason"`
}

// Result is the aggregate outcome of a batch.
type Result struct {
	Total       int       `json:"total"`
	Attempted   int       `json:"attempted"`
	Uploaded    int       `json:"uploaded"`
	Failed      int       `json:"failed"`
	FailedFiles []string  `json:"failed_files,omitempty"`
	Skipped     []Skipped `json:"skipped,omitempty"`
}

// ShouldRefresh reports whether the caller should refresh its document
// listing: exactly once per batch, and only when something was uploaded.
func (r *Result) ShouldRefresh() bool {
	return r.Uploaded > 0
}

// NothingToUpload reports the empty-batch short-circuit: every candidate was
// rejected during validation (or none were offered).
func (r *Result) NothingToUpload() bool {
	return r.Attempted == 0
}

// Coordinator validates and sequentially uploads batches of files.
type Coordinator struct {
	ext     string
	maxSize int64
}

// New returns a Coordinator accepting files with the given extension
// (matched case-insensitively, leading dot included) up to maxSize bytes.
// A maxSize of zero disables the size check.
func New(ext string, maxSize int64) *Coordinator {
	return &Coordinator{ext: ext, maxSize: maxSize}
}

// Validate partitions candidates into accepted files and skip records,
// without performing any uploads.
func (c *Coordinator) Validate(files []Candidate) (accepted []Candidate, skipped []Skipped) {
	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f.Filename), c.ext) {
			skipped = append(skipped, Skipped{Filename: f.Filename, Reason: SkipBadExtension})
			continue
		}
		if c.maxSize > 0 && f.Size > c.maxSize {
			skipped = append(skipped, Skipped{Filename: f.Filename, Reason: SkipTooLarge})
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted, skipped
}

// Run executes the batch: validation first, then one upload at a time in
// input order. progress may be nil. The returned Result always accounts for
// every candidate exactly once, as uploaded, failed, or skipped.
func (c *Coordinator) Run(ctx context.Context, files []Candidate, upload UploadFunc, progress Progress) *Result {
	res := &Result{Total: len(files)}

	accepted, skipped := c.Validate(files)
	res.Skipped = skipped
	if len(accepted) == 0 {
		return res
	}

	total := len(accepted)
	for i, f := range accepted {
		if progress != nil {
			progress(i+1, total)
		}
		res.Attempted++
		if err := upload(ctx, f); err != nil {
			res.Failed++
			res.FailedFiles = append(res.FailedFiles, f.Filename)
			continue
		}
		res.Uploaded++
	}
	return res
}
