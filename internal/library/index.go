package library

import (
	"strings"

	"doclib/internal/model"
)

// DocumentIndex filters the flat document list for display. Like FolderTree
// it is a snapshot: rebuild it after every refetch.
type DocumentIndex struct {
	docs []model.Document
}

// NewDocumentIndex wraps a fetched document listing.
func NewDocumentIndex(docs []model.Document) *DocumentIndex {
	return &DocumentIndex{docs: docs}
}

// All returns every document in the index.
func (i *DocumentIndex) All() []model.Document {
	out := make([]model.Document, len(i.docs))
	copy(out, i.docs)
	return out
}

// In returns the documents owned by exactly folderID. A nil folderID selects
// root-level documents only, not all documents.
func (i *DocumentIndex) In(folderID *string) []model.Document {
	want := normalizeParent(folderID)
	out := make([]model.Document, 0)
	for _, d := range i.docs {
		if normalizeParent(d.FolderID) == want {
			out = append(out, d)
		}
	}
	return out
}

// Search returns documents whose filename or owning-folder name contains
// term, case-insensitively. An empty term means no filter. The tree resolves
// folder IDs to names; documents in unknown folders match on filename only.
func (i *DocumentIndex) Search(term string, tree *FolderTree) []model.Document {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return i.All()
	}
	out := make([]model.Document, 0)
	for _, d := range i.docs {
		if strings.Contains(strings.ToLower(d.Filename), needle) {
			out = append(out, d)
			continue
		}
		if d.FolderID != nil && tree != nil {
			if f, ok := tree.Get(*d.FolderID); ok && strings.Contains(strings.ToLower(f.Name), needle) {
				out = append(out, d)
			}
		}
	}
	return out
}

// DirectCounts maps each folder ID to the number of documents directly inside
// it. Root-level documents are counted under the empty key.
func (i *DocumentIndex) DirectCounts() map[string]int {
	counts := make(map[string]int)
	for _, d := range i.docs {
		counts[normalizeParent(d.FolderID)]++
	}
	return counts
}
