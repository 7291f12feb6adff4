package library

import (
	"strings"

	"doclib/internal/model"
)

// ViewState is the explicit, serializable UI state of a document-library
// view: which folder is selected, the active search term, and which folders
// are expanded. It owns no fetched data; pair it with a FolderTree and
// DocumentIndex built from the latest listings.
type ViewState struct {
	SelectedFolder *string         `json:"selected_folder"`
	SearchTerm     string          `json:"search_term"`
	Expanded       map[string]bool `json:"expanded"`
}

// NewViewState returns an empty view state: root selected, no search, all
// folders collapsed.
func NewViewState() *ViewState {
	return &ViewState{Expanded: make(map[string]bool)}
}

// ToggleExpanded flips the expanded flag for a folder.
func (s *ViewState) ToggleExpanded(folderID string) {
	if s.Expanded == nil {
		s.Expanded = make(map[string]bool)
	}
	if s.Expanded[folderID] {
		delete(s.Expanded, folderID)
	} else {
		s.Expanded[folderID] = true
	}
}

// IsExpanded reports whether a folder is expanded.
func (s *ViewState) IsExpanded(folderID string) bool {
	return s.Expanded[folderID]
}

// Visible resolves the document set for the current state. A non-empty
// search term takes precedence over the folder selection: the visible set is
// exactly the search result. Otherwise it is the selected folder's direct
// documents (root-level documents when no folder is selected).
func (s *ViewState) Visible(idx *DocumentIndex, tree *FolderTree) []model.Document {
	if strings.TrimSpace(s.SearchTerm) != "" {
		return idx.Search(s.SearchTerm, tree)
	}
	return idx.In(s.SelectedFolder)
}
