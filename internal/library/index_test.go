package library

import (
	"testing"

	"doclib/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIndex() (*DocumentIndex, *FolderTree) {
	tree := NewFolderTree([]model.Folder{
		{ID: "reports", Name: "Quarterly Reports"},
		{ID: "forms", Name: "Forms", ParentID: strptr("reports")},
	})
	idx := NewDocumentIndex([]model.Document{
		{ID: "1", Filename: "Summary.pdf", FolderID: strptr("reports")},
		{ID: "2", Filename: "intake-form.pdf", FolderID: strptr("forms")},
		{ID: "3", Filename: "loose.pdf"},
		{ID: "4", Filename: "notes.pdf", FolderID: strptr("")},
	})
	return idx, tree
}

func TestDocumentIndex_In(t *testing.T) {
	idx, _ := sampleIndex()

	t.Run("exact folder match", func(t *testing.T) {
		docs := idx.In(strptr("reports"))
		require.Len(t, docs, 1)
		assert.Equal(t, "1", docs[0].ID)
	})

	t.Run("nil means root-level only", func(t *testing.T) {
		docs := idx.In(nil)
		require.Len(t, docs, 2)
		assert.Equal(t, "3", docs[0].ID)
		assert.Equal(t, "4", docs[1].ID)
	})

	t.Run("empty-string folder id equals root", func(t *testing.T) {
		assert.Equal(t, idx.In(nil), idx.In(strptr("")))
	})

	t.Run("unknown folder yields empty", func(t *testing.T) {
		assert.Empty(t, idx.In(strptr("nope")))
	})
}

func TestDocumentIndex_Search(t *testing.T) {
	idx, tree := sampleIndex()

	t.Run("case-insensitive filename match", func(t *testing.T) {
		docs := idx.Search("SUMMARY", tree)
		require.Len(t, docs, 1)
		assert.Equal(t, "1", docs[0].ID)
	})

	t.Run("matches owning folder name", func(t *testing.T) {
		docs := idx.Search("quarterly", tree)
		require.Len(t, docs, 1)
		assert.Equal(t, "1", docs[0].ID)
	})

	t.Run("empty term returns everything", func(t *testing.T) {
		assert.Len(t, idx.Search("", tree), 4)
		assert.Len(t, idx.Search("   ", tree), 4)
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, idx.Search("zzz", tree))
	})

	t.Run("nil tree still matches filenames", func(t *testing.T) {
		docs := idx.Search("intake", nil)
		require.Len(t, docs, 1)
		assert.Equal(t, "2", docs[0].ID)
	})
}

func TestDocumentIndex_DirectCounts(t *testing.T) {
	idx, _ := sampleIndex()
	counts := idx.DirectCounts()

	assert.Equal(t, 1, counts["reports"])
	assert.Equal(t, 1, counts["forms"])
	assert.Equal(t, 2, counts[""])
}

func TestViewState_Visible(t *testing.T) {
	idx, tree := sampleIndex()

	t.Run("search takes precedence over selection", func(t *testing.T) {
		st := NewViewState()
		st.SelectedFolder = strptr("forms")
		st.SearchTerm = "summary"

		docs := st.Visible(idx, tree)
		require.Len(t, docs, 1)
		assert.Equal(t, "1", docs[0].ID)
	})

	t.Run("selection applies without a search term", func(t *testing.T) {
		st := NewViewState()
		st.SelectedFolder = strptr("forms")

		docs := st.Visible(idx, tree)
		require.Len(t, docs, 1)
		assert.Equal(t, "2", docs[0].ID)
	})

	t.Run("default state shows root documents", func(t *testing.T) {
		st := NewViewState()
		assert.Len(t, st.Visible(idx, tree), 2)
	})
}

func TestViewState_Expanded(t *testing.T) {
	st := NewViewState()

	assert.False(t, st.IsExpanded("a"))
	st.ToggleExpanded("a")
	assert.True(t, st.IsExpanded("a"))
	st.ToggleExpanded("a")
	assert.False(t, st.IsExpanded("a"))

	// zero-value state must not panic
	var zero ViewState
	zero.ToggleExpanded("b")
	assert.True(t, zero.IsExpanded("b"))
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 bytes"},
		{512, "512 bytes"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{20 << 20, "20.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanSize(tt.bytes))
	}
}
