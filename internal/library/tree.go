// Package library holds the pure, in-memory view of the document library:
// structural queries over the folder forest and filtering over the flat
// document list. Nothing here touches the network or the database; callers
// feed it the listings fetched by the repositories.
package library

import (
	"sort"
	"strings"

	"doclib/internal/model"
)

// rootKey is the adjacency-map key for folders and documents with no parent.
const rootKey = ""

// normalizeParent collapses the "no parent" representations observed in the
// wild (nil pointer, empty string) into a single map key. Normalizing once
// here keeps the three-way check out of every traversal.
func normalizeParent(id *string) string {
	if id == nil {
		return rootKey
	}
	return *id
}

// FolderTree answers structural queries over a flat folder list. Build it
// once per fetch; it is immutable afterwards and safe for concurrent reads.
type FolderTree struct {
	byID     map[string]model.Folder
	children map[string][]model.Folder
}

// NewFolderTree indexes the flat folder list into an adjacency map keyed by
// parent ID. Child slices are sorted case-insensitively by name ascending.
func NewFolderTree(folders []model.Folder) *FolderTree {
	t := &FolderTree{
		byID:     make(map[string]model.Folder, len(folders)),
		children: make(map[string][]model.Folder),
	}
	for _, f := range folders {
		t.byID[f.ID] = f
		key := normalizeParent(f.ParentID)
		t.children[key] = append(t.children[key], f)
	}
	for _, siblings := range t.children {
		sort.SliceStable(siblings, func(i, j int) bool {
			a, b := strings.ToLower(siblings[i].Name), strings.ToLower(siblings[j].Name)
			if a != b {
				return a < b
			}
			return siblings[i].ID < siblings[j].ID
		})
	}
	return t
}

// Get returns the folder with the given ID, if present.
func (t *FolderTree) Get(id string) (model.Folder, bool) {
	f, ok := t.byID[id]
	return f, ok
}

// Len returns the number of folders in the tree.
func (t *FolderTree) Len() int {
	return len(t.byID)
}

// ChildrenOf returns the folders directly under parentID, sorted
// case-insensitively by name. A nil parentID selects root-level folders.
// Unknown or leaf parents yield an empty slice.
func (t *FolderTree) ChildrenOf(parentID *string) []model.Folder {
	siblings := t.children[normalizeParent(parentID)]
	out := make([]model.Folder, len(siblings))
	copy(out, siblings)
	return out
}

// Roots returns the root-level folders.
func (t *FolderTree) Roots() []model.Folder {
	return t.ChildrenOf(nil)
}

// SubtreeDocumentCount returns the documents directly in folderID plus those
// in every descendant folder. directCounts maps folder ID to its direct
// document count (see DocumentIndex.DirectCounts). The traversal tracks
// visited folders so malformed cyclic input cannot hang it.
func (t *FolderTree) SubtreeDocumentCount(folderID string, directCounts map[string]int) int {
	visited := make(map[string]bool)
	return t.subtreeCount(folderID, directCounts, visited)
}

func (t *FolderTree) subtreeCount(folderID string, directCounts map[string]int, visited map[string]bool) int {
	if visited[folderID] {
		return 0
	}
	visited[folderID] = true
	total := directCounts[folderID]
	for _, child := range t.children[folderID] {
		total += t.subtreeCount(child.ID, directCounts, visited)
	}
	return total
}

// PathTo returns the folders from a root down to folderID inclusive, for
// breadcrumb rendering. It walks parent links upward and stops at the first
// folder with no (known) parent. A visited set guards against cycles in the
// upstream data. Returns nil for an unknown folder.
func (t *FolderTree) PathTo(folderID string) []model.Folder {
	f, ok := t.byID[folderID]
	if !ok {
		return nil
	}
	path := []model.Folder{f}
	visited := map[string]bool{f.ID: true}
	for f.ParentID != nil {
		parent, ok := t.byID[*f.ParentID]
		if !ok || visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		path = append([]model.Folder{parent}, path...)
		f = parent
	}
	return path
}

// IsDescendant reports whether candidate is folderID itself or somewhere in
// its subtree. Used to validate moves: a folder must never become its own
// ancestor.
func (t *FolderTree) IsDescendant(folderID, candidate string) bool {
	visited := make(map[string]bool)
	return t.isDescendant(folderID, candidate, visited)
}

func (t *FolderTree) isDescendant(folderID, candidate string, visited map[string]bool) bool {
	if folderID == candidate {
		return true
	}
	if visited[folderID] {
		return false
	}
	visited[folderID] = true
	for _, child := range t.children[folderID] {
		if t.isDescendant(child.ID, candidate, visited) {
			return true
		}
	}
	return false
}

// Node is a folder with its nested children and contained documents, as
// served by the tree endpoint.
type Node struct {
	Folder        model.Folder     `json:"folder"`
	DocumentCount int              `json:"document_count"`
	Children      []*Node          `json:"children"`
	Documents     []model.Document `json:"documents"`
}

// Forest is the root of the nested tree: top-level folders plus documents
// that live outside any folder.
type Forest struct {
	Folders   []*Node          `json:"folders"`
	Documents []model.Document `json:"documents"`
}

// BuildForest nests the folder tree and attaches documents to their owning
// folders. DocumentCount on each node is the recursive subtree count.
func BuildForest(t *FolderTree, idx *DocumentIndex) *Forest {
	counts := idx.DirectCounts()
	visited := make(map[string]bool)
	var build func(f model.Folder) *Node
	build = func(f model.Folder) *Node {
		n := &Node{
			Folder:        f,
			DocumentCount: t.SubtreeDocumentCount(f.ID, counts),
			Children:      []*Node{},
			Documents:     idx.In(&f.ID),
		}
		for _, child := range t.children[f.ID] {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			n.Children = append(n.Children, build(child))
		}
		return n
	}

	forest := &Forest{Folders: []*Node{}, Documents: idx.In(nil)}
	for _, root := range t.Roots() {
		if visited[root.ID] {
			continue
		}
		visited[root.ID] = true
		forest.Folders = append(forest.Folders, build(root))
	}
	return forest
}
