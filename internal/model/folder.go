package model

import "time"

// Folder is a node in the document library's folder forest. ParentID is nil
// for a root-level folder; multiple roots are allowed. The parent relation
// must stay acyclic; the service validates that on create and move.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id"` // nil = root level
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot reports whether the folder sits at the top level of the forest.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// CreateFolderRequest is the payload for creating a folder.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

// UpdateFolderRequest renames and/or moves a folder. Nil fields are left
// unchanged; MoveToRoot moves the folder to the top level (a nil ParentID
// alone cannot express that).
type UpdateFolderRequest struct {
	Name       *string `json:"name,omitempty"`
	ParentID   *string `json:"parent_id,omitempty"`
	MoveToRoot bool    `json:"move_to_root,omitempty"`
}
