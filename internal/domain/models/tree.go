package models

import "time"

// Tree is the root of the folder/file tree.
type Tree struct {
	Folders []*FolderTreeNode `json:"folders"`
	Files   []FileTreeNode    `json:"files"`
}

// FolderTreeNode represents a folder in the tree with nested children.
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parent_id"`
	CreatedAt time.Time         `json:"created_at"`
	Folders   []*FolderTreeNode `json:"folders"` // Pointers for proper nesting
	Files     []FileTreeNode    `json:"files"`
}

// FileTreeNode represents a file in the tree (metadata only, no content).
type FileTreeNode struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	FolderID         *string          `json:"folder_id"`
	MimeType         string           `json:"mime_type"`
	SizeBytes        int64            `json:"size_bytes"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
