package models

import (
	"time"
)

// ItemKind distinguishes files from folders during a tree walk
type ItemKind string

const (
	// KindFile is a downloadable file
	KindFile ItemKind = "file"
	// KindFolder is a container
	KindFolder ItemKind = "folder"
)

// Entry is an item in a hierarchical store (WorkDrive file or folder)
type Entry struct {
	// ID is the store-assigned identifier
	ID string

	// Name is the display name
	Name string

	// Size in bytes (files only)
	Size int64

	// ContentType is the MIME type reported by the store (files only)
	ContentType string

	// ModifiedTime is the last-modified timestamp
	ModifiedTime time.Time

	// DownloadURL is the direct download location, if the store
	// provides one
	DownloadURL string
}

// TreeItem is one node visited during a tree walk. Path is the ordered
// sequence of segments from the walk root; the last segment is the
// item's own name. The root itself contributes no segment.
type TreeItem struct {
	Path  []string
	Entry Entry
	Kind  ItemKind
}

// Name returns the item's own name (the last path segment)
func (t TreeItem) Name() string {
	if len(t.Path) == 0 {
		return t.Entry.Name
	}
	return t.Path[len(t.Path)-1]
}

// ParentPath returns the path segments leading to the item's parent,
// or nil for top-level items
func (t TreeItem) ParentPath() []string {
	if len(t.Path) <= 1 {
		return nil
	}
	return t.Path[:len(t.Path)-1]
}

// Candidate is a destination-side entity produced by a name search.
// Transient: consumed by the name resolver, never persisted.
type Candidate struct {
	ID           string
	Name         string
	ModifiedTime time.Time
}
