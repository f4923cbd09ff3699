package transfer

import (
	"context"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// WalkFunc visits one tree item. Returning an error stops the walk.
type WalkFunc func(item models.TreeItem) error

// Walker traverses a source folder tree depth first. Within each
// folder, files are visited before subfolders; a folder is visited
// immediately before its contents are recursed into. Each Walk is a
// fresh traversal; no state is kept between walks.
type Walker struct {
	source FolderSource
}

// NewWalker creates a walker over a folder source
func NewWalker(source FolderSource) *Walker {
	return &Walker{source: source}
}

// Walk visits every descendant of rootID. The root itself contributes
// no path segment. A listing failure anywhere aborts the walk and
// propagates; item-level error isolation is the caller's concern.
func (w *Walker) Walk(ctx context.Context, rootID string, fn WalkFunc) error {
	return w.walk(ctx, rootID, nil, fn)
}

func (w *Walker) walk(ctx context.Context, folderID string, prefix []string, fn WalkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	files, folders, err := w.source.FolderContents(ctx, folderID)
	if err != nil {
		return err
	}

	for _, f := range files {
		item := models.TreeItem{
			Path:  childPath(prefix, f.Name),
			Entry: f,
			Kind:  models.KindFile,
		}
		if err := fn(item); err != nil {
			return err
		}
	}

	for _, d := range folders {
		path := childPath(prefix, d.Name)
		item := models.TreeItem{
			Path:  path,
			Entry: d,
			Kind:  models.KindFolder,
		}
		if err := fn(item); err != nil {
			return err
		}
		if d.ID == "" {
			continue
		}
		if err := w.walk(ctx, d.ID, path, fn); err != nil {
			return err
		}
	}

	return nil
}

// childPath returns prefix + name as a fresh slice, so siblings never
// alias each other's backing arrays
func childPath(prefix []string, name string) []string {
	out := make([]string, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = name
	return out
}
