package transfer

import (
	"context"
	"strings"
)

// PathCache materializes destination folder chains and remembers the
// resolved IDs for the duration of one run. Keys are (scope, relative
// path), so at most one creation attempt happens per distinct path per
// run even when hundreds of files share a prefix. Single-threaded by
// design; a concurrent caller must shard per worker.
type PathCache struct {
	dest    FolderDest
	ids     map[string]string
	created int
}

// NewPathCache creates an empty cache for one run
func NewPathCache(dest FolderDest) *PathCache {
	return &PathCache{
		dest: dest,
		ids:  make(map[string]string),
	}
}

// Ensure returns the destination folder ID for the given relative path
// under rootID, creating missing segments. Empty segments return rootID
// directly with no lookup. Any segment failure aborts the call; partial
// prefixes that did resolve stay cached.
func (c *PathCache) Ensure(ctx context.Context, scope, rootID string, segments []string) (string, error) {
	if len(segments) == 0 {
		return rootID, nil
	}

	current := rootID
	for i, segment := range segments {
		key := cacheKey(scope, segments[:i+1])
		if id, ok := c.ids[key]; ok {
			current = id
			continue
		}

		id, found, err := c.dest.FindChildFolder(ctx, current, segment)
		if err != nil {
			return "", err
		}
		if !found {
			id, err = c.dest.CreateFolder(ctx, current, segment)
			if err != nil {
				return "", err
			}
			c.created++
		}

		c.ids[key] = id
		current = id
	}

	return current, nil
}

// Created reports how many folders this run actually created
func (c *PathCache) Created() int {
	return c.created
}

// cacheKey lowers the segments so lookups match the destination
// store's case-insensitive sibling comparison
func cacheKey(scope string, segments []string) string {
	lowered := make([]string, len(segments))
	for i, s := range segments {
		lowered[i] = strings.ToLower(s)
	}
	return scope + "\x00" + strings.Join(lowered, "/")
}
