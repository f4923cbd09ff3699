package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/logging"
)

// MaxNameLength is the longest name written to the destination store
const MaxNameLength = 255

// dedupeStamp is a second-resolution timestamp; uniqueness without a
// counter
const dedupeStamp = "20060102150405"

var unsafeChars = strings.NewReplacer(
	`\`, "_",
	`/`, "_",
	`:`, "_",
	`*`, "_",
	`?`, "_",
	`"`, "_",
	`<`, "_",
	`>`, "_",
	`|`, "_",
)

// Sanitize makes a name filesystem-safe: reserved characters become
// underscores and over-long names are truncated with the final
// extension preserved
func Sanitize(name string) string {
	safe := unsafeChars.Replace(name)
	if len(safe) <= MaxNameLength {
		return safe
	}

	stem, ext := splitExt(safe)
	if ext != "" {
		keep := MaxNameLength - len(ext)
		if keep < 1 {
			return safe[:MaxNameLength]
		}
		return stem[:keep] + ext
	}
	return safe[:MaxNameLength]
}

// splitExt splits a name into stem and extension (including the dot).
// Names without a dot, or starting with one, have no extension.
func splitExt(name string) (stem, ext string) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// NameGuard decides the final name for an item entering a destination
// folder: the sanitized candidate when it doesn't collide with an
// existing sibling, or a timestamped variant when it does. If the
// sibling listing itself fails the guard fails open and keeps the
// sanitized original: best effort, not a correctness guarantee.
type NameGuard struct {
	// Dest lists existing siblings
	Dest FolderDest

	// Logger records collisions and fail-open listing errors
	Logger logging.Logger

	// Now supplies the collision timestamp; nil uses time.Now
	Now func() time.Time
}

// FinalName returns the name to upload under in folderID
func (g *NameGuard) FinalName(ctx context.Context, folderID, candidate string) string {
	name := Sanitize(candidate)

	existing, err := g.Dest.ListFiles(ctx, folderID)
	if err != nil {
		if g.Logger != nil {
			g.Logger.Warn(ctx, "sibling listing failed, keeping original name", logging.Fields{
				"folder_id": folderID,
				"name":      name,
				"error":     err.Error(),
			})
		}
		return name
	}

	collision := false
	for _, e := range existing {
		if strings.EqualFold(e.Name, name) {
			collision = true
			break
		}
	}
	if !collision {
		return name
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	stem, ext := splitExt(name)
	stamped := fmt.Sprintf("%s_%s%s", stem, now().Format(dedupeStamp), ext)

	if g.Logger != nil {
		g.Logger.Info(ctx, "name collision, renaming", logging.Fields{
			"folder_id": folderID,
			"original":  name,
			"renamed":   stamped,
		})
	}
	return Sanitize(stamped)
}
