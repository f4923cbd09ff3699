package transfer

import (
	"context"
	"sort"
	"strings"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/logging"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// ResolveByName picks exactly one candidate whose name equals name,
// case insensitively. Zero matches is a normal empty outcome, reported
// via the bool. Multiple matches tie-break on the most recently
// modified candidate; equal timestamps keep the input order, so the
// outcome is reproducible for identical input. Discarded alternatives
// are logged as a warning.
func ResolveByName(ctx context.Context, name string, candidates []models.Candidate, logger logging.Logger) (models.Candidate, bool) {
	matches := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.EqualFold(c.Name, name) {
			matches = append(matches, c)
		}
	}

	if len(matches) == 0 {
		return models.Candidate{}, false
	}

	if len(matches) == 1 {
		return matches[0], true
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ModifiedTime.After(matches[j].ModifiedTime)
	})

	if logger != nil {
		discarded := make([]string, 0, len(matches)-1)
		for _, m := range matches[1:] {
			discarded = append(discarded, m.ID)
		}
		logger.Warn(ctx, "multiple name matches, using most recently modified", logging.Fields{
			"name":      name,
			"chosen":    matches[0].ID,
			"discarded": strings.Join(discarded, ","),
		})
	}

	return matches[0], true
}
