package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

func TestResolveByName(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("NoCandidates", func(t *testing.T) {
		_, ok := ResolveByName(ctx, "Acme Corp", nil, nil)
		if ok {
			t.Error("ResolveByName() ok = true, want false")
		}
	})

	t.Run("NoNameMatch", func(t *testing.T) {
		candidates := []models.Candidate{
			{ID: "1", Name: "Other Corp"},
		}
		_, ok := ResolveByName(ctx, "Acme Corp", candidates, nil)
		if ok {
			t.Error("ResolveByName() ok = true, want false")
		}
	})

	t.Run("SingleMatch", func(t *testing.T) {
		candidates := []models.Candidate{
			{ID: "1", Name: "Acme Corp"},
		}
		got, ok := ResolveByName(ctx, "Acme Corp", candidates, nil)
		if !ok || got.ID != "1" {
			t.Errorf("ResolveByName() = %v, %v, want candidate 1", got, ok)
		}
	})

	t.Run("CaseInsensitiveMatch", func(t *testing.T) {
		candidates := []models.Candidate{
			{ID: "1", Name: "ACME CORP"},
		}
		got, ok := ResolveByName(ctx, "acme corp", candidates, nil)
		if !ok || got.ID != "1" {
			t.Errorf("ResolveByName() = %v, %v, want candidate 1", got, ok)
		}
	})

	t.Run("MostRecentlyModifiedWins", func(t *testing.T) {
		candidates := []models.Candidate{
			{ID: "old", Name: "Acme Corp", ModifiedTime: base},
			{ID: "newest", Name: "Acme Corp", ModifiedTime: base.Add(2 * time.Hour)},
			{ID: "middle", Name: "acme corp", ModifiedTime: base.Add(time.Hour)},
		}
		got, ok := ResolveByName(ctx, "Acme Corp", candidates, nil)
		if !ok || got.ID != "newest" {
			t.Errorf("ResolveByName() = %s, want newest", got.ID)
		}
	})

	t.Run("EqualTimestampsKeepInputOrder", func(t *testing.T) {
		candidates := []models.Candidate{
			{ID: "first", Name: "Acme Corp", ModifiedTime: base},
			{ID: "second", Name: "Acme Corp", ModifiedTime: base},
		}
		got, ok := ResolveByName(ctx, "Acme Corp", candidates, nil)
		if !ok || got.ID != "first" {
			t.Errorf("ResolveByName() = %s, want first (stable order)", got.ID)
		}
	})

	t.Run("NonMatchesExcludedFromTieBreak", func(t *testing.T) {
		// The unrelated candidate is newer than every match but must
		// never be chosen
		candidates := []models.Candidate{
			{ID: "unrelated", Name: "Zenith Inc", ModifiedTime: base.Add(10 * time.Hour)},
			{ID: "match", Name: "Acme Corp", ModifiedTime: base},
		}
		got, ok := ResolveByName(ctx, "Acme Corp", candidates, nil)
		if !ok || got.ID != "match" {
			t.Errorf("ResolveByName() = %s, want match", got.ID)
		}
	})
}
