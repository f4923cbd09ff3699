package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// HumanFormatter renders a readable run summary
type HumanFormatter struct{}

// NewHumanFormatter creates a human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// Write renders the report
func (f *HumanFormatter) Write(w io.Writer, report *models.RunReport) error {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Migration Summary")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Run ID:     %s\n", report.RunID)
	fmt.Fprintf(w, "Mode:       %s\n", report.Mode)
	if report.DryRun {
		fmt.Fprintln(w, "Dry run:    yes (no changes were written)")
	}
	fmt.Fprintf(w, "Duration:   %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintln(w)

	stats := report.Stats
	fmt.Fprintf(w, "Records processed:  %d\n", stats.RecordsProcessed)
	fmt.Fprintf(w, "Records succeeded:  %d\n", stats.RecordsSucceeded)
	fmt.Fprintf(w, "Records failed:     %d\n", stats.RecordsFailed)

	switch report.Mode {
	case models.ModeMigrate:
		fmt.Fprintf(w, "Items discovered:   %d\n", stats.ItemsDiscovered)
		fmt.Fprintf(w, "Items transferred:  %d\n", stats.ItemsTransferred)
		fmt.Fprintf(w, "Items failed:       %d\n", stats.ItemsFailed)
		fmt.Fprintf(w, "Folders created:    %d\n", stats.FoldersCreated)
		fmt.Fprintf(w, "Bytes transferred:  %s\n", FormatBytes(stats.BytesTransferred))
	case models.ModeFieldSync:
		fmt.Fprintf(w, "Destination records updated: %d\n", stats.DestUpdated)
	}

	failed := failedResults(report)
	if len(failed) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failed records:")
		for _, r := range failed {
			fmt.Fprintf(w, "  %s (%s): %s\n", r.RecordID, r.MatchKey, r.ErrorMessage)
		}
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Status: %s\n", report.Status)
	return nil
}

func failedResults(report *models.RunReport) []models.TransferResult {
	var out []models.TransferResult
	for _, r := range report.Results {
		if !r.Success {
			out = append(out, r)
		}
	}
	return out
}
