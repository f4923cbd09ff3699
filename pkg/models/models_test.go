package models

import (
	"testing"
	"time"
)

func TestRecord(t *testing.T) {
	keys := FieldKeys{
		MatchKey:          "Deal_Name",
		Completion:        "Files_Migrated",
		WorkDriveURL:      "WorkDrive_URL",
		WorkDriveFolderID: "WorkDrive_Folder_ID",
	}

	t.Run("Accessors", func(t *testing.T) {
		rec := NewRecord(map[string]any{
			"id":                  "123",
			"Deal_Name":           "  Acme Corp  ",
			"Files_Migrated":      false,
			"WorkDrive_URL":       "https://wd/x",
			"WorkDrive_Folder_ID": "wd-1",
		}, keys)

		if rec.ID() != "123" {
			t.Errorf("ID() = %s, want 123", rec.ID())
		}
		if rec.MatchKey() != "Acme Corp" {
			t.Errorf("MatchKey() = %q, want trimmed name", rec.MatchKey())
		}
		if rec.Completed() {
			t.Error("Completed() = true, want false")
		}
		if rec.WorkDriveURL() != "https://wd/x" {
			t.Errorf("WorkDriveURL() = %s", rec.WorkDriveURL())
		}
		if rec.WorkDriveFolderID() != "wd-1" {
			t.Errorf("WorkDriveFolderID() = %s", rec.WorkDriveFolderID())
		}
	})

	t.Run("MissingFields", func(t *testing.T) {
		rec := NewRecord(map[string]any{}, keys)
		if rec.ID() != "" || rec.MatchKey() != "" || rec.Completed() {
			t.Error("missing fields should read as zero values")
		}
	})

	t.Run("NilMap", func(t *testing.T) {
		rec := NewRecord(nil, keys)
		if rec.ID() != "" {
			t.Errorf("ID() = %s, want empty", rec.ID())
		}
	})

	t.Run("WrongTypeFields", func(t *testing.T) {
		rec := NewRecord(map[string]any{
			"id":             12345,
			"Deal_Name":      []string{"not", "a", "string"},
			"Files_Migrated": "true",
		}, keys)
		if rec.ID() != "" {
			t.Errorf("ID() = %s, want empty for non-string", rec.ID())
		}
		if rec.MatchKey() != "" {
			t.Errorf("MatchKey() = %s, want empty", rec.MatchKey())
		}
		if rec.Completed() {
			t.Error("Completed() should require a real bool")
		}
	})

	t.Run("CompletedTrue", func(t *testing.T) {
		rec := NewRecord(map[string]any{"Files_Migrated": true}, keys)
		if !rec.Completed() {
			t.Error("Completed() = false, want true")
		}
	})
}

func TestTreeItem(t *testing.T) {
	t.Run("NameAndParent", func(t *testing.T) {
		item := TreeItem{Path: []string{"a", "b", "c.txt"}, Kind: KindFile}
		if item.Name() != "c.txt" {
			t.Errorf("Name() = %s, want c.txt", item.Name())
		}
		parent := item.ParentPath()
		if len(parent) != 2 || parent[0] != "a" || parent[1] != "b" {
			t.Errorf("ParentPath() = %v, want [a b]", parent)
		}
	})

	t.Run("TopLevel", func(t *testing.T) {
		item := TreeItem{Path: []string{"file.txt"}}
		if item.Name() != "file.txt" {
			t.Errorf("Name() = %s, want file.txt", item.Name())
		}
		if item.ParentPath() != nil {
			t.Errorf("ParentPath() = %v, want nil", item.ParentPath())
		}
	})

	t.Run("EmptyPathFallsBackToEntry", func(t *testing.T) {
		item := TreeItem{Entry: Entry{Name: "root.txt"}}
		if item.Name() != "root.txt" {
			t.Errorf("Name() = %s, want root.txt", item.Name())
		}
	})
}

func TestRunStatusExitCode(t *testing.T) {
	tests := []struct {
		status RunStatus
		want   int
	}{
		{StatusSuccess, 0},
		{StatusPartial, 1},
		{StatusFailed, 2},
		{RunStatus("bogus"), 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunReportFinish(t *testing.T) {
	t.Run("AllSucceeded", func(t *testing.T) {
		report := &RunReport{StartTime: time.Now()}
		report.Results = []TransferResult{
			{Success: true, ItemsDiscovered: 2, ItemsTransferred: 2},
			{Success: true, ItemsDiscovered: 1, ItemsTransferred: 1},
		}
		report.Finish()

		if report.Status != StatusSuccess {
			t.Errorf("Status = %s, want success", report.Status)
		}
		if report.Stats.RecordsProcessed != 2 || report.Stats.RecordsSucceeded != 2 {
			t.Errorf("stats = %+v", report.Stats)
		}
		if report.Stats.ItemsTransferred != 3 {
			t.Errorf("ItemsTransferred = %d, want 3", report.Stats.ItemsTransferred)
		}
		if report.Duration < 0 {
			t.Error("Duration is negative")
		}
	})

	t.Run("AllFailed", func(t *testing.T) {
		report := &RunReport{StartTime: time.Now()}
		report.Results = []TransferResult{{Success: false}, {Success: false}}
		report.Finish()
		if report.Status != StatusFailed {
			t.Errorf("Status = %s, want failed", report.Status)
		}
	})

	t.Run("Mixed", func(t *testing.T) {
		report := &RunReport{StartTime: time.Now()}
		report.Results = []TransferResult{{Success: true}, {Success: false}}
		report.Finish()
		if report.Status != StatusPartial {
			t.Errorf("Status = %s, want partial", report.Status)
		}
	})

	t.Run("EmptyRunIsSuccess", func(t *testing.T) {
		report := &RunReport{StartTime: time.Now()}
		report.Finish()
		if report.Status != StatusSuccess {
			t.Errorf("Status = %s, want success", report.Status)
		}
	})

	t.Run("PreservesExternalCounters", func(t *testing.T) {
		report := &RunReport{StartTime: time.Now()}
		report.Stats.FoldersCreated = 7
		report.Stats.BytesTransferred = 4096
		report.Results = []TransferResult{{Success: true}}
		report.Finish()
		if report.Stats.FoldersCreated != 7 {
			t.Errorf("FoldersCreated = %d, want 7", report.Stats.FoldersCreated)
		}
		if report.Stats.BytesTransferred != 4096 {
			t.Errorf("BytesTransferred = %d, want 4096", report.Stats.BytesTransferred)
		}
	})

	t.Run("DestUpdatedCounted", func(t *testing.T) {
		report := &RunReport{StartTime: time.Now()}
		report.Results = []TransferResult{
			{Success: true, FieldsUpdated: true},
			{Success: true, FieldsUpdated: true},
			{Success: false},
		}
		report.Finish()
		if report.Stats.DestUpdated != 2 {
			t.Errorf("DestUpdated = %d, want 2", report.Stats.DestUpdated)
		}
	})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "region", Message: "must be one of com, eu"}
	want := "region: must be one of com, eu"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
