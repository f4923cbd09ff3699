package models

import (
	"time"
)

// RunMode identifies which reconciliation flow a run executes
type RunMode string

const (
	// ModeMigrate mirrors WorkDrive folder trees across tenants
	ModeMigrate RunMode = "migrate"
	// ModeFieldSync copies WorkDrive reference fields between CRM records
	ModeFieldSync RunMode = "fieldsync"
)

// TransferResult is the outcome of processing one source record.
// Immutable once the orchestrator finishes the record.
type TransferResult struct {
	// RecordID is the source CRM record identifier
	RecordID string

	// MatchKey is the name used to resolve the destination
	MatchKey string

	// Resolved indicates a destination entity was found
	Resolved bool

	// DestinationID is the resolved destination folder or record ID
	DestinationID string

	// ItemsDiscovered counts files found by the tree walk
	ItemsDiscovered int

	// ItemsTransferred counts files uploaded successfully
	ItemsTransferred int

	// ItemsFailed counts files that failed to transfer
	ItemsFailed int

	// FieldsUpdated indicates the destination record fields were
	// written (field-sync flow)
	FieldsUpdated bool

	// CompletionWritten indicates the completion checkbox was written
	// back to the source record
	CompletionWritten bool

	// Success is derived: resolution succeeded, the items attempted
	// met the completion rule, and the write-back landed
	Success bool

	// ErrorMessage describes the terminal failure, if any
	ErrorMessage string
}

// RunStatus represents the overall outcome of a batch run
type RunStatus string

const (
	// StatusSuccess indicates every record succeeded
	StatusSuccess RunStatus = "success"
	// StatusPartial indicates some records failed
	StatusPartial RunStatus = "partial"
	// StatusFailed indicates every record failed
	StatusFailed RunStatus = "failed"
)

// ExitCode returns the process exit code for the run status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	default:
		return 2
	}
}

// Statistics aggregates per-record outcomes for the run summary
type Statistics struct {
	RecordsProcessed int
	RecordsSucceeded int
	RecordsFailed    int

	ItemsDiscovered  int
	ItemsTransferred int
	ItemsFailed      int

	FoldersCreated int
	DestUpdated    int

	BytesTransferred int64
}

// RunReport is the result of one batch run
type RunReport struct {
	// RunID uniquely identifies this run in logs and output
	RunID string

	Mode   RunMode
	DryRun bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Results []TransferResult
	Stats   Statistics
	Status  RunStatus
}

// Finish computes statistics, status and timing from the collected
// results. Call once, after the last record.
func (r *RunReport) Finish() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	stats := Statistics{}
	for _, res := range r.Results {
		stats.RecordsProcessed++
		if res.Success {
			stats.RecordsSucceeded++
		} else {
			stats.RecordsFailed++
		}
		stats.ItemsDiscovered += res.ItemsDiscovered
		stats.ItemsTransferred += res.ItemsTransferred
		stats.ItemsFailed += res.ItemsFailed
		if res.FieldsUpdated {
			stats.DestUpdated++
		}
	}
	stats.FoldersCreated = r.Stats.FoldersCreated
	stats.BytesTransferred = r.Stats.BytesTransferred
	r.Stats = stats

	switch {
	case stats.RecordsProcessed == 0 || stats.RecordsFailed == 0:
		r.Status = StatusSuccess
	case stats.RecordsSucceeded == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}

// ValidationError represents an invalid configuration value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
