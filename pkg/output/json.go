package output

import (
	"encoding/json"
	"io"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// JSONFormatter renders the run report as indented JSON, one document
// per run, suitable for piping into other tooling
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

// jsonReport is the stable wire shape of a run report
type jsonReport struct {
	RunID    string               `json:"run_id"`
	Mode     models.RunMode       `json:"mode"`
	DryRun   bool                 `json:"dry_run"`
	Status   models.RunStatus     `json:"status"`
	Duration string               `json:"duration"`
	Stats    jsonStats            `json:"stats"`
	Records  []jsonTransferResult `json:"records"`
}

type jsonStats struct {
	RecordsProcessed int    `json:"records_processed"`
	RecordsSucceeded int    `json:"records_succeeded"`
	RecordsFailed    int    `json:"records_failed"`
	ItemsDiscovered  int    `json:"items_discovered"`
	ItemsTransferred int    `json:"items_transferred"`
	ItemsFailed      int    `json:"items_failed"`
	FoldersCreated   int    `json:"folders_created"`
	DestUpdated      int    `json:"dest_updated"`
	BytesTransferred int64  `json:"bytes_transferred"`
	BytesHuman       string `json:"bytes_human"`
}

type jsonTransferResult struct {
	RecordID          string `json:"record_id"`
	MatchKey          string `json:"match_key"`
	Resolved          bool   `json:"resolved"`
	DestinationID     string `json:"destination_id,omitempty"`
	ItemsDiscovered   int    `json:"items_discovered"`
	ItemsTransferred  int    `json:"items_transferred"`
	ItemsFailed       int    `json:"items_failed"`
	FieldsUpdated     bool   `json:"fields_updated"`
	CompletionWritten bool   `json:"completion_written"`
	Success           bool   `json:"success"`
	Error             string `json:"error,omitempty"`
}

// Write renders the report
func (f *JSONFormatter) Write(w io.Writer, report *models.RunReport) error {
	out := jsonReport{
		RunID:    report.RunID,
		Mode:     report.Mode,
		DryRun:   report.DryRun,
		Status:   report.Status,
		Duration: report.Duration.String(),
		Stats: jsonStats{
			RecordsProcessed: report.Stats.RecordsProcessed,
			RecordsSucceeded: report.Stats.RecordsSucceeded,
			RecordsFailed:    report.Stats.RecordsFailed,
			ItemsDiscovered:  report.Stats.ItemsDiscovered,
			ItemsTransferred: report.Stats.ItemsTransferred,
			ItemsFailed:      report.Stats.ItemsFailed,
			FoldersCreated:   report.Stats.FoldersCreated,
			DestUpdated:      report.Stats.DestUpdated,
			BytesTransferred: report.Stats.BytesTransferred,
			BytesHuman:       FormatBytes(report.Stats.BytesTransferred),
		},
	}

	for _, r := range report.Results {
		out.Records = append(out.Records, jsonTransferResult{
			RecordID:          r.RecordID,
			MatchKey:          r.MatchKey,
			Resolved:          r.Resolved,
			DestinationID:     r.DestinationID,
			ItemsDiscovered:   r.ItemsDiscovered,
			ItemsTransferred:  r.ItemsTransferred,
			ItemsFailed:       r.ItemsFailed,
			FieldsUpdated:     r.FieldsUpdated,
			CompletionWritten: r.CompletionWritten,
			Success:           r.Success,
			Error:             r.ErrorMessage,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
