package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/logging"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// FieldSync drives the field-sync flow, the configuration variant of
// the engine that copies WorkDrive reference fields from a source CRM
// record to its same-named destination record instead of mirroring a
// folder tree. Resolution, retry and the completion write-back follow
// the same state machine as the migrate flow.
type FieldSync struct {
	source RecordSource
	dest   RecordDest
	keys   models.FieldKeys
	policy Policy
	logger logging.Logger
	dryRun bool
}

// NewFieldSync creates the field-sync orchestrator
func NewFieldSync(source RecordSource, dest RecordDest, keys models.FieldKeys, policy Policy, logger logging.Logger, dryRun bool) *FieldSync {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &FieldSync{
		source: source,
		dest:   dest,
		keys:   keys,
		policy: policy,
		logger: logger,
		dryRun: dryRun,
	}
}

// ProcessBatch processes records sequentially into a run report
func (f *FieldSync) ProcessBatch(ctx context.Context, records []models.Record) *models.RunReport {
	report := &models.RunReport{
		RunID:     uuid.New().String(),
		Mode:      models.ModeFieldSync,
		DryRun:    f.dryRun,
		StartTime: time.Now(),
	}

	for _, rec := range records {
		report.Results = append(report.Results, f.ProcessRecord(ctx, rec))
	}

	report.Finish()
	return report
}

// ProcessRecord syncs one record: resolve the destination record by
// name, copy the WorkDrive fields, then tick the source checkbox
func (f *FieldSync) ProcessRecord(ctx context.Context, rec models.Record) models.TransferResult {
	result := models.TransferResult{
		RecordID: rec.ID(),
		MatchKey: rec.MatchKey(),
	}

	if result.RecordID == "" {
		result.RecordID = "unknown"
		result.ErrorMessage = "record missing id"
		return result
	}
	if result.MatchKey == "" {
		result.ErrorMessage = "record has empty match key"
		f.logger.Warn(ctx, "skipping record", logging.Fields{
			"record_id": result.RecordID,
			"reason":    result.ErrorMessage,
		})
		return result
	}

	workdriveURL := rec.WorkDriveURL()
	workdriveFolderID := rec.WorkDriveFolderID()
	if workdriveURL == "" && workdriveFolderID == "" {
		result.ErrorMessage = "no workdrive values present on source record"
		f.logger.Warn(ctx, "skipping record", logging.Fields{
			"record_id": result.RecordID,
			"reason":    result.ErrorMessage,
		})
		return result
	}

	f.logger.Info(ctx, "record start", logging.Fields{
		"record_id": result.RecordID,
		"name":      result.MatchKey,
	})

	// Resolve the destination record
	var candidates []models.Candidate
	err := f.policy.Do(ctx, "search record", func() error {
		var err error
		candidates, err = f.dest.FindCandidatesByName(ctx, result.MatchKey)
		return err
	})
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("record search failed: %v", err)
		f.logger.Error(ctx, "record failed", err, logging.Fields{"record_id": result.RecordID})
		return result
	}

	destRec, ok := ResolveByName(ctx, result.MatchKey, candidates, f.logger)
	if !ok {
		result.ErrorMessage = fmt.Sprintf("no destination record named %q", result.MatchKey)
		f.logger.Warn(ctx, "record not found", logging.Fields{
			"record_id": result.RecordID,
			"name":      result.MatchKey,
		})
		return result
	}
	result.Resolved = true
	result.DestinationID = destRec.ID

	// Copy fields to the destination record
	fields := map[string]any{}
	if workdriveURL != "" {
		fields[f.keys.WorkDriveURL] = workdriveURL
	}
	if workdriveFolderID != "" {
		fields[f.keys.WorkDriveFolderID] = workdriveFolderID
	}
	if f.keys.Trace != "" {
		// Source record ID, for traceability on the destination side
		fields[f.keys.Trace] = result.RecordID
	}

	if f.dryRun {
		result.FieldsUpdated = true
		f.logger.Info(ctx, "dry-run: would update destination record", logging.Fields{
			"record_id": result.RecordID,
			"dest_id":   destRec.ID,
		})
	} else {
		var acked bool
		err := f.policy.Do(ctx, "update destination", func() error {
			var err error
			acked, err = f.dest.UpdateFields(ctx, destRec.ID, fields)
			return err
		})
		if err != nil {
			result.ErrorMessage = fmt.Sprintf("destination update failed: %v", err)
			f.logger.Error(ctx, "record failed", err, logging.Fields{"record_id": result.RecordID})
			return result
		}
		if !acked {
			result.ErrorMessage = "destination update not acknowledged"
			return result
		}
		result.FieldsUpdated = true
	}

	// Tick the source checkbox only after the destination write landed
	if f.dryRun {
		result.CompletionWritten = true
		f.logger.Info(ctx, "dry-run: would set completion checkbox", logging.Fields{
			"record_id": result.RecordID,
		})
	} else {
		var acked bool
		err := f.policy.Do(ctx, "update completion", func() error {
			var err error
			acked, err = f.source.UpdateFields(ctx, result.RecordID, map[string]any{
				f.keys.Completion: true,
			})
			return err
		})
		if err != nil {
			result.ErrorMessage = fmt.Sprintf("completion write-back failed: %v", err)
			f.logger.Error(ctx, "write-back failed", err, logging.Fields{"record_id": result.RecordID})
		} else if !acked {
			result.ErrorMessage = "completion write-back not acknowledged"
		} else {
			result.CompletionWritten = true
		}
	}

	result.Success = result.Resolved && result.FieldsUpdated && result.CompletionWritten

	f.logger.Info(ctx, "record complete", logging.Fields{
		"record_id":    result.RecordID,
		"success":      result.Success,
		"dest_updated": result.FieldsUpdated,
		"checkbox":     result.CompletionWritten,
	})
	return result
}
