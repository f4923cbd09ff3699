package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/logging"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// ServiceConfig holds the run-level settings of the migrate flow
type ServiceConfig struct {
	// DestRootID is the destination folder mirrored trees land under
	DestRootID string

	// CompletionField is the CRM field API name of the checkbox
	// written back when a record completes
	CompletionField string

	// DryRun simulates every mutating step; read-only lookups still
	// execute so diagnostics stay accurate
	DryRun bool
}

// Service drives the file-tree migration flow: for each source record,
// resolve the matching source folder by name, mirror its tree into the
// destination store, and write the completion checkbox back. Records
// are processed sequentially; one record's failure never aborts the
// batch.
type Service struct {
	records  RecordSource
	source   FolderSource
	dest     FolderDest
	policy   Policy
	logger   logging.Logger
	cfg      ServiceConfig
	walker   *Walker
	cache    *PathCache
	guard    *NameGuard
	progress Progress

	bytesTransferred int64
}

// NewService creates the migrate-flow orchestrator
func NewService(records RecordSource, source FolderSource, dest FolderDest, policy Policy, logger logging.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Service{
		records: records,
		source:  source,
		dest:    dest,
		policy:  policy,
		logger:  logger,
		cfg:     cfg,
		walker:  NewWalker(source),
		cache:   NewPathCache(dest),
		guard:   &NameGuard{Dest: dest, Logger: logger},
	}
}

// SetProgress attaches an item-transfer progress display
func (s *Service) SetProgress(p Progress) {
	s.progress = p
}

// ProcessBatch processes records sequentially and aggregates a run
// report. The loop itself never fails because of a single record.
func (s *Service) ProcessBatch(ctx context.Context, records []models.Record) *models.RunReport {
	report := &models.RunReport{
		RunID:     uuid.New().String(),
		Mode:      models.ModeMigrate,
		DryRun:    s.cfg.DryRun,
		StartTime: time.Now(),
	}

	for _, rec := range records {
		report.Results = append(report.Results, s.ProcessRecord(ctx, rec))
	}

	report.Stats.FoldersCreated = s.cache.Created()
	report.Stats.BytesTransferred = s.bytesTransferred
	report.Finish()
	return report
}

// ProcessRecord runs the per-record state machine: validate, resolve,
// walk, transfer, derive the completion signal, write back
func (s *Service) ProcessRecord(ctx context.Context, rec models.Record) models.TransferResult {
	result := models.TransferResult{
		RecordID: rec.ID(),
		MatchKey: rec.MatchKey(),
	}

	// Validate before touching the network
	if result.RecordID == "" {
		result.RecordID = "unknown"
		result.ErrorMessage = "record missing id"
		return result
	}
	if result.MatchKey == "" {
		result.ErrorMessage = "record has empty match key"
		s.logger.Warn(ctx, "skipping record", logging.Fields{
			"record_id": result.RecordID,
			"reason":    result.ErrorMessage,
		})
		return result
	}

	s.logger.Info(ctx, "record start", logging.Fields{
		"record_id": result.RecordID,
		"name":      result.MatchKey,
	})

	// Resolve the source folder
	folder, ok, err := s.resolveFolder(ctx, result.MatchKey)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("folder search failed: %v", err)
		s.logger.Error(ctx, "record failed", err, logging.Fields{"record_id": result.RecordID})
		return result
	}
	if !ok {
		result.ErrorMessage = fmt.Sprintf("no folder named %q", result.MatchKey)
		s.logger.Warn(ctx, "folder not found", logging.Fields{
			"record_id": result.RecordID,
			"name":      result.MatchKey,
		})
		return result
	}
	result.Resolved = true
	result.DestinationID = folder.ID
	s.logger.Info(ctx, "folder resolved", logging.Fields{
		"record_id": result.RecordID,
		"folder_id": folder.ID,
	})

	// Walk the tree: collect files, materialize folders as they appear
	// so empty directories mirror too
	var files []models.TreeItem
	walkErr := s.walker.Walk(ctx, folder.ID, func(item models.TreeItem) error {
		switch item.Kind {
		case models.KindFolder:
			s.materializeFolder(ctx, folder.ID, item)
		case models.KindFile:
			result.ItemsDiscovered++
			files = append(files, item)
		}
		return nil
	})
	if walkErr != nil {
		result.ErrorMessage = fmt.Sprintf("folder traversal failed: %v", walkErr)
		s.logger.Error(ctx, "record failed", walkErr, logging.Fields{"record_id": result.RecordID})
		return result
	}

	s.logger.Info(ctx, "items discovered", logging.Fields{
		"record_id": result.RecordID,
		"count":     result.ItemsDiscovered,
	})

	// Transfer each file; a single bad item degrades the record but
	// never aborts the iteration
	if s.progress != nil && len(files) > 0 {
		s.progress.Start(len(files))
	}
	for _, item := range files {
		s.transferFile(ctx, &result, folder.ID, item)
		if s.progress != nil {
			s.progress.Increment()
		}
	}
	if s.progress != nil && len(files) > 0 {
		s.progress.Finish()
	}

	// Completion signal: at least one item transferred, or nothing to
	// transfer at all
	completed := result.ItemsTransferred > 0 || result.ItemsDiscovered == 0
	if !completed {
		result.ErrorMessage = fmt.Sprintf("all %d items failed", result.ItemsFailed)
	}

	// Write-back is part of the contract: a failure here downgrades
	// the record even when items transferred
	if completed {
		result.CompletionWritten = s.writeCompletion(ctx, &result)
	}

	result.Success = result.Resolved && completed && result.CompletionWritten

	s.logger.Info(ctx, "record complete", logging.Fields{
		"record_id":   result.RecordID,
		"success":     result.Success,
		"transferred": result.ItemsTransferred,
		"failed":      result.ItemsFailed,
		"checkbox":    result.CompletionWritten,
	})
	return result
}

func (s *Service) resolveFolder(ctx context.Context, name string) (models.Candidate, bool, error) {
	var candidates []models.Candidate
	err := s.policy.Do(ctx, "search folder", func() error {
		var err error
		candidates, err = s.source.SearchFolderByName(ctx, name)
		return err
	})
	if err != nil {
		return models.Candidate{}, false, err
	}

	folder, ok := ResolveByName(ctx, name, candidates, s.logger)
	return folder, ok, nil
}

// materializeFolder creates the destination chain for a folder item.
// Failure is logged and swallowed: files below will fail their own
// ensure and be counted there.
func (s *Service) materializeFolder(ctx context.Context, scope string, item models.TreeItem) {
	if s.cfg.DryRun {
		return
	}
	err := s.policy.Do(ctx, "ensure folder path", func() error {
		_, err := s.cache.Ensure(ctx, scope, s.cfg.DestRootID, item.Path)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "folder materialization failed", err, logging.Fields{
			"path": strings.Join(item.Path, "/"),
		})
	}
}

func (s *Service) transferFile(ctx context.Context, result *models.TransferResult, scope string, item models.TreeItem) {
	name := item.Name()
	s.logger.Info(ctx, "transfer start", logging.Fields{
		"record_id": result.RecordID,
		"file":      name,
		"file_id":   item.Entry.ID,
	})

	if s.cfg.DryRun {
		result.ItemsTransferred++
		s.logger.Info(ctx, "dry-run: would transfer", logging.Fields{
			"record_id": result.RecordID,
			"file":      name,
		})
		return
	}

	fail := func(stage string, err error) {
		result.ItemsFailed++
		s.logger.Error(ctx, "transfer failed", err, logging.Fields{
			"record_id": result.RecordID,
			"file":      name,
			"stage":     stage,
		})
	}

	var folderID string
	err := s.policy.Do(ctx, "ensure folder path", func() error {
		var err error
		folderID, err = s.cache.Ensure(ctx, scope, s.cfg.DestRootID, item.ParentPath())
		return err
	})
	if err != nil {
		fail("ensure", err)
		return
	}

	var content []byte
	var meta models.Entry
	err = s.policy.Do(ctx, "download", func() error {
		var err error
		content, meta, err = s.source.Download(ctx, item.Entry.ID)
		return err
	})
	if err != nil {
		fail("download", err)
		return
	}

	finalName := s.guard.FinalName(ctx, folderID, name)

	var uploaded models.Entry
	err = s.policy.Do(ctx, "upload", func() error {
		var err error
		uploaded, err = s.dest.Upload(ctx, folderID, finalName, content, meta.ContentType)
		return err
	})
	if err != nil {
		fail("upload", err)
		return
	}

	result.ItemsTransferred++
	s.bytesTransferred += int64(len(content))
	s.logger.Info(ctx, "transfer success", logging.Fields{
		"record_id":    result.RecordID,
		"file":         finalName,
		"dest_file_id": uploaded.ID,
		"size":         len(content),
	})
}

func (s *Service) writeCompletion(ctx context.Context, result *models.TransferResult) bool {
	if s.cfg.DryRun {
		s.logger.Info(ctx, "dry-run: would set completion checkbox", logging.Fields{
			"record_id": result.RecordID,
		})
		return true
	}

	var acked bool
	err := s.policy.Do(ctx, "update completion", func() error {
		var err error
		acked, err = s.records.UpdateFields(ctx, result.RecordID, map[string]any{
			s.cfg.CompletionField: true,
		})
		return err
	})
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("completion write-back failed: %v", err)
		s.logger.Error(ctx, "write-back failed", err, logging.Fields{"record_id": result.RecordID})
		return false
	}
	if !acked {
		result.ErrorMessage = "completion write-back not acknowledged"
		return false
	}
	return true
}
