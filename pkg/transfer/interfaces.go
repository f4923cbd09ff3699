// Package transfer implements the reconciliation engine: eligibility,
// name resolution, tree walking, destination path materialization,
// duplicate-name handling, retry, and the per-record state machine.
// It depends only on the narrow store interfaces below; pkg/crm and
// pkg/workdrive provide the Zoho-backed implementations.
package transfer

import (
	"context"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// RecordSource is the CRM module driving the run: it supplies pending
// records and receives the completion write-back
type RecordSource interface {
	// SearchPending returns unprocessed records with a non-empty
	// match key. limit <= 0 means no limit.
	SearchPending(ctx context.Context, limit int) ([]models.Record, error)

	// Get fetches one record; absence is the bool, not an error
	Get(ctx context.Context, id string) (models.Record, bool, error)

	// UpdateFields writes a field map to one record
	UpdateFields(ctx context.Context, id string, fields map[string]any) (bool, error)
}

// FolderSource is the hierarchical store items are read from
type FolderSource interface {
	// SearchFolderByName returns candidate folders; the resolver
	// filters and ranks them
	SearchFolderByName(ctx context.Context, name string) ([]models.Candidate, error)

	// FolderContents lists a folder's immediate files and subfolders
	FolderContents(ctx context.Context, folderID string) (files, folders []models.Entry, err error)

	// Download fetches a file's bytes and metadata
	Download(ctx context.Context, fileID string) ([]byte, models.Entry, error)
}

// FolderDest is the hierarchical store items are written to
type FolderDest interface {
	// ListFiles lists the files directly inside a folder
	ListFiles(ctx context.Context, folderID string) ([]models.Entry, error)

	// FindChildFolder locates a direct subfolder by name, case
	// insensitively; absence is the bool, not an error
	FindChildFolder(ctx context.Context, parentID, name string) (string, bool, error)

	// CreateFolder creates a subfolder and returns its ID
	CreateFolder(ctx context.Context, parentID, name string) (string, error)

	// Upload stores a file in a folder
	Upload(ctx context.Context, folderID, name string, content []byte, contentType string) (models.Entry, error)
}

// RecordDest is the CRM module receiving synced fields (field-sync flow)
type RecordDest interface {
	// FindCandidatesByName returns records whose match key equals name
	FindCandidatesByName(ctx context.Context, name string) ([]models.Candidate, error)

	// UpdateFields writes a field map to one record
	UpdateFields(ctx context.Context, id string, fields map[string]any) (bool, error)
}

// Progress receives item-transfer notifications for display purposes
type Progress interface {
	// Start announces the number of items about to be transferred
	Start(total int)

	// Increment marks one item finished (transferred or failed)
	Increment()

	// Finish closes out the display
	Finish()
}
