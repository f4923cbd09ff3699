package transfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// fakeFolder is one node of an in-memory source tree
type fakeFolder struct {
	files   []models.Entry
	folders []models.Entry
}

// fakeSource is an in-memory FolderSource. Folder contents are keyed by
// folder ID; file bytes by file ID.
type fakeSource struct {
	candidates []models.Candidate
	tree       map[string]fakeFolder
	content    map[string][]byte

	searchErr   error
	listErr     map[string]error
	downloadErr map[string]error

	downloads int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		tree:        make(map[string]fakeFolder),
		content:     make(map[string][]byte),
		listErr:     make(map[string]error),
		downloadErr: make(map[string]error),
	}
}

func (s *fakeSource) SearchFolderByName(ctx context.Context, name string) ([]models.Candidate, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	var out []models.Candidate
	for _, c := range s.candidates {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeSource) FolderContents(ctx context.Context, folderID string) ([]models.Entry, []models.Entry, error) {
	if err := s.listErr[folderID]; err != nil {
		return nil, nil, err
	}
	f := s.tree[folderID]
	return f.files, f.folders, nil
}

func (s *fakeSource) Download(ctx context.Context, fileID string) ([]byte, models.Entry, error) {
	s.downloads++
	if err := s.downloadErr[fileID]; err != nil {
		return nil, models.Entry{}, err
	}
	content, ok := s.content[fileID]
	if !ok {
		return nil, models.Entry{}, fmt.Errorf("no such file: %s", fileID)
	}
	return content, models.Entry{ID: fileID, ContentType: "application/octet-stream"}, nil
}

// fakeDest is an in-memory FolderDest. Folders are tracked as
// parentID -> name -> childID; uploads are recorded per folder.
type fakeDest struct {
	children map[string]map[string]string
	uploads  map[string][]models.Entry

	nextID    int
	listErr   error
	createErr error
	uploadErr map[string]error

	finds   int
	creates int
}

func newFakeDest() *fakeDest {
	return &fakeDest{
		children:  make(map[string]map[string]string),
		uploads:   make(map[string][]models.Entry),
		uploadErr: make(map[string]error),
	}
}

func (d *fakeDest) ListFiles(ctx context.Context, folderID string) ([]models.Entry, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.uploads[folderID], nil
}

func (d *fakeDest) FindChildFolder(ctx context.Context, parentID, name string) (string, bool, error) {
	d.finds++
	for n, id := range d.children[parentID] {
		if strings.EqualFold(n, name) {
			return id, true, nil
		}
	}
	return "", false, nil
}

func (d *fakeDest) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	if d.createErr != nil {
		return "", d.createErr
	}
	d.creates++
	d.nextID++
	id := fmt.Sprintf("dest-%d", d.nextID)
	if d.children[parentID] == nil {
		d.children[parentID] = make(map[string]string)
	}
	d.children[parentID][name] = id
	return id, nil
}

func (d *fakeDest) Upload(ctx context.Context, folderID, name string, content []byte, contentType string) (models.Entry, error) {
	if err := d.uploadErr[name]; err != nil {
		return models.Entry{}, err
	}
	entry := models.Entry{
		ID:          fmt.Sprintf("up-%s", name),
		Name:        name,
		Size:        int64(len(content)),
		ContentType: contentType,
	}
	d.uploads[folderID] = append(d.uploads[folderID], entry)
	return entry, nil
}

// fakeRecords is an in-memory RecordSource / RecordDest
type fakeRecords struct {
	records    []models.Record
	candidates []models.Candidate

	updates   map[string]map[string]any
	updateErr error
	unacked   bool
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{updates: make(map[string]map[string]any)}
}

func (r *fakeRecords) SearchPending(ctx context.Context, limit int) ([]models.Record, error) {
	if limit > 0 && limit < len(r.records) {
		return r.records[:limit], nil
	}
	return r.records, nil
}

func (r *fakeRecords) Get(ctx context.Context, id string) (models.Record, bool, error) {
	for _, rec := range r.records {
		if rec.ID() == id {
			return rec, true, nil
		}
	}
	return models.Record{}, false, nil
}

func (r *fakeRecords) FindCandidatesByName(ctx context.Context, name string) ([]models.Candidate, error) {
	var out []models.Candidate
	for _, c := range r.candidates {
		if strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRecords) UpdateFields(ctx context.Context, id string, fields map[string]any) (bool, error) {
	if r.updateErr != nil {
		return false, r.updateErr
	}
	if r.unacked {
		return false, nil
	}
	merged := r.updates[id]
	if merged == nil {
		merged = make(map[string]any)
		r.updates[id] = merged
	}
	for k, v := range fields {
		merged[k] = v
	}
	return true, nil
}

// testKeys are the field names used across the engine tests
var testKeys = models.FieldKeys{
	MatchKey:          "Deal_Name",
	Completion:        "Files_Migrated",
	WorkDriveURL:      "WorkDrive_URL",
	WorkDriveFolderID: "WorkDrive_Folder_ID",
	Trace:             "Source_Record_ID",
}

func testRecord(id, name string) models.Record {
	return models.NewRecord(map[string]any{
		"id":        id,
		"Deal_Name": name,
	}, testKeys)
}
