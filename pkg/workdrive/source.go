package workdrive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/zoho"
)

// Source reads the originating tenant's WorkDrive: folder search scoped
// to one team folder, folder listings and file downloads
type Source struct {
	api          *zoho.Client
	teamFolderID string
}

// NewSource creates a source client scoped to one team folder
func NewSource(api *zoho.Client, teamFolderID string) *Source {
	return &Source{api: api, teamFolderID: teamFolderID}
}

// SearchFolderByName searches the team folder for folders matching
// name. The API search is fuzzy; results are returned as candidates for
// the name resolver to filter and rank.
func (s *Source) SearchFolderByName(ctx context.Context, name string) ([]models.Candidate, error) {
	query := url.Values{}
	query.Set("teamfolderid", s.teamFolderID)
	query.Set("search", name)
	query.Set("type", "folder")

	var resp struct {
		Data []item `json:"data"`
	}
	if err := s.api.GetJSON(ctx, "/workdrive/api/v1/folders", query, &resp); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(resp.Data))
	for _, it := range resp.Data {
		candidates = append(candidates, it.candidate())
	}
	return candidates, nil
}

// FolderContents lists the immediate files and subfolders of a folder
func (s *Source) FolderContents(ctx context.Context, folderID string) (files, folders []models.Entry, err error) {
	var resp struct {
		Data struct {
			Files   []item `json:"files"`
			Folders []item `json:"folders"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/workdrive/api/v1/folders/%s/files", folderID)
	if err := s.api.GetJSON(ctx, path, nil, &resp); err != nil {
		return nil, nil, err
	}
	return entries(resp.Data.Files), entries(resp.Data.Folders), nil
}

// Download fetches a file's bytes and its metadata
func (s *Source) Download(ctx context.Context, fileID string) ([]byte, models.Entry, error) {
	var resp struct {
		Data item `json:"data"`
	}
	path := fmt.Sprintf("/workdrive/api/v1/files/%s", fileID)
	if err := s.api.GetJSON(ctx, path, nil, &resp); err != nil {
		return nil, models.Entry{}, err
	}

	meta := resp.Data.entry()
	target := meta.DownloadURL
	if target == "" {
		target = fmt.Sprintf("/workdrive/api/v1/files/%s/download", fileID)
	}

	content, err := s.api.Download(ctx, target)
	if err != nil {
		return nil, models.Entry{}, err
	}
	return content, meta, nil
}
