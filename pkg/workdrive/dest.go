package workdrive

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/zoho"
)

// Dest writes to the destination tenant's WorkDrive: folder creation,
// sibling listings for the duplicate-name guard, and uploads
type Dest struct {
	api *zoho.Client
}

// NewDest creates a destination client
func NewDest(api *zoho.Client) *Dest {
	return &Dest{api: api}
}

// ListFiles lists the files directly inside a folder
func (d *Dest) ListFiles(ctx context.Context, folderID string) ([]models.Entry, error) {
	query := url.Values{}
	query.Set("type", "file")

	var resp struct {
		Data struct {
			Files []item `json:"files"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/workdrive/api/v1/folders/%s/files", folderID)
	if err := d.api.GetJSON(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return entries(resp.Data.Files), nil
}

// FindChildFolder looks for a direct subfolder by name, case
// insensitively. Absence is reported via the bool, not as an error.
func (d *Dest) FindChildFolder(ctx context.Context, parentID, name string) (string, bool, error) {
	query := url.Values{}
	query.Set("type", "folder")

	var resp struct {
		Data struct {
			Folders []item `json:"folders"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/workdrive/api/v1/folders/%s/files", parentID)
	if err := d.api.GetJSON(ctx, path, query, &resp); err != nil {
		return "", false, err
	}

	for _, folder := range resp.Data.Folders {
		if strings.EqualFold(folder.Name, name) {
			return folder.ID, true, nil
		}
	}
	return "", false, nil
}

// CreateFolder creates a subfolder and returns its ID
func (d *Dest) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	body := map[string]string{
		"name":     name,
		"parentId": parentID,
	}

	var resp struct {
		Data item `json:"data"`
	}
	if err := d.api.PostJSON(ctx, "/workdrive/api/v1/folders", nil, body, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("workdrive: create folder %q: response carried no id", name)
	}
	return resp.Data.ID, nil
}

// Upload stores a file in a folder and returns the created entry
func (d *Dest) Upload(ctx context.Context, folderID, name string, content []byte, contentType string) (models.Entry, error) {
	fields := map[string]string{"parentId": folderID}

	var resp struct {
		Data item `json:"data"`
	}
	err := d.api.UploadMultipart(ctx, "/workdrive/api/v1/files/upload", fields,
		"file", name, content, contentType, &resp)
	if err != nil {
		return models.Entry{}, err
	}
	return resp.Data.entry(), nil
}

// ValidateFolder checks that a folder exists and is accessible
func (d *Dest) ValidateFolder(ctx context.Context, folderID string) (bool, error) {
	path := fmt.Sprintf("/workdrive/api/v1/folders/%s", folderID)
	err := d.api.GetJSON(ctx, path, nil, nil)
	if err != nil {
		if zoho.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
