// Package workdrive wraps the Zoho WorkDrive v1 API for the source and
// destination tenants.
package workdrive

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// flexTime accepts the timestamp shapes WorkDrive responses mix:
// RFC 3339 strings and epoch numbers (seconds or milliseconds)
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			// Not a timestamp we recognise; leave zero
			return nil
		}
		t.Time = parsed
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil
	}
	// Heuristic: values past year 33658 in seconds are milliseconds
	if n > 1e12 {
		t.Time = time.UnixMilli(n)
	} else {
		t.Time = time.Unix(n, 0)
	}
	return nil
}

// item is the wire shape of a WorkDrive file or folder
type item struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Size         int64    `json:"size"`
	ContentType  string   `json:"contentType"`
	ModifiedTime flexTime `json:"modifiedTime"`
	DownloadURL  string   `json:"downloadUrl"`
}

func (i item) entry() models.Entry {
	return models.Entry{
		ID:           i.ID,
		Name:         i.Name,
		Size:         i.Size,
		ContentType:  i.ContentType,
		ModifiedTime: i.ModifiedTime.Time,
		DownloadURL:  i.DownloadURL,
	}
}

func (i item) candidate() models.Candidate {
	return models.Candidate{
		ID:           i.ID,
		Name:         i.Name,
		ModifiedTime: i.ModifiedTime.Time,
	}
}

func entries(items []item) []models.Entry {
	out := make([]models.Entry, 0, len(items))
	for _, i := range items {
		out = append(out, i.entry())
	}
	return out
}
