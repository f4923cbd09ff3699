// Package crm wraps the Zoho CRM v3 records API for one tenant.
package crm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/logging"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
	"github.com/nicholasjvr/workdrive-migration-job/pkg/zoho"
)

// searchPageSize is Zoho's maximum per_page for record search
const searchPageSize = 200

// Client accesses one CRM module in one tenant
type Client struct {
	api    *zoho.Client
	module string
	keys   models.FieldKeys
	logger logging.Logger
}

// NewClient creates a CRM client for the configured module
func NewClient(api *zoho.Client, module string, keys models.FieldKeys, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Client{
		api:    api,
		module: module,
		keys:   keys,
		logger: logger,
	}
}

// recordList is the CRM record envelope
type recordList struct {
	Data []map[string]any `json:"data"`
}

// PendingCriteria returns the search criteria selecting unprocessed
// records. Exposed for the diagnose command.
func (c *Client) PendingCriteria() string {
	return fmt.Sprintf("(%s:equals:false)", c.keys.Completion)
}

// SearchPending returns records whose completion checkbox is unset and
// whose match key is non-empty. limit <= 0 means no limit.
func (c *Client) SearchPending(ctx context.Context, limit int) ([]models.Record, error) {
	// Always fetch the full page: blank-match-key records are dropped
	// below, so trimming the page to the limit up front would under-fill
	// the batch whenever skipped records sit inside the first limit rows.
	query := url.Values{}
	query.Set("criteria", c.PendingCriteria())
	query.Set("fields", c.fieldList())
	query.Set("per_page", strconv.Itoa(searchPageSize))

	var list recordList
	path := fmt.Sprintf("/crm/v3/%s/search", c.module)
	if err := c.api.GetJSON(ctx, path, query, &list); err != nil {
		return nil, err
	}

	// Records with a blank match key are rejected here, before any
	// further network interaction.
	records := make([]models.Record, 0, len(list.Data))
	for _, fields := range list.Data {
		rec := models.NewRecord(fields, c.keys)
		if rec.MatchKey() == "" {
			c.logger.Debug(ctx, "skipping record with empty match key", logging.Fields{
				"record_id": rec.ID(),
			})
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	return records, nil
}

// Get fetches one record by ID. Absence is reported via the bool, not
// as an error.
func (c *Client) Get(ctx context.Context, id string) (models.Record, bool, error) {
	query := url.Values{}
	query.Set("fields", c.fieldList())

	var list recordList
	path := fmt.Sprintf("/crm/v3/%s/%s", c.module, id)
	err := c.api.GetJSON(ctx, path, query, &list)
	if err != nil {
		if zoho.IsNotFound(err) {
			return models.Record{}, false, nil
		}
		return models.Record{}, false, err
	}

	if len(list.Data) == 0 {
		return models.Record{}, false, nil
	}
	return models.NewRecord(list.Data[0], c.keys), true, nil
}

// FindCandidatesByName searches the module for records whose match key
// equals name. The caller resolves ambiguity.
func (c *Client) FindCandidatesByName(ctx context.Context, name string) ([]models.Candidate, error) {
	query := url.Values{}
	query.Set("criteria", fmt.Sprintf("(%s:equals:%s)", c.keys.MatchKey, escapeCriteria(name)))
	query.Set("fields", fmt.Sprintf("id,%s,Modified_Time", c.keys.MatchKey))

	var list recordList
	path := fmt.Sprintf("/crm/v3/%s/search", c.module)
	if err := c.api.GetJSON(ctx, path, query, &list); err != nil {
		return nil, err
	}

	candidates := make([]models.Candidate, 0, len(list.Data))
	for _, fields := range list.Data {
		rec := models.NewRecord(fields, c.keys)
		cand := models.Candidate{
			ID:   rec.ID(),
			Name: rec.MatchKey(),
		}
		if raw, ok := fields["Modified_Time"].(string); ok {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				cand.ModifiedTime = ts
			}
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// UpdateFields writes a field map to one record. Returns true when the
// API acknowledges the update.
func (c *Client) UpdateFields(ctx context.Context, id string, fields map[string]any) (bool, error) {
	entry := map[string]any{"id": id}
	for k, v := range fields {
		entry[k] = v
	}
	body := map[string]any{"data": []map[string]any{entry}}

	var result struct {
		Data []struct {
			Code string `json:"code"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/crm/v3/%s/%s", c.module, id)
	if err := c.api.PutJSON(ctx, path, nil, body, &result); err != nil {
		return false, err
	}

	for _, d := range result.Data {
		if strings.EqualFold(d.Code, "SUCCESS") {
			return true, nil
		}
	}
	return false, nil
}

// UpdateCompletion writes the completion checkbox on one record
func (c *Client) UpdateCompletion(ctx context.Context, id string, value bool) (bool, error) {
	return c.UpdateFields(ctx, id, map[string]any{c.keys.Completion: value})
}

// ModuleSample fetches a one-record sample from the module. Diagnostics.
func (c *Client) ModuleSample(ctx context.Context, perPage int) (map[string]any, error) {
	if perPage < 1 {
		perPage = 1
	}
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("fields", c.fieldList())

	var out map[string]any
	path := fmt.Sprintf("/crm/v3/%s", c.module)
	if err := c.api.GetJSON(ctx, path, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrgInfo fetches tenant organization details. Diagnostics; may need
// extra scopes.
func (c *Client) OrgInfo(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.api.GetJSON(ctx, "/crm/v3/org", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentUser fetches the token's user. Diagnostics; may need extra
// scopes.
func (c *Client) CurrentUser(ctx context.Context) (map[string]any, error) {
	query := url.Values{}
	query.Set("type", "CurrentUser")

	var out map[string]any
	if err := c.api.GetJSON(ctx, "/crm/v3/users", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BaseURL reports the underlying API endpoint. Diagnostics.
func (c *Client) BaseURL() string {
	return c.api.BaseURL()
}

func (c *Client) fieldList() string {
	fields := []string{"id", c.keys.Completion, c.keys.MatchKey}
	if c.keys.WorkDriveURL != "" {
		fields = append(fields, c.keys.WorkDriveURL)
	}
	if c.keys.WorkDriveFolderID != "" {
		fields = append(fields, c.keys.WorkDriveFolderID)
	}
	return strings.Join(fields, ",")
}

// escapeCriteria escapes the characters Zoho's criteria grammar
// reserves inside values
func escapeCriteria(v string) string {
	r := strings.NewReplacer("(", "\\(", ")", "\\)", ",", "\\,")
	return r.Replace(v)
}
