package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/logging"
)

// Client is the shared HTTP plumbing under the CRM and WorkDrive
// wrappers: auth header injection, rate limiting, error mapping and a
// single forced-refresh replay on 401.
type Client struct {
	base    string
	http    *http.Client
	tokens  *TokenSource
	limiter *rate.Limiter
	logger  logging.Logger
}

// ClientConfig holds the knobs for a tenant client
type ClientConfig struct {
	// BaseURL is the regional API endpoint, e.g. https://www.zohoapis.com
	BaseURL string

	// RequestsPerSecond and Burst configure the token-bucket limiter
	RequestsPerSecond float64
	Burst             int

	// Timeout bounds each HTTP request. Uploads and downloads get
	// their own, longer bound.
	Timeout time.Duration
}

// NewClient creates a client for one tenant
func NewClient(cfg ClientConfig, tokens *TokenSource, logger logging.Logger) *Client {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5.0
	}
	if cfg.Burst < 1 {
		cfg.Burst = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
	}
}

// BaseURL returns the client's API endpoint
func (c *Client) BaseURL() string {
	return c.base
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON performs a POST request with a JSON body
func (c *Client) PostJSON(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, query, body, out)
}

// PutJSON performs a PUT request with a JSON body
func (c *Client) PutJSON(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, query, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = data
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, c.url(path), query, payload, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Zoho returns 204 for empty search results
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return decodeJSON(resp.Body, out)
}

// Download fetches raw bytes from an absolute URL or an API path
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	target := rawURL
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		target = c.url(rawURL)
	}

	resp, err := c.do(ctx, http.MethodGet, target, nil, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read download body: %w", err)
	}
	return data, nil
}

// UploadMultipart posts a file as multipart/form-data together with
// extra form fields, decoding the JSON response
func (c *Client) UploadMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, content []byte, contentType string, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, fileName))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to write file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.url(path), nil, buf.Bytes(), writer.FormDataContentType())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeJSON(resp.Body, out)
}

// do sends one request, replaying it once with a force-refreshed token
// if the first attempt comes back 401. The body is kept as bytes so the
// replay can resend it.
func (c *Client) do(ctx context.Context, method, target string, query url.Values, body []byte, contentType string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, target, query, body, contentType)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.tokens.Invalidate()
		c.logger.Debug(ctx, "401 response, replaying with refreshed token", logging.Fields{
			"method": method,
			"url":    target,
		})
		resp, err = c.send(ctx, method, target, query, body, contentType)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := readAPIError(resp, method, target)
		resp.Body.Close()
		return nil, apiErr
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, method, target string, query url.Values, body []byte, contentType string) (*http.Response, error) {
	full := target
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		full = target + sep + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, full, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.http.Do(req)
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

func decodeJSON(r io.Reader, out any) error {
	if out == nil {
		_, err := io.Copy(io.Discard, r)
		return err
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorBody covers the error envelopes Zoho's CRM and WorkDrive APIs
// return; fields are best-effort
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Errors  []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"errors"`
	Data []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"data"`
}

func readAPIError(resp *http.Response, method, target string) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		URL:        target,
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Message != "":
			apiErr.Code = body.Code
			apiErr.Message = body.Message
		case len(body.Errors) > 0:
			apiErr.Code = body.Errors[0].ID
			apiErr.Message = body.Errors[0].Title
		case len(body.Data) > 0:
			apiErr.Code = body.Data[0].Code
			apiErr.Message = body.Data[0].Message
		}
	}
	return apiErr
}
