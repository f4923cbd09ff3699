package zoho

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTokenServer serves the refresh_token grant, handing out sequential
// access tokens and counting refreshes
func newTokenServer(t *testing.T, refreshes *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %s, want refresh_token", got)
		}
		n := atomic.AddInt32(refreshes, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":3600}`, n)
	}))
}

func newTestClient(t *testing.T, api *httptest.Server, tokens *TokenSource) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		BaseURL:           api.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
		Timeout:           5 * time.Second,
	}, tokens, nil)
}

func TestTokenSource(t *testing.T) {
	t.Run("CachesUntilInvalidated", func(t *testing.T) {
		var refreshes int32
		ts := newTokenServer(t, &refreshes)
		defer ts.Close()

		source := NewTokenSourceWithEndpoint(ts.URL, "id", "secret", "refresh")

		tok1, err := source.Token()
		if err != nil {
			t.Fatalf("Token() = %v", err)
		}
		tok2, err := source.Token()
		if err != nil {
			t.Fatalf("Token() = %v", err)
		}
		if tok1.AccessToken != tok2.AccessToken {
			t.Error("second Token() should hit the cache")
		}
		if atomic.LoadInt32(&refreshes) != 1 {
			t.Errorf("refreshes = %d, want 1", refreshes)
		}

		source.Invalidate()
		tok3, err := source.Token()
		if err != nil {
			t.Fatalf("Token() = %v", err)
		}
		if tok3.AccessToken == tok1.AccessToken {
			t.Error("Token() after Invalidate should mint a new token")
		}
	})

	t.Run("UnsupportedRegion", func(t *testing.T) {
		if _, err := NewTokenSource("us", "id", "secret", "refresh"); err == nil {
			t.Error("NewTokenSource() = nil, want error for unknown region")
		}
	})
}

func TestAPIEndpoint(t *testing.T) {
	tests := []struct {
		region string
		want   string
	}{
		{"com", "https://www.zohoapis.com"},
		{"eu", "https://www.zohoapis.eu"},
		{"in", "https://www.zohoapis.in"},
		{"au", "https://www.zohoapis.com.au"},
		{"jp", "https://www.zohoapis.jp"},
	}
	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			got, err := APIEndpoint(tt.region)
			if err != nil || got != tt.want {
				t.Errorf("APIEndpoint(%s) = %s, %v, want %s", tt.region, got, err, tt.want)
			}
		})
	}

	if _, err := APIEndpoint("us"); err == nil {
		t.Error("APIEndpoint(us) = nil, want error")
	}
}

func TestClientGetJSON(t *testing.T) {
	var refreshes int32
	ts := newTokenServer(t, &refreshes)
	defer ts.Close()

	t.Run("AuthHeaderAndQuery", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Zoho-oauthtoken ") {
				t.Errorf("Authorization = %q, want Zoho-oauthtoken prefix", got)
			}
			if got := r.URL.Query().Get("per_page"); got != "200" {
				t.Errorf("per_page = %s, want 200", got)
			}
			json.NewEncoder(w).Encode(map[string]any{"data": []any{map[string]any{"id": "1"}}})
		}))
		defer api.Close()

		c := newTestClient(t, api, NewTokenSourceWithEndpoint(ts.URL, "id", "secret", "refresh"))

		query := url.Values{}
		query.Set("per_page", "200")
		var out struct {
			Data []map[string]any `json:"data"`
		}
		if err := c.GetJSON(context.Background(), "/crm/v3/Deals/search", query, &out); err != nil {
			t.Fatalf("GetJSON() = %v", err)
		}
		if len(out.Data) != 1 || out.Data[0]["id"] != "1" {
			t.Errorf("out = %+v", out)
		}
	})

	t.Run("NoContentLeavesOutUntouched", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer api.Close()

		c := newTestClient(t, api, NewTokenSourceWithEndpoint(ts.URL, "id", "secret", "refresh"))
		var out struct {
			Data []map[string]any `json:"data"`
		}
		if err := c.GetJSON(context.Background(), "/crm/v3/Deals/search", nil, &out); err != nil {
			t.Fatalf("GetJSON() = %v", err)
		}
		if out.Data != nil {
			t.Errorf("out.Data = %v, want nil for a 204", out.Data)
		}
	})

	t.Run("ErrorMapping", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":"INVALID_URL_PATTERN","message":"no such record"}`)
		}))
		defer api.Close()

		c := newTestClient(t, api, NewTokenSourceWithEndpoint(ts.URL, "id", "secret", "refresh"))
		err := c.GetJSON(context.Background(), "/crm/v3/Deals/999", nil, nil)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v, want APIError", err)
		}
		if apiErr.StatusCode != 404 || apiErr.Code != "INVALID_URL_PATTERN" {
			t.Errorf("apiErr = %+v", apiErr)
		}
		if !IsNotFound(err) {
			t.Error("IsNotFound() = false, want true")
		}
	})

	t.Run("WorkDriveErrorEnvelope", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"errors":[{"id":"F7003","title":"no access to folder"}]}`)
		}))
		defer api.Close()

		c := newTestClient(t, api, NewTokenSourceWithEndpoint(ts.URL, "id", "secret", "refresh"))
		err := c.GetJSON(context.Background(), "/workdrive/api/v1/folders/x", nil, nil)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v, want APIError", err)
		}
		if apiErr.Code != "F7003" || apiErr.Message != "no access to folder" {
			t.Errorf("apiErr = %+v", apiErr)
		}
	})
}

func TestClient401Replay(t *testing.T) {
	var refreshes int32
	ts := newTokenServer(t, &refreshes)
	defer ts.Close()

	t.Run("ReplaysOnceWithFreshToken", func(t *testing.T) {
		var calls int32
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"code":"INVALID_TOKEN","message":"expired"}`)
				return
			}
			// The replay must carry a newly minted token
			if got := r.Header.Get("Authorization"); got != "Zoho-oauthtoken tok-2" {
				t.Errorf("replay Authorization = %q, want tok-2", got)
			}
			fmt.Fprint(w, `{"ok":true}`)
		}))
		defer api.Close()

		c := newTestClient(t, api, NewTokenSourceWithEndpoint(ts.URL, "id", "secret", "refresh"))
		var out map[string]any
		if err := c.GetJSON(context.Background(), "/crm/v3/org", nil, &out); err != nil {
			t.Fatalf("GetJSON() = %v", err)
		}
		if atomic.LoadInt32(&calls) != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
		if atomic.LoadInt32(&refreshes) != 2 {
			t.Errorf("refreshes = %d, want 2 (initial + forced)", refreshes)
		}
	})

	t.Run("SecondUnauthorizedSurfaces", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"code":"INVALID_TOKEN","message":"still expired"}`)
		}))
		defer api.Close()

		c := newTestClient(t, api, NewTokenSourceWithEndpoint(ts.URL, "id", "secret", "refresh"))
		err := c.GetJSON(context.Background(), "/crm/v3/org", nil, nil)
		if !IsUnauthorized(err) {
			t.Errorf("err = %v, want 401 APIError", err)
		}
	})
}

func TestClientDownload(t *testing.T) {
	var refreshes int32
	ts := newTokenServer(t, &refreshes)
	defer ts.Close()

	content := []byte("file bytes")
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer api.Close()

	c := newTestClient(t, api, NewTokenSourceWithEndpoint(ts.URL, "id", "secret", "refresh"))

	t.Run("APIPath", func(t *testing.T) {
		got, err := c.Download(context.Background(), "/workdrive/api/v1/files/x/download")
		if err != nil {
			t.Fatalf("Download() = %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("got %q, want %q", got, content)
		}
	})

	t.Run("AbsoluteURL", func(t *testing.T) {
		got, err := c.Download(context.Background(), api.URL+"/direct")
		if err != nil {
			t.Fatalf("Download() = %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("got %q, want %q", got, content)
		}
	})
}

func TestClientUploadMultipart(t *testing.T) {
	var refreshes int32
	ts := newTokenServer(t, &refreshes)
	defer ts.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("parentId"); got != "folder-1" {
			t.Errorf("parentId = %s, want folder-1", got)
		}
		file, header, err := r.FormFile("content")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "report.pdf" {
			t.Errorf("filename = %s, want report.pdf", header.Filename)
		}
		if got := header.Header.Get("Content-Type"); got != "application/pdf" {
			t.Errorf("part Content-Type = %s, want application/pdf", got)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "pdf bytes" {
			t.Errorf("content = %q", data)
		}
		fmt.Fprint(w, `{"data":{"id":"new-file"}}`)
	}))
	defer api.Close()

	c := newTestClient(t, api, NewTokenSourceWithEndpoint(ts.URL, "id", "secret", "refresh"))

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := c.UploadMultipart(context.Background(), "/workdrive/api/v1/files/upload",
		map[string]string{"parentId": "folder-1"},
		"content", "report.pdf", []byte("pdf bytes"), "application/pdf", &out)
	if err != nil {
		t.Fatalf("UploadMultipart() = %v", err)
	}
	if out.Data.ID != "new-file" {
		t.Errorf("id = %s, want new-file", out.Data.ID)
	}
}

func TestAPIErrorHelpers(t *testing.T) {
	err := &APIError{StatusCode: 429, Code: "RATE_LIMIT", Message: "too many requests"}

	if got, ok := StatusOf(err); !ok || got != 429 {
		t.Errorf("StatusOf() = %d, %v, want 429, true", got, ok)
	}
	if !IsRateLimited(err) {
		t.Error("IsRateLimited() = false, want true")
	}
	if IsNotFound(err) || IsUnauthorized(err) {
		t.Error("status helpers matched the wrong codes")
	}

	wrapped := fmt.Errorf("search folder: %w", err)
	if got, ok := StatusOf(wrapped); !ok || got != 429 {
		t.Errorf("StatusOf(wrapped) = %d, %v, want 429, true", got, ok)
	}

	if _, ok := StatusOf(errors.New("plain")); ok {
		t.Error("StatusOf(plain error) should report no status")
	}
}
