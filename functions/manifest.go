package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goliatone/go-portal"
)

// StatusError is returned when the manifest host answers with a non 2xx status.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

// Release is one platform entry of the version manifest.
type Release struct {
	Version     string    `json:"version"`
	Size        FlexText  `json:"size"`
	DownloadURL string    `json:"downloadUrl"`
	Changelog   FlexLines `json:"changelog,omitempty"`
}

// Manifest maps a platform key (android, windows, macos, ios) to its release.
type Manifest map[string]Release

// FlexText accepts a JSON string or number.
type FlexText string

func (t *FlexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = FlexText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = FlexText(n.String())
	return nil
}

// FlexLines accepts a JSON string or an array of strings.
type FlexLines []string

func (l *FlexLines) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = FlexLines{s}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return err
	}
	*l = lines
	return nil
}

// Fetcher retrieves version manifests server side.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a fetcher. A nil client means http.DefaultClient.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Fetch returns the raw body at url. Non 2xx answers yield *StatusError and
// network failures a portal transport error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, portal.NewTransportError(err, "fetch_manifest")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, portal.NewTransportError(err, "fetch_manifest")
	}
	return body, nil
}

// Manifest fetches and decodes the manifest at url.
func (f *Fetcher) Manifest(ctx context.Context, url string) (Manifest, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	out := Manifest{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return out, nil
}

// Merge overlays the fetched manifest on defaults, keeping a default field
// wherever the fetched entry leaves it empty.
func Merge(defaults, fetched Manifest) Manifest {
	out := Manifest{}
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range fetched {
		base := out[k]
		if v.Version != "" {
			base.Version = v.Version
		}
		if v.Size != "" {
			base.Size = v.Size
		}
		if v.DownloadURL != "" {
			base.DownloadURL = v.DownloadURL
		}
		if len(v.Changelog) > 0 {
			base.Changelog = v.Changelog
		}
		out[k] = base
	}
	return out
}

// SizeLabel renders numeric sizes as megabytes and leaves labels as they are.
func (t FlexText) SizeLabel() string {
	if f, err := strconv.ParseFloat(string(t), 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64) + " MB"
	}
	return string(t)
}
