package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/diealivers/enrage-tracker/internal/model"
)

var (
	// ErrHTTPStatus is returned by the HTTP sources when the server answers with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrNoRecords means the document has no records array at all.
	ErrNoRecords    = errors.New("document has no records array")
	ErrTrailingData = errors.New("trailing data after document")
)

// Source produces a feed document.
type Source interface {
	Fetch(ctx context.Context) (*model.Feed, error)
	Describe() string
}

// NewSource returns a HiscoresSource for "hiscores", an HTTPSource for http(s)
// URLs and a FileSource otherwise.
func NewSource(location string) Source {
	if location == HiscoresLocation {
		return NewHiscoresSource()
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location)
	}
	return FileSource{Path: location}
}

// FileSource reads data.json from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Describe() string { return s.Path }

func (s FileSource) Fetch(ctx context.Context) (*model.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// HTTPSource fetches data.json from a URL, e.g. the published site's /data/data.json.
type HTTPSource struct {
	URL    string
	client *http.Client
}

// NewHTTPSource returns an HTTPSource with a 30s client timeout.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSource) Describe() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) (*model.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("GET %s: %w %d: %s", s.URL, ErrHTTPStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return Decode(resp.Body)
}

// Decode parses a feed document. The document must be a single object with a
// records array; an empty array is fine, a missing or null one is not.
func Decode(r io.Reader) (*model.Feed, error) {
	var doc struct {
		Meta    model.Meta          `json:"meta"`
		Records *[]model.KillRecord `json:"records"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	if doc.Records == nil {
		return nil, fmt.Errorf("decode feed: %w", ErrNoRecords)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode feed: %w", ErrTrailingData)
	}
	return &model.Feed{Meta: doc.Meta, Records: *doc.Records}, nil
}
