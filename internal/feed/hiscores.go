package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diealivers/enrage-tracker/internal/model"
)

const (
	// HiscoresLocation selects the live group hiscores as the kill source.
	HiscoresLocation = "hiscores"
	// HiscoresURL is the RuneScape group hiscores endpoint.
	HiscoresURL = "https://secure.runescape.com/m=group_hiscores/v1/groups"

	hiscoresPageSize = 15
	hiscoresBossID   = 1
)

// HiscoresSource reads the latest solo kills from the group hiscores.
type HiscoresSource struct {
	BaseURL   string
	GroupSize int
	Pages     int

	client *http.Client
	now    func() time.Time
}

// NewHiscoresSource returns a source for the first page of solo kills.
func NewHiscoresSource() *HiscoresSource {
	return &HiscoresSource{
		BaseURL:   HiscoresURL,
		GroupSize: 1,
		Pages:     1,
		client:    &http.Client{Timeout: 10 * time.Second},
		now:       time.Now,
	}
}

func (s *HiscoresSource) Describe() string {
	return fmt.Sprintf("group hiscores (group size %d)", s.GroupSize)
}

// hiscoresPage is one page of the groups endpoint. Only content is used.
type hiscoresPage struct {
	Content *[]model.KillRecord `json:"content"`
}

// Fetch reads up to Pages pages and stops early at a short page.
func (s *HiscoresSource) Fetch(ctx context.Context) (*model.Feed, error) {
	records := []model.KillRecord{}
	pages := s.Pages
	if pages < 1 {
		pages = 1
	}
	for page := 0; page < pages; page++ {
		kills, err := s.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		records = append(records, kills...)
		if len(kills) < hiscoresPageSize {
			break
		}
	}

	return &model.Feed{
		Meta: model.Meta{
			GeneratedAt: s.now().UTC().Format(time.RFC3339),
			Count:       len(records),
			Extra:       map[string]json.RawMessage{"source": json.RawMessage(`"hiscores"`)},
		},
		Records: records,
	}, nil
}

func (s *HiscoresSource) fetchPage(ctx context.Context, page int) ([]model.KillRecord, error) {
	q := url.Values{}
	q.Set("groupSize", strconv.Itoa(s.GroupSize))
	q.Set("size", strconv.Itoa(hiscoresPageSize))
	q.Set("bossId", strconv.Itoa(hiscoresBossID))
	q.Set("page", strconv.Itoa(page))
	u := s.BaseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
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
		return nil, fmt.Errorf("GET %s: %w %d: %s", u, ErrHTTPStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var p hiscoresPage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode hiscores page %d: %w", page, err)
	}
	if p.Content == nil {
		return nil, fmt.Errorf("decode hiscores page %d: %w", page, ErrNoRecords)
	}
	return *p.Content, nil
}
