// Package sheets reads kill records from the Google Sheet that players fill in
// by hand, as an alternative to the generated data.json feed.
package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/diealivers/enrage-tracker/internal/model"
)

// DateLayout is the format of the sheet's Date column. Dates are UTC.
const DateLayout = "2006-01-02 15:04"

var requiredColumns = []string{"Enrage", "Date", "Player", "Kill time"}

// Source reads one worksheet of a spreadsheet with a read-only service account.
type Source struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	now           func() time.Time
}

// NewSource creates a sheet source from service account credentials JSON.
func NewSource(ctx context.Context, credentialsJSON []byte, sheetURL, sheetName string) (*Source, error) {
	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, err
	}

	return &Source{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		now:           time.Now,
	}, nil
}

func (s *Source) Describe() string {
	return fmt.Sprintf("sheet %s/%s", s.spreadsheetID, s.sheetName)
}

// Fetch reads every row of the worksheet and converts it to a feed.
func (s *Source) Fetch(ctx context.Context) (*model.Feed, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.sheetName, err)
	}
	return ParseRows(resp.Values, s.now())
}

// ParseRows converts raw sheet values (first row is the header) to a feed.
// Rows with an unparseable enrage, kill time or date are skipped.
func ParseRows(rows [][]interface{}, now time.Time) (*model.Feed, error) {
	f := &model.Feed{Records: []model.KillRecord{}}
	if len(rows) > 0 {
		col := make(map[string]int)
		for i, h := range rows[0] {
			col[strings.TrimSpace(cellString(h))] = i
		}
		var missing []string
		for _, name := range requiredColumns {
			if _, ok := col[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("missing required columns: %v", missing)
		}

		for _, row := range rows[1:] {
			rec, ok := parseRow(row, col)
			if ok {
				f.Records = append(f.Records, rec)
			}
		}
	}

	f.Meta = model.Meta{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Count:       len(f.Records),
	}
	return f, nil
}

func parseRow(row []interface{}, col map[string]int) (model.KillRecord, bool) {
	cell := func(name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(cellString(row[i]))
	}

	enrage, err := strconv.ParseFloat(cell("Enrage"), 64)
	if err != nil {
		return model.KillRecord{}, false
	}
	killTime, err := strconv.ParseFloat(cell("Kill time"), 64)
	if err != nil {
		return model.KillRecord{}, false
	}
	date, err := time.ParseInLocation(DateLayout, cell("Date"), time.UTC)
	if err != nil {
		return model.KillRecord{}, false
	}

	return model.KillRecord{
		Enrage:          int(enrage),
		TimeOfKill:      date.Unix(),
		KillTimeSeconds: killTime,
		Members:         []model.Member{{Name: cell("Player")}},
	}, true
}

func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func extractSpreadsheetID(url string) (string, error) {
	// Match pattern: /spreadsheets/d/{spreadsheetId}/
	re := regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	matches := re.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("could not extract spreadsheet ID from URL: %s", url)
	}
	return matches[1], nil
}
