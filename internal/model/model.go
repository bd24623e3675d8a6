package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// UnknownPlayer is the bucket for records whose first member has no name.
const UnknownPlayer = "Unknown"

// ---- Raw feed, as written by the update scripts ----

// Member is one participant of a kill. Solo kills have exactly one.
type Member struct {
	Name string `json:"name"`
}

// KillRecord is one solo kill as it appears in the feed's records array.
type KillRecord struct {
	Enrage          int      `json:"enrage"`
	TimeOfKill      int64    `json:"timeOfKill"` // unix seconds
	KillTimeSeconds float64  `json:"killTimeSeconds"`
	Members         []Member `json:"members"`
}

// Player returns the name of the first member, or UnknownPlayer.
func (r KillRecord) Player() string {
	if len(r.Members) == 0 || r.Members[0].Name == "" {
		return UnknownPlayer
	}
	return r.Members[0].Name
}

// Meta is the feed header. Keys other than generated_at and count are kept in Extra.
type Meta struct {
	GeneratedAt string                     `json:"generated_at"`
	Count       int                        `json:"count"`
	Extra       map[string]json.RawMessage `json:"-"`
}

func (m *Meta) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		switch k {
		case "generated_at":
			if err := json.Unmarshal(v, &m.GeneratedAt); err != nil {
				return fmt.Errorf("meta.generated_at: %w", err)
			}
		case "count":
			if err := json.Unmarshal(v, &m.Count); err != nil {
				return fmt.Errorf("meta.count: %w", err)
			}
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]json.RawMessage)
			}
			m.Extra[k] = v
		}
	}
	return nil
}

// Feed is the whole data.json document.
type Feed struct {
	Meta    Meta         `json:"meta"`
	Records []KillRecord `json:"records"`
}

// ---- Grouped view ----

// EnrichedKill is a KillRecord with display fields derived at load time.
// TimeAgo and TimeAgoDetailed are relative to the clock used by the loader.
type EnrichedKill struct {
	Enrage            int       `json:"enrage"`
	TimeOfKill        int64     `json:"timeOfKill"`
	KillTimeSeconds   float64   `json:"killTimeSeconds"`
	Date              time.Time `json:"date"`
	FormattedDate     string    `json:"formattedDate"`
	FormattedKillTime string    `json:"formattedKillTime"`
	TimeAgo           string    `json:"timeAgo"`
	TimeAgoDetailed   string    `json:"timeAgoDetailed"`
}

// PlayerRecord holds every kill attributed to one player.
type PlayerRecord struct {
	Player      string         `json:"player"`
	Kills       []EnrichedKill `json:"kills"`
	LastUpdated string         `json:"lastUpdated"`
}

// PlayerSet maps player name to record and remembers first-seen order.
// The zero value is ready to use.
type PlayerSet struct {
	order []string
	byKey map[string]*PlayerRecord
}

// NewPlayerSet returns an empty set.
func NewPlayerSet() *PlayerSet {
	return &PlayerSet{byKey: make(map[string]*PlayerRecord)}
}

// Get returns the record for name, or nil.
func (s *PlayerSet) Get(name string) *PlayerRecord {
	if s == nil {
		return nil
	}
	return s.byKey[name]
}

// GetOrCreate returns the record for name, creating it on first use.
func (s *PlayerSet) GetOrCreate(name, lastUpdated string) *PlayerRecord {
	if s.byKey == nil {
		s.byKey = make(map[string]*PlayerRecord)
	}
	if p, ok := s.byKey[name]; ok {
		return p
	}
	p := &PlayerRecord{Player: name, Kills: []EnrichedKill{}, LastUpdated: lastUpdated}
	s.byKey[name] = p
	s.order = append(s.order, name)
	return p
}

func (s *PlayerSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Names returns player names in first-seen order.
func (s *PlayerSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Records returns the records in first-seen order.
func (s *PlayerSet) Records() []*PlayerRecord {
	if s == nil {
		return nil
	}
	out := make([]*PlayerRecord, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byKey[name])
	}
	return out
}

// Sorted returns player names in byte order, so "Bob" sorts before "alice".
func (s *PlayerSet) Sorted() []string {
	names := s.Names()
	sort.Strings(names)
	return names
}

// ---- Derived statistics ----

// Bracket aggregates the kills whose enrage falls inside [Min, Max].
type Bracket struct {
	Range          string       `json:"range"`
	Min            int          `json:"min"`
	Max            int          `json:"max"`
	Kills          int          `json:"kills"`
	AvgTime        string       `json:"avgTime"`
	AvgTimeSeconds float64      `json:"avgTimeSeconds"`
	FastestKill    EnrichedKill `json:"fastestKill"`
	FastestTime    string       `json:"fastestTime"`
}

// Milestone marks the first kill that reached a 5k enrage threshold.
type Milestone struct {
	Enrage    int       `json:"enrage"`
	Date      time.Time `json:"date"`
	Timestamp int64     `json:"timestamp"`
	KillTime  string    `json:"killTime"`
	Label     string    `json:"label"`
}

// WindowPeriod locates the busiest 24h window. Indices point into the
// kill list sorted oldest first.
type WindowPeriod struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	StartIndex int       `json:"startIndex"`
	EndIndex   int       `json:"endIndex"`
}

// Window is the most kills recorded within any 24h span. Period is nil when
// there are no kills.
type Window struct {
	Count  int           `json:"count"`
	Period *WindowPeriod `json:"period"`
}

// Predictions are display strings from a straight-line trend, not a forecast.
type Predictions struct {
	NextMilestone     string   `json:"nextMilestone"`
	ImprovementRate   string   `json:"improvementRate"`
	WeeklyImprovement float64  `json:"weeklyImprovement"`
	Suggestions       []string `json:"suggestions"`
	Sufficient        bool     `json:"sufficient"`
}

// PlayerStats is everything the player view shows for one player.
type PlayerStats struct {
	Player             string         `json:"player"`
	TotalKills         int            `json:"totalKills"`
	HighestEnrage      int            `json:"highestEnrage"`
	HighestEnrageKill  EnrichedKill   `json:"highestEnrageKill"`
	AvgKillTime        string         `json:"avgKillTime"`
	AvgKillTimeSeconds float64        `json:"avgKillTimeSeconds"`
	MostRecentKill     EnrichedKill   `json:"mostRecentKill"`
	TimeSinceLastKill  string         `json:"timeSinceLastKill"`
	Brackets           []Bracket      `json:"brackets"`
	Timeline           []Milestone    `json:"timeline"`
	MostKills24h       Window         `json:"mostKills24h"`
	Predictions        Predictions    `json:"predictions"`
	AllKills           []EnrichedKill `json:"allKills"`
}

// PersonalBest is a player's highest enrage kill as read from the snapshot store.
type PersonalBest struct {
	Player          string
	Enrage          int
	KillTimeSeconds float64
	TimeOfKill      int64
	Kills           int
}
