package scouting

import (
	"strconv"
	"time"

	"github.com/frc-scouting/scout-sync/repos/store"
	"golang.org/x/xerrors"
)

const (
	CollectionMatchEntries = "scouting_entries"
	CollectionPitEntries   = "pit_entries"
	CollectionEvents       = "events"
	CollectionTeams        = "frc_teams"
	CollectionMatches      = "matches"
	CollectionProfiles     = "profiles"
)

// Column names shared by match and pit entries.
const (
	ColSeason     = "season"
	ColEventCode  = "event_code"
	ColMatchKey   = "match_key"
	ColTeamNumber = "team_number"
	ColScoutID    = "scout_id"
	ColScoutName  = "scout_name"
	ColMetrics    = "metrics"
	ColPhotos     = "photos"
	ColCreatedAt  = "created_at"
	ColObservedAt = "observed_at"
)

// EntryCollection is the store collection holding records of a purpose.
func EntryCollection(purpose FormPurpose) string {
	if purpose == PurposePit {
		return CollectionPitEntries
	}
	return CollectionMatchEntries
}

// Record is one submitted observation. Attributes are untyped at rest; any
// typing is derived when the records are read.
type Record struct {
	ID            string      `json:"id"`
	Purpose       FormPurpose `json:"purpose"`
	Season        int         `json:"season"`
	EventCode     string      `json:"event_code"`
	MatchKey      string      `json:"match_key,omitempty"`
	TeamNumber    int         `json:"team_number"`
	SubmitterID   string      `json:"scout_id,omitempty"`
	SubmitterName string      `json:"scout_name,omitempty"`
	Attributes    Attributes  `json:"metrics"`
	Photos        []string    `json:"photos,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	ObservedAt    *time.Time  `json:"observed_at,omitempty"`
}

func (r Record) ToRow() store.Row {
	row := store.Row{
		ColSeason:     r.Season,
		ColEventCode:  r.EventCode,
		ColTeamNumber: r.TeamNumber,
		ColMetrics:    r.Attributes.Plain(),
		ColCreatedAt:  r.CreatedAt,
	}
	if r.ID != "" {
		row[store.IDField] = r.ID
	}
	if r.Purpose != PurposePit {
		row[ColMatchKey] = r.MatchKey
	} else {
		photos := make([]interface{}, len(r.Photos))
		for i, p := range r.Photos {
			photos[i] = p
		}
		row[ColPhotos] = photos
	}
	if r.SubmitterID != "" {
		row[ColScoutID] = r.SubmitterID
	} else {
		row[ColScoutID] = nil
	}
	if r.SubmitterName != "" {
		row[ColScoutName] = r.SubmitterName
	}
	if r.ObservedAt != nil {
		row[ColObservedAt] = *r.ObservedAt
	}
	return row
}

// RecordFromRow decodes a stored entry. Only the identifying columns are
// checked; the metrics map is accepted in whatever shape it was written.
func RecordFromRow(purpose FormPurpose, row store.Row) (Record, error) {
	r := Record{ID: row.ID(), Purpose: purpose}

	season, ok := asInt(row[ColSeason])
	if !ok {
		return r, xerrors.Errorf("consistency error. Entry %s has season %v", r.ID, row[ColSeason])
	}
	r.Season = season
	r.TeamNumber, _ = asInt(row[ColTeamNumber])
	r.EventCode, _ = row[ColEventCode].(string)
	r.MatchKey, _ = row[ColMatchKey].(string)
	r.SubmitterID, _ = row[ColScoutID].(string)
	r.SubmitterName, _ = row[ColScoutName].(string)

	if metrics, ok := row[ColMetrics].(map[string]interface{}); ok {
		r.Attributes = AttributesOf(metrics)
	} else {
		r.Attributes = Attributes{}
	}
	if photos, ok := row[ColPhotos].([]interface{}); ok {
		for _, p := range photos {
			if s, ok := p.(string); ok {
				r.Photos = append(r.Photos, s)
			}
		}
	}
	if t, ok := row[ColCreatedAt].(time.Time); ok {
		r.CreatedAt = t
	}
	if t, ok := row[ColObservedAt].(time.Time); ok {
		r.ObservedAt = &t
	}
	return r, nil
}

func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	}
	return 0, false
}

// Event, Team, Match and Profile are reference data used to decorate output.
type Event struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type Team struct {
	Number   int    `json:"number"`
	Nickname string `json:"nickname,omitempty"`
	Name     string `json:"name,omitempty"`
	LogoURL  string `json:"logo_url,omitempty"`
}

// DisplayName prefers the nickname, then the full name, then the number.
func (t Team) DisplayName() string {
	switch {
	case t.Nickname != "":
		return t.Nickname
	case t.Name != "":
		return t.Name
	}
	return strconv.Itoa(t.Number)
}

func TeamFromRow(row store.Row) Team {
	var t Team
	t.Number, _ = asInt(row["number"])
	t.Nickname, _ = row["nickname"].(string)
	t.Name, _ = row["name"].(string)
	t.LogoURL, _ = row["logo_url"].(string)
	return t
}

type Match struct {
	EventCode   string     `json:"event_code"`
	MatchKey    string     `json:"match_key"`
	RedTeams    []int      `json:"red_teams"`
	BlueTeams   []int      `json:"blue_teams"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

type Profile struct {
	ID               string `json:"id"`
	Email            string `json:"email,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	CurrentEventCode string `json:"current_event_code,omitempty"`
}

func ProfileFromRow(row store.Row) Profile {
	p := Profile{ID: row.ID()}
	p.Email, _ = row["email"].(string)
	p.FullName, _ = row["full_name"].(string)
	p.CurrentEventCode, _ = row["current_event_code"].(string)
	return p
}
