package analysis

import (
	"github.com/frc-scouting/scout-sync/pkg/analytics"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

// Query is what every analysis request is narrowed by.
type Query struct {
	Scope     scouting.Scope
	EventCode string
	Purpose   scouting.FormPurpose
	Team      int
	Metric    string
	ViewerID  string
	// ViewerEmail is the token email, used when the viewer has no profile.
	ViewerEmail string
}

type MetricsResponse struct {
	Scope     scouting.ScopeContext `json:"scope"`
	EventName string                `json:"event_name,omitempty"`
	Records   int                   `json:"records"`
	Classes   analytics.Classes     `json:"classes"`
}

type NumericSummary struct {
	Key        string  `json:"key"`
	SubjectAvg float64 `json:"subject_avg"`
	OthersAvg  float64 `json:"others_avg"`
	DeltaPct   float64 `json:"delta_pct"`
}

type CategoricalSummary struct {
	Key     string                  `json:"key"`
	Options []analytics.OptionCount `json:"options"`
}

type TextNote struct {
	MatchKey string `json:"match_key"`
	Key      string `json:"key"`
	Value    string `json:"value"`
}

type TeamReport struct {
	Scope       scouting.ScopeContext `json:"scope"`
	EventName   string                `json:"event_name,omitempty"`
	Team        scouting.Team         `json:"team"`
	Matches     int                   `json:"matches"`
	Numeric     []NumericSummary      `json:"numeric"`
	Categorical []CategoricalSummary  `json:"categorical"`
	Notes       []TextNote            `json:"notes"`
	Pit         *scouting.Record      `json:"pit,omitempty"`
}

type LeaderboardRow struct {
	analytics.TeamRow
	Nickname string `json:"nickname,omitempty"`
	LogoURL  string `json:"logo_url,omitempty"`
}

type LeaderboardResponse struct {
	Scope  scouting.ScopeContext `json:"scope"`
	Metric string                `json:"metric"`
	Rows   []LeaderboardRow      `json:"rows"`
}

type ScoutsResponse struct {
	Scope scouting.ScopeContext    `json:"scope"`
	Rows  []analytics.SubmitterRow `json:"rows"`
	Rank  int                      `json:"rank"`
}

type SeriesResponse struct {
	Scope  scouting.ScopeContext `json:"scope"`
	Team   int                   `json:"team"`
	Key    string                `json:"key"`
	Points []analytics.Point     `json:"points"`
}
