package tba

// Event is the subset of /events/{year} the sync reads.
type Event struct {
	Key       *string `json:"key"`
	Name      *string `json:"name"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type Team struct {
	Key        *string `json:"key"`
	TeamNumber *int    `json:"team_number"`
	Nickname   *string `json:"nickname"`
	Name       *string `json:"name"`
}

type Match struct {
	Key         *string   `json:"key"`
	CompLevel   *string   `json:"comp_level"`
	MatchNumber *int      `json:"match_number"`
	Alliances   Alliances `json:"alliances"`
	// Time is the scheduled start in unix seconds.
	Time *int64 `json:"time"`
}

type Alliances struct {
	Red  Alliance `json:"red"`
	Blue Alliance `json:"blue"`
}

type Alliance struct {
	TeamKeys []string `json:"team_keys"`
	Score    *int     `json:"score"`
}

type Media struct {
	Type       *string      `json:"type"`
	ForeignKey *string      `json:"foreign_key"`
	Details    MediaDetails `json:"details"`
	DirectURL  *string      `json:"direct_url"`
	ViewURL    *string      `json:"view_url"`
	Preferred  bool         `json:"preferred"`
}

type MediaDetails struct {
	Base64Image *string `json:"base64Image"`
}
