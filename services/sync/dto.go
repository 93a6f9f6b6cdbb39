package sync

type ImportResponse struct {
	Imported int    `json:"imported"`
	Event    string `json:"event_code,omitempty"`
	Season   int    `json:"season,omitempty"`
	// Logos is how many teams got a logo during a team import.
	Logos int `json:"logos,omitempty"`
}
