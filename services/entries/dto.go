package entries

import (
	"time"

	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

type SubmitRequest struct {
	Season     int                 `json:"season"`
	EventCode  string              `json:"event_code"`
	MatchKey   string              `json:"match_key"`
	TeamNumber int                 `json:"team_number"`
	Metrics    scouting.Attributes `json:"metrics"`
	Photos     []string            `json:"photos"`
	ObservedAt *time.Time          `json:"observed_at"`
}

type SubmitResponse struct {
	Record scouting.Record    `json:"entry"`
	Next   scouting.Collector `json:"next"`
}

type PhotosResponse struct {
	URLs []string `json:"urls"`
}
