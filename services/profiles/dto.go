package profiles

import "github.com/frc-scouting/scout-sync/pkg/scouting"

type UpdateRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type CheckinRequest struct {
	EventCode string `json:"event_code" binding:"required"`
}

type CheckinResponse struct {
	Profile scouting.Profile `json:"profile"`
	Matches int              `json:"matches"`
	Teams   int              `json:"teams"`
	// Partial is set when the schedule import did not complete.
	Partial bool `json:"partial"`
}
