package scouting

import (
	"strings"
	"time"

	timehelper "github.com/frc-scouting/scout-sync/pkg/timeHelper"
	"github.com/frc-scouting/scout-sync/repos/store"
)

// Scope selects which records an aggregation looks at.
type Scope string

const (
	ScopeEvent  Scope = "event"
	ScopeSeason Scope = "season"
)

func ParseScope(s string) Scope {
	if Scope(strings.ToLower(strings.TrimSpace(s))) == ScopeSeason {
		return ScopeSeason
	}
	return ScopeEvent
}

// ScopeContext is the explicit "current event" context passed into every
// filtered read.
type ScopeContext struct {
	Scope     Scope       `json:"scope"`
	EventCode string      `json:"event_code,omitempty"`
	Season    int         `json:"season"`
	Purpose   FormPurpose `json:"purpose"`
}

// ResolveScope derives the season from the event code's year prefix, or the
// current year when there is none.
func ResolveScope(scope Scope, eventCode string, purpose FormPurpose, now time.Time) ScopeContext {
	if purpose == "" {
		purpose = PurposeMatch
	}
	eventCode = strings.TrimSpace(eventCode)
	return ScopeContext{
		Scope:     scope,
		EventCode: eventCode,
		Season:    timehelper.SeasonFromEventCode(eventCode, now),
		Purpose:   purpose,
	}
}

// WithPurpose returns the same scope over the other record kind.
func (s ScopeContext) WithPurpose(purpose FormPurpose) ScopeContext {
	s.Purpose = purpose
	return s
}

// Filters are the store filters equivalent to Match. Event scope without an
// event code selects everything.
func (s ScopeContext) Filters() []store.Filter {
	switch s.Scope {
	case ScopeSeason:
		return []store.Filter{store.Eq(ColSeason, s.Season)}
	default:
		if s.EventCode != "" {
			return []store.Filter{store.Eq(ColEventCode, s.EventCode)}
		}
	}
	return nil
}

func (s ScopeContext) Match(r Record) bool {
	switch s.Scope {
	case ScopeSeason:
		return r.Season == s.Season
	default:
		return s.EventCode == "" || r.EventCode == s.EventCode
	}
}

// Apply returns the records inside the scope, in input order.
func (s ScopeContext) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if s.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
