package scouting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/frc-scouting/scout-sync/repos/store"
)

func TestResolveScope(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s := ResolveScope(ScopeEvent, " 2025miket ", "", now)
	assert.Equal(t, "2025miket", s.EventCode)
	assert.Equal(t, 2025, s.Season)
	assert.Equal(t, PurposeMatch, s.Purpose)

	s = ResolveScope(ScopeSeason, "", PurposePit, now)
	assert.Equal(t, 2026, s.Season)
	assert.Equal(t, PurposePit, s.WithPurpose(PurposePit).Purpose)
}

func TestParseScope(t *testing.T) {
	assert.Equal(t, ScopeSeason, ParseScope("Season"))
	assert.Equal(t, ScopeEvent, ParseScope("event"))
	assert.Equal(t, ScopeEvent, ParseScope(""))
}

func TestScopeContext_Apply(t *testing.T) {
	records := []Record{
		{ID: "1", Season: 2025, EventCode: "2025miket"},
		{ID: "2", Season: 2025, EventCode: "2025mimil"},
		{ID: "3", Season: 2024, EventCode: "2024miket"},
	}

	event := ScopeContext{Scope: ScopeEvent, EventCode: "2025miket", Season: 2025}
	assert.Equal(t, []string{"1"}, ids(event.Apply(records)))
	assert.Equal(t, []store.Filter{store.Eq(ColEventCode, "2025miket")}, event.Filters())

	season := ScopeContext{Scope: ScopeSeason, EventCode: "2025miket", Season: 2025}
	assert.Equal(t, []string{"1", "2"}, ids(season.Apply(records)))
	assert.Equal(t, []store.Filter{store.Eq(ColSeason, 2025)}, season.Filters())

	unset := ScopeContext{Scope: ScopeEvent}
	assert.Len(t, unset.Apply(records), 3)
	assert.Nil(t, unset.Filters())
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
