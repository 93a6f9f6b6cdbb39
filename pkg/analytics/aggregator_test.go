package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

func scenarioRecords() []scouting.Record {
	return []scouting.Record{
		rec(2767, scouting.Attributes{"Auto Points": scouting.Number(3), "Climb": scouting.Text("Deep")}),
		rec(2767, scouting.Attributes{"Auto Points": scouting.Number(5), "Climb": scouting.Text("Deep")}),
		rec(118, scouting.Attributes{"Auto Points": scouting.Number(10), "Notes": scouting.Text("fast")}),
	}
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(nil, "k"))
	assert.Equal(t, 5.0, Average([]scouting.Record{
		rec(1, scouting.Attributes{"k": scouting.Number(4)}),
		rec(1, scouting.Attributes{"k": scouting.Number(6)}),
	}, "k"))

	// Non-numeric values are left out of the denominator.
	assert.Equal(t, 4.0, Average([]scouting.Record{
		rec(1, scouting.Attributes{"k": scouting.Number(4)}),
		rec(1, scouting.Attributes{"k": scouting.Text("n/a")}),
		rec(1, scouting.Attributes{}),
	}, "k"))
}

func TestTeamVsField(t *testing.T) {
	records := scenarioRecords()

	assert.Equal(t, 4.0, Average(records[:2], "Auto Points"))
	assert.Equal(t, Comparison{SubjectAvg: 4, OthersAvg: 10}, TeamVsField(records, "Auto Points", 2767))

	none := TeamVsField(records, "Auto Points", 0)
	assert.Equal(t, 0.0, none.SubjectAvg)
	assert.Equal(t, 6.0, none.OthersAvg)
}

func TestPercentDelta(t *testing.T) {
	assert.Equal(t, 100.0, PercentDelta(5, 0))
	assert.Equal(t, 0.0, PercentDelta(0, 0))
	assert.Equal(t, 100.0, PercentDelta(6, 3))
	assert.Equal(t, -50.0, PercentDelta(2, 4))
	assert.Equal(t, 0.0, PercentDelta(-1, 0))
}

func TestOptionCounts(t *testing.T) {
	records := []scouting.Record{
		rec(2767, scouting.Attributes{"Climb": scouting.StringList("Deep")}),
		rec(2767, scouting.Attributes{"Climb": scouting.Text("Deep")}),
		rec(2767, scouting.Attributes{"Climb": scouting.StringList("Shallow")}),
		rec(118, scouting.Attributes{"Climb": scouting.Text("Shallow")}),
		rec(254, scouting.Attributes{"Climb": scouting.StringList("None")}),
	}

	assert.Equal(t, []OptionCount{
		{Option: "Deep", SubjectCount: 2, OthersCount: 0},
		{Option: "None", SubjectCount: 0, OthersCount: 1},
		{Option: "Shallow", SubjectCount: 1, OthersCount: 1},
	}, OptionCounts(records, "Climb", 2767))

	assert.Empty(t, OptionCounts(records, "Missing", 2767))
}

func TestLeaderboard(t *testing.T) {
	numeric := Classify(scenarioRecords(), season2025()).Numeric
	rows := Leaderboard(scenarioRecords(), numeric, "Auto Points")
	require.Len(t, rows, 2)
	assert.Equal(t, 118, rows[0].Team)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, 10.0, rows[0].Averages["Auto Points"])
	assert.Equal(t, 2767, rows[1].Team)
	assert.Equal(t, 2, rows[1].Count)
	assert.Equal(t, 4.0, rows[1].Averages["Auto Points"])

	// Without a metric the first numeric key orders the rows.
	assert.Equal(t, 118, Leaderboard(scenarioRecords(), numeric, "")[0].Team)
}

func TestLeaderboard_DeclaredTextIsNotAveraged(t *testing.T) {
	records := []scouting.Record{
		rec(118, scouting.Attributes{"Auto Points": scouting.Number(10), "Notes": scouting.Text("3")}),
		rec(2767, scouting.Attributes{"Auto Points": scouting.Number(5), "Notes": scouting.Text("99")}),
	}
	numeric := Classify(records, season2025()).Numeric
	require.Equal(t, []string{"Auto Points"}, numeric)

	rows := Leaderboard(records, numeric, "")
	require.Len(t, rows, 2)
	assert.Equal(t, 118, rows[0].Team)
	for _, row := range rows {
		assert.NotContains(t, row.Averages, "Notes")
	}
}

func TestLeaderboard_TiesKeepFirstAppearance(t *testing.T) {
	records := []scouting.Record{
		rec(3, scouting.Attributes{"k": scouting.Number(1)}),
		rec(1, scouting.Attributes{"k": scouting.Number(1)}),
		rec(2, scouting.Attributes{"k": scouting.Number(1)}),
	}
	rows := Leaderboard(records, []string{"k"}, "k")
	assert.Equal(t, []int{3, 1, 2}, []int{rows[0].Team, rows[1].Team, rows[2].Team})
}

func TestSubmitterLeaderboard(t *testing.T) {
	match := []scouting.Record{
		{SubmitterID: "u1"}, {SubmitterID: "u1"}, {SubmitterID: "u2"}, {},
	}
	pit := []scouting.Record{{SubmitterID: "u2"}, {SubmitterID: "u2"}}
	profiles := map[string]scouting.Profile{
		"u1": {ID: "u1", FullName: "Ada Lovelace"},
		"u2": {ID: "u2", Email: "grace@example.org"},
	}
	viewer := scouting.Profile{ID: "u3", Email: "new@example.org"}

	rows, rank := SubmitterLeaderboard(match, pit, profiles, viewer)
	require.Len(t, rows, 3)

	assert.Equal(t, SubmitterRow{SubmitterID: "u2", Name: "grace@example.org", MatchCount: 1, PitCount: 2, Total: 3}, rows[0])
	assert.Equal(t, SubmitterRow{SubmitterID: "u1", Name: "Ada Lovelace", MatchCount: 2, Total: 2}, rows[1])
	assert.Equal(t, SubmitterRow{SubmitterID: "u3", Name: "new@example.org"}, rows[2])
	assert.Equal(t, 3, rank)

	rows, rank = SubmitterLeaderboard(match, pit, nil, scouting.Profile{})
	assert.Len(t, rows, 2)
	assert.Equal(t, "u2", rows[0].Name)
	assert.Zero(t, rank)
}

func TestSeries(t *testing.T) {
	records := []scouting.Record{
		{MatchKey: "qm2", Attributes: scouting.Attributes{"k": scouting.Number(4)}},
		{MatchKey: "qm1", Attributes: scouting.Attributes{"k": scouting.Text("x")}},
	}
	assert.Equal(t, []Point{{MatchKey: "qm1", Value: 0}, {MatchKey: "qm2", Value: 4}}, Series(records, "k"))
}

func TestLatestPit(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []scouting.Record{
		{ID: "old", TeamNumber: 2767, CreatedAt: now.Add(-time.Hour)},
		{ID: "new", TeamNumber: 2767, CreatedAt: now},
		{ID: "other", TeamNumber: 118, CreatedAt: now.Add(time.Hour)},
	}
	latest, ok := LatestPit(records, 2767)
	require.True(t, ok)
	assert.Equal(t, "new", latest.ID)

	_, ok = LatestPit(records, 9999)
	assert.False(t, ok)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.33, Round2(10.0/3))
	assert.Equal(t, 0.0, Round2(0))
}

func TestAggregator_DoesNotMutateInput(t *testing.T) {
	records := scenarioRecords()
	snapshot := make([]scouting.Record, len(records))
	for i, r := range records {
		r.Attributes = r.Attributes.Clone()
		snapshot[i] = r
	}

	numeric := Classify(records, season2025()).Numeric
	first := Leaderboard(records, numeric, "Auto Points")
	second := Leaderboard(records, numeric, "Auto Points")
	assert.Equal(t, first, second)
	assert.Equal(t, OptionCounts(records, "Climb", 2767), OptionCounts(records, "Climb", 2767))
	assert.Equal(t, Classify(records, season2025()), Classify(records, season2025()))
	assert.Equal(t, snapshot, records)
}
