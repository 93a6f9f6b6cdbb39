package analytics

import (
	"math"
	"sort"

	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

// Average is the mean of key over the records where it coerces to a number,
// or 0 when there are none.
func Average(records []scouting.Record, key string) float64 {
	var sum float64
	var n int
	for _, r := range records {
		if v, ok := r.Attributes[key].Float(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

type Comparison struct {
	SubjectAvg float64 `json:"subject_avg"`
	OthersAvg  float64 `json:"others_avg"`
}

// TeamVsField splits records by team. A subject of 0 means no team is
// selected; the subject partition is then empty.
func TeamVsField(records []scouting.Record, key string, subjectTeam int) Comparison {
	subject, others := partition(records, subjectTeam)
	return Comparison{
		SubjectAvg: Average(subject, key),
		OthersAvg:  Average(others, key),
	}
}

// PercentDelta is the change of subjectAvg relative to othersAvg. A zero
// baseline yields 100 for any positive subject and 0 otherwise.
func PercentDelta(subjectAvg, othersAvg float64) float64 {
	if othersAvg == 0 {
		if subjectAvg > 0 {
			return 100
		}
		return 0
	}
	return (subjectAvg - othersAvg) / othersAvg * 100
}

type OptionCount struct {
	Option       string `json:"option"`
	SubjectCount int    `json:"subject_count"`
	OthersCount  int    `json:"others_count"`
}

// OptionCounts tallies every option seen for a categorical key, in
// lexicographic option order.
func OptionCounts(records []scouting.Record, key string, subjectTeam int) []OptionCount {
	counts := map[string]*OptionCount{}
	for _, r := range records {
		for _, opt := range r.Attributes[key].Options() {
			c, ok := counts[opt]
			if !ok {
				c = &OptionCount{Option: opt}
				counts[opt] = c
			}
			if subjectTeam != 0 && r.TeamNumber == subjectTeam {
				c.SubjectCount++
			} else {
				c.OthersCount++
			}
		}
	}

	out := make([]OptionCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Option < out[j].Option })
	return out
}

type TeamRow struct {
	Team     int                `json:"team"`
	Count    int                `json:"count"`
	Averages map[string]float64 `json:"averages"`
}

// Leaderboard groups records by team and averages each of the numeric keys
// per team. Pass Classes.Numeric so declared kinds are respected. Rows are
// sorted by metricKey descending, falling back to the first numeric key when
// metricKey is empty. Ties keep first appearance order.
func Leaderboard(records []scouting.Record, numeric []string, metricKey string) []TeamRow {
	if metricKey == "" && len(numeric) > 0 {
		metricKey = numeric[0]
	}

	var order []int
	byTeam := map[int][]scouting.Record{}
	for _, r := range records {
		if _, ok := byTeam[r.TeamNumber]; !ok {
			order = append(order, r.TeamNumber)
		}
		byTeam[r.TeamNumber] = append(byTeam[r.TeamNumber], r)
	}

	rows := make([]TeamRow, 0, len(order))
	for _, team := range order {
		teamRecords := byTeam[team]
		avgs := make(map[string]float64, len(numeric))
		for _, key := range numeric {
			avgs[key] = Average(teamRecords, key)
		}
		rows = append(rows, TeamRow{Team: team, Count: len(teamRecords), Averages: avgs})
	}

	if metricKey != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Averages[metricKey] > rows[j].Averages[metricKey]
		})
	}
	return rows
}

type SubmitterRow struct {
	SubmitterID string `json:"scout_id"`
	Name        string `json:"name"`
	MatchCount  int    `json:"match_count"`
	PitCount    int    `json:"pit_count"`
	Total       int    `json:"total"`
}

// SubmitterLeaderboard counts records per submitter across both record
// kinds, sorted by total descending. Records without a submitter are
// skipped. A non-empty viewer always gets a row; rank is the viewer's
// 1-based position, or 0 without a viewer.
func SubmitterLeaderboard(match, pit []scouting.Record, profiles map[string]scouting.Profile, viewer scouting.Profile) (rows []SubmitterRow, rank int) {
	var order []string
	byID := map[string]*SubmitterRow{}
	get := func(id string) *SubmitterRow {
		row, ok := byID[id]
		if !ok {
			row = &SubmitterRow{SubmitterID: id}
			byID[id] = row
			order = append(order, id)
		}
		return row
	}

	for _, r := range match {
		if r.SubmitterID != "" {
			get(r.SubmitterID).MatchCount++
		}
	}
	for _, r := range pit {
		if r.SubmitterID != "" {
			get(r.SubmitterID).PitCount++
		}
	}
	if viewer.ID != "" {
		get(viewer.ID)
	}

	rows = make([]SubmitterRow, 0, len(order))
	for _, id := range order {
		row := byID[id]
		row.Total = row.MatchCount + row.PitCount
		row.Name = displayName(id, profiles[id], viewer)
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })

	for i, row := range rows {
		if viewer.ID != "" && row.SubmitterID == viewer.ID {
			rank = i + 1
		}
	}
	return rows, rank
}

func displayName(id string, p scouting.Profile, viewer scouting.Profile) string {
	switch {
	case p.FullName != "":
		return p.FullName
	case p.Email != "":
		return p.Email
	}
	if id == viewer.ID {
		if viewer.FullName != "" {
			return viewer.FullName
		}
		if viewer.Email != "" {
			return viewer.Email
		}
	}
	return id
}

type Point struct {
	MatchKey string  `json:"match_key"`
	Value    float64 `json:"value"`
}

// Series returns one point per record for charting. Values that do not
// coerce plot as 0. Points are ordered by match key.
func Series(records []scouting.Record, key string) []Point {
	out := make([]Point, 0, len(records))
	for _, r := range records {
		v, _ := r.Attributes[key].Float()
		out = append(out, Point{MatchKey: r.MatchKey, Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchKey < out[j].MatchKey })
	return out
}

// LatestPit returns the most recently created pit record for team.
func LatestPit(records []scouting.Record, team int) (scouting.Record, bool) {
	var latest scouting.Record
	found := false
	for _, r := range records {
		if r.TeamNumber != team {
			continue
		}
		if !found || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
			found = true
		}
	}
	return latest, found
}

func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func partition(records []scouting.Record, team int) (subject, others []scouting.Record) {
	for _, r := range records {
		if team != 0 && r.TeamNumber == team {
			subject = append(subject, r)
		} else {
			others = append(others, r)
		}
	}
	return subject, others
}
