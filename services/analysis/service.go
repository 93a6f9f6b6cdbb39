package analysis

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/analytics"
	"github.com/frc-scouting/scout-sync/pkg/metrics"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
	"github.com/frc-scouting/scout-sync/repos/records"
	"github.com/frc-scouting/scout-sync/repos/store"
)

// Reference decorates output with team and event names.
type Reference interface {
	TeamInfo(ctx context.Context, numbers []int) map[int]scouting.Team
	EventNames(ctx context.Context, codes []string) map[string]string
}

type AnalysisService struct {
	repo      *records.Repository
	reference Reference
	logger    *zap.Logger
	now       func() time.Time
}

func NewAnalysisService(repo *records.Repository, reference Reference, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{repo: repo, reference: reference, logger: logger, now: time.Now}
}

// resolve builds the scope of q. Without an explicit event the viewer's
// checked-in event is used.
func (s *AnalysisService) resolve(ctx context.Context, q Query) (scouting.ScopeContext, scouting.Profile, error) {
	viewer := scouting.Profile{ID: q.ViewerID}
	if q.ViewerID != "" {
		p, err := s.repo.GetProfile(ctx, q.ViewerID)
		if err != nil {
			return scouting.ScopeContext{}, viewer, err
		}
		viewer = p
	}
	if viewer.Email == "" {
		viewer.Email = q.ViewerEmail
	}

	event := q.EventCode
	if event == "" {
		event = viewer.CurrentEventCode
	}
	return scouting.ResolveScope(q.Scope, event, q.Purpose, s.now()), viewer, nil
}

func (s *AnalysisService) Metrics(ctx context.Context, q Query) (*MetricsResponse, error) {
	scope, _, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.ListRecords(ctx, scope)
	if err != nil {
		return nil, err
	}
	return &MetricsResponse{
		Scope:     scope,
		EventName: s.eventName(ctx, scope),
		Records:   len(recs),
		Classes:   analytics.Classify(recs, s.schemaFields(ctx, scope)),
	}, nil
}

// TeamReport compares one team with the rest of the scope.
func (s *AnalysisService) TeamReport(ctx context.Context, q Query) (*TeamReport, error) {
	if q.Team <= 0 {
		return nil, &scouting.ValidationError{Field: "team", Reason: "team number is required"}
	}
	scope, _, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	scope = scope.WithPurpose(scouting.PurposeMatch)

	recs, err := s.repo.ListRecords(ctx, scope)
	if err != nil {
		return nil, err
	}
	classes := analytics.Classify(recs, s.schemaFields(ctx, scope))

	report := &TeamReport{
		Scope:       scope,
		EventName:   s.eventName(ctx, scope),
		Team:        scouting.Team{Number: q.Team},
		Numeric:     make([]NumericSummary, 0, len(classes.Numeric)),
		Categorical: make([]CategoricalSummary, 0, len(classes.Categorical)),
		Notes:       []TextNote{},
	}
	if t, ok := s.reference.TeamInfo(ctx, []int{q.Team})[q.Team]; ok {
		report.Team = t
	}

	for _, key := range classes.Numeric {
		cmp := analytics.TeamVsField(recs, key, q.Team)
		report.Numeric = append(report.Numeric, NumericSummary{
			Key:        key,
			SubjectAvg: analytics.Round2(cmp.SubjectAvg),
			OthersAvg:  analytics.Round2(cmp.OthersAvg),
			DeltaPct:   analytics.Round2(analytics.PercentDelta(cmp.SubjectAvg, cmp.OthersAvg)),
		})
	}
	for _, key := range classes.Categorical {
		report.Categorical = append(report.Categorical, CategoricalSummary{
			Key:     key,
			Options: analytics.OptionCounts(recs, key, q.Team),
		})
	}
	for _, r := range recs {
		if r.TeamNumber != q.Team {
			continue
		}
		report.Matches++
		for _, key := range classes.Text {
			if v := r.Attributes[key]; v.Kind() == scouting.ValueText && v.Str() != "" {
				report.Notes = append(report.Notes, TextNote{MatchKey: r.MatchKey, Key: key, Value: v.Str()})
			}
		}
	}
	sort.SliceStable(report.Notes, func(i, j int) bool { return report.Notes[i].MatchKey < report.Notes[j].MatchKey })

	pits, err := s.repo.ListRecords(ctx, scope.WithPurpose(scouting.PurposePit), store.Eq(scouting.ColTeamNumber, q.Team))
	if err != nil {
		return nil, err
	}
	if pit, ok := analytics.LatestPit(pits, q.Team); ok {
		report.Pit = &pit
	}
	return report, nil
}

func (s *AnalysisService) Leaderboard(ctx context.Context, q Query) (*LeaderboardResponse, error) {
	scope, _, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	scope = scope.WithPurpose(scouting.PurposeMatch)
	recs, err := s.repo.ListRecords(ctx, scope)
	if err != nil {
		return nil, err
	}

	numeric := analytics.Classify(recs, s.schemaFields(ctx, scope)).Numeric
	metric := q.Metric
	if metric == "" && len(numeric) > 0 {
		metric = numeric[0]
	}
	rows := analytics.Leaderboard(recs, numeric, metric)

	numbers := make([]int, len(rows))
	for i, row := range rows {
		numbers[i] = row.Team
	}
	teams := s.reference.TeamInfo(ctx, numbers)

	out := make([]LeaderboardRow, len(rows))
	for i, row := range rows {
		for k, v := range row.Averages {
			row.Averages[k] = analytics.Round2(v)
		}
		out[i] = LeaderboardRow{TeamRow: row, Nickname: teams[row.Team].Nickname, LogoURL: teams[row.Team].LogoURL}
	}
	return &LeaderboardResponse{Scope: scope, Metric: metric, Rows: out}, nil
}

// Scouts ranks submitters over both record kinds in scope.
func (s *AnalysisService) Scouts(ctx context.Context, q Query) (*ScoutsResponse, error) {
	scope, viewer, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	match, err := s.repo.ListRecords(ctx, scope.WithPurpose(scouting.PurposeMatch))
	if err != nil {
		return nil, err
	}
	pit, err := s.repo.ListRecords(ctx, scope.WithPurpose(scouting.PurposePit))
	if err != nil {
		return nil, err
	}

	ids := submitterIDs(match, pit)
	profiles, err := s.repo.Profiles(ctx, ids)
	if err != nil {
		s.logger.Warn("profile lookup failed", zap.Error(err))
		metrics.RecordBestEffortFailure("profiles")
		profiles = map[string]scouting.Profile{}
	}

	rows, rank := analytics.SubmitterLeaderboard(match, pit, profiles, viewer)
	return &ScoutsResponse{Scope: scope, Rows: rows, Rank: rank}, nil
}

func (s *AnalysisService) Series(ctx context.Context, q Query) (*SeriesResponse, error) {
	if q.Metric == "" {
		return nil, &scouting.ValidationError{Field: "key", Reason: "metric key is required"}
	}
	scope, _, err := s.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	scope = scope.WithPurpose(scouting.PurposeMatch)

	var extra []store.Filter
	if q.Team > 0 {
		extra = append(extra, store.Eq(scouting.ColTeamNumber, q.Team))
	}
	recs, err := s.repo.ListRecords(ctx, scope, extra...)
	if err != nil {
		return nil, err
	}
	return &SeriesResponse{Scope: scope, Team: q.Team, Key: q.Metric, Points: analytics.Series(recs, q.Metric)}, nil
}

// schemaFields returns the declared fields for classification, or nil to
// fall back to inference.
func (s *AnalysisService) schemaFields(ctx context.Context, scope scouting.ScopeContext) []scouting.FieldDefinition {
	schema, err := s.repo.LoadSchema(ctx, scope.Season, scope.Purpose)
	if errors.Is(err, scouting.ErrSchemaAbsent) {
		return nil
	}
	if err != nil {
		s.logger.Warn("form template lookup failed", zap.Error(err), zap.Int("season", scope.Season))
		metrics.RecordBestEffortFailure("load_template")
		return nil
	}
	return schema.Fields
}

func (s *AnalysisService) eventName(ctx context.Context, scope scouting.ScopeContext) string {
	if scope.Scope != scouting.ScopeEvent || scope.EventCode == "" {
		return ""
	}
	return s.reference.EventNames(ctx, []string{scope.EventCode})[scope.EventCode]
}

func submitterIDs(sets ...[]scouting.Record) []string {
	seen := map[string]bool{}
	var ids []string
	for _, recs := range sets {
		for _, r := range recs {
			if r.SubmitterID != "" && !seen[r.SubmitterID] {
				seen[r.SubmitterID] = true
				ids = append(ids, r.SubmitterID)
			}
		}
	}
	return ids
}
