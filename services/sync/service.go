package sync

import (
	"context"
	"strings"
	"time"

	"github.com/xorcare/pointer"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/metrics"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
	timehelper "github.com/frc-scouting/scout-sync/pkg/timeHelper"
	"github.com/frc-scouting/scout-sync/repos/records"
	"github.com/frc-scouting/scout-sync/repos/tba"
)

// eventChunk is how many events go into one upsert.
const eventChunk = 1000

// Schedule is the part of the TBA client the sync reads.
type Schedule interface {
	Events(ctx context.Context, season int) ([]tba.Event, error)
	EventTeams(ctx context.Context, eventCode string) ([]tba.Team, error)
	EventMatches(ctx context.Context, eventCode string) ([]tba.Match, error)
	ResolveTeamLogo(ctx context.Context, team, season int) (string, error)
}

// Forgetter drops cached team data after an import.
type Forgetter interface {
	Forget(numbers []int)
}

type SyncService struct {
	repo      *records.Repository
	schedule  Schedule
	reference Forgetter
	logger    *zap.Logger
	now       func() time.Time
}

func NewSyncService(repo *records.Repository, schedule Schedule, reference Forgetter, logger *zap.Logger) *SyncService {
	return &SyncService{repo: repo, schedule: schedule, reference: reference, logger: logger, now: time.Now}
}

// ImportEvents copies the season's event list from TBA.
func (s *SyncService) ImportEvents(ctx context.Context, season int) (int, error) {
	remote, err := s.schedule.Events(ctx, season)
	if err != nil {
		return 0, err
	}

	events := make([]scouting.Event, 0, len(remote))
	for _, e := range remote {
		code := deref(e.Key)
		if code == "" {
			continue
		}
		events = append(events, scouting.Event{
			Code:      code,
			Name:      deref(e.Name),
			StartDate: deref(e.StartDate),
			EndDate:   deref(e.EndDate),
		})
	}
	if err := s.repo.UpsertEvents(ctx, events, eventChunk); err != nil {
		return 0, err
	}
	s.logger.Info("events imported", zap.Int("season", season), zap.Int("count", len(events)))
	return len(events), nil
}

// ImportMatches stores the event's schedule. An event not yet known is
// created with its code as the name.
func (s *SyncService) ImportMatches(ctx context.Context, eventCode string) (int, error) {
	eventCode = strings.TrimSpace(eventCode)
	if err := s.ensureEvent(ctx, eventCode); err != nil {
		return 0, err
	}

	remote, err := s.schedule.EventMatches(ctx, eventCode)
	if err != nil {
		return 0, err
	}
	matches := make([]scouting.Match, 0, len(remote))
	for _, m := range remote {
		if match, ok := matchFromTBA(eventCode, m); ok {
			matches = append(matches, match)
		}
	}
	if err := s.repo.UpsertMatches(ctx, matches); err != nil {
		return 0, err
	}
	s.logger.Info("matches imported", zap.String("event_code", eventCode), zap.Int("count", len(matches)))
	return len(matches), nil
}

// ImportTeams stores the event's teams, then looks up a logo for each.
// Logo failures are logged and skipped.
func (s *SyncService) ImportTeams(ctx context.Context, eventCode string) (int, int, error) {
	eventCode = strings.TrimSpace(eventCode)
	if err := s.ensureEvent(ctx, eventCode); err != nil {
		return 0, 0, err
	}

	remote, err := s.schedule.EventTeams(ctx, eventCode)
	if err != nil {
		return 0, 0, err
	}
	teams := make([]scouting.Team, 0, len(remote))
	numbers := make([]int, 0, len(remote))
	for _, t := range remote {
		var number int
		if t.TeamNumber != nil {
			number = *t.TeamNumber
		} else {
			number, _ = tba.FrcKeyToNumber(deref(t.Key))
		}
		if number <= 0 {
			continue
		}
		teams = append(teams, scouting.Team{Number: number, Nickname: deref(t.Nickname), Name: deref(t.Name)})
		numbers = append(numbers, number)
	}
	if err := s.repo.UpsertTeams(ctx, teams); err != nil {
		return 0, 0, err
	}
	defer s.reference.Forget(numbers)

	season := timehelper.SeasonFromEventCode(eventCode, s.now())
	logos := 0
	for _, n := range numbers {
		url, err := s.schedule.ResolveTeamLogo(ctx, n, season)
		if err != nil {
			s.logger.Warn("logo lookup failed", zap.Int("team", n), zap.Error(err))
			metrics.RecordBestEffortFailure("team_logo")
			continue
		}
		if url == "" {
			continue
		}
		if err := s.repo.UpsertTeams(ctx, []scouting.Team{{Number: n, LogoURL: url}}); err != nil {
			s.logger.Warn("logo save failed", zap.Int("team", n), zap.Error(err))
			metrics.RecordBestEffortFailure("team_logo")
			continue
		}
		logos++
	}
	s.logger.Info("teams imported", zap.String("event_code", eventCode), zap.Int("count", len(teams)), zap.Int("logos", logos))
	return len(teams), logos, nil
}

func (s *SyncService) ensureEvent(ctx context.Context, eventCode string) error {
	if eventCode == "" {
		return &scouting.ValidationError{Field: "event_code", Reason: "event code is required"}
	}
	known, err := s.repo.Events(ctx, []string{eventCode})
	if err != nil {
		return err
	}
	if len(known) > 0 {
		return nil
	}
	return s.repo.UpsertEvents(ctx, []scouting.Event{{Code: eventCode, Name: eventCode}}, eventChunk)
}

// matchFromTBA converts one schedule entry. Entries without a key or
// without any team are dropped.
func matchFromTBA(eventCode string, m tba.Match) (scouting.Match, bool) {
	key := tba.ShortMatchKey(deref(m.Key))
	if key == "" {
		return scouting.Match{}, false
	}
	out := scouting.Match{
		EventCode: eventCode,
		MatchKey:  key,
		RedTeams:  teamNumbers(m.Alliances.Red.TeamKeys),
		BlueTeams: teamNumbers(m.Alliances.Blue.TeamKeys),
	}
	if len(out.RedTeams)+len(out.BlueTeams) == 0 {
		return scouting.Match{}, false
	}
	if m.Time != nil && *m.Time > 0 {
		out.ScheduledAt = pointer.Time(time.Unix(*m.Time, 0).UTC())
	}
	return out, true
}

func teamNumbers(keys []string) []int {
	out := make([]int, 0, len(keys))
	for _, k := range keys {
		if n, ok := tba.FrcKeyToNumber(k); ok {
			out = append(out, n)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
