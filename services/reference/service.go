package reference

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/metrics"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
	"github.com/frc-scouting/scout-sync/repos/records"
)

// ReferenceService serves event and team lookups used to decorate output.
// Lookups never fail: store errors are logged and the result is whatever
// could be found.
type ReferenceService struct {
	repo   *records.Repository
	cache  *cache.Cache
	logger *zap.Logger
}

func NewReferenceService(repo *records.Repository, ttl time.Duration, logger *zap.Logger) *ReferenceService {
	return &ReferenceService{
		repo:   repo,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

func teamKey(n int) string        { return fmt.Sprintf("team:%d", n) }
func eventKey(code string) string { return "event:" + code }

func (s *ReferenceService) TeamInfo(ctx context.Context, numbers []int) map[int]scouting.Team {
	out := make(map[int]scouting.Team, len(numbers))
	var missing []int
	for _, n := range uniqueInts(numbers) {
		if v, found := s.cache.Get(teamKey(n)); found {
			out[n] = v.(scouting.Team)
			continue
		}
		missing = append(missing, n)
	}
	if len(missing) == 0 {
		return out
	}

	teams, err := s.repo.Teams(ctx, missing)
	if err != nil {
		s.logger.Warn("team lookup failed", zap.Ints("teams", missing), zap.Error(err))
		metrics.RecordBestEffortFailure("reference_teams")
		return out
	}
	for _, t := range teams {
		s.cache.Set(teamKey(t.Number), t, cache.DefaultExpiration)
		out[t.Number] = t
	}
	return out
}

func (s *ReferenceService) EventNames(ctx context.Context, codes []string) map[string]string {
	out := make(map[string]string, len(codes))
	var missing []string
	seen := map[string]bool{}
	for _, code := range codes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		if v, found := s.cache.Get(eventKey(code)); found {
			out[code] = v.(string)
			continue
		}
		missing = append(missing, code)
	}
	if len(missing) == 0 {
		return out
	}

	events, err := s.repo.Events(ctx, missing)
	if err != nil {
		s.logger.Warn("event lookup failed", zap.Strings("events", missing), zap.Error(err))
		metrics.RecordBestEffortFailure("reference_events")
		return out
	}
	for _, e := range events {
		s.cache.Set(eventKey(e.Code), e.Name, cache.DefaultExpiration)
		out[e.Code] = e.Name
	}
	return out
}

// ListEvents returns the stored events of a season for the check-in picker.
func (s *ReferenceService) ListEvents(ctx context.Context, season int) ([]scouting.Event, error) {
	return s.repo.ListEvents(ctx, season)
}

// Forget drops cached teams, so a fresh import is visible at once.
func (s *ReferenceService) Forget(numbers []int) {
	for _, n := range numbers {
		s.cache.Delete(teamKey(n))
	}
}

func uniqueInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, n := range in {
		if n == 0 || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
