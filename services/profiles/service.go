package profiles

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/auth"
	"github.com/frc-scouting/scout-sync/pkg/metrics"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
	"github.com/frc-scouting/scout-sync/repos/records"
)

// Importer pulls an event's schedule into the store.
type Importer interface {
	ImportMatches(ctx context.Context, eventCode string) (int, error)
	ImportTeams(ctx context.Context, eventCode string) (int, int, error)
}

type ProfilesService struct {
	repo     *records.Repository
	importer Importer
	logger   *zap.Logger
}

func NewProfilesService(repo *records.Repository, importer Importer, logger *zap.Logger) *ProfilesService {
	return &ProfilesService{repo: repo, importer: importer, logger: logger}
}

func (s *ProfilesService) Get(ctx context.Context, user auth.User) (scouting.Profile, error) {
	p, err := s.repo.GetProfile(ctx, user.ID)
	if err != nil {
		return scouting.Profile{}, err
	}
	if p.Email == "" {
		p.Email = user.Email
	}
	return p, nil
}

// Update stores the caller's name and email. The token's values are used
// where the request leaves them out.
func (s *ProfilesService) Update(ctx context.Context, user auth.User, request UpdateRequest) (scouting.Profile, error) {
	p := scouting.Profile{
		ID:       user.ID,
		Email:    strings.TrimSpace(request.Email),
		FullName: strings.TrimSpace(request.FullName),
	}
	if p.Email == "" {
		p.Email = user.Email
	}
	if p.FullName == "" {
		p.FullName = user.Name
	}
	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return scouting.Profile{}, err
	}
	return s.Get(ctx, user)
}

// Checkin sets the caller's current event, then imports the event's
// schedule and teams. Import failures are logged and leave the check-in in
// place.
func (s *ProfilesService) Checkin(ctx context.Context, user auth.User, eventCode string) (*CheckinResponse, error) {
	eventCode = strings.TrimSpace(eventCode)
	if eventCode == "" {
		return nil, &scouting.ValidationError{Field: "event_code", Reason: "event code is required"}
	}
	if err := s.repo.UpsertProfile(ctx, scouting.Profile{ID: user.ID, Email: user.Email, CurrentEventCode: eventCode}); err != nil {
		return nil, err
	}
	profile, err := s.Get(ctx, user)
	if err != nil {
		return nil, err
	}

	resp := &CheckinResponse{Profile: profile}
	if n, err := s.importer.ImportMatches(ctx, eventCode); err != nil {
		s.logger.Warn("match import on check-in failed", zap.String("event_code", eventCode), zap.Error(err))
		metrics.RecordBestEffortFailure("checkin_matches")
		resp.Partial = true
	} else {
		resp.Matches = n
	}
	if n, _, err := s.importer.ImportTeams(ctx, eventCode); err != nil {
		s.logger.Warn("team import on check-in failed", zap.String("event_code", eventCode), zap.Error(err))
		metrics.RecordBestEffortFailure("checkin_teams")
		resp.Partial = true
	} else {
		resp.Teams = n
	}
	return resp, nil
}
