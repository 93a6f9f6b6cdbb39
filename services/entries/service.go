package entries

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/metrics"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
	timehelper "github.com/frc-scouting/scout-sync/pkg/timeHelper"
	"github.com/frc-scouting/scout-sync/repos/blob"
	"github.com/frc-scouting/scout-sync/repos/records"
)

// Photo is one uploaded pit photo.
type Photo struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type EntriesService struct {
	repo     *records.Repository
	uploader blob.Uploader
	logger   *zap.Logger
	now      func() time.Time
}

func NewEntriesService(repo *records.Repository, uploader blob.Uploader, logger *zap.Logger) *EntriesService {
	return &EntriesService{repo: repo, uploader: uploader, logger: logger, now: time.Now}
}

// Form returns a fresh collector for the season's template. A season
// without a template yields a collector with no fields.
func (s *EntriesService) Form(ctx context.Context, season int, purpose scouting.FormPurpose, eventCode string) (scouting.Collector, error) {
	fields, err := s.fields(ctx, season, purpose)
	if err != nil {
		return scouting.Collector{}, err
	}
	if fields == nil {
		fields = []scouting.FieldDefinition{}
	}
	return scouting.NewCollector(purpose, season, strings.TrimSpace(eventCode), fields), nil
}

func (s *EntriesService) Submit(ctx context.Context, purpose scouting.FormPurpose, req SubmitRequest, submitter scouting.Identity) (*SubmitResponse, error) {
	season := req.Season
	if season <= 0 {
		season = timehelper.SeasonFromEventCode(strings.TrimSpace(req.EventCode), s.now())
	}

	// The record is not checked against the template; the fields are only
	// needed to reset the form afterwards.
	fields, err := s.fields(ctx, season, purpose)
	if err != nil {
		s.logger.Warn("Failed to load form template for submission", zap.Error(err), zap.Int("season", season))
		metrics.RecordBestEffortFailure("load_template")
		fields = nil
	}

	collector := scouting.NewCollector(purpose, season, strings.TrimSpace(req.EventCode), fields).WithValues(req.Metrics)
	collector.MatchKey = req.MatchKey
	collector.TeamNumber = req.TeamNumber

	ident := submitter
	ident.ObservedAt = req.ObservedAt
	ident.Photos = req.Photos

	next, rec, err := collector.Submit(ident, func(r *scouting.Record) error {
		r.CreatedAt = s.now().UTC()
		return s.repo.InsertRecord(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordSubmission(string(purpose))
	s.logger.Info("entry submitted",
		zap.String("purpose", string(purpose)),
		zap.String("event_code", rec.EventCode),
		zap.Int("team_number", rec.TeamNumber),
		zap.String("id", rec.ID),
	)
	return &SubmitResponse{Record: rec, Next: next}, nil
}

// UploadPhotos stores pit photos and returns their public URLs in order.
// Uploading stops at the first failure.
func (s *EntriesService) UploadPhotos(ctx context.Context, eventCode string, team int, photos []Photo) ([]string, error) {
	if strings.TrimSpace(eventCode) == "" {
		return nil, &scouting.ValidationError{Field: "event_code", Reason: "event code is required"}
	}
	if team <= 0 {
		return nil, &scouting.ValidationError{Field: "team_number", Reason: "team number is required"}
	}

	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		contentType := photoContentType(p)
		if !strings.HasPrefix(contentType, "image/") {
			return nil, &scouting.ValidationError{Field: "photos", Reason: fmt.Sprintf("%s is not an image", p.Filename)}
		}
		url, err := s.uploader.Upload(ctx, blob.PhotoPath(eventCode, team, p.Filename), contentType, p.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to upload photo %s: %w", p.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *EntriesService) fields(ctx context.Context, season int, purpose scouting.FormPurpose) ([]scouting.FieldDefinition, error) {
	schema, err := s.repo.LoadSchema(ctx, season, purpose)
	if errors.Is(err, scouting.ErrSchemaAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return schema.Fields, nil
}

func photoContentType(p Photo) string {
	if ct, _, err := mime.ParseMediaType(p.ContentType); err == nil && ct != "application/octet-stream" {
		return ct
	}
	return mime.TypeByExtension(strings.ToLower(path.Ext(p.Filename)))
}
