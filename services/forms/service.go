package forms

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/scouting"
	"github.com/frc-scouting/scout-sync/repos/records"
)

type FormsService struct {
	repo   *records.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewFormsService(repo *records.Repository, logger *zap.Logger) *FormsService {
	return &FormsService{repo: repo, logger: logger, now: time.Now}
}

// GetSchema passes scouting.ErrSchemaAbsent through so callers can render
// an empty form.
func (s *FormsService) GetSchema(ctx context.Context, season int, purpose scouting.FormPurpose) (*scouting.FormSchema, error) {
	return s.repo.LoadSchema(ctx, season, purpose)
}

func (s *FormsService) SaveSchema(ctx context.Context, season int, purpose scouting.FormPurpose, fields []scouting.FieldDefinition) (*scouting.FormSchema, error) {
	saved, err := s.repo.SaveSchema(ctx, scouting.FormSchema{
		Season:    season,
		Purpose:   purpose,
		Fields:    fields,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("form template saved",
		zap.Int("season", season),
		zap.String("purpose", string(purpose)),
		zap.Int("fields", len(saved.Fields)),
	)
	return saved, nil
}

func (s *FormsService) AddField(ctx context.Context, season int, purpose scouting.FormPurpose, req AddFieldRequest) (*scouting.FormSchema, error) {
	kind, err := scouting.ParseFieldKind(req.Type)
	if err != nil {
		return nil, err
	}
	options := req.Options
	if len(options) == 0 && strings.TrimSpace(req.OptionsCSV) != "" {
		options = scouting.ParseOptions(req.OptionsCSV)
	}
	return s.edit(ctx, season, purpose, func(fields []scouting.FieldDefinition) ([]scouting.FieldDefinition, error) {
		next, err := scouting.AddField(fields, req.Label, kind, options)
		if err != nil {
			return nil, err
		}
		if req.Multiple && kind == scouting.KindMultiSelect {
			next[len(next)-1].Multiple = true
		}
		return next, nil
	})
}

func (s *FormsService) RemoveField(ctx context.Context, season int, purpose scouting.FormPurpose, id string) (*scouting.FormSchema, error) {
	return s.edit(ctx, season, purpose, func(fields []scouting.FieldDefinition) ([]scouting.FieldDefinition, error) {
		return scouting.RemoveField(fields, id), nil
	})
}

func (s *FormsService) MoveField(ctx context.Context, season int, purpose scouting.FormPurpose, id string, dir scouting.Direction) (*scouting.FormSchema, error) {
	if dir != scouting.Up && dir != scouting.Down {
		return nil, &scouting.ValidationError{Field: "dir", Reason: "direction must be up or down"}
	}
	return s.edit(ctx, season, purpose, func(fields []scouting.FieldDefinition) ([]scouting.FieldDefinition, error) {
		return scouting.MoveField(fields, id, dir), nil
	})
}

// edit loads the template, applies change and saves the result. A season
// without a template starts from an empty field list.
func (s *FormsService) edit(ctx context.Context, season int, purpose scouting.FormPurpose, change func([]scouting.FieldDefinition) ([]scouting.FieldDefinition, error)) (*scouting.FormSchema, error) {
	var fields []scouting.FieldDefinition
	schema, err := s.repo.LoadSchema(ctx, season, purpose)
	switch {
	case errors.Is(err, scouting.ErrSchemaAbsent):
	case err != nil:
		return nil, err
	default:
		fields = schema.Fields
	}

	next, err := change(fields)
	if err != nil {
		return nil, err
	}
	return s.SaveSchema(ctx, season, purpose, next)
}
