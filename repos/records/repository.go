package records

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/metrics"
	"github.com/frc-scouting/scout-sync/pkg/scouting"
	"github.com/frc-scouting/scout-sync/repos/store"
)

// colUID duplicates a profile's document id as a field so it can be
// filtered on.
const colUID = "uid"

// Repository reads and writes the scouting collections through a Store.
// Every store failure comes back as a *scouting.StoreError.
type Repository struct {
	store  store.Store
	logger *zap.Logger
}

func NewRepository(s store.Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: s, logger: logger}
}

// LoadSchema returns scouting.ErrSchemaAbsent when no template was saved.
func (r *Repository) LoadSchema(ctx context.Context, season int, purpose scouting.FormPurpose) (*scouting.FormSchema, error) {
	row, err := r.store.Get(ctx, scouting.CollectionTemplates, scouting.SchemaKey(season, purpose))
	if errors.Is(err, store.ErrNotFound) {
		return nil, scouting.ErrSchemaAbsent
	}
	if err != nil {
		return nil, scouting.WrapStore("load schema", err)
	}
	return scouting.SchemaFromRow(row)
}

// SaveSchema validates the fields and replaces the template. Nothing is
// written when validation fails.
func (r *Repository) SaveSchema(ctx context.Context, schema scouting.FormSchema) (*scouting.FormSchema, error) {
	schema.Fields = scouting.NormalizeFields(schema.Fields)
	if err := scouting.ValidateFields(schema.Fields); err != nil {
		return nil, err
	}
	if err := r.store.Upsert(ctx, scouting.CollectionTemplates, "key", []store.Row{schema.ToRow()}); err != nil {
		return nil, scouting.WrapStore("save schema", err)
	}
	return &schema, nil
}

// InsertRecord stores rec and fills in its id.
func (r *Repository) InsertRecord(ctx context.Context, rec *scouting.Record) error {
	id, err := r.store.Insert(ctx, scouting.EntryCollection(rec.Purpose), rec.ToRow())
	if err != nil {
		return scouting.WrapStore("insert entry", err)
	}
	rec.ID = id
	return nil
}

// ListRecords returns the records inside scope, oldest first. Extra filters
// narrow the selection further. Rows that cannot be decoded are logged and
// skipped.
func (r *Repository) ListRecords(ctx context.Context, scope scouting.ScopeContext, extra ...store.Filter) ([]scouting.Record, error) {
	filters := append(scope.Filters(), extra...)
	rows, err := r.store.Select(ctx, store.Query{
		Collection: scouting.EntryCollection(scope.Purpose),
		Filters:    filters,
		OrderBy:    []store.Order{{Column: scouting.ColCreatedAt}},
	})
	if err != nil {
		return nil, scouting.WrapStore("list entries", err)
	}

	records := make([]scouting.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := scouting.RecordFromRow(scope.Purpose, row)
		if err != nil {
			r.logger.Warn("Skipping undecodable entry", zap.String("id", row.ID()), zap.Error(err))
			metrics.RecordBestEffortFailure("decode_entry")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// DeleteSince removes entries of a purpose created at or after since.
func (r *Repository) DeleteSince(ctx context.Context, purpose scouting.FormPurpose, since time.Time) (int, error) {
	n, err := r.store.DeleteWhere(ctx, scouting.EntryCollection(purpose), []store.Filter{store.Gte(scouting.ColCreatedAt, since)})
	return n, scouting.WrapStore("delete recent entries", err)
}

func (r *Repository) DeleteAll(ctx context.Context, purpose scouting.FormPurpose) (int, error) {
	n, err := r.store.DeleteWhere(ctx, scouting.EntryCollection(purpose), nil)
	return n, scouting.WrapStore("delete entries", err)
}

// GetProfile returns an empty profile carrying only the id when none is
// stored.
func (r *Repository) GetProfile(ctx context.Context, id string) (scouting.Profile, error) {
	row, err := r.store.Get(ctx, scouting.CollectionProfiles, id)
	if errors.Is(err, store.ErrNotFound) {
		return scouting.Profile{ID: id}, nil
	}
	if err != nil {
		return scouting.Profile{}, scouting.WrapStore("get profile", err)
	}
	return scouting.ProfileFromRow(row), nil
}

// Profiles looks up the given ids. Unknown ids are left out.
func (r *Repository) Profiles(ctx context.Context, ids []string) (map[string]scouting.Profile, error) {
	out := map[string]scouting.Profile{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.store.Select(ctx, store.Query{
		Collection: scouting.CollectionProfiles,
		Filters:    []store.Filter{store.In(colUID, ids)},
	})
	if err != nil {
		return nil, scouting.WrapStore("list profiles", err)
	}
	for _, row := range rows {
		p := scouting.ProfileFromRow(row)
		out[p.ID] = p
	}
	return out, nil
}

// UpsertProfile merges the non-empty attributes of p into the stored
// profile.
func (r *Repository) UpsertProfile(ctx context.Context, p scouting.Profile) error {
	row := store.Row{colUID: p.ID}
	if p.Email != "" {
		row["email"] = p.Email
	}
	if p.FullName != "" {
		row["full_name"] = p.FullName
	}
	if p.CurrentEventCode != "" {
		row["current_event_code"] = p.CurrentEventCode
	}
	return scouting.WrapStore("upsert profile", r.store.Upsert(ctx, scouting.CollectionProfiles, colUID, []store.Row{row}))
}

// UpsertEvents writes events in chunks keyed by event code.
func (r *Repository) UpsertEvents(ctx context.Context, events []scouting.Event, chunkSize int) error {
	rows := make([]store.Row, 0, len(events))
	for _, e := range events {
		row := store.Row{"code": e.Code, "name": e.Name}
		if e.StartDate != "" {
			row["start_date"] = e.StartDate
		}
		if e.EndDate != "" {
			row["end_date"] = e.EndDate
		}
		rows = append(rows, row)
	}
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := r.store.Upsert(ctx, scouting.CollectionEvents, "code", rows[start:end]); err != nil {
			return scouting.WrapStore("upsert events", err)
		}
	}
	return nil
}

// ListEvents returns stored events whose code starts with the season.
func (r *Repository) ListEvents(ctx context.Context, season int) ([]scouting.Event, error) {
	rows, err := r.store.Select(ctx, store.Query{
		Collection: scouting.CollectionEvents,
		OrderBy:    []store.Order{{Column: "code"}},
	})
	if err != nil {
		return nil, scouting.WrapStore("list events", err)
	}
	prefix := strconv.Itoa(season)
	var out []scouting.Event
	for _, row := range rows {
		e := eventFromRow(row)
		if season == 0 || strings.HasPrefix(e.Code, prefix) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *Repository) Events(ctx context.Context, codes []string) ([]scouting.Event, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, store.Query{
		Collection: scouting.CollectionEvents,
		Filters:    []store.Filter{store.In("code", codes)},
	})
	if err != nil {
		return nil, scouting.WrapStore("get events", err)
	}
	out := make([]scouting.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventFromRow(row))
	}
	return out, nil
}

// UpsertMatches writes a schedule keyed by "<event>_<match key>".
func (r *Repository) UpsertMatches(ctx context.Context, matches []scouting.Match) error {
	if len(matches) == 0 {
		return nil
	}
	rows := make([]store.Row, 0, len(matches))
	for _, m := range matches {
		row := store.Row{
			"key":        m.EventCode + "_" + m.MatchKey,
			"event_code": m.EventCode,
			"match_key":  m.MatchKey,
			"red_teams":  m.RedTeams,
			"blue_teams": m.BlueTeams,
		}
		if m.ScheduledAt != nil {
			row["scheduled_at"] = *m.ScheduledAt
		} else {
			row["scheduled_at"] = nil
		}
		rows = append(rows, row)
	}
	return scouting.WrapStore("upsert matches", r.store.Upsert(ctx, scouting.CollectionMatches, "key", rows))
}

// UpsertTeams merges team rows keyed by number. Empty attributes are not
// written so a logo-only update keeps the names.
func (r *Repository) UpsertTeams(ctx context.Context, teams []scouting.Team) error {
	if len(teams) == 0 {
		return nil
	}
	rows := make([]store.Row, 0, len(teams))
	for _, t := range teams {
		row := store.Row{"number": t.Number}
		if t.Nickname != "" {
			row["nickname"] = t.Nickname
		}
		if t.Name != "" {
			row["name"] = t.Name
		}
		if t.LogoURL != "" {
			row["logo_url"] = t.LogoURL
		}
		rows = append(rows, row)
	}
	return scouting.WrapStore("upsert teams", r.store.Upsert(ctx, scouting.CollectionTeams, "number", rows))
}

func (r *Repository) Teams(ctx context.Context, numbers []int) ([]scouting.Team, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	rows, err := r.store.Select(ctx, store.Query{
		Collection: scouting.CollectionTeams,
		Filters:    []store.Filter{store.In("number", numbers)},
	})
	if err != nil {
		return nil, scouting.WrapStore("get teams", err)
	}
	out := make([]scouting.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, scouting.TeamFromRow(row))
	}
	return out, nil
}

func eventFromRow(row store.Row) scouting.Event {
	var e scouting.Event
	e.Code, _ = row["code"].(string)
	e.Name, _ = row["name"].(string)
	e.StartDate, _ = row["start_date"].(string)
	e.EndDate, _ = row["end_date"].(string)
	return e
}
