package scouting

import (
	"fmt"
	"strings"
	"time"

	fieldID "github.com/frc-scouting/scout-sync/pkg/fieldID"
	"github.com/frc-scouting/scout-sync/repos/store"
	"golang.org/x/xerrors"
)

const CollectionTemplates = "form_templates"

// FormSchema is the ordered field list for one season and purpose.
type FormSchema struct {
	Season    int               `json:"season"`
	Purpose   FormPurpose       `json:"purpose"`
	Fields    []FieldDefinition `json:"fields"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SchemaKey is the conflict key a template is upserted under.
func SchemaKey(season int, purpose FormPurpose) string {
	return fmt.Sprintf("%d_%s", season, purpose)
}

// Field returns the definition with the given label.
func (s *FormSchema) Field(label string) (FieldDefinition, bool) {
	if s == nil {
		return FieldDefinition{}, false
	}
	for _, f := range s.Fields {
		if f.Label == label {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// NormalizeFields trims labels and options and assigns ids to fields that
// lack one. The input is not modified.
func NormalizeFields(fields []FieldDefinition) []FieldDefinition {
	out := make([]FieldDefinition, len(fields))
	for i, f := range fields {
		f.Label = strings.TrimSpace(f.Label)
		if f.ID == "" {
			f.ID = fieldID.New()
		}
		var opts []string
		for _, o := range f.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		f.Options = opts
		out[i] = f
	}
	return out
}

// ValidateFields checks the schema invariants: unique non-empty labels and
// ids, known kinds, and options present exactly for multiselect fields.
func ValidateFields(fields []FieldDefinition) error {
	labels := make(map[string]bool, len(fields))
	ids := make(map[string]bool, len(fields))
	for i, f := range fields {
		name := fmt.Sprintf("fields[%d]", i)
		if strings.TrimSpace(f.Label) == "" {
			return invalid(name, "label is required")
		}
		if labels[f.Label] {
			return invalid(name, "duplicate label %q", f.Label)
		}
		labels[f.Label] = true

		if f.ID != "" {
			if ids[f.ID] {
				return invalid(name, "duplicate id %q", f.ID)
			}
			ids[f.ID] = true
		}

		switch f.Kind {
		case KindMultiSelect:
			if len(f.Options) == 0 {
				return invalid(name, "multiselect field %q needs at least one option", f.Label)
			}
		case KindCounter, KindCheckbox, KindText:
			if len(f.Options) > 0 {
				return invalid(name, "%s field %q cannot have options", f.Kind, f.Label)
			}
		default:
			return invalid(name, "unknown field type %q", f.Kind)
		}
	}
	return nil
}

// ParseOptions splits a comma separated option list, dropping blanks.
func ParseOptions(raw string) []string {
	var opts []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			opts = append(opts, part)
		}
	}
	return opts
}

// AddField appends a new field with a fresh id. Options only apply to
// multiselect fields. The returned list fails ValidateFields exactly when
// the addition breaks an invariant; AddField checks it up front.
func AddField(fields []FieldDefinition, label string, kind FieldKind, options []string) ([]FieldDefinition, error) {
	f := FieldDefinition{Label: strings.TrimSpace(label), Kind: kind}
	if kind == KindMultiSelect {
		f.Options = options
	}
	next := make([]FieldDefinition, len(fields), len(fields)+1)
	copy(next, fields)
	next = append(next, f)
	next = NormalizeFields(next)
	if err := ValidateFields(next); err != nil {
		return fields, err
	}
	return next, nil
}

// RemoveField drops the field with the given id.
func RemoveField(fields []FieldDefinition, id string) []FieldDefinition {
	next := make([]FieldDefinition, 0, len(fields))
	for _, f := range fields {
		if f.ID != id {
			next = append(next, f)
		}
	}
	return next
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MoveField swaps the field with its neighbour. Moving past either end, or
// an unknown id, leaves the order unchanged.
func MoveField(fields []FieldDefinition, id string, dir Direction) []FieldDefinition {
	next := make([]FieldDefinition, len(fields))
	copy(next, fields)

	idx := -1
	for i, f := range next {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return next
	}
	target := idx + 1
	if dir == Up {
		target = idx - 1
	}
	if target < 0 || target >= len(next) {
		return next
	}
	next[idx], next[target] = next[target], next[idx]
	return next
}

// ToRow encodes the schema for the store.
func (s FormSchema) ToRow() store.Row {
	defs := make([]interface{}, len(s.Fields))
	for i, f := range s.Fields {
		defs[i] = f.toMap()
	}
	return store.Row{
		"key":             SchemaKey(s.Season, s.Purpose),
		"season":          s.Season,
		"purpose":         string(s.Purpose),
		"form_definition": defs,
		"updated_at":      s.UpdatedAt,
	}
}

// SchemaFromRow decodes a stored template.
func SchemaFromRow(row store.Row) (*FormSchema, error) {
	s := &FormSchema{}
	if season, ok := row["season"].(int64); ok {
		s.Season = int(season)
	}
	purpose, _ := row["purpose"].(string)
	p, err := ParsePurpose(purpose)
	if err != nil {
		return nil, xerrors.Errorf("consistency error. Template %s has purpose %q: %w", row.ID(), purpose, err)
	}
	s.Purpose = p
	if t, ok := row["updated_at"].(time.Time); ok {
		s.UpdatedAt = t
	}

	defs, _ := row["form_definition"].([]interface{})
	s.Fields = make([]FieldDefinition, 0, len(defs))
	for _, d := range defs {
		m, ok := d.(map[string]interface{})
		if !ok {
			continue
		}
		f, err := fieldFromMap(m)
		if err != nil {
			return nil, xerrors.Errorf(
				"consistency error. Converting %+v to a field definition failed: %w",
				m,
				err,
			)
		}
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}
