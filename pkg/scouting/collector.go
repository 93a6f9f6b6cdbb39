package scouting

import (
	"strings"
	"time"
)

// InitialValues returns the starting value of every field on a fresh form.
func InitialValues(fields []FieldDefinition) Attributes {
	attrs := make(Attributes, len(fields))
	for _, f := range fields {
		attrs[f.Label] = f.ZeroValue()
	}
	return attrs
}

// SetValue returns a copy of attrs with label set to v.
func SetValue(attrs Attributes, label string, v Value) Attributes {
	next := attrs.Clone()
	next[label] = v
	return next
}

// Increment adds one to a counter. A missing or non-numeric value counts as 0.
func Increment(attrs Attributes, label string) Attributes {
	n, _ := attrs[label].Float()
	return SetValue(attrs, label, Number(n+1))
}

// Decrement subtracts one from a counter, flooring at zero.
func Decrement(attrs Attributes, label string) Attributes {
	n, _ := attrs[label].Float()
	if n-1 < 0 {
		return SetValue(attrs, label, Number(0))
	}
	return SetValue(attrs, label, Number(n-1))
}

// Identity holds the identifying attributes of a record about to be built.
type Identity struct {
	Purpose       FormPurpose
	Season        int
	EventCode     string
	MatchKey      string
	TeamNumber    int
	SubmitterID   string
	SubmitterName string
	ObservedAt    *time.Time
	Photos        []string
}

// BuildRecord checks the identifying attributes required for the purpose and
// assembles a record. The attribute map is copied as is; it is not checked
// against any schema.
func BuildRecord(ident Identity, attrs Attributes) (Record, error) {
	purpose := ident.Purpose
	if purpose == "" {
		purpose = PurposeMatch
	}
	if strings.TrimSpace(ident.EventCode) == "" {
		return Record{}, invalid("event_code", "event code is required")
	}
	if purpose == PurposeMatch && strings.TrimSpace(ident.MatchKey) == "" {
		return Record{}, invalid("match_key", "match key is required")
	}
	if ident.TeamNumber <= 0 {
		return Record{}, invalid("team_number", "team number is required")
	}
	if attrs == nil {
		attrs = Attributes{}
	}

	r := Record{
		Purpose:       purpose,
		Season:        ident.Season,
		EventCode:     strings.TrimSpace(ident.EventCode),
		TeamNumber:    ident.TeamNumber,
		SubmitterID:   ident.SubmitterID,
		SubmitterName: ident.SubmitterName,
		Attributes:    attrs.Clone(),
		ObservedAt:    ident.ObservedAt,
	}
	if purpose == PurposeMatch {
		r.MatchKey = strings.TrimSpace(ident.MatchKey)
	} else {
		r.Photos = append([]string(nil), ident.Photos...)
	}
	return r, nil
}

// Collector is the state of one operator's entry form.
type Collector struct {
	Purpose    FormPurpose       `json:"purpose"`
	Season     int               `json:"season"`
	EventCode  string            `json:"event_code"`
	MatchKey   string            `json:"match_key"`
	TeamNumber int               `json:"team_number"`
	Fields     []FieldDefinition `json:"fields"`
	Values     Attributes        `json:"values"`
}

func NewCollector(purpose FormPurpose, season int, eventCode string, fields []FieldDefinition) Collector {
	return Collector{
		Purpose:   purpose,
		Season:    season,
		EventCode: eventCode,
		Fields:    fields,
		Values:    InitialValues(fields),
	}
}

// WithValues returns a copy with the given values laid over the current ones.
// Labels outside the schema are kept.
func (c Collector) WithValues(values Attributes) Collector {
	next := c
	next.Values = c.Values.Clone()
	for k, v := range values {
		next.Values[k] = v
	}
	return next
}

// Submit builds a record from the form and hands it to submit, which may
// fill in store-assigned attributes such as the id. On success
// the returned collector keeps the season and event but clears the match
// key, team number and every value, so the next observation for the same
// event can be entered straight away. On failure c is returned unchanged.
func (c Collector) Submit(submitter Identity, submit func(*Record) error) (Collector, Record, error) {
	ident := submitter
	ident.Purpose = c.Purpose
	ident.Season = c.Season
	ident.EventCode = c.EventCode
	ident.MatchKey = c.MatchKey
	ident.TeamNumber = c.TeamNumber

	rec, err := BuildRecord(ident, c.Values)
	if err != nil {
		return c, Record{}, err
	}
	if err := submit(&rec); err != nil {
		return c, Record{}, err
	}

	next := NewCollector(c.Purpose, c.Season, c.EventCode, c.Fields)
	return next, rec, nil
}
