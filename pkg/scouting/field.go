package scouting

import (
	"encoding/json"
	"strings"
)

// FieldKind is the type tag of a form field.
type FieldKind string

const (
	KindCounter     FieldKind = "counter"
	KindCheckbox    FieldKind = "checkbox"
	KindText        FieldKind = "text"
	KindMultiSelect FieldKind = "multiselect"
)

func ParseFieldKind(s string) (FieldKind, error) {
	switch k := FieldKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCounter, KindCheckbox, KindText, KindMultiSelect:
		return k, nil
	}
	return "", invalid("type", "unknown field type %q", s)
}

func (k *FieldKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFieldKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// FormPurpose distinguishes match scouting from pit scouting.
type FormPurpose string

const (
	PurposeMatch FormPurpose = "match"
	PurposePit   FormPurpose = "pit"
)

func ParsePurpose(s string) (FormPurpose, error) {
	switch p := FormPurpose(strings.ToLower(strings.TrimSpace(s))); p {
	case PurposeMatch, PurposePit:
		return p, nil
	case "":
		return PurposeMatch, nil
	}
	return "", invalid("purpose", "unknown form purpose %q", s)
}

// FieldDefinition describes one input on a form. Label doubles as the key
// under which the submitted value is stored.
type FieldDefinition struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"type"`
	Options []string  `json:"options,omitempty"`
	// Multiple switches a multiselect between one choice and a list.
	Multiple bool `json:"multiple,omitempty"`
}

// ZeroValue is the value a fresh form starts with for this field.
func (f FieldDefinition) ZeroValue() Value {
	switch f.Kind {
	case KindCounter:
		return Number(0)
	case KindCheckbox:
		return Bool(false)
	case KindText:
		return Text("")
	case KindMultiSelect:
		if f.Multiple {
			return StringList()
		}
		return Text("")
	}
	return Value{}
}

func (f FieldDefinition) toMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":    f.ID,
		"label": f.Label,
		"type":  string(f.Kind),
	}
	if f.Kind == KindMultiSelect {
		opts := make([]interface{}, len(f.Options))
		for i, o := range f.Options {
			opts[i] = o
		}
		m["options"] = opts
		m["multiple"] = f.Multiple
	}
	return m
}

func fieldFromMap(m map[string]interface{}) (FieldDefinition, error) {
	var f FieldDefinition
	f.ID, _ = m["id"].(string)
	f.Label, _ = m["label"].(string)
	kind, _ := m["type"].(string)
	k, err := ParseFieldKind(kind)
	if err != nil {
		return f, err
	}
	f.Kind = k
	if raw, ok := m["options"].([]interface{}); ok {
		for _, o := range raw {
			if s, ok := o.(string); ok {
				f.Options = append(f.Options, s)
			}
		}
	}
	f.Multiple, _ = m["multiple"].(bool)
	return f, nil
}
