package analytics

import (
	"sort"

	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

// Classes partitions the attribute keys seen across a record set.
type Classes struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
	Text        []string `json:"text"`
}

type observed struct {
	numeric     bool
	categorical bool
	text        bool
}

// Classify sorts every attribute key into exactly one class. Keys the schema
// declares take their class from the declared kind; anything else, including
// keys left over from an older schema, is inferred from the stored values.
// A key with no usable value in any record appears in no class.
func Classify(records []scouting.Record, schema []scouting.FieldDefinition) Classes {
	declared := make(map[string]scouting.FieldKind, len(schema))
	for _, f := range schema {
		declared[f.Label] = f.Kind
	}

	seen := map[string]*observed{}
	for _, r := range records {
		for key, v := range r.Attributes {
			o, ok := seen[key]
			if !ok {
				o = &observed{}
				seen[key] = o
			}
			_, isNum := v.Float()
			if isNum {
				o.numeric = true
			}
			switch v.Kind() {
			case scouting.ValueList:
				if len(v.Options()) > 0 {
					o.categorical = true
				}
			case scouting.ValueText:
				if v.Str() != "" {
					o.text = true
					if !isNum {
						o.categorical = true
					}
				}
			}
		}
	}

	var out Classes
	for key, o := range seen {
		kind, isDeclared := declared[key]
		if !isDeclared {
			switch {
			case o.numeric:
				out.Numeric = append(out.Numeric, key)
			case o.categorical:
				out.Categorical = append(out.Categorical, key)
			}
			continue
		}

		switch kind {
		case scouting.KindText:
			if o.text || o.numeric {
				out.Text = append(out.Text, key)
			}
		case scouting.KindMultiSelect:
			if o.categorical || o.text {
				out.Categorical = append(out.Categorical, key)
			}
		case scouting.KindCounter, scouting.KindCheckbox:
			if o.numeric {
				out.Numeric = append(out.Numeric, key)
			}
		}
	}

	out.Numeric = sorted(out.Numeric)
	out.Categorical = sorted(out.Categorical)
	out.Text = sorted(out.Text)
	return out
}

func sorted(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	sort.Strings(keys)
	return keys
}
