package store

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// compare orders two stored values. ok is false when they are not comparable.
func compare(a, b interface{}) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	switch at := a.(type) {
	case string:
		bt, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(at, bt), true
	case time.Time:
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case at.Before(bt):
			return -1, true
		case at.After(bt):
			return 1, true
		}
		return 0, true
	case bool:
		bt, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case at == bt:
			return 0, true
		case !at:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

func matches(row Row, f Filter) bool {
	v, present := row[f.Column]
	if !present {
		return false
	}
	switch f.Op {
	case OpEq:
		c, ok := compare(v, f.Value)
		return ok && c == 0
	case OpGte:
		c, ok := compare(v, f.Value)
		return ok && c >= 0
	case OpIn:
		for _, candidate := range inValues(f.Value) {
			if c, ok := compare(v, candidate); ok && c == 0 {
				return true
			}
		}
	}
	return false
}

// inValues flattens the slice given to an "in" filter.
func inValues(v interface{}) []interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []interface{}{v}
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// sortRows orders rows in place by the given columns. Rows missing a column
// sort first, as Firestore does for nulls.
func sortRows(rows []Row, order []Order) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			a, aok := rows[i][o.Column]
			b, bok := rows[j][o.Column]
			var c int
			switch {
			case !aok && !bok:
				c = 0
			case !aok:
				c = -1
			case !bok:
				c = 1
			default:
				var ok bool
				c, ok = compare(a, b)
				if !ok {
					c = strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
				}
			}
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
