package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Update for a missing document.
var ErrNotFound = errors.New("document not found")

// IDField is the key under which a row carries its document id.
const IDField = "id"

// Row is one stored document.
type Row map[string]interface{}

func (r Row) ID() string {
	id, _ := r[IDField].(string)
	return id
}

// data returns the row without its id, ready to be written.
func (r Row) data() map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for k, v := range r {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

type Op string

const (
	OpEq  Op = "=="
	OpGte Op = ">="
	OpIn  Op = "in"
)

type Filter struct {
	Column string
	Op     Op
	Value  interface{}
}

func Eq(column string, value interface{}) Filter  { return Filter{Column: column, Op: OpEq, Value: value} }
func Gte(column string, value interface{}) Filter { return Filter{Column: column, Op: OpGte, Value: value} }
func In(column string, values interface{}) Filter { return Filter{Column: column, Op: OpIn, Value: values} }

type Order struct {
	Column string
	Desc   bool
}

// Query selects rows from one collection. Ties in OrderBy are broken by the
// next column.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    []Order
	Limit      int
}

// Store is the collection-style record store. Every call reports its error
// as a value.
type Store interface {
	Insert(ctx context.Context, collection string, row Row) (string, error)
	Get(ctx context.Context, collection, id string) (Row, error)
	Select(ctx context.Context, q Query) ([]Row, error)
	Update(ctx context.Context, collection, id string, fields Row) error
	Delete(ctx context.Context, collection string, ids []string) (int, error)
	DeleteWhere(ctx context.Context, collection string, filters []Filter) (int, error)
	// Upsert writes rows keyed by the value of conflictKey, merging into any
	// existing document with that key.
	Upsert(ctx context.Context, collection, conflictKey string, rows []Row) error
}
