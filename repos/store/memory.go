package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	fieldID "github.com/frc-scouting/scout-sync/pkg/fieldID"
)

// MemoryStore is an in-process Store. Values are normalised the way
// Firestore returns them (int64 integers, []interface{} arrays), so code
// reading rows behaves the same against both.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection

	// FailWith, when set, is returned by every call.
	FailWith error
}

type memCollection struct {
	order []string
	docs  map[string]Row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string]*memCollection{}}
}

func (m *MemoryStore) coll(name string) *memCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memCollection{docs: map[string]Row{}}
		m.collections[name] = c
	}
	return c
}

// peek returns the collection without creating it.
func (m *MemoryStore) peek(name string) *memCollection {
	if c, ok := m.collections[name]; ok {
		return c
	}
	return &memCollection{docs: map[string]Row{}}
}

func (c *memCollection) put(id string, row Row) {
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = row
}

func (c *memCollection) remove(id string) bool {
	if _, exists := c.docs[id]; !exists {
		return false
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *MemoryStore) Insert(ctx context.Context, collection string, row Row) (string, error) {
	if m.FailWith != nil {
		return "", m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := row.ID()
	if id == "" {
		id = fieldID.New()
	}
	m.coll(collection).put(id, normalizeRow(row.data()))
	return id, nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Row, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.peek(collection).docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return withID(row, id), nil
}

func (m *MemoryStore) Select(ctx context.Context, q Query) ([]Row, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.peek(q.Collection)
	rows := []Row{}
	for _, id := range c.order {
		row := c.docs[id]
		keep := true
		for _, f := range q.Filters {
			if !matches(row, f) {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, withID(row, id))
		}
	}
	sortRows(rows, q.OrderBy)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields Row) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection)
	row, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	merged := copyRow(row)
	for k, v := range normalizeRow(fields.data()) {
		merged[k] = v
	}
	c.docs[id] = merged
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection string, ids []string) (int, error) {
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection)
	deleted := 0
	for _, id := range ids {
		if c.remove(id) {
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryStore) DeleteWhere(ctx context.Context, collection string, filters []Filter) (int, error) {
	rows, err := m.Select(ctx, Query{Collection: collection, Filters: filters})
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID())
	}
	return m.Delete(ctx, collection, ids)
}

func (m *MemoryStore) Upsert(ctx context.Context, collection, conflictKey string, rows []Row) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	// Validate every row first so a bad row leaves the collection untouched.
	for _, row := range rows {
		if key, ok := row[conflictKey]; !ok || key == nil {
			return fmt.Errorf("upsert into %s: row has no %q", collection, conflictKey)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection)
	for _, row := range rows {
		id := fmt.Sprint(row[conflictKey])
		merged := Row{}
		if existing, ok := c.docs[id]; ok {
			merged = copyRow(existing)
		}
		for k, v := range normalizeRow(row.data()) {
			merged[k] = v
		}
		c.put(id, merged)
	}
	return nil
}

func withID(row Row, id string) Row {
	out := copyRow(row)
	out[IDField] = id
	return out
}

func copyRow(row Row) Row {
	out := make(Row, len(row)+1)
	for k, v := range row {
		out[k] = normalize(v)
	}
	return out
}

func normalizeRow(data map[string]interface{}) Row {
	out := make(Row, len(data))
	for k, v := range data {
		out[k] = normalize(v)
	}
	return out
}

// normalize deep-copies v into the shapes Firestore hands back.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case time.Time:
		return t.UTC()
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC()
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []int:
		out := make([]interface{}, len(t))
		for i, n := range t {
			out[i] = int64(n)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}
