package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore caps the number of values in an "in" filter.
const maxInValues = 30

// FirestoreStore implements Store on top of a Firestore client.
type FirestoreStore struct {
	Client *firestore.Client
	logger *zap.Logger
}

func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) *FirestoreStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirestoreStore{
		Client: client,
		logger: logger,
	}
}

func (s *FirestoreStore) Insert(ctx context.Context, collection string, row Row) (string, error) {
	coll := s.Client.Collection(collection)
	docRef := coll.NewDoc()
	if id := row.ID(); id != "" {
		docRef = coll.Doc(id)
	}

	_, err := docRef.Set(ctx, row.data())
	if err != nil {
		s.logger.Error("Failed to write document to Firestore", zap.String("collection", collection), zap.Error(err))
		return "", err
	}
	return docRef.ID, nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Row, error) {
	doc, err := s.Client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return docToRow(doc), nil
}

func (s *FirestoreStore) Select(ctx context.Context, q Query) ([]Row, error) {
	inIdx := -1
	for i, f := range q.Filters {
		if f.Op == OpIn {
			if len(inValues(f.Value)) == 0 {
				return []Row{}, nil
			}
			if inIdx == -1 {
				inIdx = i
			}
		}
	}

	if inIdx == -1 || len(inValues(q.Filters[inIdx].Value)) <= maxInValues {
		return s.run(ctx, s.buildQuery(q, q.Filters, true))
	}

	// Too many values for one query: split the "in" filter, then merge and
	// order the chunks here.
	values := inValues(q.Filters[inIdx].Value)
	var rows []Row
	for start := 0; start < len(values); start += maxInValues {
		end := start + maxInValues
		if end > len(values) {
			end = len(values)
		}
		filters := make([]Filter, len(q.Filters))
		copy(filters, q.Filters)
		filters[inIdx] = In(filters[inIdx].Column, values[start:end])

		chunk, err := s.run(ctx, s.buildQuery(q, filters, false))
		if err != nil {
			return nil, err
		}
		rows = append(rows, chunk...)
	}
	sortRows(rows, q.OrderBy)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (s *FirestoreStore) buildQuery(q Query, filters []Filter, ordered bool) firestore.Query {
	query := s.Client.Collection(q.Collection).Query
	for _, f := range filters {
		query = query.Where(f.Column, string(f.Op), f.Value)
	}
	if ordered {
		for _, o := range q.OrderBy {
			dir := firestore.Asc
			if o.Desc {
				dir = firestore.Desc
			}
			query = query.OrderBy(o.Column, dir)
		}
		if q.Limit > 0 {
			query = query.Limit(q.Limit)
		}
	}
	return query
}

func (s *FirestoreStore) run(ctx context.Context, query firestore.Query) ([]Row, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	rows := []Row{}
	for {
		doc, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			s.logger.Error("Failed to read document", zap.Error(err))
			return nil, err
		}
		rows = append(rows, docToRow(doc))
	}
	return rows, nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields Row) error {
	var updates []firestore.Update
	for k, v := range fields.data() {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if len(updates) == 0 {
		return nil
	}

	_, err := s.Client.Collection(collection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	bw := s.Client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(ids))
	for _, id := range ids {
		job, err := bw.Delete(s.Client.Collection(collection).Doc(id))
		if err != nil {
			bw.End()
			return 0, err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deleted, fmt.Errorf("delete from %s: %w", collection, err)
		}
		deleted++
	}
	return deleted, nil
}

func (s *FirestoreStore) DeleteWhere(ctx context.Context, collection string, filters []Filter) (int, error) {
	rows, err := s.Select(ctx, Query{Collection: collection, Filters: filters})
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID())
	}
	return s.Delete(ctx, collection, ids)
}

func (s *FirestoreStore) Upsert(ctx context.Context, collection, conflictKey string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	bw := s.Client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(rows))
	for _, row := range rows {
		key, ok := row[conflictKey]
		if !ok || key == nil {
			bw.End()
			return fmt.Errorf("upsert into %s: row has no %q", collection, conflictKey)
		}
		docRef := s.Client.Collection(collection).Doc(fmt.Sprint(key))
		job, err := bw.Set(docRef, row.data(), firestore.MergeAll)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("upsert into %s: %w", collection, err)
		}
	}
	return nil
}

func docToRow(doc *firestore.DocumentSnapshot) Row {
	row := Row(doc.Data())
	if row == nil {
		row = Row{}
	}
	row[IDField] = doc.Ref.ID
	return row
}
