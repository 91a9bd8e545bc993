// Package storetest provides an in-process store.Repository for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/apperr"
	"github.com/parishrama/diagnostic-api/internal/store"
)

// Memory is an in-process Repository. Documents are kept in their BSON form
// so that filters, sorting and aggregation behave like the MongoDB adapter.
type Memory[T any] struct {
	mu     sync.RWMutex
	docs   []bson.M
	unique []string
}

var _ store.Repository[struct{}] = (*Memory[struct{}])(nil)

// NewMemory returns an empty Memory. Each field in unique behaves like a
// unique index.
func NewMemory[T any](unique ...string) *Memory[T] {
	return &Memory[T]{unique: unique}
}

func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc[T any](doc bson.M) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "encode document", err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode document", err)
	}
	return &out, nil
}

func (m *Memory[T]) violatesUnique(doc bson.M, self interface{}) bool {
	for _, field := range m.unique {
		value, ok := doc[field]
		if !ok {
			continue
		}
		for _, other := range m.docs {
			if self != nil && matchEqual(other["_id"], self) {
				continue
			}
			if matchEqual(other[field], value) {
				return true
			}
		}
	}
	return false
}

func (m *Memory[T]) indexOf(id primitive.ObjectID) int {
	for i, doc := range m.docs {
		if matchEqual(doc["_id"], id) {
			return i
		}
	}
	return -1
}

func notFound() error {
	return apperr.New(apperr.KindNotFound, "document not found")
}

func (m *Memory[T]) Insert(_ context.Context, v *T) error {
	doc, err := toDoc(v)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode document", err)
	}
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.violatesUnique(doc, nil) {
		return apperr.New(apperr.KindDuplicate, "duplicate key")
	}
	if id, ok := doc["_id"].(primitive.ObjectID); ok && m.indexOf(id) >= 0 {
		return apperr.New(apperr.KindDuplicate, "duplicate key")
	}
	m.docs = append(m.docs, doc)
	return nil
}

func (m *Memory[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return m.FindOne(ctx, bson.M{"_id": id})
}

func (m *Memory[T]) FindOne(_ context.Context, filter bson.M) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.docs {
		if matches(doc, filter) {
			return fromDoc[T](doc)
		}
	}
	return nil, notFound()
}

func (m *Memory[T]) Find(_ context.Context, filter bson.M, opts store.FindOptions) ([]T, error) {
	m.mu.RLock()
	var hits []bson.M
	for _, doc := range m.docs {
		if matches(doc, filter) {
			hits = append(hits, doc)
		}
	}
	m.mu.RUnlock()

	if len(opts.Sort) > 0 {
		sort.SliceStable(hits, func(i, j int) bool {
			for _, key := range opts.Sort {
				a, _ := lookup(hits[i], key.Key)
				b, _ := lookup(hits[j], key.Key)
				cmp, ok := compare(a, b)
				if !ok || cmp == 0 {
					continue
				}
				if direction(key.Value) < 0 {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(hits)) {
			hits = nil
		} else {
			hits = hits[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(hits)) > opts.Limit {
		hits = hits[:opts.Limit]
	}

	out := make([]T, 0, len(hits))
	for _, doc := range hits {
		v, err := fromDoc[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func direction(v interface{}) int {
	switch d := v.(type) {
	case int:
		return d
	case int32:
		return int(d)
	case int64:
		return int(d)
	}
	return 1
}

func (m *Memory[T]) Count(_ context.Context, filter bson.M) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, doc := range m.docs {
		if matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

func (m *Memory[T]) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	changes, err := toDoc(set)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "encode update", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, notFound()
	}
	updated := make(bson.M, len(m.docs[i])+len(changes))
	for k, v := range m.docs[i] {
		updated[k] = v
	}
	for k, v := range changes {
		updated[k] = v
	}
	if m.violatesUnique(updated, id) {
		return nil, apperr.New(apperr.KindDuplicate, "duplicate key")
	}
	m.docs[i] = updated
	return fromDoc[T](updated)
}

func (m *Memory[T]) DeleteByID(_ context.Context, id primitive.ObjectID) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return nil, notFound()
	}
	doc := m.docs[i]
	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	return fromDoc[T](doc)
}

func (m *Memory[T]) CountBy(_ context.Context, field string, filter bson.M) ([]store.GroupCount, error) {
	m.mu.RLock()
	counts := map[string]int64{}
	for _, doc := range m.docs {
		if !matches(doc, filter) {
			continue
		}
		key := ""
		if v, ok := lookup(doc, field); ok && v != nil {
			key = fmt.Sprint(v)
		}
		counts[key]++
	}
	m.mu.RUnlock()

	groups := make([]store.GroupCount, 0, len(counts))
	for key, n := range counts {
		groups = append(groups, store.GroupCount{Key: key, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups, nil
}

func (m *Memory[T]) Average(_ context.Context, field string, filter bson.M) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	var n int
	for _, doc := range m.docs {
		if !matches(doc, filter) {
			continue
		}
		v, _ := lookup(doc, field)
		if f, ok := normalize(v).(float64); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}
