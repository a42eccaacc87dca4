package db

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore is a process-local Store used by tests and DOCSTORE=memory runs.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// Collection returns the named collection, creating it on first use.
func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[name]
	if !ok {
		coll = &memoryCollection{name: name, unique: make(map[string]struct{})}
		s.collections[name] = coll
	}
	return coll
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error { return nil }

type memoryCollection struct {
	mu     sync.RWMutex
	name   string
	docs   []bson.M
	unique map[string]struct{}
}

func (c *memoryCollection) Find(ctx context.Context, filter bson.M) ([]bson.M, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]bson.M, 0, len(c.docs))
	for _, doc := range c.docs {
		if matches(doc, filter) {
			out = append(out, maps.Clone(doc))
		}
	}
	return out, nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter bson.M) (bson.M, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(filter); i >= 0 {
		return maps.Clone(c.docs[i]), nil
	}
	return nil, ErrNotFound
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc bson.M) (InsertResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := maps.Clone(doc)
	if stored == nil {
		stored = bson.M{}
	}
	if _, ok := stored["_id"]; !ok {
		stored["_id"] = bson.NewObjectID()
	}
	if err := c.checkUnique(stored, -1); err != nil {
		return InsertResult{}, err
	}
	c.docs = append(c.docs, stored)
	return InsertResult{Acknowledged: true, InsertedID: stored["_id"]}, nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter bson.M, fields bson.M) (UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(filter)
	if i < 0 {
		return UpdateResult{Acknowledged: true}, nil
	}
	next := maps.Clone(c.docs[i])
	changed := false
	for k, v := range fields {
		if cur, ok := next[k]; ok && reflect.DeepEqual(cur, v) {
			continue
		}
		next[k] = v
		changed = true
	}
	res := UpdateResult{Acknowledged: true, MatchedCount: 1}
	if !changed {
		return res, nil
	}
	if err := c.checkUnique(next, i); err != nil {
		return UpdateResult{}, err
	}
	c.docs[i] = next
	res.ModifiedCount = 1
	return res, nil
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter bson.M) (DeleteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(filter)
	if i < 0 {
		return DeleteResult{Acknowledged: true}, nil
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (c *memoryCollection) EstimatedCount(ctx context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.docs)), nil
}

func (c *memoryCollection) EnsureUniqueIndex(ctx context.Context, field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[any]struct{}, len(c.docs))
	for _, doc := range c.docs {
		v, ok := doc[field]
		if !ok || v == nil || !reflect.TypeOf(v).Comparable() {
			continue
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("platform/db: unique index %s.%s: %w", c.name, field, ErrDuplicateKey)
		}
		seen[v] = struct{}{}
	}
	c.unique[field] = struct{}{}
	return nil
}

func (c *memoryCollection) indexOf(filter bson.M) int {
	for i, doc := range c.docs {
		if matches(doc, filter) {
			return i
		}
	}
	return -1
}

// checkUnique must be called with the write lock held. skip is the index of
// the document being replaced, or -1 for inserts.
func (c *memoryCollection) checkUnique(doc bson.M, skip int) error {
	for field := range c.unique {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for i, other := range c.docs {
			if i == skip {
				continue
			}
			if ov, ok := other[field]; ok && reflect.DeepEqual(ov, v) {
				return ErrDuplicateKey
			}
		}
	}
	return nil
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

var _ Store = (*MemoryStore)(nil)
