// Package memstore implements docstore.Store in memory.
// It backs the "memory" driver and every repository test.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"automator/internal/docstore"
)

// Store is an in-memory document store. Documents are kept in insertion order.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]docstore.Document
	indexes     map[string][]docstore.Index

	// Error injection for testing, keyed by collection.
	InsertErr     map[string]error
	FindErr       map[string]error
	UpdateErr     map[string]error
	DeleteErr     map[string]error
	DeleteManyErr map[string]error
}

var _ docstore.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		collections:   make(map[string][]docstore.Document),
		indexes:       make(map[string][]docstore.Index),
		InsertErr:     make(map[string]error),
		FindErr:       make(map[string]error),
		UpdateErr:     make(map[string]error),
		DeleteErr:     make(map[string]error),
		DeleteManyErr: make(map[string]error),
	}
}

// Insert implements docstore.Store.
func (s *Store) Insert(ctx context.Context, collection string, doc any) (string, error) {
	if err := s.InsertErr[collection]; err != nil {
		return "", err
	}
	d, err := docstore.ToDocument(doc)
	if err != nil {
		return "", err
	}
	id := d.ID()
	if id == "" {
		id = uuid.NewString()
		d[docstore.IDField] = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.collections[collection] {
		if existing.ID() == id {
			return "", fmt.Errorf("insert %s: %w", id, docstore.ErrDuplicate)
		}
		if s.violatesUnique(collection, existing, d) {
			return "", fmt.Errorf("insert into %s: %w", collection, docstore.ErrDuplicate)
		}
	}
	s.collections[collection] = append(s.collections[collection], d)
	return id, nil
}

// violatesUnique reports whether candidate collides with existing on any unique index.
func (s *Store) violatesUnique(collection string, existing, candidate docstore.Document) bool {
	for _, idx := range s.indexes[collection] {
		if !idx.Unique {
			continue
		}
		same := true
		for _, f := range idx.Fields {
			if fmt.Sprint(existing[f]) != fmt.Sprint(candidate[f]) {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// FindOne implements docstore.Store.
func (s *Store) FindOne(ctx context.Context, collection string, filter docstore.Filter, out any) error {
	if err := s.FindErr[collection]; err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, err := s.first(collection, filter)
	if err != nil {
		return err
	}
	if i < 0 {
		return docstore.ErrNotFound
	}
	return s.collections[collection][i].Decode(out)
}

// FindMany implements docstore.Store.
func (s *Store) FindMany(ctx context.Context, collection string, filter docstore.Filter, out any) error {
	if err := s.FindErr[collection]; err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []docstore.Document
	for _, d := range s.collections[collection] {
		ok, err := d.Match(filter)
		if err != nil {
			return err
		}
		if ok {
			matched = append(matched, d)
		}
	}
	return docstore.DecodeAll(matched, out)
}

// UpdateOne implements docstore.Store.
func (s *Store) UpdateOne(ctx context.Context, collection string, filter docstore.Filter, update docstore.Update) (docstore.UpdateResult, error) {
	if err := s.UpdateErr[collection]; err != nil {
		return docstore.UpdateResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.first(collection, filter)
	if err != nil || i < 0 {
		return docstore.UpdateResult{}, err
	}

	// Apply to a copy so a failed update leaves the stored document untouched.
	next := s.collections[collection][i].Clone()
	changed, err := next.Apply(update)
	if err != nil {
		return docstore.UpdateResult{}, err
	}
	res := docstore.UpdateResult{Matched: 1}
	if changed {
		s.collections[collection][i] = next
		res.Modified = 1
	}
	return res, nil
}

// DeleteOne implements docstore.Store.
func (s *Store) DeleteOne(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	if err := s.DeleteErr[collection]; err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.first(collection, filter)
	if err != nil || i < 0 {
		return 0, err
	}
	docs := s.collections[collection]
	s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
	return 1, nil
}

// DeleteMany implements docstore.Store.
func (s *Store) DeleteMany(ctx context.Context, collection string, filter docstore.Filter) (int64, error) {
	if err := s.DeleteManyErr[collection]; err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []docstore.Document
	var deleted int64
	for _, d := range s.collections[collection] {
		ok, err := d.Match(filter)
		if err != nil {
			return 0, err
		}
		if ok {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	s.collections[collection] = kept
	return deleted, nil
}

// EnsureIndex implements docstore.Store. Only unique indexes change behavior.
func (s *Store) EnsureIndex(ctx context.Context, collection string, idx docstore.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.Join(idx.Fields, ",")
	for _, existing := range s.indexes[collection] {
		if strings.Join(existing.Fields, ",") == key && existing.Unique == idx.Unique {
			return nil
		}
	}
	s.indexes[collection] = append(s.indexes[collection], idx)
	return nil
}

// Close implements docstore.Store.
func (s *Store) Close(ctx context.Context) error { return nil }

// Count returns the number of documents in a collection (for testing).
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// Put stores a raw document verbatim, bypassing id generation (for testing legacy shapes).
func (s *Store) Put(collection string, doc docstore.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], doc.Clone())
}

func (s *Store) first(collection string, filter docstore.Filter) (int, error) {
	for i, d := range s.collections[collection] {
		ok, err := d.Match(filter)
		if err != nil {
			return -1, err
		}
		if ok {
			return i, nil
		}
	}
	return -1, nil
}
