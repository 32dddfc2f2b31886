// Package storetest holds the behavior every docstore.Store adapter must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automator/internal/docstore"
)

type item struct {
	ID        string    `json:"_id,omitempty" bson:"_id,omitempty"`
	Owner     string    `json:"user_id" bson:"user_id"`
	Title     string    `json:"title" bson:"title"`
	Flag      bool      `json:"isDefault" bson:"isDefault"`
	Lists     []string  `json:"list_ids,omitempty" bson:"list_ids,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Run exercises a store created fresh for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	ctx := context.Background()

	t.Run("InsertAndFindOne", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Insert(ctx, "items", item{Owner: "u1", Title: "first", Lists: []string{"a"}})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		var got item
		require.NoError(t, s.FindOne(ctx, "items", docstore.Where(docstore.ByID(id), docstore.Eq("user_id", "u1")), &got))
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "first", got.Title)
		assert.Equal(t, []string{"a"}, got.Lists)
	})

	t.Run("FindOneNotFound", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Insert(ctx, "items", item{Owner: "u1", Title: "mine"})
		require.NoError(t, err)

		var got item
		err = s.FindOne(ctx, "items", docstore.Where(docstore.ByID(id), docstore.Eq("user_id", "u2")), &got)
		assert.True(t, errors.Is(err, docstore.ErrNotFound))

		err = s.FindOne(ctx, "items", docstore.Where(docstore.ByID("missing")), &got)
		assert.True(t, errors.Is(err, docstore.ErrNotFound))
	})

	t.Run("FindManyFilters", func(t *testing.T) {
		s := newStore(t)
		mustInsert(t, s, item{Owner: "u1", Title: "Buy milk", Lists: []string{"a", "b"}})
		mustInsert(t, s, item{Owner: "u1", Title: "Walk dog", Lists: []string{"b"}})
		mustInsert(t, s, item{Owner: "u2", Title: "buy MILK too", Lists: []string{"a"}})

		var got []item
		require.NoError(t, s.FindMany(ctx, "items", docstore.Where(docstore.Eq("user_id", "u1"), docstore.Has("list_ids", "a")), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Buy milk", got[0].Title)

		got = nil
		require.NoError(t, s.FindMany(ctx, "items", docstore.Where(docstore.ContainsFold("title", "MILK")), &got))
		assert.Len(t, got, 2)

		mustInsert(t, s, item{Owner: "u3", Title: "Réviser ÉCOLE", Lists: []string{"c"}})
		got = nil
		require.NoError(t, s.FindMany(ctx, "items", docstore.Where(docstore.ContainsFold("title", "école")), &got))
		require.Len(t, got, 1, "case folding covers non-ASCII letters")
		assert.Equal(t, "Réviser ÉCOLE", got[0].Title)

		got = nil
		require.NoError(t, s.FindMany(ctx, "items", docstore.Where(docstore.MinLen("list_ids", 2)), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Buy milk", got[0].Title)

		got = nil
		require.NoError(t, s.FindMany(ctx, "items", docstore.Where(docstore.Eq("user_id", "nobody")), &got))
		assert.Empty(t, got)
	})

	t.Run("UpdateOneReportsModified", func(t *testing.T) {
		s := newStore(t)
		id := mustInsert(t, s, item{Owner: "u1", Title: "t", Lists: []string{"a"}})
		byID := docstore.Where(docstore.ByID(id), docstore.Eq("user_id", "u1"))

		res, err := s.UpdateOne(ctx, "items", byID, docstore.Update{AddToSet: map[string]any{"list_ids": "b"}})
		require.NoError(t, err)
		assert.Equal(t, docstore.UpdateResult{Matched: 1, Modified: 1}, res)

		res, err = s.UpdateOne(ctx, "items", byID, docstore.Update{AddToSet: map[string]any{"list_ids": "b"}})
		require.NoError(t, err)
		assert.Equal(t, docstore.UpdateResult{Matched: 1, Modified: 0}, res)

		res, err = s.UpdateOne(ctx, "items", byID, docstore.Update{
			Set:  map[string]any{"title": "renamed"},
			Pull: map[string]any{"list_ids": "a"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Modified)

		var got item
		require.NoError(t, s.FindOne(ctx, "items", byID, &got))
		assert.Equal(t, "renamed", got.Title)
		assert.Equal(t, []string{"b"}, got.Lists)

		res, err = s.UpdateOne(ctx, "items", docstore.Where(docstore.ByID(id), docstore.Eq("user_id", "u2")), docstore.Update{Set: map[string]any{"title": "x"}})
		require.NoError(t, err)
		assert.Equal(t, docstore.UpdateResult{}, res)
	})

	t.Run("UpdateOneGuardedByMinLen", func(t *testing.T) {
		s := newStore(t)
		id := mustInsert(t, s, item{Owner: "u1", Title: "t", Lists: []string{"a"}})

		res, err := s.UpdateOne(ctx, "items",
			docstore.Where(docstore.ByID(id), docstore.MinLen("list_ids", 2)),
			docstore.Update{Pull: map[string]any{"list_ids": "a"}})
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Matched)
	})

	t.Run("DeleteOneRespectsNe", func(t *testing.T) {
		s := newStore(t)
		protected := mustInsert(t, s, item{Owner: "u1", Title: "keep", Flag: true})
		plain := mustInsert(t, s, item{Owner: "u1", Title: "drop"})

		n, err := s.DeleteOne(ctx, "items", docstore.Where(docstore.ByID(protected), docstore.Ne("isDefault", true)))
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		n, err = s.DeleteOne(ctx, "items", docstore.Where(docstore.ByID(plain), docstore.Ne("isDefault", true)))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("DeleteMany", func(t *testing.T) {
		s := newStore(t)
		a := mustInsert(t, s, item{Owner: "u1", Title: "a", Lists: []string{"x"}})
		b := mustInsert(t, s, item{Owner: "u1", Title: "b", Lists: []string{"x", "y"}})
		mustInsert(t, s, item{Owner: "u1", Title: "c", Lists: []string{"y"}})
		mustInsert(t, s, item{Owner: "u2", Title: "d", Lists: []string{"x"}})

		n, err := s.DeleteMany(ctx, "items", docstore.Where(docstore.Eq("user_id", "u1"), docstore.Has("list_ids", "x")))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = s.DeleteMany(ctx, "items", docstore.Where(docstore.In(docstore.IDField, []string{a, b})))
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		var rest []item
		require.NoError(t, s.FindMany(ctx, "items", nil, &rest))
		assert.Len(t, rest, 2)
	})

	t.Run("UniqueIndex", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.EnsureIndex(ctx, "users", docstore.Index{Fields: []string{"title"}, Unique: true}))
		require.NoError(t, s.EnsureIndex(ctx, "users", docstore.Index{Fields: []string{"title"}, Unique: true}))

		_, err := s.Insert(ctx, "users", item{Title: "a@example.com"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, "users", item{Title: "a@example.com"})
		assert.True(t, errors.Is(err, docstore.ErrDuplicate), "got %v", err)

		_, err = s.Insert(ctx, "users", item{Title: "b@example.com"})
		assert.NoError(t, err)
	})
}

func mustInsert(t *testing.T, s docstore.Store, it item) string {
	t.Helper()
	id, err := s.Insert(context.Background(), "items", it)
	require.NoError(t, err)
	return id
}
