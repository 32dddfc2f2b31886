package lists

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automator/internal/backend/memstore"
	"automator/internal/docstore"
	"automator/internal/service"
)

func newRepo(t *testing.T) (*Repository, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	r := New(store, nil)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	require.NoError(t, r.EnsureIndexes(context.Background()))
	return r, store
}

func TestBootstrapDefaults(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	ids := r.BootstrapDefaults(ctx, "u1")
	require.Len(t, ids, 3)

	got := r.Get(ctx, "u1", true)
	require.Len(t, got, 3)
	assert.Equal(t, service.MyDayList, got[0].Name)
	assert.Equal(t, "wb_sunny_outlined", got[0].Icon)
	assert.Equal(t, int64(0xFFFFB900), got[0].IconColor)
	assert.Equal(t, service.ImportantList, got[1].Name)
	assert.Equal(t, "star_border", got[1].Icon)
	assert.Equal(t, int64(0xFFD13438), got[1].IconColor)
	assert.Equal(t, service.TasksList, got[2].Name)
	assert.Equal(t, "home_outlined", got[2].Icon)
	for _, l := range got {
		assert.True(t, l.IsDefault)
		assert.Equal(t, "u1", l.OwnerID)
	}
}

func TestBootstrapPartialFailure(t *testing.T) {
	r, store := newRepo(t)
	store.InsertErr[Collection] = errors.New("write concern error")

	assert.Empty(t, r.BootstrapDefaults(context.Background(), "u1"))
}

// failNth fails the nth Insert and passes every other call through.
type failNth struct {
	docstore.Store
	n, calls int
}

func (f *failNth) Insert(ctx context.Context, collection string, doc any) (string, error) {
	f.calls++
	if f.calls == f.n {
		return "", errors.New("write concern error")
	}
	return f.Store.Insert(ctx, collection, doc)
}

func TestBootstrapSkipsFailedDefault(t *testing.T) {
	ctx := context.Background()
	r := New(&failNth{Store: memstore.New(), n: 2}, nil)

	ids := r.BootstrapDefaults(ctx, "u1")
	assert.Len(t, ids, len(Defaults)-1)

	var names []string
	for _, l := range r.Get(ctx, "u1", false) {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{service.MyDayList, service.TasksList}, names)
}

func TestCreateAppliesIconDefaults(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	id, ok := r.Create(ctx, service.NewList{OwnerID: "u1", Name: " Groceries "})
	require.True(t, ok)
	l, ok := r.GetByID(ctx, id, "u1")
	require.True(t, ok)
	assert.Equal(t, "Groceries", l.Name)
	assert.Equal(t, DefaultIcon, l.Icon)
	assert.Equal(t, DefaultIconColor, l.IconColor)
	assert.False(t, l.IsDefault)

	_, ok = r.Create(ctx, service.NewList{OwnerID: "u1", Name: ""})
	assert.False(t, ok)
	_, ok = r.Create(ctx, service.NewList{Name: "no owner"})
	assert.False(t, ok)
}

func TestGetScopesToOwner(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()
	r.BootstrapDefaults(ctx, "u1")
	id, _ := r.Create(ctx, service.NewList{OwnerID: "u1", Name: "Work"})
	r.Create(ctx, service.NewList{OwnerID: "u2", Name: "Other"})

	all := r.Get(ctx, "u1", false)
	require.Len(t, all, 4)
	assert.Equal(t, id, all[3].ID)

	_, ok := r.GetByID(ctx, id, "u2")
	assert.False(t, ok)
}

func TestFindDefault(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()
	r.Create(ctx, service.NewList{OwnerID: "u1", Name: service.ImportantList})
	r.BootstrapDefaults(ctx, "u1")

	l, ok := r.FindDefault(ctx, "u1", service.ImportantList)
	require.True(t, ok)
	assert.True(t, l.IsDefault)

	_, ok = r.FindDefault(ctx, "u2", service.ImportantList)
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()
	id, _ := r.Create(ctx, service.NewList{OwnerID: "u1", Name: "Old"})

	name, icon := "New", "work"
	require.True(t, r.Update(ctx, id, "u1", service.ListPatch{Name: &name, Icon: &icon}))
	l, _ := r.GetByID(ctx, id, "u1")
	assert.Equal(t, "New", l.Name)
	assert.Equal(t, "work", l.Icon)
	assert.True(t, l.UpdatedAt.After(l.CreatedAt))

	assert.False(t, r.Update(ctx, id, "u2", service.ListPatch{Name: &name}))
	assert.False(t, r.Update(ctx, id, "u1", service.ListPatch{}))
}

func TestDeleteProtectsDefaults(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()
	ids := r.BootstrapDefaults(ctx, "u1")

	for _, id := range ids {
		assert.False(t, r.Delete(ctx, id, "u1"))
	}
	assert.Len(t, r.Get(ctx, "u1", true), 3)

	id, _ := r.Create(ctx, service.NewList{OwnerID: "u1", Name: "Temp"})
	assert.False(t, r.Delete(ctx, id, "u2"))
	assert.True(t, r.Delete(ctx, id, "u1"))
	assert.False(t, r.Delete(ctx, id, "u1"))
}

func TestDeleteFilterExcludesDefaults(t *testing.T) {
	r, store := newRepo(t)
	ctx := context.Background()
	ids := r.BootstrapDefaults(ctx, "u1")

	// Even without the application check, the store-level filter refuses.
	filter := append(byOwner(ids[0], "u1"), docstore.Ne(fieldDefault, true))
	n, err := store.DeleteOne(ctx, Collection, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
