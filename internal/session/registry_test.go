package session

import (
	"context"
	"testing"
	"time"

	"articledash/internal/api"
	"articledash/internal/controller"
	"articledash/internal/model"
	"articledash/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// nopAPI never gets called; the registry only moves snapshots around.
type nopAPI struct{}

func (nopAPI) List(context.Context, api.ListQuery) (*api.Result, error) {
	return &api.Result{Kind: api.KindList, PageInfo: model.PageInfo{LastPage: 5}}, nil
}
func (nopAPI) Get(context.Context, int) (*api.Result, error) { return nil, api.ErrUnexpectedShape }
func (nopAPI) Create(context.Context, model.ArticleInput) (*api.Result, error) {
	return nil, api.ErrUnexpectedShape
}
func (nopAPI) Update(context.Context, int, model.ArticleInput) (*api.Result, error) {
	return nil, api.ErrUnexpectedShape
}
func (nopAPI) Delete(context.Context, int) (*api.Result, error) { return nil, api.ErrUnexpectedShape }

func newTestRegistry(st store.Store) *Registry {
	return NewRegistry(st, func() *controller.Controller {
		return controller.New(nopAPI{}, zap.NewNop(), controller.Options{})
	}, time.Minute, zap.NewNop())
}

func TestIDs(t *testing.T) {
	id := NewID()
	assert.True(t, ValidID(id))
	assert.NotEqual(t, id, NewID())
	assert.False(t, ValidID("not-a-session"))
	assert.False(t, ValidID(""))
}

func TestGet_SameControllerPerSession(t *testing.T) {
	r := newTestRegistry(store.NewMemoryStore(time.Hour))
	ctx := context.Background()

	a, created := r.Get(ctx, "one")
	assert.True(t, created)
	b, created := r.Get(ctx, "one")
	assert.False(t, created)
	assert.Same(t, a, b)

	c, _ := r.Get(ctx, "two")
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestPersistAndRestore(t *testing.T) {
	st := store.NewMemoryStore(time.Hour)
	ctx := context.Background()

	r := newTestRegistry(st)
	ctrl, _ := r.Get(ctx, "s1")
	ctrl.SetPageSize(ctx, 25)
	ctrl.StartCreate()
	ctrl.SetTitle("draft title")
	require.NoError(t, r.Persist(ctx, "s1"))

	// A fresh registry over the same store picks the session back up.
	r2 := newTestRegistry(st)
	restored, created := r2.Get(ctx, "s1")
	assert.True(t, created)

	snap := restored.Snapshot()
	assert.Equal(t, model.ViewForm, snap.View)
	assert.Equal(t, 25, snap.PageSize)
	assert.Equal(t, "draft title", snap.Form.Title)
}

func TestPersist_UnknownSessionIsNoop(t *testing.T) {
	st := store.NewMemoryStore(time.Hour)
	r := newTestRegistry(st)

	require.NoError(t, r.Persist(context.Background(), "ghost"))
	_, err := st.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSweep_EvictsIdleSessions(t *testing.T) {
	st := store.NewMemoryStore(time.Hour)
	r := newTestRegistry(st)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	old, _ := r.Get(ctx, "old")
	old.SetSearch(ctx, "kept")

	now = now.Add(50 * time.Second)
	r.Get(ctx, "fresh")

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, r.Sweep(ctx))
	assert.Equal(t, 1, r.Len())

	snap, err := st.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "kept", snap.Search)

	// The evicted session comes back from the store.
	back, created := r.Get(ctx, "old")
	assert.True(t, created)
	assert.Equal(t, "kept", back.Snapshot().Search)
}

func TestStop_PersistsEverything(t *testing.T) {
	mr := miniredis.RunT(t)
	st, err := store.NewHybridStore(mr.Addr(), "", time.Hour)
	require.NoError(t, err)
	defer st.Close()

	r := newTestRegistry(st)
	ctx := context.Background()
	require.NoError(t, r.Start())

	ctrl, _ := r.Get(ctx, "s1")
	ctrl.SetSearch(ctx, "redis")

	r.Stop(ctx)
	assert.Equal(t, 0, r.Len())

	snap, err := st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "redis", snap.Search)
}
