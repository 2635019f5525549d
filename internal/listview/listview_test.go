package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgergrip/internal/eventbus"
	"ledgergrip/internal/listview/cache"
	"ledgergrip/internal/listview/search"
)

type person struct {
	id   string
	name string
	city string
}

func (p person) Key() string { return p.id }

var personFields = []search.Field[person]{
	{Name: "name", Value: func(p person) string { return p.name }},
	{Name: "city", Value: func(p person) string { return p.city }},
}

func people(n int) []person {
	out := make([]person, n)
	for i := range out {
		out[i] = person{id: fmt.Sprintf("p%d", i), name: fmt.Sprintf("person %d", i), city: "Oslo"}
	}
	return out
}

func staticSource(items []person) Source[person] {
	return SourceFunc[person](func(context.Context, Hints) ([]person, error) {
		return items, nil
	})
}

func newView(t *testing.T, store *cache.Store, source Source[person], mutate ...func(*Options[person])) *View[person] {
	t.Helper()
	opts := Options[person]{
		Resource: "people",
		Fields:   personFields,
		RowSize:  1,
		Overscan: 2,
	}
	for _, m := range mutate {
		m(&opts)
	}
	v := New(opts, source, store, nil)
	t.Cleanup(v.Close)
	return v
}

func names(items []person) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.name
	}
	return out
}

var abc = []person{
	{id: "1", name: "Alice", city: "Paris"},
	{id: "2", name: "Bob", city: "Berlin"},
	{id: "3", name: "Alina", city: "Rome"},
}

func TestRefreshLoadsIntoSharedStore(t *testing.T) {
	store := cache.NewStore(nil)
	a := newView(t, store, staticSource(abc))
	b := newView(t, store, staticSource(abc))

	require.NoError(t, a.Refresh(context.Background()))
	assert.Equal(t, 3, a.Len())

	assert.True(t, b.Sync(), "sibling view sees the shared snapshot")
	assert.Equal(t, 3, b.Len())
	assert.False(t, b.Sync(), "nothing new")
}

func TestNewDerivesFromExistingSnapshot(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)

	v := newView(t, store, staticSource(nil))
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 0, v.SelectedIndex())
}

func TestQueryIsDebounced(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)

	var changes atomic.Int32
	v := newView(t, store, staticSource(nil), func(o *Options[person]) {
		o.Debounce = 40 * time.Millisecond
		o.OnChange = func() { changes.Add(1) }
	})

	v.SetQuery("a")
	v.SetQuery("al")
	v.SetQuery("ali")

	raw, settled := v.Query()
	assert.Equal(t, "ali", raw, "raw query updates immediately")
	assert.Equal(t, "", settled)
	assert.Equal(t, 3, v.Len(), "results unchanged while typing")
	assert.True(t, v.QueryPending())

	require.Eventually(t, func() bool {
		_, settled := v.Query()
		return settled == "ali"
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"Alice", "Alina"}, names(v.Results()))
	assert.Equal(t, int32(1), changes.Load(), "one settle for the whole burst")
}

func TestFlushQuery(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)
	v := newView(t, store, staticSource(nil), func(o *Options[person]) {
		o.Debounce = time.Hour
	})

	v.SetQuery("bob")
	v.FlushQuery()

	_, settled := v.Query()
	assert.Equal(t, "bob", settled)
	assert.Equal(t, []string{"Bob"}, names(v.Results()))
}

func TestClearingQueryRestoresCandidates(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)
	v := newView(t, store, staticSource(nil))

	v.SetQuery("rome")
	assert.Equal(t, []string{"Alina"}, names(v.Results()))

	v.SetQuery("")
	assert.Equal(t, names(abc), names(v.Results()))
}

func TestScopedQuery(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)
	literal := newView(t, store, staticSource(nil))
	scoped := newView(t, store, staticSource(nil), func(o *Options[person]) { o.ScopedQueries = true })

	literal.SetQuery("city:b")
	assert.Empty(t, literal.Results())

	scoped.SetQuery("city:b")
	assert.Equal(t, []string{"Bob"}, names(scoped.Results()))
}

func TestSelectionFollowsKey(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)
	v := newView(t, store, staticSource(nil))

	v.Select(2)
	sel, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "3", sel.id)

	v.SetQuery("ali")
	assert.Equal(t, 1, v.SelectedIndex(), "Alina moved from 2 to 1")
	sel, _ = v.Selected()
	assert.Equal(t, "3", sel.id)

	v.SetQuery("bob")
	sel, ok = v.Selected()
	require.True(t, ok)
	assert.Equal(t, "2", sel.id, "falls back to the first result")

	v.SetQuery("nobody")
	_, ok = v.Selected()
	assert.False(t, ok)
	assert.Equal(t, -1, v.SelectedIndex())
}

func TestMoveAndPage(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", people(100))
	v := newView(t, store, staticSource(nil))
	v.Resize(10)

	v.Move(-5)
	assert.Equal(t, 0, v.SelectedIndex())

	v.Move(15)
	assert.Equal(t, 15, v.SelectedIndex())
	offset, _ := v.Scroll()
	assert.Equal(t, 6, offset, "selection scrolled into view")

	v.Page(1)
	assert.Equal(t, 25, v.SelectedIndex())

	v.Move(1000)
	assert.Equal(t, 99, v.SelectedIndex())
	offset, _ = v.Scroll()
	assert.Equal(t, 90, offset)

	v.Page(-1)
	assert.Equal(t, 89, v.SelectedIndex())
}

func TestVisibleIsBounded(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", people(100_000))
	v := newView(t, store, staticSource(nil))
	v.Resize(20)
	v.ScrollTo(50_000)

	rows := v.Visible()
	require.Len(t, rows, 20)
	assert.Equal(t, 50_000, rows[0].Index)
	assert.Equal(t, "person 50000", rows[0].Item.name)

	w := v.Window()
	assert.LessOrEqual(t, w.Len(), 20+1+2*2)
	assert.Equal(t, 100_000, w.TotalSize)
}

func TestVariableRowHeights(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)
	v := newView(t, store, staticSource(nil), func(o *Options[person]) {
		o.RowHeight = func(p person) int { return len(p.city) }
	})
	v.Resize(100)

	assert.Equal(t, 5+6+4, v.TotalSize())

	v.SetQuery("b")
	assert.Equal(t, 6, v.TotalSize(), "sizes follow the filtered results")

	v.Measure(0, 2)
	assert.Equal(t, 2, v.TotalSize())
}

func TestScrollClampedWhenResultsShrink(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", people(50))
	v := newView(t, store, staticSource(nil))
	v.Resize(10)
	v.Move(45)

	v.SetQuery("person 1")
	offset, _ := v.Scroll()
	assert.LessOrEqual(t, offset, max(0, v.TotalSize()-10))
}

func TestEmptyQueryWhitespace(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)
	v := newView(t, store, staticSource(nil))

	v.SetQuery("   ")
	assert.Len(t, v.Results(), 3)
}

func TestStaleFetchIsDropped(t *testing.T) {
	store := cache.NewStore(nil)
	release := make(chan struct{})
	started := make(chan struct{})

	source := SourceFunc[person](func(ctx context.Context, h Hints) ([]person, error) {
		if h.Limit == 1 {
			close(started)
			<-release
			return []person{{id: "old", name: "old"}}, nil
		}
		return []person{{id: "new", name: "new"}}, nil
	})

	slow := newView(t, store, source, func(o *Options[person]) { o.Limit = 1 })
	fast := newView(t, store, source, func(o *Options[person]) { o.Limit = 2 })

	done := make(chan error, 1)
	go func() { done <- slow.Refresh(context.Background()) }()
	<-started

	require.NoError(t, fast.Refresh(context.Background()))
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)

	items, _, ok := cache.Get[person](store, "people")
	require.True(t, ok)
	assert.Equal(t, "new", items[0].id, "late response did not overwrite")

	slow.Sync()
	assert.Equal(t, []string{"new"}, names(slow.Results()))
	_, err := slow.Status()
	assert.NoError(t, err)
}

func TestFailureOfSupersededFetchIsDropped(t *testing.T) {
	store := cache.NewStore(nil)
	bus := eventbus.New(nil)
	var failures atomic.Int32
	bus.Subscribe(eventbus.EventFetchFailed, func(eventbus.DomainEvent) { failures.Add(1) })

	release := make(chan struct{})
	started := make(chan struct{})
	source := SourceFunc[person](func(ctx context.Context, h Hints) ([]person, error) {
		if h.Limit == 1 {
			close(started)
			<-release
			return nil, errors.New("connection reset")
		}
		return abc, nil
	})

	slow := newView(t, store, source, func(o *Options[person]) { o.Limit = 1; o.Bus = bus })
	fast := newView(t, store, source, func(o *Options[person]) { o.Limit = 2; o.Bus = bus })

	done := make(chan error, 1)
	go func() { done <- slow.Refresh(context.Background()) }()
	<-started

	require.NoError(t, fast.Refresh(context.Background()))
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	bus.Close()
	assert.Zero(t, failures.Load(), "no failure reported for a replaced request")

	_, err := slow.Status()
	assert.NoError(t, err)
	slow.Sync()
	assert.Equal(t, 3, slow.Len())
}

func TestFetchRacingLocalWriteIsRepeated(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)

	var (
		mu     sync.Mutex
		server = append([]person(nil), abc...)
		calls  atomic.Int32
	)
	release := make(chan struct{})
	started := make(chan struct{})
	source := SourceFunc[person](func(context.Context, Hints) ([]person, error) {
		mu.Lock()
		snapshot := append([]person(nil), server...)
		mu.Unlock()
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return snapshot, nil
	})
	sink := &funcSink{update: func(p person) (person, error) {
		mu.Lock()
		defer mu.Unlock()
		for i := range server {
			if server[i].id == p.id {
				server[i] = p
			}
		}
		return p, nil
	}}

	v := newView(t, store, source)
	coord := cache.NewCoordinator[person](store, "people", sink)

	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()
	<-started

	_, err := coord.Update(context.Background(), "1", func(p person) person {
		p.name = "Alice Renamed"
		return p
	})
	require.NoError(t, err)
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, int32(2), calls.Load())

	v.Sync()
	assert.Equal(t, []string{"Alice Renamed", "Bob", "Alina"}, names(v.Results()))
}

func TestConcurrentRefreshesAreCoalesced(t *testing.T) {
	store := cache.NewStore(nil)
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	source := SourceFunc[person](func(context.Context, Hints) ([]person, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return abc, nil
	})
	v := newView(t, store, source)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, v.Refresh(context.Background()))
	}()
	<-started

	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, v.Refresh(context.Background()))
		}()
	}
	time.Sleep(30 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 3, v.Len())
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)
	boom := errors.New("db down")
	v := newView(t, store, SourceFunc[person](func(context.Context, Hints) ([]person, error) {
		return nil, boom
	}))

	err := v.Refresh(context.Background())
	require.ErrorIs(t, err, boom)

	loading, statusErr := v.Status()
	assert.False(t, loading)
	assert.ErrorIs(t, statusErr, boom)
	assert.Equal(t, 3, v.Len())
}

func TestRemoteFilterPassesQueryHint(t *testing.T) {
	store := cache.NewStore(nil)
	hints := make(chan Hints, 4)
	v := newView(t, store, SourceFunc[person](func(_ context.Context, h Hints) ([]person, error) {
		hints <- h
		return abc, nil
	}), func(o *Options[person]) { o.RemoteFilter = true })

	v.SetQuery("ali")

	select {
	case h := <-hints:
		assert.Equal(t, "ali", h.Query)
	case <-time.After(time.Second):
		t.Fatal("no refetch after settle")
	}
	require.Eventually(t, func() bool { return v.Len() == 2 }, time.Second, 5*time.Millisecond)
}

func TestOptimisticMutationReachesView(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)
	v := newView(t, store, staticSource(nil))

	sink := &funcSink{update: func(p person) (person, error) { return p, nil }}
	coord := cache.NewCoordinator[person](store, "people", sink)

	_, err := coord.Update(context.Background(), "2", func(p person) person {
		p.name = "Bobby"
		return p
	})
	require.NoError(t, err)

	assert.True(t, v.Sync())
	assert.Equal(t, []string{"Alice", "Bobby", "Alina"}, names(v.Results()))
}

func TestCloseStopsDebounce(t *testing.T) {
	store := cache.NewStore(nil)
	cache.Set(store, "people", abc)
	v := newView(t, store, staticSource(nil), func(o *Options[person]) {
		o.Debounce = 10 * time.Millisecond
	})

	v.SetQuery("bob")
	v.Close()
	time.Sleep(40 * time.Millisecond)

	_, settled := v.Query()
	assert.Equal(t, "", settled)
}

type funcSink struct {
	update func(person) (person, error)
}

func (s *funcSink) Create(_ context.Context, p person) (person, error) { return p, nil }

func (s *funcSink) Update(_ context.Context, p person) (person, error) { return s.update(p) }

func (s *funcSink) Delete(_ context.Context, key string) (person, error) {
	return person{id: key}, nil
}
