// Package listview composes debounced search, filtering, windowing and the
// shared cache into a list view over one resource.
package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/eventbus"
	"ledgergrip/internal/listview/cache"
	"ledgergrip/internal/listview/debounce"
	"ledgergrip/internal/listview/search"
	"ledgergrip/internal/listview/window"
)

// ErrStale is returned by Refresh when a newer fetch superseded it
var ErrStale = errors.New("stale fetch result")

// Item is an entity with a stable key
type Item = cache.Item

// Hints are passed to a Source. Query is the settled search query; a
// source may use it to prefilter but must return a superset of the
// matching items.
type Hints struct {
	Query string
	Limit int
}

// Source loads the candidate items of a resource
type Source[T Item] interface {
	Fetch(ctx context.Context, hints Hints) ([]T, error)
}

// SourceFunc adapts a function to Source
type SourceFunc[T Item] func(ctx context.Context, hints Hints) ([]T, error)

func (f SourceFunc[T]) Fetch(ctx context.Context, hints Hints) ([]T, error) { return f(ctx, hints) }

// Options configure a View
type Options[T Item] struct {
	Resource string
	Fields   []search.Field[T]

	// RowHeight gives per-item heights; RowSize is used when it is nil
	RowHeight func(T) int
	RowSize   int

	Overscan int
	Debounce time.Duration
	Limit    int

	// ScopedQueries lets "field:value" queries match a single field
	ScopedQueries bool

	// RemoteFilter refetches with the settled query as hint whenever the
	// query settles
	RemoteFilter bool

	// OnChange is called after the visible state changed, outside the
	// view's lock and possibly from a timer goroutine
	OnChange func()

	// Bus receives fetch lifecycle events; optional
	Bus eventbus.EventBus
}

// Row is one materialized row of the window
type Row[T Item] struct {
	Item     T
	Index    int
	Start    int
	Size     int
	Selected bool
}

// View is a searchable, virtualized list over one cached resource
type View[T Item] struct {
	opts   Options[T]
	source Source[T]
	store  *cache.Store
	logger *zap.Logger

	engine    *search.Engine[T]
	debouncer *debounce.Debouncer[string]
	group     singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	raw        string
	settled    string
	candidates []T
	version    uint64
	results    []T
	win        *window.Manager
	scroll     int
	viewport   int
	selected   int
	selKey     string
	loading    bool
	err        error
}

// New creates a view and derives its initial state from whatever the
// store already holds for the resource.
func New[T Item](opts Options[T], source Source[T], store *cache.Store, logger *zap.Logger) *View[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Overscan < 0 {
		opts.Overscan = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &View[T]{
		opts:     opts,
		source:   source,
		store:    store,
		logger:   logger.Named("listview").With(zap.String("resource", opts.Resource)),
		engine:   newEngine(opts),
		ctx:      ctx,
		cancel:   cancel,
		win:      window.New(opts.RowSize),
		selected: -1,
	}
	v.debouncer = debounce.New(opts.Debounce, v.settle)
	v.Sync()
	return v
}

func newEngine[T Item](opts Options[T]) *search.Engine[T] {
	if opts.ScopedQueries {
		return search.NewScoped(opts.Fields...)
	}
	return search.New(opts.Fields...)
}

// Resource returns the cache key of the view
func (v *View[T]) Resource() string { return v.opts.Resource }

// Fields returns the names of the searchable fields
func (v *View[T]) Fields() []string { return v.engine.Fields() }

// SetQuery records the raw query and feeds the debouncer
func (v *View[T]) SetQuery(raw string) {
	v.mu.Lock()
	v.raw = raw
	v.mu.Unlock()
	v.debouncer.Observe(raw)
}

// FlushQuery applies the pending query without waiting
func (v *View[T]) FlushQuery() {
	v.debouncer.Flush()
}

// Query returns the raw query and the settled query the results reflect
func (v *View[T]) Query() (raw, settled string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.raw, v.settled
}

// QueryPending reports whether the raw query has not settled yet
func (v *View[T]) QueryPending() bool {
	return v.debouncer.Pending()
}

func (v *View[T]) settle(query string) {
	v.mu.Lock()
	if query == v.settled {
		v.mu.Unlock()
		return
	}
	v.settled = query
	v.recompute()
	v.mu.Unlock()

	v.logger.Debug("query settled", zap.String("query", query))
	v.changed()

	if v.opts.RemoteFilter {
		go func() {
			if err := v.Refresh(v.ctx); err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, context.Canceled) {
				v.logger.Warn("refresh after query failed", zap.Error(err))
			}
		}()
	}
}

// Refresh fetches the candidates and stores them in the shared cache.
// Concurrent refreshes with the same hints share one fetch. A result or
// failure that arrives after a newer fetch started is dropped and ErrStale
// returned. A result that raced a local write to the snapshot is fetched
// again.
func (v *View[T]) Refresh(ctx context.Context) error {
	v.mu.Lock()
	hints := Hints{Limit: v.opts.Limit}
	if v.opts.RemoteFilter {
		hints.Query = v.settled
	}
	v.loading = true
	v.mu.Unlock()

	key := fmt.Sprintf("%s\x00%s\x00%d", v.opts.Resource, hints.Query, hints.Limit)
	_, err, shared := v.group.Do(key, func() (any, error) {
		return nil, v.fetch(ctx, hints)
	})
	if shared {
		v.logger.Debug("refresh coalesced", zap.String("query", hints.Query))
	}

	stale := errors.Is(err, ErrStale)
	v.mu.Lock()
	v.loading = false
	if !stale {
		v.err = err
	}
	v.mu.Unlock()

	if !stale {
		v.Sync()
		v.changed()
	}
	return err
}

// maxFetchAttempts bounds the refetches after local writes raced a fetch
const maxFetchAttempts = 3

func (v *View[T]) fetch(ctx context.Context, hints Hints) error {
	for attempt := 1; ; attempt++ {
		err := v.fetchOnce(ctx, hints)
		if !errors.Is(err, cache.ErrModified) {
			return err
		}
		if attempt == maxFetchAttempts {
			// the local snapshot is newer than anything fetched so far
			return ErrStale
		}
		v.logger.Debug("snapshot changed during fetch, refetching", zap.Int("attempt", attempt))
	}
}

func (v *View[T]) fetchOnce(ctx context.Context, hints Hints) error {
	resource := v.opts.Resource
	gen := v.store.BeginFetch(resource)
	v.publish(domain.FetchStartedEvent{Resource: resource, Generation: gen})

	start := time.Now()
	items, err := v.source.Fetch(ctx, hints)
	if err != nil {
		if !v.store.Current(resource, gen) {
			v.logger.Debug("dropping failure of superseded fetch", zap.Uint64("generation", gen), zap.Error(err))
			return ErrStale
		}
		v.logger.Warn("fetch failed", zap.Uint64("generation", gen), zap.Error(err))
		v.publish(domain.FetchFailedEvent{Resource: resource, Err: err})
		return fmt.Errorf("fetch %s: %w", resource, err)
	}

	if _, err := cache.CommitFetch(v.store, resource, gen, items); err != nil {
		if errors.Is(err, cache.ErrSuperseded) {
			v.logger.Debug("dropping stale fetch", zap.Uint64("generation", gen))
			return ErrStale
		}
		return err
	}

	v.logger.Debug("fetch completed",
		zap.Uint64("generation", gen),
		zap.Int("count", len(items)),
		zap.Duration("took", time.Since(start)))
	v.publish(domain.FetchCompletedEvent{Resource: resource, Generation: gen, Count: len(items)})
	return nil
}

// Sync re-derives the results from the store snapshot. It reports
// whether anything changed.
func (v *View[T]) Sync() bool {
	items, version, ok := cache.Get[T](v.store, v.opts.Resource)
	if !ok {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if version == v.version {
		return false
	}
	v.candidates = items
	v.version = version
	v.recompute()
	return true
}

// recompute derives results, window sizes, selection and scroll from the
// candidates and the settled query. Callers hold mu.
func (v *View[T]) recompute() {
	results := v.engine.Search(v.candidates, v.settled)
	v.results = results

	if v.opts.RowHeight != nil {
		height := v.opts.RowHeight
		v.win.SetSizeFunc(func(i int) int { return height(results[i]) })
	} else {
		v.win.SetFixedSize(v.opts.RowSize)
	}
	v.win.SetCount(len(results))

	v.selected = -1
	if v.selKey != "" {
		for i := range results {
			if results[i].Key() == v.selKey {
				v.selected = i
				break
			}
		}
	}
	if v.selected < 0 && len(results) > 0 {
		v.selected = 0
		v.selKey = results[0].Key()
	}

	v.scroll = v.win.ClampScroll(v.scroll, v.viewport)
	if v.selected >= 0 {
		v.scroll = v.win.ScrollIntoView(v.selected, v.scroll, v.viewport)
	}
}

// Highlight returns the spans of text, the value of field, matched by the
// settled query
func (v *View[T]) Highlight(field, text string) [][2]int {
	v.mu.Lock()
	query := v.settled
	v.mu.Unlock()
	return v.engine.Highlight(field, text, query)
}

// Resize sets the viewport height
func (v *View[T]) Resize(height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewport = max(0, height)
	v.scroll = v.win.ClampScroll(v.scroll, v.viewport)
	if v.selected >= 0 {
		v.scroll = v.win.ScrollIntoView(v.selected, v.scroll, v.viewport)
	}
}

// ScrollTo moves the scroll offset, clamped to the list
func (v *View[T]) ScrollTo(offset int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scroll = v.win.ClampScroll(offset, v.viewport)
}

// ScrollBy moves the scroll offset by delta
func (v *View[T]) ScrollBy(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scroll = v.win.ClampScroll(v.scroll+delta, v.viewport)
}

// Scroll returns the scroll offset and viewport height
func (v *View[T]) Scroll() (offset, viewport int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scroll, v.viewport
}

// Window returns the currently materialized window
func (v *View[T]) Window() window.Window {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.win.Compute(v.scroll, v.viewport, v.opts.Overscan)
}

// Visible returns the rows intersecting the viewport, without overscan
func (v *View[T]) Visible() []Row[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	w := v.win.Compute(v.scroll, v.viewport, 0)
	rows := make([]Row[T], 0, w.Len())
	bottom := v.scroll + v.viewport
	for _, it := range w.Items {
		if it.End() <= v.scroll || it.Start >= bottom {
			continue
		}
		rows = append(rows, Row[T]{
			Item:     v.results[it.Index],
			Index:    it.Index,
			Start:    it.Start,
			Size:     it.Size,
			Selected: it.Index == v.selected,
		})
	}
	return rows
}

// Measure corrects the height of a rendered row
func (v *View[T]) Measure(index, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.win.Measure(index, height)
}

// TotalSize returns the height of all results
func (v *View[T]) TotalSize() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.win.TotalSize()
}

// Results returns the filtered items. The slice must not be modified.
func (v *View[T]) Results() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.results
}

// Len returns the number of results
func (v *View[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.results)
}

// Candidates returns the unfiltered snapshot the view derives from
func (v *View[T]) Candidates() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.candidates
}

// Status reports whether a fetch is running and the last fetch error
func (v *View[T]) Status() (loading bool, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading, v.err
}

// Select selects the result at index, clamped to the results
func (v *View[T]) Select(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectLocked(index)
}

// Move moves the selection by delta rows
func (v *View[T]) Move(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectLocked(max(0, v.selected) + delta)
}

// Page moves the selection by dir viewports
func (v *View[T]) Page(dir int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected < 0 {
		return
	}
	target := v.win.Offset(v.selected) + dir*max(1, v.viewport)
	v.selectLocked(v.win.IndexAt(max(0, target)))
}

func (v *View[T]) selectLocked(index int) {
	if len(v.results) == 0 {
		v.selected = -1
		v.selKey = ""
		return
	}
	index = max(0, min(index, len(v.results)-1))
	v.selected = index
	v.selKey = v.results[index].Key()
	v.scroll = v.win.ScrollIntoView(index, v.scroll, v.viewport)
}

// Selected returns the selected item
func (v *View[T]) Selected() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected < 0 || v.selected >= len(v.results) {
		var zero T
		return zero, false
	}
	return v.results[v.selected], true
}

// SelectedIndex returns the index of the selected result, -1 if none
func (v *View[T]) SelectedIndex() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// SelectKey selects the result with key, if present
func (v *View[T]) SelectKey(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.results {
		if v.results[i].Key() == key {
			v.selectLocked(i)
			return true
		}
	}
	return false
}

// Close stops the debouncer and cancels background refreshes
func (v *View[T]) Close() {
	v.debouncer.Stop()
	v.cancel()
}

func (v *View[T]) changed() {
	if v.opts.OnChange != nil {
		v.opts.OnChange()
	}
}

func (v *View[T]) publish(event domain.DomainEvent) {
	if v.opts.Bus != nil {
		v.opts.Bus.Publish(event)
	}
}
