package listing

import (
	"context"
	"slices"
	"sort"
	"strings"
)

// Controller keeps the filtered, sorted and paginated views of a raw record
// collection. Every mutation recomputes the views synchronously from the
// current state. A Controller is not safe for concurrent use; see Loader.
type Controller[R any] struct {
	cfg      Config[R]
	notifier Notifier
	screen   string

	raw      []R
	search   string
	filters  map[string]string
	sortKey  string
	sortDir  Direction
	pageSize int
	current  int

	filtered []R
	page     []R
	window   []PageItem
}

// ControllerOption customizes a controller.
type ControllerOption func(*controllerOptions)

type controllerOptions struct {
	notifier Notifier
	screen   string
}

// WithNotifier routes load failures to the given error channel.
func WithNotifier(n Notifier) ControllerOption {
	return func(o *controllerOptions) { o.notifier = n }
}

// WithScreen tags notices with the screen code.
func WithScreen(code string) ControllerOption {
	return func(o *controllerOptions) { o.screen = code }
}

// NewController builds a controller with an empty collection.
func NewController[R any](cfg Config[R], opts ...ControllerOption) *Controller[R] {
	var o controllerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Pagination.Width <= 0 {
		cfg.Pagination.Width = defaultWindowWidth
	}
	c := &Controller[R]{
		cfg:      cfg,
		notifier: normalizeNotifier(o.notifier),
		screen:   o.screen,
		filters:  map[string]string{},
		pageSize: cfg.PageSize,
		current:  1,
	}
	c.recompute()
	return c
}

// Load replaces the raw collection and returns to the first page.
func (c *Controller[R]) Load(records []R) {
	c.raw = slices.Clone(records)
	c.current = 1
	c.recompute()
}

// Fail handles a data-source failure: the collection is emptied, the error is
// surfaced on the notifier and the views stay well-formed.
func (c *Controller[R]) Fail(ctx context.Context, err error) {
	c.raw = nil
	c.current = 1
	c.recompute()
	if err != nil {
		c.notifier.Notify(ctx, noticeFor(c.screen, err))
	}
}

// SetSearchText stores the normalized search text.
func (c *Controller[R]) SetSearchText(text string) {
	c.search = NormalizeSearch(text)
	c.current = 1
	c.recompute()
}

// SetFilter selects a value on one axis; the empty string clears it.
func (c *Controller[R]) SetFilter(axis, value string) error {
	if _, ok := c.cfg.Filters[axis]; !ok {
		return ErrUnknownFilter
	}
	if value == "" {
		delete(c.filters, axis)
	} else {
		c.filters[axis] = value
	}
	c.current = 1
	c.recompute()
	return nil
}

// ClearFilters drops every filter selection.
func (c *Controller[R]) ClearFilters() {
	c.filters = map[string]string{}
	c.current = 1
	c.recompute()
}

// ToggleSort advances key through Ascending, Descending and back to Default.
// Activating a key resets whichever key was active before.
func (c *Controller[R]) ToggleSort(key string) error {
	if _, ok := c.cfg.Sorts[key]; !ok {
		return ErrUnknownSort
	}
	switch {
	case c.sortKey != key || c.sortDir == Default:
		c.sortKey, c.sortDir = key, Ascending
	case c.sortDir == Ascending:
		c.sortDir = Descending
	default:
		c.sortKey, c.sortDir = "", Default
	}
	c.recompute()
	return nil
}

// SetPageSize changes the page length and returns to the first page.
func (c *Controller[R]) SetPageSize(n int) error {
	if n <= 0 {
		return ErrInvalidPageSize
	}
	c.pageSize = n
	c.current = 1
	c.recompute()
	return nil
}

// GoToPage moves to p. Ellipsis markers and out-of-range pages are ignored.
func (c *Controller[R]) GoToPage(p PageItem) {
	if p.Ellipsis || p.Number < 1 || p.Number > c.TotalPages() {
		return
	}
	c.current = p.Number
	c.paginate()
}

// NextPage advances one page if possible.
func (c *Controller[R]) NextPage() {
	c.GoToPage(PageNumber(c.current + 1))
}

// PreviousPage goes back one page if possible.
func (c *Controller[R]) PreviousPage() {
	c.GoToPage(PageNumber(c.current - 1))
}

// State snapshots the user-controlled state.
func (c *Controller[R]) State() ListState {
	state := ListState{
		Search:        c.search,
		SortKey:       c.sortKey,
		SortDirection: c.sortDir,
		PageSize:      c.pageSize,
		Page:          c.current,
	}
	if len(c.filters) > 0 {
		state.Filters = make(map[string]string, len(c.filters))
		for k, v := range c.filters {
			state.Filters[k] = v
		}
	}
	return state
}

// Apply restores a snapshot. Unknown axes and sort keys are dropped; a zero
// page size falls back to the configured default so one request's size
// never leaks into the next.
func (c *Controller[R]) Apply(state ListState) {
	c.search = NormalizeSearch(state.Search)
	c.filters = map[string]string{}
	for axis, value := range state.Filters {
		if _, ok := c.cfg.Filters[axis]; ok && value != "" {
			c.filters[axis] = value
		}
	}
	c.sortKey, c.sortDir = "", Default
	if _, ok := c.cfg.Sorts[state.SortKey]; ok && state.SortDirection != Default {
		c.sortKey, c.sortDir = state.SortKey, state.SortDirection
	}
	c.pageSize = c.cfg.PageSize
	if state.PageSize > 0 {
		c.pageSize = state.PageSize
	}
	c.current = max(state.Page, 1)
	c.recompute()
}

// Raw returns the loaded collection.
func (c *Controller[R]) Raw() []R { return c.raw }

// Filtered returns the searched, filtered and sorted view.
func (c *Controller[R]) Filtered() []R { return c.filtered }

// Page returns the records on the current page.
func (c *Controller[R]) Page() []R { return c.page }

// PaginationWindow returns the page buttons to display.
func (c *Controller[R]) PaginationWindow() []PageItem { return c.window }

// CurrentPage returns the 1-based current page.
func (c *Controller[R]) CurrentPage() int { return c.current }

// PageSize returns the active page size.
func (c *Controller[R]) PageSize() int { return c.pageSize }

// SearchText returns the normalized search text.
func (c *Controller[R]) SearchText() string { return c.search }

// FilterSelection returns the selected value for axis, or "".
func (c *Controller[R]) FilterSelection(axis string) string { return c.filters[axis] }

// SortState returns the active sort key and direction.
func (c *Controller[R]) SortState() SortState {
	return SortState{Key: c.sortKey, Direction: c.sortDir}
}

// SortDirection returns the direction of key; inactive keys are Default.
func (c *Controller[R]) SortDirection(key string) Direction {
	if key == c.sortKey {
		return c.sortDir
	}
	return Default
}

// TotalPages returns max(1, ceil(|filtered|/pageSize)).
func (c *Controller[R]) TotalPages() int {
	return TotalPages(len(c.filtered), c.pageSize)
}

// FilterAxes lists the configured axis names in sorted order.
func (c *Controller[R]) FilterAxes() []string {
	return sortedKeys(c.cfg.Filters)
}

// SortKeys lists the configured sort keys in sorted order.
func (c *Controller[R]) SortKeys() []string {
	return sortedKeys(c.cfg.Sorts)
}

func (c *Controller[R]) recompute() {
	c.filtered = Derive(c.raw, c.cfg, c.search, c.filters, SortState{Key: c.sortKey, Direction: c.sortDir})
	c.current = clamp(c.current, 1, c.TotalPages())
	c.paginate()
}

func (c *Controller[R]) paginate() {
	start := (c.current - 1) * c.pageSize
	end := min(start+c.pageSize, len(c.filtered))
	if start >= end {
		c.page = []R{}
	} else {
		c.page = c.filtered[start:end:end]
	}
	c.window = Window(c.TotalPages(), c.current, c.cfg.Pagination)
}

// Derive computes the filtered view of raw. It does not mutate raw.
func Derive[R any](raw []R, cfg Config[R], search string, filters map[string]string, sortState SortState) []R {
	tokens := strings.Fields(NormalizeSearch(search))
	out := make([]R, 0, len(raw))
	for _, record := range raw {
		if len(tokens) > 0 && !matchTokens(haystackOf(record, cfg.Searchable), tokens) {
			continue
		}
		if !matchFilters(record, cfg.Filters, filters) {
			continue
		}
		out = append(out, record)
	}
	if cmp := activeComparator(cfg, sortState); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func matchFilters[R any](record R, axes map[string]FilterAxis[R], selections map[string]string) bool {
	for name, selected := range selections {
		if selected == "" {
			continue
		}
		axis, ok := axes[name]
		if !ok || axis.Key == nil {
			continue
		}
		value := axis.Key(record)
		if axis.CaseInsensitive {
			if !strings.EqualFold(value, selected) {
				return false
			}
		} else if value != selected {
			return false
		}
	}
	return true
}

func activeComparator[R any](cfg Config[R], state SortState) Comparator[R] {
	if state.Direction != Default {
		if cmp, ok := cfg.Sorts[state.Key]; ok && cmp != nil {
			if state.Direction == Descending {
				return func(a, b R) int { return cmp(b, a) }
			}
			return cmp
		}
	}
	return cfg.NaturalSort
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
