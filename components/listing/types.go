package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DataSource fetches the full raw collection backing a screen.
// Implementations never paginate or filter; the controller does that.
type DataSource[R any] interface {
	Fetch(ctx context.Context) ([]R, error)
}

// DataSourceFunc adapts a function into a DataSource.
type DataSourceFunc[R any] func(ctx context.Context) ([]R, error)

// Fetch calls f(ctx).
func (f DataSourceFunc[R]) Fetch(ctx context.Context) ([]R, error) {
	return f(ctx)
}

// Comparator orders two records. Negative means a sorts before b.
type Comparator[R any] func(a, b R) int

// FilterAxis is one independent narrowing dimension of a screen.
type FilterAxis[R any] struct {
	Label string
	Key   func(R) string
	// CaseInsensitive compares selections with strings.EqualFold, used for
	// boolean-as-string axes such as online status.
	CaseInsensitive bool
}

// PaginationPolicy controls which page buttons are shown.
type PaginationPolicy struct {
	Width    int  `json:"width" yaml:"width"`
	Ellipsis bool `json:"ellipsis" yaml:"ellipsis"`
}

// Config parameterizes a Controller for one record type.
type Config[R any] struct {
	Searchable  []func(R) string
	Filters     map[string]FilterAxis[R]
	Sorts       map[string]Comparator[R]
	NaturalSort Comparator[R]
	PageSize    int
	Pagination  PaginationPolicy
}

const (
	defaultPageSize    = 10
	defaultWindowWidth = 5
)

// Direction is the tri-state sort direction of a sort key.
type Direction int

const (
	Default Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "default"
	}
}

// ParseDirection accepts asc/desc/default (and the empty string).
func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "default", "none":
		return Default, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Default, fmt.Errorf("listing: unknown sort direction %q", value)
	}
}

// MarshalText encodes the direction as asc/desc/default.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes asc/desc/default.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SortState reports the single active sort key, if any.
type SortState struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction"`
}

// PageItem is either a page number or the ellipsis marker.
type PageItem struct {
	Number   int
	Ellipsis bool
}

// EllipsisItem is the elision marker placed in pagination windows.
var EllipsisItem = PageItem{Ellipsis: true}

// PageNumber builds a numeric page item.
func PageNumber(n int) PageItem {
	return PageItem{Number: n}
}

func (p PageItem) String() string {
	if p.Ellipsis {
		return "..."
	}
	return strconv.Itoa(p.Number)
}

// MarshalJSON encodes numbers as JSON numbers and the marker as "...".
func (p PageItem) MarshalJSON() ([]byte, error) {
	if p.Ellipsis {
		return json.Marshal("...")
	}
	return json.Marshal(p.Number)
}

// UnmarshalJSON accepts a number or "...".
func (p *PageItem) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = PageNumber(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("listing: invalid page item %s", string(data))
	}
	item, err := ParsePageItem(s)
	if err != nil {
		return err
	}
	*p = item
	return nil
}

// ParsePageItem parses "3" or "...".
func ParsePageItem(value string) (PageItem, error) {
	value = strings.TrimSpace(value)
	if value == "..." || value == "…" {
		return EllipsisItem, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return PageItem{}, fmt.Errorf("listing: invalid page %q", value)
	}
	return PageNumber(n), nil
}

// ListState is a serializable snapshot of the user-controlled controller state.
type ListState struct {
	Search        string            `json:"search,omitempty" yaml:"search,omitempty"`
	Filters       map[string]string `json:"filters,omitempty" yaml:"filters,omitempty"`
	SortKey       string            `json:"sort_key,omitempty" yaml:"sort_key,omitempty"`
	SortDirection Direction         `json:"sort_direction" yaml:"sort_direction"`
	PageSize      int               `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Page          int               `json:"page,omitempty" yaml:"page,omitempty"`
}

// Clone returns a deep copy of the state.
func (s ListState) Clone() ListState {
	out := s
	if s.Filters != nil {
		out.Filters = make(map[string]string, len(s.Filters))
		for k, v := range s.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// ViewerContext identifies the admin looking at a screen.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// ScreenEvent describes changes that transports might care about.
type ScreenEvent struct {
	Screen   string `json:"screen"`
	RecordID string `json:"record_id,omitempty"`
	Reason   string `json:"reason"`
}

// RefreshHook notifies transports (REST/WebSocket) about screen changes.
type RefreshHook interface {
	ScreenUpdated(ctx context.Context, event ScreenEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) ScreenUpdated(context.Context, ScreenEvent) error { return nil }
