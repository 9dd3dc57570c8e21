package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names used to carry a ListState in URLs.
const (
	QuerySearch    = "search"
	QuerySort      = "sort"
	QueryDirection = "dir"
	QueryPageSize  = "page_size"
	QueryPage      = "page"
	queryFilter    = "filter."
)

// IsZero reports whether the state carries no user choice.
func (s ListState) IsZero() bool {
	return s.Search == "" && len(s.Filters) == 0 && s.SortKey == "" &&
		s.SortDirection == Default && s.PageSize == 0 && s.Page == 0
}

// StateFromQuery reads a ListState through get (url.Values.Get,
// router.Context.Query, ...). Filters are read for the given axes as
// "filter.<axis>". Malformed numbers and directions are ignored.
func StateFromQuery(get func(string) string, axes []string) ListState {
	state := ListState{Search: strings.TrimSpace(get(QuerySearch))}
	for _, axis := range axes {
		if value := strings.TrimSpace(get(queryFilter + axis)); value != "" {
			if state.Filters == nil {
				state.Filters = map[string]string{}
			}
			state.Filters[axis] = value
		}
	}
	state.SortKey = strings.TrimSpace(get(QuerySort))
	if dir, err := ParseDirection(get(QueryDirection)); err == nil {
		state.SortDirection = dir
	}
	if state.SortKey != "" && state.SortDirection == Default {
		state.SortDirection = Ascending
	}
	if n, err := strconv.Atoi(get(QueryPageSize)); err == nil && n > 0 {
		state.PageSize = n
	}
	if n, err := strconv.Atoi(get(QueryPage)); err == nil && n > 0 {
		state.Page = n
	}
	return state
}

// EncodeState is the inverse of StateFromQuery.
func EncodeState(state ListState) url.Values {
	q := url.Values{}
	if state.Search != "" {
		q.Set(QuerySearch, state.Search)
	}
	for axis, value := range state.Filters {
		if value != "" {
			q.Set(queryFilter+axis, value)
		}
	}
	if state.SortKey != "" && state.SortDirection != Default {
		q.Set(QuerySort, state.SortKey)
		q.Set(QueryDirection, state.SortDirection.String())
	}
	if state.PageSize > 0 {
		q.Set(QueryPageSize, strconv.Itoa(state.PageSize))
	}
	if state.Page > 0 {
		q.Set(QueryPage, strconv.Itoa(state.Page))
	}
	return q
}
