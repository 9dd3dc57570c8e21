package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/nearbytask/admin-dashboard/components/listing"
)

// ScreenLookup resolves screens by code.
type ScreenLookup interface {
	Lookup(code string) (listing.Screen, error)
}

// ListPageInput asks for one page of a screen.
type ListPageInput struct {
	Viewer listing.ViewerContext
	Screen string
	State  listing.ListState
}

// ListPageQuery renders a page, restoring and saving the viewer's state.
type ListPageQuery struct {
	screens     ScreenLookup
	preferences listing.PreferenceStore
}

// NewListPageQuery builds the query. preferences may be nil.
func NewListPageQuery(screens ScreenLookup, preferences listing.PreferenceStore) *ListPageQuery {
	return &ListPageQuery{screens: screens, preferences: listing.NormalizePreferences(preferences)}
}

var _ gocommand.Querier[ListPageInput, listing.PageView] = (*ListPageQuery)(nil)

// Query returns the page view. A zero state falls back to the saved one.
func (q *ListPageQuery) Query(ctx context.Context, input ListPageInput) (listing.PageView, error) {
	screen, err := q.screens.Lookup(input.Screen)
	if err != nil {
		return listing.PageView{}, err
	}
	state := input.State
	if state.IsZero() {
		if saved, ok, err := q.preferences.ListState(ctx, input.Viewer, input.Screen); err == nil && ok {
			state = saved
		}
	}
	view, err := screen.View(ctx, state)
	if err != nil {
		return listing.PageView{}, err
	}
	if input.Viewer.UserID != "" {
		if err := q.preferences.SaveListState(ctx, input.Viewer, input.Screen, view.State); err != nil {
			return listing.PageView{}, err
		}
	}
	return view, nil
}
