package listing

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearbytask/admin-dashboard/components/listing/export"
)

var taskColumns = []export.Column[taskRecord]{
	{Name: "Title", Extract: func(r taskRecord) export.Value { return export.Text(r.Title) }},
	{Name: "Status", Extract: func(r taskRecord) export.Value { return export.Text(r.Status) }},
	{Name: "Price", Extract: func(r taskRecord) export.Value { return export.Number(r.Price) }},
}

func newTaskScreen(t *testing.T, notifier Notifier) *ListScreen[taskRecord] {
	t.Helper()
	screen := NewScreen(ScreenDefinition{
		Code:       "task-taken",
		Name:       "Task Taken",
		PageSize:   5,
		ExportName: "TaskTaken",
	}, taskConfig(10), DataSourceFunc[taskRecord](func(context.Context) ([]taskRecord, error) {
		return nineTasks(), nil
	}), ScreenOptions[taskRecord]{Columns: taskColumns, Notifier: notifier})
	require.NoError(t, screen.Refresh(context.Background()))
	return screen
}

func TestScreenViewAppliesState(t *testing.T) {
	screen := newTaskScreen(t, nil)

	view, err := screen.View(context.Background(), ListState{})
	require.NoError(t, err)
	assert.Equal(t, "task-taken", view.Screen)
	assert.Equal(t, []string{"Title", "Status", "Price"}, view.Headers)
	assert.Equal(t, 5, view.PageSize)
	assert.Equal(t, 2, view.TotalPages)
	assert.Len(t, view.Rows, 5)
	assert.Equal(t, []string{"Task 1", "Cancelled", "100"}, view.Rows[0].Cells)
	assert.Equal(t, []string{"online", "status"}, view.FilterAxes)

	view, err = screen.View(context.Background(), ListState{Filters: map[string]string{"status": "Ongoing"}, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentPage)
	assert.Equal(t, 5, view.TotalItems)
	assert.Equal(t, 9, view.RawItems)
}

func TestScreenViewDoesNotCarryPageSizeBetweenRequests(t *testing.T) {
	screen := newTaskScreen(t, nil)

	view, err := screen.View(context.Background(), ListState{PageSize: 25})
	require.NoError(t, err)
	assert.Equal(t, 25, view.PageSize)
	assert.Len(t, view.Rows, 9)

	view, err = screen.View(context.Background(), ListState{})
	require.NoError(t, err)
	assert.Equal(t, 5, view.PageSize)
	assert.Len(t, view.Rows, 5)
	assert.Equal(t, 2, view.TotalPages)

	_, err = screen.View(context.Background(), ListState{PageSize: 25})
	require.NoError(t, err)
	var buf bytes.Buffer
	result, err := screen.Export(context.Background(), ExportRequest{Scope: ScopePage, Format: export.FormatCSV}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Rows)
}

func TestScreenExportUsesFilteredRows(t *testing.T) {
	screen := newTaskScreen(t, nil)

	var buf bytes.Buffer
	result, err := screen.Export(context.Background(), ExportRequest{
		State:  ListState{Filters: map[string]string{"status": "Completed"}},
		Format: export.FormatCSV,
	}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "TaskTaken.csv", result.Filename)
	assert.Equal(t, 2, result.Rows)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, `"Title","Status","Price"`, lines[0])

	buf.Reset()
	result, err = screen.Export(context.Background(), ExportRequest{Scope: ScopePage, Format: export.FormatPDF, GeneratedAt: time.Now()}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, 5, result.Rows)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestScreenExportFailureNotifies(t *testing.T) {
	notifier := &RecordingNotifier{}
	screen := NewScreen(ScreenDefinition{Code: "empty"}, taskConfig(5), DataSourceFunc[taskRecord](func(context.Context) ([]taskRecord, error) {
		return nineTasks(), nil
	}), ScreenOptions[taskRecord]{Notifier: notifier})

	var buf bytes.Buffer
	_, err := screen.Export(context.Background(), ExportRequest{Format: export.FormatCSV}, &buf)
	require.Error(t, err)
	assert.Equal(t, KindExport, KindOf(err))
	assert.True(t, errors.Is(err, export.ErrNoColumns))
	assert.Zero(t, buf.Len())
	notices := notifier.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, KindExport, notices[0].Kind)
}

func TestScreenBreakdown(t *testing.T) {
	screen := newTaskScreen(t, nil)

	breakdown, err := screen.Breakdown(context.Background(), "status")
	require.NoError(t, err)
	assert.Equal(t, []Bucket{
		{Value: "Cancelled", Count: 2},
		{Value: "Completed", Count: 2},
		{Value: "Ongoing", Count: 5},
	}, breakdown.Buckets)

	_, err = screen.Breakdown(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestStateFromQueryRoundTrip(t *testing.T) {
	state := ListState{
		Search:        "garden",
		Filters:       map[string]string{"status": "Ongoing"},
		SortKey:       "price",
		SortDirection: Descending,
		PageSize:      20,
		Page:          3,
	}
	q := EncodeState(state)
	assert.Equal(t, state, StateFromQuery(q.Get, []string{"status", "online"}))

	parsed := StateFromQuery(url.Values{"sort": {"title"}, "page": {"-2"}, "page_size": {"x"}}.Get, nil)
	assert.Equal(t, ListState{SortKey: "title", SortDirection: Ascending}, parsed)
	assert.True(t, ListState{}.IsZero())
	assert.False(t, parsed.IsZero())
}
