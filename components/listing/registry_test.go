package listing

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	tasks := newTaskScreen(t, nil)
	require.NoError(t, reg.Register(tasks))
	assert.Error(t, reg.Register(tasks))
	assert.Error(t, reg.Register(nil))

	got, err := reg.Lookup("task-taken")
	require.NoError(t, err)
	assert.Equal(t, "Task Taken", got.Definition().Name)

	_, err = reg.Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownScreen)
	assert.Len(t, reg.Definitions(), 1)
}

func TestRegistryApplyHooks(t *testing.T) {
	RegisterScreenHook(func(reg *Registry) error {
		if _, ok := reg.Screen("hooked"); ok {
			return nil
		}
		return reg.Register(NewScreen(ScreenDefinition{Code: "hooked", Name: "Hooked"}, taskConfig(5), nil, ScreenOptions[taskRecord]{}))
	})
	reg := NewRegistry()
	require.NoError(t, reg.ApplyHooks())
	_, ok := reg.Screen("hooked")
	assert.True(t, ok)
}

const sampleManifest = `
version: "1"
name: nearbytask
screens:
  - code: payments
    name: Payouts
    page_size: 25
    window: 3
    ellipsis: false
    export_name: Payouts
  - code: logs
    disabled: true
`

func TestDecodeManifestAndApply(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, "nearbytask", doc.Name)

	def := doc.Apply(ScreenDefinition{Code: "payments", Name: "Payments", PageSize: 10, Pagination: PaginationPolicy{Width: 5, Ellipsis: true}})
	assert.Equal(t, "Payouts", def.Name)
	assert.Equal(t, 25, def.PageSize)
	assert.Equal(t, PaginationPolicy{Width: 3, Ellipsis: false}, def.Pagination)
	assert.Equal(t, "Payouts", def.ExportName)

	untouched := ScreenDefinition{Code: "users", Name: "Users"}
	assert.Equal(t, untouched, doc.Apply(untouched))
	assert.False(t, doc.Enabled("logs"))
	assert.True(t, doc.Enabled("users"))
}

func TestDecodeManifestRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"version":       "version: \"2\"\nscreens: []\n",
		"missing code":  "screens:\n  - name: x\n",
		"duplicate":     "screens:\n  - code: a\n  - code: a\n",
		"unknown field": "screens:\n  - code: a\n    colour: red\n",
		"negative size": "screens:\n  - code: a\n    page_size: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeManifest(strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}

func TestReadManifestRecordsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o600))
	doc, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	_, err = ReadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInMemoryPreferenceStore(t *testing.T) {
	store := NewInMemoryPreferenceStore()
	ctx := context.Background()
	viewer := ViewerContext{UserID: "admin-1"}

	_, ok, err := store.ListState(ctx, viewer, "users")
	require.NoError(t, err)
	assert.False(t, ok)

	state := ListState{Search: "jenny", Filters: map[string]string{"status": "active"}}
	require.NoError(t, store.SaveListState(ctx, viewer, "users", state))
	state.Filters["status"] = "mutated"

	got, ok, err := store.ListState(ctx, viewer, "users")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "active", got.Filters["status"])

	_, ok, _ = store.ListState(ctx, viewer, "payments")
	assert.False(t, ok)
	assert.Error(t, store.SaveListState(ctx, ViewerContext{}, "users", state))
}

type stubRenderer struct {
	name string
	data any
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.name, s.data = name, data
	for _, w := range out {
		_, _ = w.Write([]byte("rendered"))
	}
	return "rendered", nil
}

func TestPageRendererRestoresAndSavesState(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newTaskScreen(t, nil)))
	prefs := NewInMemoryPreferenceStore()
	viewer := ViewerContext{UserID: "admin-1"}
	ctx := context.Background()
	require.NoError(t, prefs.SaveListState(ctx, viewer, "task-taken", ListState{Filters: map[string]string{"status": "Completed"}}))

	stub := &stubRenderer{}
	notifier := &RecordingNotifier{}
	notifier.Notify(ctx, Notice{Kind: KindFetch, Message: "Failed to load data. Please try again."})
	pages := NewPageRenderer(reg, stub, PageRendererOptions{Preferences: prefs, Notices: notifier})

	var buf bytes.Buffer
	require.NoError(t, pages.Render(ctx, viewer, "task-taken", ListState{}, &buf))
	assert.Equal(t, "list", stub.name)
	data := stub.data.(map[string]any)
	assert.Equal(t, 2, data["total_items"])
	assert.Len(t, data["notices"], 1)
	assert.Contains(t, data["export_csv"], "filter.status=Completed")
	assert.Equal(t, "rendered", buf.String())

	require.NoError(t, pages.Render(ctx, viewer, "task-taken", ListState{Search: "task 9"}, &buf))
	saved, ok, err := prefs.ListState(ctx, viewer, "task-taken")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "task 9", saved.Search)

	assert.ErrorIs(t, pages.Render(ctx, viewer, "missing", ListState{}, &buf), ErrUnknownScreen)
}

func TestPageRendererOnlyShowsNoticesForRenderedScreen(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newTaskScreen(t, nil)))
	ctx := context.Background()

	notifier := &RecordingNotifier{}
	notifier.Notify(ctx, Notice{Kind: KindFetch, Screen: "payments", Message: "Failed to load data. Please try again."})
	notifier.Notify(ctx, Notice{Kind: KindExport, Screen: "task-taken", Message: "Export failed."})
	stub := &stubRenderer{}
	pages := NewPageRenderer(reg, stub, PageRendererOptions{Notices: notifier})

	var buf bytes.Buffer
	require.NoError(t, pages.Render(ctx, ViewerContext{}, "task-taken", ListState{}, &buf))
	notices := stub.data.(map[string]any)["notices"].([]map[string]any)
	require.Len(t, notices, 1)
	assert.Equal(t, "Export failed.", notices[0]["message"])

	require.NoError(t, pages.Render(ctx, ViewerContext{}, "task-taken", ListState{}, &buf))
	assert.Empty(t, stub.data.(map[string]any)["notices"])

	pending := notifier.DrainScreen("payments")
	require.Len(t, pending, 1)
	assert.Equal(t, KindFetch, pending[0].Kind)
}

func TestTemplateRendererRendersList(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	reg := NewRegistry()
	require.NoError(t, reg.Register(newTaskScreen(t, nil)))

	var buf bytes.Buffer
	require.NoError(t, NewPageRenderer(reg, renderer, PageRendererOptions{}).Render(context.Background(), ViewerContext{}, "task-taken", ListState{}, &buf))
	html := buf.String()
	assert.Contains(t, html, "Task Taken")
	assert.Contains(t, html, "Task 1")
	assert.Contains(t, html, "format=pdf")
}
