package listing

import (
	"context"
	"embed"
	"fmt"
	"io"
	"net/url"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Renderer describes the template renderer contract needed by PageRenderer.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// NewTemplateRenderer creates a go-template renderer backed by the embedded templates.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(embeddedTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}

// NoticeSource yields pending notices, e.g. a RecordingNotifier.
type NoticeSource interface {
	DrainScreen(screen string) []Notice
}

// PageRenderer renders a screen's current page as HTML.
type PageRenderer struct {
	registry    *Registry
	renderer    Renderer
	preferences PreferenceStore
	notices     NoticeSource
	basePath    string
}

// PageRendererOptions wires optional collaborators.
type PageRendererOptions struct {
	Preferences PreferenceStore
	Notices     NoticeSource
	BasePath    string
}

// NewPageRenderer wires a renderer against the registry.
func NewPageRenderer(registry *Registry, renderer Renderer, opts PageRendererOptions) *PageRenderer {
	base := opts.BasePath
	if base == "" {
		base = "/admin/api/screens"
	}
	return &PageRenderer{
		registry:    registry,
		renderer:    renderer,
		preferences: NormalizePreferences(opts.Preferences),
		notices:     opts.Notices,
		basePath:    base,
	}
}

// Render writes the HTML for screen code. A zero state falls back to the
// viewer's saved state; the applied state is saved back.
func (p *PageRenderer) Render(ctx context.Context, viewer ViewerContext, code string, state ListState, out io.Writer) error {
	if p.registry == nil || p.renderer == nil {
		return fmt.Errorf("listing: page renderer is not configured")
	}
	screen, err := p.registry.Lookup(code)
	if err != nil {
		return err
	}
	if state.IsZero() {
		if saved, ok, err := p.preferences.ListState(ctx, viewer, code); err == nil && ok {
			state = saved
		}
	}
	view, err := screen.View(ctx, state)
	if err != nil {
		return err
	}
	if viewer.UserID != "" {
		if err := p.preferences.SaveListState(ctx, viewer, code, view.State); err != nil {
			return err
		}
	}
	var notices []Notice
	if p.notices != nil {
		notices = p.notices.DrainScreen(code)
	}
	html, err := p.renderer.Render("list", p.templateData(screen.Definition(), view, notices))
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, html)
	return err
}

func (p *PageRenderer) templateData(def ScreenDefinition, view PageView, notices []Notice) map[string]any {
	rows := make([][]string, len(view.Rows))
	for i, row := range view.Rows {
		rows[i] = row.Cells
	}
	filters := make([]map[string]any, 0, len(view.FilterAxes))
	for _, axis := range view.FilterAxes {
		filters = append(filters, map[string]any{"name": axis, "value": view.State.Filters[axis]})
	}
	items := make([]map[string]any, 0, len(view.Pagination))
	for _, item := range view.Pagination {
		items = append(items, map[string]any{
			"number":   item.Number,
			"ellipsis": item.Ellipsis,
			"current":  !item.Ellipsis && item.Number == view.CurrentPage,
		})
	}
	noticeData := make([]map[string]any, 0, len(notices))
	for _, notice := range notices {
		noticeData = append(noticeData, map[string]any{"kind": string(notice.Kind), "message": notice.Message})
	}
	query := EncodeState(view.State)
	exportURL := func(format string) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("format", format)
		return fmt.Sprintf("%s/%s/export?%s", p.basePath, def.Code, q.Encode())
	}
	return map[string]any{
		"screen":       def.Code,
		"title":        def.Name,
		"description":  def.Description,
		"search":       view.State.Search,
		"filters":      filters,
		"headers":      view.Headers,
		"rows":         rows,
		"pagination":   items,
		"current_page": view.CurrentPage,
		"total_pages":  view.TotalPages,
		"total_items":  view.TotalItems,
		"loading":      view.Loading,
		"notices":      noticeData,
		"export_csv":   exportURL("csv"),
		"export_pdf":   exportURL("pdf"),
	}
}
