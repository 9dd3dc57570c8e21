package listing

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/nearbytask/admin-dashboard/components/listing/export"
)

// ScreenDefinition describes one management screen.
type ScreenDefinition struct {
	Code        string           `json:"code" yaml:"code"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string           `json:"category,omitempty" yaml:"category,omitempty"`
	Path        string           `json:"path,omitempty" yaml:"path,omitempty"`
	Collection  string           `json:"collection,omitempty" yaml:"collection,omitempty"`
	Schema      string           `json:"schema,omitempty" yaml:"schema,omitempty"`
	PageSize    int              `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Pagination  PaginationPolicy `json:"pagination" yaml:"pagination"`
	ExportName  string           `json:"export_name,omitempty" yaml:"export_name,omitempty"`
	ExportTitle string           `json:"export_title,omitempty" yaml:"export_title,omitempty"`
}

// Screen is the record-type-erased view of a ListScreen used by transports.
type Screen interface {
	Definition() ScreenDefinition
	FilterAxes() []string
	SortKeys() []string
	Loading() bool
	Refresh(ctx context.Context) error
	View(ctx context.Context, state ListState) (PageView, error)
	Export(ctx context.Context, req ExportRequest, w io.Writer) (ExportResult, error)
	Breakdown(ctx context.Context, axis string) (Breakdown, error)
}

// ExportScope selects which rows are exported.
type ExportScope string

const (
	ScopeFiltered ExportScope = "filtered"
	ScopePage     ExportScope = "page"
)

// ExportRequest describes an export of a screen in a given state.
type ExportRequest struct {
	State       ListState
	Format      export.Format
	Scope       ExportScope
	GeneratedAt time.Time
}

// ExportResult describes the artifact written by Screen.Export.
type ExportResult struct {
	Filename    string        `json:"filename"`
	ContentType string        `json:"content_type"`
	Format      export.Format `json:"format"`
	Rows        int           `json:"rows"`
}

// RowView is one rendered table row.
type RowView struct {
	Cells []string `json:"cells"`
}

// PageView is the rendered state of a screen.
type PageView struct {
	Screen      string     `json:"screen"`
	Title       string     `json:"title"`
	Headers     []string   `json:"headers"`
	Rows        []RowView  `json:"rows"`
	Records     any        `json:"records"`
	Pagination  []PageItem `json:"pagination"`
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	PageSize    int        `json:"page_size"`
	TotalItems  int        `json:"total_items"`
	RawItems    int        `json:"raw_items"`
	State       ListState  `json:"state"`
	FilterAxes  []string   `json:"filter_axes"`
	SortKeys    []string   `json:"sort_keys"`
	Loading     bool       `json:"loading"`
}

// Bucket counts records sharing one filter value.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Breakdown groups the raw collection by a filter axis.
type Breakdown struct {
	Screen  string   `json:"screen"`
	Axis    string   `json:"axis"`
	Buckets []Bucket `json:"buckets"`
}

// ScreenOptions configures a ListScreen.
type ScreenOptions[R any] struct {
	Columns   []export.Column[R]
	Notifier  Notifier
	Telemetry Telemetry
	PDF       export.PDFOptions
}

// ListScreen binds a definition, a controller and its loader.
type ListScreen[R any] struct {
	def       ScreenDefinition
	cfg       Config[R]
	loader    *Loader[R]
	columns   []export.Column[R]
	notifier  Notifier
	telemetry Telemetry
	pdf       export.PDFOptions
}

var _ Screen = (*ListScreen[struct{}])(nil)

// NewScreen builds a screen. Page size and pagination policy from the
// definition override the ones in cfg.
func NewScreen[R any](def ScreenDefinition, cfg Config[R], source DataSource[R], opts ScreenOptions[R]) *ListScreen[R] {
	if def.PageSize > 0 {
		cfg.PageSize = def.PageSize
	}
	if def.Pagination.Width > 0 {
		cfg.Pagination = def.Pagination
	}
	notifier := normalizeNotifier(opts.Notifier)
	telemetry := normalizeTelemetry(opts.Telemetry)
	ctrl := NewController(cfg, WithNotifier(notifier), WithScreen(def.Code))
	if opts.PDF.Title == "" {
		opts.PDF.Title = def.ExportTitle
	}
	if opts.PDF.Title == "" {
		opts.PDF.Title = def.Name
	}
	return &ListScreen[R]{
		def:       def,
		cfg:       cfg,
		loader:    NewLoader(source, ctrl, telemetry),
		columns:   opts.Columns,
		notifier:  notifier,
		telemetry: telemetry,
		pdf:       opts.PDF,
	}
}

// Definition returns the screen definition.
func (s *ListScreen[R]) Definition() ScreenDefinition { return s.def }

// FilterAxes lists the filter axes.
func (s *ListScreen[R]) FilterAxes() []string { return sortedKeys(s.cfg.Filters) }

// SortKeys lists the sort keys.
func (s *ListScreen[R]) SortKeys() []string { return sortedKeys(s.cfg.Sorts) }

// Loading reports whether a fetch is in flight.
func (s *ListScreen[R]) Loading() bool { return s.loader.Loading() }

// Refresh re-fetches the raw collection.
func (s *ListScreen[R]) Refresh(ctx context.Context) error {
	return s.loader.Refresh(ctx)
}

// With runs fn with exclusive access to the underlying controller.
func (s *ListScreen[R]) With(fn func(*Controller[R]) error) error {
	return s.loader.With(fn)
}

// View applies state and renders the current page.
func (s *ListScreen[R]) View(_ context.Context, state ListState) (PageView, error) {
	var view PageView
	err := s.loader.With(func(c *Controller[R]) error {
		c.Apply(state)
		page := c.Page()
		view = PageView{
			Screen:      s.def.Code,
			Title:       s.def.Name,
			Headers:     s.headers(),
			Rows:        s.rows(page),
			Records:     page,
			Pagination:  c.PaginationWindow(),
			CurrentPage: c.CurrentPage(),
			TotalPages:  c.TotalPages(),
			PageSize:    c.PageSize(),
			TotalItems:  len(c.Filtered()),
			RawItems:    len(c.Raw()),
			State:       c.State(),
			FilterAxes:  c.FilterAxes(),
			SortKeys:    c.SortKeys(),
		}
		return nil
	})
	view.Loading = s.loader.Loading()
	return view, err
}

// Export writes the filtered (or current page) rows in the requested format.
// A failure is reported on the notifier and leaves w untouched.
func (s *ListScreen[R]) Export(ctx context.Context, req ExportRequest, w io.Writer) (ExportResult, error) {
	var rows []R
	_ = s.loader.With(func(c *Controller[R]) error {
		c.Apply(req.State)
		if req.Scope == ScopePage {
			rows = append(rows, c.Page()...)
		} else {
			rows = append(rows, c.Filtered()...)
		}
		return nil
	})
	format := req.Format
	if format == "" {
		format = export.FormatCSV
	}
	result := ExportResult{
		Filename:    export.Filename(s.exportName(), format),
		ContentType: format.ContentType(),
		Format:      format,
	}

	table, err := export.BuildTable(s.columns, rows)
	if err == nil {
		switch format {
		case export.FormatCSV:
			err = export.WriteCSV(w, table)
		case export.FormatPDF:
			opts := s.pdf
			opts.GeneratedAt = req.GeneratedAt
			_, err = export.WritePDF(w, table, opts)
		default:
			err = export.ErrUnknownFormat
		}
	}
	if err != nil {
		err = &Error{Kind: KindExport, Op: "listing: export " + s.def.Code, Err: err}
		s.notifier.Notify(ctx, noticeFor(s.def.Code, err))
		s.telemetry.Record(ctx, "listing.export.error", map[string]any{
			"screen": s.def.Code,
			"format": string(format),
			"error":  err.Error(),
		})
		return ExportResult{}, err
	}
	result.Rows = len(table.Rows)
	s.telemetry.Record(ctx, "listing.export", map[string]any{
		"screen": s.def.Code,
		"format": string(format),
		"rows":   result.Rows,
	})
	return result, nil
}

// Breakdown counts raw records per value of a filter axis.
func (s *ListScreen[R]) Breakdown(_ context.Context, axis string) (Breakdown, error) {
	filter, ok := s.cfg.Filters[axis]
	if !ok || filter.Key == nil {
		return Breakdown{}, ErrUnknownFilter
	}
	counts := map[string]int{}
	_ = s.loader.With(func(c *Controller[R]) error {
		for _, record := range c.Raw() {
			counts[filter.Key(record)]++
		}
		return nil
	})
	out := Breakdown{Screen: s.def.Code, Axis: axis, Buckets: make([]Bucket, 0, len(counts))}
	for value, count := range counts {
		out.Buckets = append(out.Buckets, Bucket{Value: value, Count: count})
	}
	sort.Slice(out.Buckets, func(i, j int) bool { return out.Buckets[i].Value < out.Buckets[j].Value })
	return out, nil
}

func (s *ListScreen[R]) exportName() string {
	if s.def.ExportName != "" {
		return s.def.ExportName
	}
	return s.def.Name
}

func (s *ListScreen[R]) headers() []string {
	headers := make([]string, len(s.columns))
	for i, col := range s.columns {
		headers[i] = col.Name
	}
	return headers
}

func (s *ListScreen[R]) rows(page []R) []RowView {
	rows := make([]RowView, 0, len(page))
	for _, record := range page {
		cells := make([]string, len(s.columns))
		for i, col := range s.columns {
			if col.Extract != nil {
				cells[i] = col.Extract(record).String()
			}
		}
		rows = append(rows, RowView{Cells: cells})
	}
	return rows
}
