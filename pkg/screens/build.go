package screens

import (
	"context"
	"fmt"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/export"
	"github.com/nearbytask/admin-dashboard/pkg/datasource"
	"github.com/nearbytask/admin-dashboard/pkg/records"
)

// Sources holds one data source per screen. A nil source leaves the screen
// unregistered.
type Sources struct {
	Users         listing.DataSource[records.User]
	Disputes      listing.DataSource[records.Dispute]
	TaskTaken     listing.DataSource[records.TaskTaken]
	Feedback      listing.DataSource[records.Feedback]
	Logs          listing.DataSource[records.LogEntry]
	Payments      listing.DataSource[records.Payment]
	Complaints    listing.DataSource[records.Complaint]
	Conversations listing.DataSource[records.Conversation]
}

// HTTPSources binds every screen to its backend collection. Records are
// validated against their schema before decoding.
func HTTPSources(fetcher datasource.Fetcher, opts ...datasource.SourceOption) Sources {
	return HTTPSourcesFor(Catalog(), fetcher, opts...)
}

// HTTPSourcesFor is HTTPSources over explicit definitions, e.g. after a
// manifest changed their paths.
func HTTPSourcesFor(defs []listing.ScreenDefinition, fetcher datasource.Fetcher, opts ...datasource.SourceOption) Sources {
	byCode := make(map[string]listing.ScreenDefinition, len(defs))
	for _, def := range defs {
		byCode[def.Code] = def
	}
	return Sources{
		Users:         httpSource[records.User](byCode[CodeUsers], fetcher, opts),
		Disputes:      httpSource[records.Dispute](byCode[CodeDisputes], fetcher, opts),
		TaskTaken:     httpSource[records.TaskTaken](byCode[CodeTaskTaken], fetcher, opts),
		Feedback:      httpSource[records.Feedback](byCode[CodeFeedback], fetcher, opts),
		Logs:          httpSource[records.LogEntry](byCode[CodeLogs], fetcher, opts),
		Payments:      httpSource[records.Payment](byCode[CodePayments], fetcher, opts),
		Complaints:    httpSource[records.Complaint](byCode[CodeComplaints], fetcher, opts),
		Conversations: httpSource[records.Conversation](byCode[CodeConversations], fetcher, opts),
	}
}

func httpSource[R any](def listing.ScreenDefinition, fetcher datasource.Fetcher, opts []datasource.SourceOption) listing.DataSource[R] {
	if def.Code == "" {
		return nil
	}
	all := make([]datasource.SourceOption, 0, len(opts)+1)
	if def.Schema != "" {
		if schema, err := records.Schema(def.Schema); err == nil {
			all = append(all, datasource.WithSchema(def.Schema, schema))
		}
	}
	all = append(all, opts...)
	return datasource.NewSource[R](fetcher, datasource.FetchRequest{Path: def.Path, Collection: def.Collection}, all...)
}

// Options configures Build.
type Options struct {
	Manifest  *listing.ScreenManifestDocument
	Notifier  listing.Notifier
	Telemetry listing.Telemetry
	PDF       export.PDFOptions
	// Defaults replaces the standard page size and pagination of screens
	// that do not carry their own. Manifest overrides still win.
	Defaults *Defaults
}

// Defaults are deployment-wide listing settings.
type Defaults struct {
	PageSize   int
	Pagination listing.PaginationPolicy
}

func (d *Defaults) apply(def listing.ScreenDefinition) listing.ScreenDefinition {
	if d == nil || def.PageSize != defaultPageSize || def.Pagination != standardPagination {
		return def
	}
	if d.PageSize > 0 {
		def.PageSize = d.PageSize
	}
	if d.Pagination.Width > 0 {
		def.Pagination = d.Pagination
	}
	return def
}

// Build registers every built-in screen that has a source and is not
// disabled by the manifest.
func Build(src Sources, opts Options) (*listing.Registry, error) {
	reg := listing.NewRegistry()
	reg.UseManifest(opts.Manifest)
	steps := []func() error{
		func() error { return register(reg, CodeUsers, UsersConfig(), src.Users, UserColumns, opts) },
		func() error { return register(reg, CodeDisputes, DisputesConfig(), src.Disputes, DisputeColumns, opts) },
		func() error {
			return register(reg, CodeTaskTaken, TaskTakenConfig(), src.TaskTaken, TaskTakenColumns, opts)
		},
		func() error {
			return register(reg, CodeFeedback, FeedbackConfig(), src.Feedback, FeedbackColumns, opts)
		},
		func() error { return register(reg, CodeLogs, LogsConfig(), src.Logs, LogColumns, opts) },
		func() error { return register(reg, CodePayments, PaymentsConfig(), src.Payments, PaymentColumns, opts) },
		func() error {
			return register(reg, CodeComplaints, ComplaintsConfig(), src.Complaints, ComplaintColumns, opts)
		},
		func() error {
			return register(reg, CodeConversations, ConversationsConfig(), src.Conversations, ConversationColumns, opts)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := reg.ApplyHooks(); err != nil {
		return nil, err
	}
	return reg, nil
}

func register[R any](reg *listing.Registry, code string, cfg listing.Config[R], source listing.DataSource[R], columns []export.Column[R], opts Options) error {
	if source == nil || !opts.Manifest.Enabled(code) {
		return nil
	}
	def, ok := Definition(code)
	if !ok {
		return fmt.Errorf("screens: no definition for %q", code)
	}
	def = opts.Manifest.Apply(opts.Defaults.apply(def))
	screen := listing.NewScreen(def, cfg, source, listing.ScreenOptions[R]{
		Columns:   columns,
		Notifier:  opts.Notifier,
		Telemetry: opts.Telemetry,
		PDF:       opts.PDF,
	})
	return reg.Register(screen)
}

// RefreshAll loads every registered screen and returns the first failure.
// Failures are already surfaced through each screen's notifier.
func RefreshAll(ctx context.Context, reg *listing.Registry) error {
	var first error
	for _, screen := range reg.Screens() {
		if err := screen.Refresh(ctx); err != nil && first == nil {
			first = fmt.Errorf("screens: refresh %s: %w", screen.Definition().Code, err)
		}
	}
	return first
}
