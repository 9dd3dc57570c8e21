// Package dashboard assembles the listing stack (screens, commands, queries,
// renderers and realtime hooks) behind one Service for host applications.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/commands"
	"github.com/nearbytask/admin-dashboard/components/listing/httpapi"
	"github.com/nearbytask/admin-dashboard/components/listing/queries"
	"github.com/nearbytask/admin-dashboard/pkg/activity"
)

var errMissingScreens = errors.New("dashboard: screen registry is required")

// Options configures the Service. Only Screens is required.
type Options struct {
	Screens     *listing.Registry
	Backend     commands.Backend
	Preferences listing.PreferenceStore
	Broadcast   *listing.BroadcastHook
	Activity    *activity.Emitter
	Telemetry   listing.Telemetry
	Renderer    listing.Renderer
	Notices     listing.NoticeSource
	APIBasePath string
	ChartTTL    time.Duration
}

// Service exposes the wired listing collaborators.
type Service struct {
	screens   *listing.Registry
	broadcast *listing.BroadcastHook
	pages     *listing.PageRenderer
	charts    *listing.ChartRenderer
	executor  *httpapi.CommandExecutor
	refresh   *commands.RefreshScreenCommand
}

// NewService builds a Service with safe defaults: in-memory preferences, a
// broadcast hook and the embedded HTML templates.
func NewService(opts Options) (*Service, error) {
	if opts.Screens == nil {
		return nil, errMissingScreens
	}
	if opts.Preferences == nil {
		opts.Preferences = listing.NewInMemoryPreferenceStore()
	}
	if opts.Broadcast == nil {
		opts.Broadcast = listing.NewBroadcastHook()
	}
	if opts.Renderer == nil {
		renderer, err := listing.NewTemplateRenderer()
		if err != nil {
			return nil, err
		}
		opts.Renderer = renderer
	}
	if opts.ChartTTL <= 0 {
		opts.ChartTTL = time.Minute
	}
	telemetry := opts.Telemetry

	charts := listing.NewChartCache(opts.ChartTTL)
	hooks := listing.MultiHook{opts.Broadcast, charts}
	refresh := commands.NewRefreshScreenCommand(opts.Screens, hooks, telemetry)
	executor := &httpapi.CommandExecutor{
		ListQuery:      queries.NewListPageQuery(opts.Screens, opts.Preferences),
		ExportQuery:    queries.NewExportQuery(opts.Screens),
		RefreshCmd:     refresh,
		PreferencesCmd: commands.NewSavePreferencesCommand(opts.Preferences, telemetry),
	}
	if opts.Backend != nil {
		executor.ModerateCmd = commands.NewModerateCommand(opts.Screens, opts.Backend, commands.ModerateOptions{
			Hook:      hooks,
			Emitter:   opts.Activity,
			Telemetry: telemetry,
		})
	}
	return &Service{
		screens:   opts.Screens,
		broadcast: opts.Broadcast,
		pages: listing.NewPageRenderer(opts.Screens, opts.Renderer, listing.PageRendererOptions{
			Preferences: opts.Preferences,
			Notices:     opts.Notices,
			BasePath:    opts.APIBasePath,
		}),
		charts:   listing.NewChartRenderer(listing.WithChartCache(charts)),
		executor: executor,
		refresh:  refresh,
	}, nil
}

// Screens returns the registry.
func (s *Service) Screens() *listing.Registry { return s.screens }

// Executor returns the command/query executor used by transports.
func (s *Service) Executor() httpapi.Executor { return s.executor }

// Pages returns the HTML page renderer.
func (s *Service) Pages() *listing.PageRenderer { return s.pages }

// Charts returns the breakdown chart renderer.
func (s *Service) Charts() *listing.ChartRenderer { return s.charts }

// Broadcast returns the realtime refresh hook.
func (s *Service) Broadcast() *listing.BroadcastHook { return s.broadcast }

// Handlers returns net/http handlers over the executor.
func (s *Service) Handlers() *httpapi.Handlers {
	return &httpapi.Handlers{API: s.executor, Screens: s.screens, Broadcast: s.broadcast}
}

// RefreshAll reloads every screen through the refresh command so that
// subscribers see each update. It returns the first failure.
func (s *Service) RefreshAll(ctx context.Context) error {
	var first error
	for _, screen := range s.screens.Screens() {
		err := s.refresh.Execute(ctx, commands.RefreshScreenInput{Screen: screen.Definition().Code, Reason: "startup"})
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
