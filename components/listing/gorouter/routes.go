package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/commands"
	"github.com/nearbytask/admin-dashboard/components/listing/export"
	"github.com/nearbytask/admin-dashboard/components/listing/httpapi"
	"github.com/nearbytask/admin-dashboard/components/listing/queries"
)

// ViewerResolver converts a router.Context into a listing.ViewerContext.
type ViewerResolver func(router.Context) listing.ViewerContext

// Config wires go-router with the listing pages, APIs and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Screens        *listing.Registry
	Pages          *listing.PageRenderer
	API            httpapi.Executor
	Broadcast      *listing.BroadcastHook
	Charts         *listing.ChartRenderer
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for listing endpoints.
type RouteConfig struct {
	Index       string
	HTML        string
	List        string
	Export      string
	Breakdown   string
	Refresh     string
	Moderate    string
	Preferences string
	WebSocket   string
}

// Register mounts listing routes (HTML, JSON, export, moderation, WebSocket).
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Screens == nil {
		return errors.New("gorouter: screen registry is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.Index, router.WrapHandler(func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, cfg.Screens.Definitions())
	}))

	if cfg.Pages != nil {
		group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
			code := ctx.Param("screen")
			var buf bytes.Buffer
			err := cfg.Pages.Render(ctx.Context(), viewerResolver(ctx), code, stateFrom(ctx, cfg.Screens, code), &buf)
			if err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}

	if cfg.Charts != nil {
		group.Get(routes.Breakdown, router.WrapHandler(func(ctx router.Context) error {
			screen, err := cfg.Screens.Lookup(ctx.Param("screen"))
			if err != nil {
				return respondError(ctx, err)
			}
			breakdown, err := screen.Breakdown(ctx.Context(), ctx.Param("axis"))
			if err != nil {
				return respondError(ctx, err)
			}
			title := fmt.Sprintf("%s by %s", screen.Definition().Name, breakdown.Axis)
			html, err := cfg.Charts.Render(title, breakdown, listing.ChartKind(ctx.Query("kind")))
			if err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send([]byte(html))
		}))
	}

	if cfg.API != nil {
		registerAPI(group, cfg.API, cfg.Screens, viewerResolver, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, screens *listing.Registry, resolver ViewerResolver, routes RouteConfig) {
	r.Get(routes.List, router.WrapHandler(func(ctx router.Context) error {
		code := ctx.Param("screen")
		view, err := api.List(ctx.Context(), queries.ListPageInput{
			Viewer: resolver(ctx),
			Screen: code,
			State:  stateFrom(ctx, screens, code),
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))

	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		code := ctx.Param("screen")
		format := export.FormatCSV
		if raw := ctx.Query("format"); raw != "" {
			parsed, err := export.ParseFormat(raw)
			if err != nil {
				return respondError(ctx, err)
			}
			format = parsed
		}
		artifact, err := api.Export(ctx.Context(), queries.ExportInput{
			Screen: code,
			State:  stateFrom(ctx, screens, code),
			Format: format,
			Scope:  listing.ExportScope(ctx.Query("scope")),
		})
		if err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", artifact.ContentType)
		ctx.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
		return ctx.Send(artifact.Body)
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Refresh(ctx.Context(), commands.RefreshScreenInput{Screen: ctx.Param("screen")}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "refreshed"})
	}))

	r.Post(routes.Moderate, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ModerateInput
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, &listing.Error{Kind: listing.KindValidation, Op: "decode", Err: err})
			}
		}
		payload.Screen = ctx.Param("screen")
		payload.RecordID = ctx.Param("id")
		payload.Action = commands.Action(ctx.Param("action"))
		if err := api.Moderate(listing.ContextWithViewer(ctx.Context(), resolver(ctx)), payload); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}))

	r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		var state listing.ListState
		if err := json.Unmarshal(ctx.Body(), &state); err != nil {
			return respondError(ctx, &listing.Error{Kind: listing.KindValidation, Op: "decode", Err: err})
		}
		err := api.Preferences(ctx.Context(), commands.SavePreferencesInput{
			Viewer: resolver(ctx),
			Screen: ctx.Param("screen"),
			State:  state,
		})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *listing.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func stateFrom(ctx router.Context, screens *listing.Registry, code string) listing.ListState {
	var axes []string
	if screen, ok := screens.Screen(code); ok {
		axes = screen.FilterAxes()
	}
	return listing.StateFromQuery(func(key string) string { return ctx.Query(key) }, axes)
}

func defaultViewerResolver(ctx router.Context) listing.ViewerContext {
	var viewer listing.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(ctx.Header("Accept-Language"))
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, err error) error {
	status, body := httpapi.Body(err)
	return ctx.JSON(status, body)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Index == "" {
		routes.Index = "/screens"
	}
	if routes.HTML == "" {
		routes.HTML = "/screens/:screen"
	}
	if routes.List == "" {
		routes.List = "/api/screens/:screen"
	}
	if routes.Export == "" {
		routes.Export = "/api/screens/:screen/export"
	}
	if routes.Breakdown == "" {
		routes.Breakdown = "/api/screens/:screen/breakdown/:axis"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/api/screens/:screen/refresh"
	}
	if routes.Moderate == "" {
		routes.Moderate = "/api/screens/:screen/records/:id/:action"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/api/screens/:screen/preferences"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
