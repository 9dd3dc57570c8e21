package goadmin

import (
	"context"
	"errors"
	"fmt"

	"github.com/nearbytask/admin-dashboard/components/listing"
	activitypkg "github.com/nearbytask/admin-dashboard/pkg/activity"
)

// MenuBuilder ensures listing entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures screen link metadata.
type MenuItem struct {
	Code     string
	Label    string
	Route    string
	Path     string
	Icon     string
	Group    string
	Position int
}

// Config wires the screen registry and feature flags into an admin shell.
type Config struct {
	EnableListings bool
	MenuCode       string
	MenuBuilder    MenuBuilder
	Screens        *listing.Registry
	// BasePath prefixes each screen's HTML route.
	BasePath       string
	RoutePrefix    string
	Icons          map[string]string
	ActivityHooks  activitypkg.Hooks
	ActivityConfig activitypkg.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg     Config
	emitter *activitypkg.Emitter
}

// New creates an Admin helper that can seed listing menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableListings && cfg.Screens == nil {
		return nil, errors.New("goadmin: screen registry is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/admin"
	}
	if cfg.RoutePrefix == "" {
		cfg.RoutePrefix = "admin.screens."
	}
	return &Admin{
		cfg:     cfg,
		emitter: activitypkg.NewEmitter(cfg.ActivityHooks, cfg.ActivityConfig),
	}, nil
}

// Screens exposes the registry when listings are enabled.
func (a *Admin) Screens() *listing.Registry {
	if !a.cfg.EnableListings {
		return nil
	}
	return a.cfg.Screens
}

// Activity returns the emitter moderation commands should audit through.
func (a *Admin) Activity() *activitypkg.Emitter {
	return a.emitter
}

// MenuItems derives one entry per registered screen, grouped by category.
func (a *Admin) MenuItems() []MenuItem {
	if a.Screens() == nil {
		return nil
	}
	defs := a.cfg.Screens.Definitions()
	items := make([]MenuItem, 0, len(defs))
	for i, def := range defs {
		icon := a.cfg.Icons[def.Code]
		if icon == "" {
			icon = "list"
		}
		items = append(items, MenuItem{
			Code:     def.Code,
			Label:    def.Name,
			Route:    a.cfg.RoutePrefix + def.Code,
			Path:     fmt.Sprintf("%s/screens/%s", a.cfg.BasePath, def.Code),
			Icon:     icon,
			Group:    def.Category,
			Position: i + 1,
		})
	}
	return items
}

// Bootstrap seeds menu entries when listing support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableListings || a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return fmt.Errorf("goadmin: ensure menu item %s: %w", item.Code, err)
		}
	}
	return nil
}
