package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/nearbytask/admin-dashboard/components/listing"
)

// ScreenLookup resolves screens by code.
type ScreenLookup interface {
	Lookup(code string) (listing.Screen, error)
}

// RefreshScreenInput re-fetches a screen's collection.
type RefreshScreenInput struct {
	Screen string `json:"screen"`
	Reason string `json:"reason,omitempty"`
}

// RefreshScreenCommand re-fetches a screen and tells transports about it.
type RefreshScreenCommand struct {
	screens   ScreenLookup
	hook      listing.RefreshHook
	telemetry Telemetry
}

// NewRefreshScreenCommand creates the command.
func NewRefreshScreenCommand(screens ScreenLookup, hook listing.RefreshHook, telemetry Telemetry) *RefreshScreenCommand {
	return &RefreshScreenCommand{
		screens:   screens,
		hook:      listing.NormalizeRefreshHook(hook),
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[RefreshScreenInput] = (*RefreshScreenCommand)(nil)

// Execute refreshes the screen. A response superseded by a newer refresh is
// not an error.
func (c *RefreshScreenCommand) Execute(ctx context.Context, msg RefreshScreenInput) error {
	if c.screens == nil {
		return errors.New("refresh command requires screens")
	}
	screen, err := c.screens.Lookup(msg.Screen)
	if err != nil {
		return err
	}
	if err := screen.Refresh(ctx); err != nil {
		if errors.Is(err, listing.ErrStaleResponse) {
			return nil
		}
		return err
	}
	reason := msg.Reason
	if reason == "" {
		reason = "refresh"
	}
	if err := c.hook.ScreenUpdated(ctx, listing.ScreenEvent{Screen: msg.Screen, Reason: reason}); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "listing.screen.refresh", map[string]any{
		"screen": msg.Screen,
		"reason": reason,
	})
	return nil
}
