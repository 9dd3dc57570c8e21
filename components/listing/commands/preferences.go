package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/nearbytask/admin-dashboard/components/listing"
)

// SavePreferencesInput stores a viewer's list state for one screen.
type SavePreferencesInput struct {
	Viewer listing.ViewerContext `json:"viewer"`
	Screen string                `json:"screen"`
	State  listing.ListState     `json:"state"`
}

// SavePreferencesCommand persists per-viewer list state.
type SavePreferencesCommand struct {
	store     listing.PreferenceStore
	telemetry Telemetry
}

// NewSavePreferencesCommand creates the command.
func NewSavePreferencesCommand(store listing.PreferenceStore, telemetry Telemetry) *SavePreferencesCommand {
	return &SavePreferencesCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SavePreferencesInput] = (*SavePreferencesCommand)(nil)

// Execute stores the state for the viewer.
func (c *SavePreferencesCommand) Execute(ctx context.Context, msg SavePreferencesInput) error {
	if c.store == nil {
		return errors.New("preferences command requires store")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("preferences command requires viewer user id")
	}
	if msg.Screen == "" {
		return errors.New("preferences command requires screen")
	}
	if err := c.store.SaveListState(ctx, msg.Viewer, msg.Screen, msg.State); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "listing.preferences.save", map[string]any{
		"user_id": msg.Viewer.UserID,
		"screen":  msg.Screen,
		"filters": len(msg.State.Filters),
	})
	return nil
}
