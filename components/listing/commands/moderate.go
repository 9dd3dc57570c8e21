package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/pkg/activity"
)

// Action is a moderation action forwarded to the backend.
type Action string

const (
	ActionBan     Action = "ban"
	ActionWarn    Action = "warn"
	ActionDelete  Action = "delete"
	ActionResolve Action = "resolve"
)

// ParseAction validates a moderation action name.
func ParseAction(value string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(value))); a {
	case ActionBan, ActionWarn, ActionDelete, ActionResolve:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, value)
	}
}

// ErrUnknownAction reports an unsupported moderation action.
var ErrUnknownAction = errors.New("commands: unknown moderation action")

// Backend performs authenticated calls against the platform API.
type Backend interface {
	Do(ctx context.Context, method, path string, payload, out any) error
}

// ModerateInput targets one record of a screen.
type ModerateInput struct {
	Screen   string         `json:"screen"`
	RecordID string         `json:"record_id"`
	Action   Action         `json:"action"`
	Reason   string         `json:"reason,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// ModerateCommand forwards a moderation action, refreshes the screen, then
// broadcasts and audits the change.
type ModerateCommand struct {
	screens   ScreenLookup
	backend   Backend
	hook      listing.RefreshHook
	emitter   *activity.Emitter
	telemetry Telemetry
}

// ModerateOptions wires optional collaborators.
type ModerateOptions struct {
	Hook      listing.RefreshHook
	Emitter   *activity.Emitter
	Telemetry Telemetry
}

// NewModerateCommand creates the command.
func NewModerateCommand(screens ScreenLookup, backend Backend, opts ModerateOptions) *ModerateCommand {
	return &ModerateCommand{
		screens:   screens,
		backend:   backend,
		hook:      listing.NormalizeRefreshHook(opts.Hook),
		emitter:   opts.Emitter,
		telemetry: normalizeTelemetry(opts.Telemetry),
	}
}

var _ gocommand.Commander[ModerateInput] = (*ModerateCommand)(nil)

// Execute runs the action. Backend failures are returned as listing errors so
// callers can tell a 403 apart from other failures. Once the backend accepts
// the action the change is always broadcast and audited, even if reloading
// the screen fails.
func (c *ModerateCommand) Execute(ctx context.Context, msg ModerateInput) error {
	if c.screens == nil || c.backend == nil {
		return errors.New("moderate command requires screens and backend")
	}
	action, err := ParseAction(string(msg.Action))
	if err != nil {
		return &listing.Error{Kind: listing.KindValidation, Op: "moderate", Err: err}
	}
	if strings.TrimSpace(msg.RecordID) == "" {
		return &listing.Error{Kind: listing.KindValidation, Op: "moderate", Err: errors.New("record id is required")}
	}
	screen, err := c.screens.Lookup(msg.Screen)
	if err != nil {
		return err
	}
	def := screen.Definition()
	method, path := ModerationRoute(def, msg.RecordID, action)
	payload := map[string]any{}
	for k, v := range msg.Payload {
		payload[k] = v
	}
	if msg.Reason != "" {
		payload["reason"] = msg.Reason
	}
	if err := c.backend.Do(ctx, method, path, payload, nil); err != nil {
		c.telemetry.Record(ctx, "listing.moderate.error", map[string]any{
			"screen": def.Code,
			"action": string(action),
			"status": listing.StatusOf(err),
		})
		return err
	}

	// The backend has applied the action; a failed reload must not hide it
	// from subscribers or the audit trail.
	if err := screen.Refresh(ctx); err != nil && !errors.Is(err, listing.ErrStaleResponse) {
		c.telemetry.Record(ctx, "listing.moderate.refresh_error", map[string]any{
			"screen": def.Code,
			"action": string(action),
			"error":  err.Error(),
		})
	}
	event := listing.ScreenEvent{Screen: def.Code, RecordID: msg.RecordID, Reason: string(action)}
	if err := c.hook.ScreenUpdated(ctx, event); err != nil {
		return err
	}

	actor := listing.ActivityFrom(ctx)
	if err := c.emitter.Emit(ctx, activity.Event{
		Verb:           def.Code + "." + string(action),
		ActorID:        actor.ActorID,
		UserID:         actor.UserID,
		TenantID:       actor.TenantID,
		ObjectType:     def.Code,
		ObjectID:       msg.RecordID,
		DefinitionCode: def.Code,
		Metadata: map[string]any{
			"action": string(action),
			"reason": msg.Reason,
		},
	}); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "listing.moderate", map[string]any{
		"screen":    def.Code,
		"action":    string(action),
		"record_id": msg.RecordID,
	})
	return nil
}

// ModerationRoute maps an action to the backend call: DELETE <path>/<id> for
// deletes, POST <path>/<id>/<action> otherwise.
func ModerationRoute(def listing.ScreenDefinition, recordID string, action Action) (string, string) {
	base := strings.TrimRight(def.Path, "/")
	if base == "" {
		base = "/" + def.Code
	}
	if action == ActionDelete {
		return http.MethodDelete, base + "/" + recordID
	}
	return http.MethodPost, base + "/" + recordID + "/" + string(action)
}
