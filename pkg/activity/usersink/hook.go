// Package usersink forwards activity events to a go-users activity sink.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/nearbytask/admin-dashboard/pkg/activity"
)

// Sink is the subset of the go-users activity sink used here.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook adapts a Sink into an activity.Hook.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify maps the event onto an ActivityRecord. Identifiers that are not
// UUIDs (backend ids are numeric) are kept in Data instead.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if event.Verb == "" {
		return nil
	}
	data := make(map[string]any, len(event.Metadata)+4)
	for k, v := range event.Metadata {
		data[k] = v
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = event.Recipients
	}
	record := types.ActivityRecord{
		ActorID:    parseID(event.ActorID, "actor_id", data),
		UserID:     parseID(event.UserID, "user_id", data),
		TenantID:   parseID(event.TenantID, "tenant_id", data),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
	return h.Sink.Log(ctx, record)
}

func parseID(value, key string, data map[string]any) uuid.UUID {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		data[key] = value
		return uuid.Nil
	}
	return id
}
