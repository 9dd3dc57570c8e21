package commands

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/pkg/activity"
)

type dispute struct {
	ID     string
	Status string
}

type countingSource struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSource) Fetch(context.Context) ([]dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return []dispute{{ID: "1", Status: "Open"}, {ID: "2", Status: "Resolved"}}, nil
}

func newRegistry(t *testing.T, source listing.DataSource[dispute]) *listing.Registry {
	t.Helper()
	reg := listing.NewRegistry()
	screen := listing.NewScreen(listing.ScreenDefinition{Code: "disputes", Name: "Disputes", Path: "/admin/disputes"},
		listing.Config[dispute]{
			Filters: map[string]listing.FilterAxis[dispute]{"status": {Key: func(d dispute) string { return d.Status }}},
		}, source, listing.ScreenOptions[dispute]{})
	if err := reg.Register(screen); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

type stubBackend struct {
	method, path string
	payload      any
	err          error
}

func (b *stubBackend) Do(_ context.Context, method, path string, payload, _ any) error {
	b.method, b.path, b.payload = method, path, payload
	return b.err
}

type stubTelemetry struct {
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.events = append(s.events, event)
}

func TestRefreshScreenCommand(t *testing.T) {
	source := &countingSource{}
	hook := listing.NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()
	telemetry := &stubTelemetry{}

	cmd := NewRefreshScreenCommand(newRegistry(t, source), hook, telemetry)
	if err := cmd.Execute(context.Background(), RefreshScreenInput{Screen: "disputes"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected one fetch, got %d", source.calls)
	}
	select {
	case evt := <-events:
		if evt.Screen != "disputes" || evt.Reason != "refresh" {
			t.Fatalf("unexpected event %+v", evt)
		}
	default:
		t.Fatalf("expected refresh event")
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "listing.screen.refresh" {
		t.Fatalf("unexpected telemetry %v", telemetry.events)
	}

	err := cmd.Execute(context.Background(), RefreshScreenInput{Screen: "missing"})
	if !errors.Is(err, listing.ErrUnknownScreen) {
		t.Fatalf("expected unknown screen, got %v", err)
	}
}

func TestModerateCommandForwardsRefreshesAndAudits(t *testing.T) {
	source := &countingSource{}
	backend := &stubBackend{}
	capture := &activity.CaptureHook{}
	hook := listing.NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()

	cmd := NewModerateCommand(newRegistry(t, source), backend, ModerateOptions{
		Hook:    hook,
		Emitter: activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true}),
	})
	ctx := listing.ContextWithActivity(context.Background(), listing.ActivityContext{ActorID: "admin-7"})
	err := cmd.Execute(ctx, ModerateInput{Screen: "disputes", RecordID: "2", Action: ActionResolve, Reason: "refunded"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if backend.method != http.MethodPost || backend.path != "/admin/disputes/2/resolve" {
		t.Fatalf("unexpected backend call %s %s", backend.method, backend.path)
	}
	if backend.payload.(map[string]any)["reason"] != "refunded" {
		t.Fatalf("expected reason in payload, got %v", backend.payload)
	}
	if source.calls != 1 {
		t.Fatalf("expected refresh after moderation")
	}
	if evt := <-events; evt.RecordID != "2" || evt.Reason != "resolve" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one activity event, got %d", len(capture.Events))
	}
	got := capture.Events[0]
	if got.Verb != "disputes.resolve" || got.ActorID != "admin-7" || got.ObjectID != "2" {
		t.Fatalf("unexpected activity %+v", got)
	}
}

func TestModerateCommandAuditsWhenReloadFails(t *testing.T) {
	backend := &stubBackend{}
	capture := &activity.CaptureHook{}
	telemetry := &stubTelemetry{}
	hook := listing.NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()

	source := listing.DataSourceFunc[dispute](func(context.Context) ([]dispute, error) {
		return nil, errors.New("upstream unavailable")
	})
	cmd := NewModerateCommand(newRegistry(t, source), backend, ModerateOptions{
		Hook:      hook,
		Emitter:   activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true}),
		Telemetry: telemetry,
	})
	err := cmd.Execute(context.Background(), ModerateInput{Screen: "disputes", RecordID: "1", Action: ActionBan})
	if err != nil {
		t.Fatalf("Execute returned error after the backend accepted the action: %v", err)
	}
	select {
	case evt := <-events:
		if evt.Screen != "disputes" || evt.RecordID != "1" || evt.Reason != "ban" {
			t.Fatalf("unexpected event %+v", evt)
		}
	default:
		t.Fatalf("expected a screen event")
	}
	if len(capture.Events) != 1 || capture.Events[0].Verb != "disputes.ban" {
		t.Fatalf("expected one ban activity event, got %+v", capture.Events)
	}
	want := []string{"listing.moderate.refresh_error", "listing.moderate"}
	if len(telemetry.events) != len(want) || telemetry.events[0] != want[0] || telemetry.events[1] != want[1] {
		t.Fatalf("unexpected telemetry %v", telemetry.events)
	}
}

func TestModerateCommandSurfacesForbidden(t *testing.T) {
	source := &countingSource{}
	backend := &stubBackend{err: &listing.Error{Kind: listing.KindForbidden, Op: "do", Status: http.StatusForbidden}}
	cmd := NewModerateCommand(newRegistry(t, source), backend, ModerateOptions{})

	err := cmd.Execute(context.Background(), ModerateInput{Screen: "disputes", RecordID: "1", Action: ActionBan})
	if !listing.IsForbidden(err) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if source.calls != 0 {
		t.Fatalf("expected no refresh after a failed action")
	}
}

func TestModerateCommandValidatesInput(t *testing.T) {
	cmd := NewModerateCommand(newRegistry(t, &countingSource{}), &stubBackend{}, ModerateOptions{})
	err := cmd.Execute(context.Background(), ModerateInput{Screen: "disputes", RecordID: "1", Action: "launch"})
	if listing.KindOf(err) != listing.KindValidation || !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected validation error, got %v", err)
	}
	err = cmd.Execute(context.Background(), ModerateInput{Screen: "disputes", Action: ActionWarn})
	if listing.KindOf(err) != listing.KindValidation {
		t.Fatalf("expected validation error for missing record, got %v", err)
	}
}

func TestModerationRoute(t *testing.T) {
	def := listing.ScreenDefinition{Code: "users"}
	method, path := ModerationRoute(def, "9", ActionDelete)
	if method != http.MethodDelete || path != "/users/9" {
		t.Fatalf("unexpected delete route %s %s", method, path)
	}
	method, path = ModerationRoute(listing.ScreenDefinition{Path: "/admin/users/"}, "9", ActionBan)
	if method != http.MethodPost || path != "/admin/users/9/ban" {
		t.Fatalf("unexpected ban route %s %s", method, path)
	}
}

func TestSavePreferencesCommand(t *testing.T) {
	store := listing.NewInMemoryPreferenceStore()
	cmd := NewSavePreferencesCommand(store, nil)
	viewer := listing.ViewerContext{UserID: "admin-1"}
	state := listing.ListState{Search: "open", SortKey: "created", SortDirection: listing.Descending}

	if err := cmd.Execute(context.Background(), SavePreferencesInput{Viewer: viewer, Screen: "disputes", State: state}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	got, ok, err := store.ListState(context.Background(), viewer, "disputes")
	if err != nil || !ok {
		t.Fatalf("expected stored state, ok=%v err=%v", ok, err)
	}
	if got.Search != "open" || got.SortDirection != listing.Descending {
		t.Fatalf("unexpected state %+v", got)
	}
	if err := cmd.Execute(context.Background(), SavePreferencesInput{Screen: "disputes"}); err == nil {
		t.Fatalf("expected error without viewer")
	}
}
