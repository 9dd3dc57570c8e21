package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/commands"
	"github.com/nearbytask/admin-dashboard/components/listing/export"
	"github.com/nearbytask/admin-dashboard/components/listing/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(_ context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

type stubQuerier[T, R any] struct {
	last   T
	result R
	err    error
}

func (s *stubQuerier[T, R]) Query(_ context.Context, msg T) (R, error) {
	s.last = msg
	return s.result, s.err
}

func TestHandleListParsesState(t *testing.T) {
	list := &stubQuerier[queries.ListPageInput, listing.PageView]{result: listing.PageView{Screen: "users", TotalItems: 3}}
	api := &Handlers{API: &CommandExecutor{ListQuery: list}}
	req := httptest.NewRequest(http.MethodGet, "/screens/users?search=jenny&sort=name&dir=desc&page=2", nil)
	req.Header.Set("X-User-ID", "admin-1")
	rec := httptest.NewRecorder()

	api.HandleList(rec, req, "users")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if list.last.Screen != "users" || list.last.Viewer.UserID != "admin-1" {
		t.Fatalf("unexpected input %+v", list.last)
	}
	if list.last.State.Search != "jenny" || list.last.State.SortDirection != listing.Descending || list.last.State.Page != 2 {
		t.Fatalf("unexpected state %+v", list.last.State)
	}
	var view listing.PageView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil || view.TotalItems != 3 {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}
}

func TestHandleExportWritesAttachment(t *testing.T) {
	exp := &stubQuerier[queries.ExportInput, queries.ExportArtifact]{result: queries.ExportArtifact{
		Filename:    "Users.csv",
		ContentType: "text/csv; charset=utf-8",
		Rows:        1,
		Body:        []byte("\"Name\"\n\"Jenny\"\n"),
	}}
	api := &Handlers{API: &CommandExecutor{ExportQuery: exp}}
	rec := httptest.NewRecorder()
	api.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/screens/users/export", nil), "users")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if exp.last.Format != export.FormatCSV {
		t.Fatalf("expected csv default, got %q", exp.last.Format)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="Users.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Body.String() != "\"Name\"\n\"Jenny\"\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	api.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/screens/users/export?format=xlsx", nil), "users")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestHandleModerateMapsForbidden(t *testing.T) {
	moderate := &stubCommander[commands.ModerateInput]{
		err: &listing.Error{Kind: listing.KindForbidden, Op: "do", Status: http.StatusForbidden, Err: errors.New("denied")},
	}
	api := &Handlers{API: &CommandExecutor{ModerateCmd: moderate}}
	buf, _ := json.Marshal(map[string]any{"action": "ban", "reason": "spam"})
	rec := httptest.NewRecorder()
	api.HandleModerate(rec, httptest.NewRequest(http.MethodPost, "/screens/users/records/9/moderate", bytes.NewReader(buf)), "users", "9")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "no_permission" {
		t.Fatalf("expected no_permission code, got %q", body.Code)
	}
	if moderate.last.Screen != "users" || moderate.last.RecordID != "9" || moderate.last.Action != commands.ActionBan {
		t.Fatalf("unexpected input %+v", moderate.last)
	}
}

func TestHandleModerateRejectsBadJSON(t *testing.T) {
	api := &Handlers{API: &CommandExecutor{ModerateCmd: &stubCommander[commands.ModerateInput]{}}}
	rec := httptest.NewRecorder()
	api.HandleModerate(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{"))), "users", "1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRefreshAndPreferences(t *testing.T) {
	refresh := &stubCommander[commands.RefreshScreenInput]{}
	prefs := &stubCommander[commands.SavePreferencesInput]{}
	api := &Handlers{API: &CommandExecutor{RefreshCmd: refresh, PreferencesCmd: prefs}}

	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/", nil), "payments")
	if rec.Code != http.StatusAccepted || refresh.last.Screen != "payments" {
		t.Fatalf("unexpected refresh response %d %+v", rec.Code, refresh.last)
	}

	buf, _ := json.Marshal(listing.ListState{Search: "x", SortKey: "amount", SortDirection: listing.Ascending})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf))
	req.Header.Set("X-User-ID", "admin-2")
	rec = httptest.NewRecorder()
	api.HandlePreferences(rec, req, "payments")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if prefs.last.Viewer.UserID != "admin-2" || prefs.last.State.SortKey != "amount" {
		t.Fatalf("unexpected preferences input %+v", prefs.last)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{listing.ErrUnknownScreen, http.StatusNotFound, "not_found"},
		{listing.ErrUnknownSort, http.StatusBadRequest, "invalid_request"},
		{&listing.Error{Kind: listing.KindValidation}, http.StatusBadRequest, "invalid_request"},
		{&listing.Error{Kind: listing.KindFetch, Status: 500}, http.StatusBadGateway, "fetch_failed"},
		{&listing.Error{Kind: listing.KindExport}, http.StatusInternalServerError, "export_failed"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, code := StatusFor(tc.err)
		if status != tc.status || code != tc.code {
			t.Fatalf("StatusFor(%v) = %d %s, want %d %s", tc.err, status, code, tc.status, tc.code)
		}
	}
}

func TestExecutorWithoutHandlers(t *testing.T) {
	api := &Handlers{API: &CommandExecutor{}}
	rec := httptest.NewRecorder()
	api.HandleRefresh(rec, httptest.NewRequest(http.MethodPost, "/", nil), "users")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
