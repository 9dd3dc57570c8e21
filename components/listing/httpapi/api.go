package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/commands"
	"github.com/nearbytask/admin-dashboard/components/listing/export"
	"github.com/nearbytask/admin-dashboard/components/listing/queries"
)

// ViewerResolver extracts the admin identity from a request.
type ViewerResolver func(*http.Request) listing.ViewerContext

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	API       Executor
	Screens   *listing.Registry
	Viewer    ViewerResolver
	Broadcast *listing.BroadcastHook
}

// HandleList responds with the page view for screen as JSON.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request, screen string) {
	view, err := h.API.List(r.Context(), queries.ListPageInput{
		Viewer: h.viewer(r),
		Screen: screen,
		State:  h.state(r, screen),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleExport streams a CSV or PDF download.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request, screen string) {
	format := export.FormatCSV
	if raw := r.URL.Query().Get("format"); raw != "" {
		parsed, err := export.ParseFormat(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		format = parsed
	}
	artifact, err := h.API.Export(r.Context(), queries.ExportInput{
		Screen: screen,
		State:  h.state(r, screen),
		Format: format,
		Scope:  listing.ExportScope(r.URL.Query().Get("scope")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Body)
}

// HandleModerate forwards a moderation action for a record. The action is
// read from the JSON body.
func (h *Handlers) HandleModerate(w http.ResponseWriter, r *http.Request, screen, recordID string) {
	h.HandleModerateAction(w, r, screen, recordID, "")
}

// HandleModerateAction is HandleModerate with the action taken from the
// route. An empty body is allowed.
func (h *Handlers) HandleModerateAction(w http.ResponseWriter, r *http.Request, screen, recordID, action string) {
	var payload commands.ModerateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && (action == "" || !errors.Is(err, io.EOF)) {
		writeError(w, &listing.Error{Kind: listing.KindValidation, Op: "decode", Err: err})
		return
	}
	payload.Screen = screen
	if recordID != "" {
		payload.RecordID = recordID
	}
	if action != "" {
		payload.Action = commands.Action(action)
	}
	if err := h.API.Moderate(listing.ContextWithViewer(r.Context(), h.viewer(r)), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleRefresh re-fetches a screen.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request, screen string) {
	if err := h.API.Refresh(r.Context(), commands.RefreshScreenInput{Screen: screen}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}

// HandlePreferences stores the posted list state for the viewer.
func (h *Handlers) HandlePreferences(w http.ResponseWriter, r *http.Request, screen string) {
	var state listing.ListState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeError(w, &listing.Error{Kind: listing.KindValidation, Op: "decode", Err: err})
		return
	}
	err := h.API.Preferences(r.Context(), commands.SavePreferencesInput{
		Viewer: h.viewer(r),
		Screen: screen,
		State:  state,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// HandleScreens lists registered screen definitions.
func (h *Handlers) HandleScreens(w http.ResponseWriter, _ *http.Request) {
	if h.Screens == nil {
		writeJSON(w, http.StatusOK, []listing.ScreenDefinition{})
		return
	}
	writeJSON(w, http.StatusOK, h.Screens.Definitions())
}

func (h *Handlers) viewer(r *http.Request) listing.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return listing.ViewerContext{
		UserID: r.Header.Get("X-User-ID"),
		Locale: r.Header.Get("Accept-Language"),
	}
}

func (h *Handlers) state(r *http.Request, code string) listing.ListState {
	var axes []string
	if h.Screens != nil {
		if screen, ok := h.Screens.Screen(code); ok {
			axes = screen.FilterAxes()
		}
	}
	return listing.StateFromQuery(r.URL.Query().Get, axes)
}
