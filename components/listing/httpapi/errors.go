package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nearbytask/admin-dashboard/components/listing"
	"github.com/nearbytask/admin-dashboard/components/listing/export"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusFor maps an error to an HTTP status and a stable error code. The
// no_permission code lets the UI show a distinct dialog for 403s.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, listing.ErrUnknownScreen):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, listing.ErrUnknownFilter),
		errors.Is(err, listing.ErrUnknownSort),
		errors.Is(err, listing.ErrInvalidPageSize),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest, "invalid_request"
	}
	var lerr *listing.Error
	if !errors.As(err, &lerr) {
		return http.StatusInternalServerError, "internal"
	}
	switch lerr.Kind {
	case listing.KindForbidden:
		return http.StatusForbidden, "no_permission"
	case listing.KindValidation:
		return http.StatusBadRequest, "invalid_request"
	case listing.KindExport:
		return http.StatusInternalServerError, "export_failed"
	default:
		return http.StatusBadGateway, "fetch_failed"
	}
}

// Body builds the error envelope for err.
func Body(err error) (int, ErrorBody) {
	status, code := StatusFor(err)
	return status, ErrorBody{Error: err.Error(), Code: code}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := Body(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
