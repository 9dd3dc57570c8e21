package httpapi

import "net/http"

// Routes mounts the handlers on a ServeMux under prefix, e.g. "/admin/api".
// Realtime streams are mounted when Broadcast is set.
func (h *Handlers) Routes(prefix string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+prefix+"/screens", h.HandleScreens)
	mux.HandleFunc("GET "+prefix+"/screens/{screen}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleList(w, r, r.PathValue("screen"))
	})
	mux.HandleFunc("GET "+prefix+"/screens/{screen}/export", func(w http.ResponseWriter, r *http.Request) {
		h.HandleExport(w, r, r.PathValue("screen"))
	})
	mux.HandleFunc("POST "+prefix+"/screens/{screen}/refresh", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRefresh(w, r, r.PathValue("screen"))
	})
	mux.HandleFunc("POST "+prefix+"/screens/{screen}/preferences", func(w http.ResponseWriter, r *http.Request) {
		h.HandlePreferences(w, r, r.PathValue("screen"))
	})
	mux.HandleFunc("POST "+prefix+"/screens/{screen}/records/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleModerate(w, r, r.PathValue("screen"), r.PathValue("id"))
	})
	mux.HandleFunc("POST "+prefix+"/screens/{screen}/records/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleModerateAction(w, r, r.PathValue("screen"), r.PathValue("id"), r.PathValue("action"))
	})
	if h.Broadcast != nil {
		mux.HandleFunc("GET "+prefix+"/events", h.Broadcast.ServeSSE)
		mux.HandleFunc("GET "+prefix+"/ws", h.Broadcast.ServeWebSocket)
	}
	return mux
}
