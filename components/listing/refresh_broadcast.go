package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

const subscriberBuffer = 8

// BroadcastHook fans screen events out to in-process subscribers, e.g. open
// admin pages waiting to re-fetch after a moderation action.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]*subscriber
	next int
}

type subscriber struct {
	ch      chan ScreenEvent
	screens map[string]struct{}
}

func (s *subscriber) wants(screen string) bool {
	if len(s.screens) == 0 {
		return true
	}
	_, ok := s.screens[screen]
	return ok
}

// NewBroadcastHook creates an empty hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]*subscriber)}
}

// ScreenUpdated implements RefreshHook. A subscriber whose buffer is full
// misses the event.
func (h *BroadcastHook) ScreenUpdated(_ context.Context, event ScreenEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.wants(event.Screen) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel receiving events for the given screens (all
// screens when none are named) and a cancel func that closes it.
func (h *BroadcastHook) Subscribe(screens ...string) (<-chan ScreenEvent, func()) {
	sub := &subscriber{ch: make(chan ScreenEvent, subscriberBuffer)}
	for _, code := range screens {
		if code = strings.TrimSpace(code); code != "" {
			if sub.screens == nil {
				sub.screens = map[string]struct{}{}
			}
			sub.screens[code] = struct{}{}
		}
	}

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Subscribers reports the number of live subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func screensFromQuery(r *http.Request) []string {
	var codes []string
	for _, raw := range r.URL.Query()["screen"] {
		codes = append(codes, strings.Split(raw, ",")...)
	}
	return codes
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and writes each event as a JSON
// message. Repeated or comma separated ?screen= parameters narrow the stream.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(screensFromQuery(r)...)
	defer cancel()
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams events as "screen" Server-Sent Events with increasing ids.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := h.Subscribe(screensFromQuery(r)...)
	defer cancel()
	for seq := 1; ; seq++ {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: screen\ndata: %s\n\n", seq, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// MultiHook forwards events to every hook and returns the first error.
type MultiHook []RefreshHook

// ScreenUpdated implements RefreshHook.
func (m MultiHook) ScreenUpdated(ctx context.Context, event ScreenEvent) error {
	var first error
	for _, hook := range m {
		if hook == nil {
			continue
		}
		if err := hook.ScreenUpdated(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NormalizeRefreshHook returns a no-op hook when h is nil.
func NormalizeRefreshHook(h RefreshHook) RefreshHook {
	if h == nil {
		return noopRefreshHook{}
	}
	return h
}
