package listing

import (
	"context"
	"sync"
)

// Notice is a transient user-visible message (toast/alert).
type Notice struct {
	Kind    Kind   `json:"kind"`
	Screen  string `json:"screen,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

// Notifier is the user-visible error channel.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notice) {}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// RecordingNotifier buffers notices until drained, e.g. to flash them in the
// next HTTP response.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify appends the notice.
func (r *RecordingNotifier) Notify(_ context.Context, notice Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

// Drain returns and clears buffered notices.
func (r *RecordingNotifier) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	return out
}

// DrainScreen returns and clears the notices raised for screen plus those not
// tied to any screen. Notices for other screens stay buffered.
func (r *RecordingNotifier) DrainScreen(screen string) []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out, keep []Notice
	for _, n := range r.notices {
		if n.Screen == "" || n.Screen == screen {
			out = append(out, n)
		} else {
			keep = append(keep, n)
		}
	}
	r.notices = keep
	return out
}

// Warner is the slice of a structured logger needed by LogNotifier.
type Warner interface {
	Warn(msg string, keyvals ...any)
}

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	Logger Warner
}

// Notify logs the notice at warn level.
func (n LogNotifier) Notify(_ context.Context, notice Notice) {
	if n.Logger == nil {
		return
	}
	n.Logger.Warn("listing notice",
		"kind", string(notice.Kind),
		"screen", notice.Screen,
		"status", notice.Status,
		"message", notice.Message,
	)
}

// MultiNotifier fans a notice out to several notifiers.
type MultiNotifier []Notifier

// Notify forwards to every non-nil notifier.
func (m MultiNotifier) Notify(ctx context.Context, notice Notice) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, notice)
		}
	}
}

func noticeFor(screen string, err error) Notice {
	kind := KindOf(err)
	notice := Notice{Kind: kind, Screen: screen, Status: StatusOf(err)}
	switch kind {
	case KindForbidden:
		notice.Message = "You do not have permission to perform this action."
	case KindValidation:
		notice.Message = "The request was rejected: " + err.Error()
	case KindExport:
		notice.Message = "Export failed."
	default:
		notice.Message = "Failed to load data. Please try again."
	}
	return notice
}
