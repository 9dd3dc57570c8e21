package listing

import (
	"context"
	"errors"
	"sync"
)

// Loader connects a DataSource to a Controller. Each Refresh is tagged with a
// sequence number; only the response of the latest issued request is applied,
// so a slow superseded fetch can never overwrite fresher data.
type Loader[R any] struct {
	source    DataSource[R]
	telemetry Telemetry
	screen    string

	mu       sync.Mutex
	ctrl     *Controller[R]
	seq      uint64
	inflight int
}

// NewLoader wires source into ctrl.
func NewLoader[R any](source DataSource[R], ctrl *Controller[R], telemetry Telemetry) *Loader[R] {
	return &Loader[R]{
		source:    source,
		ctrl:      ctrl,
		telemetry: normalizeTelemetry(telemetry),
		screen:    ctrl.screen,
	}
}

// Refresh fetches the collection and loads it into the controller. Failures
// are routed through Controller.Fail and also returned to the caller.
// ErrStaleResponse is returned when a newer Refresh was issued meanwhile.
func (l *Loader[R]) Refresh(ctx context.Context) error {
	if l.source == nil {
		return errMissingSource
	}
	l.mu.Lock()
	l.seq++
	token := l.seq
	l.inflight++
	l.mu.Unlock()

	records, err := l.source.Fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inflight--
	if token != l.seq {
		l.telemetry.Record(ctx, "listing.refresh.stale", map[string]any{
			"screen":   l.screen,
			"sequence": token,
			"latest":   l.seq,
		})
		return ErrStaleResponse
	}
	if err != nil {
		var le *Error
		if !errors.As(err, &le) {
			err = &Error{Kind: KindFetch, Op: "listing: refresh " + l.screen, Err: err}
		}
		l.ctrl.Fail(ctx, err)
		l.telemetry.Record(ctx, "listing.refresh.error", map[string]any{
			"screen": l.screen,
			"error":  err.Error(),
		})
		return err
	}
	l.ctrl.Load(records)
	l.telemetry.Record(ctx, "listing.refresh", map[string]any{
		"screen": l.screen,
		"count":  len(records),
	})
	return nil
}

// Loading reports whether a fetch is in flight.
func (l *Loader[R]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight > 0
}

// With runs fn with exclusive access to the controller.
func (l *Loader[R]) With(fn func(*Controller[R]) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.ctrl)
}
