package listing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderRefreshLoadsRecords(t *testing.T) {
	ctrl := NewController(taskConfig(5), WithScreen("tasks"))
	var events []string
	telemetry := TelemetryFunc(func(_ context.Context, event string, _ map[string]any) {
		events = append(events, event)
	})
	loader := NewLoader[taskRecord](DataSourceFunc[taskRecord](func(context.Context) ([]taskRecord, error) {
		return nineTasks(), nil
	}), ctrl, telemetry)

	require.NoError(t, loader.Refresh(context.Background()))
	assert.False(t, loader.Loading())
	require.NoError(t, loader.With(func(c *Controller[taskRecord]) error {
		assert.Len(t, c.Raw(), 9)
		return nil
	}))
	assert.Equal(t, []string{"listing.refresh"}, events)
}

func TestLoaderFailureResetsAndNotifies(t *testing.T) {
	notifier := &RecordingNotifier{}
	ctrl := NewController(taskConfig(5), WithNotifier(notifier), WithScreen("tasks"))
	ctrl.Load(nineTasks())
	loader := NewLoader[taskRecord](DataSourceFunc[taskRecord](func(context.Context) ([]taskRecord, error) {
		return nil, errors.New("connection refused")
	}), ctrl, nil)

	err := loader.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindFetch, KindOf(err))
	assert.Empty(t, ctrl.Raw())
	assert.Equal(t, 1, ctrl.TotalPages())
	require.Len(t, notifier.Drain(), 1)
}

func TestLoaderDiscardsStaleResponses(t *testing.T) {
	ctrl := NewController(taskConfig(5))
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex

	source := DataSourceFunc[taskRecord](func(ctx context.Context) ([]taskRecord, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return []taskRecord{{ID: 100, Title: "stale"}}, nil
		}
		return []taskRecord{{ID: 200, Title: "fresh"}}, nil
	})
	loader := NewLoader[taskRecord](source, ctrl, nil)

	firstErr := make(chan error, 1)
	go func() { firstErr <- loader.Refresh(context.Background()) }()
	<-started
	assert.True(t, loader.Loading())

	require.NoError(t, loader.Refresh(context.Background()))
	close(release)
	assert.ErrorIs(t, <-firstErr, ErrStaleResponse)

	require.NoError(t, loader.With(func(c *Controller[taskRecord]) error {
		require.Len(t, c.Raw(), 1)
		assert.Equal(t, 200, c.Raw()[0].ID)
		return nil
	}))
	assert.False(t, loader.Loading())
}

func TestLoaderWithoutSource(t *testing.T) {
	loader := NewLoader[taskRecord](nil, NewController(taskConfig(5)), nil)
	assert.Error(t, loader.Refresh(context.Background()))
}
