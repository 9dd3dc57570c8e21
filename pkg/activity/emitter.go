package activity

import "context"

// DefaultChannel tags events emitted by the admin dashboard.
const DefaultChannel = "admin"

// Config toggles emission.
type Config struct {
	Enabled bool   `koanf:"enabled" json:"enabled"`
	Channel string `koanf:"channel" json:"channel"`
}

// Emitter stamps the configured channel onto events and forwards them.
type Emitter struct {
	hooks Hooks
	cfg   Config
}

// NewEmitter builds an emitter. It stays disabled unless cfg.Enabled is set
// and at least one hook is given.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	return &Emitter{hooks: hooks, cfg: cfg}
}

// Enabled reports whether Emit will forward events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit forwards event when enabled.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	return e.hooks.Notify(ctx, event)
}
