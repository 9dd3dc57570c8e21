package listing

import (
	"fmt"
	"sort"
	"sync"
)

// ScreenHook lets packages register screens during init().
type ScreenHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []ScreenHook
)

// RegisterScreenHook registers a hook executed by Registry.ApplyHooks.
func RegisterScreenHook(h ScreenHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry holds the screens served by the admin shell.
type Registry struct {
	mu       sync.RWMutex
	screens  map[string]Screen
	order    []string
	manifest *ScreenManifestDocument
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{screens: map[string]Screen{}}
}

// ApplyHooks executes registered screen hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register adds a screen. Codes must be unique.
func (r *Registry) Register(screen Screen) error {
	if screen == nil {
		return fmt.Errorf("listing: screen cannot be nil")
	}
	code := screen.Definition().Code
	if code == "" {
		return fmt.Errorf("listing: screen code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.screens[code]; exists {
		return fmt.Errorf("listing: screen %s already registered", code)
	}
	r.screens[code] = screen
	r.order = append(r.order, code)
	return nil
}

// Screen fetches a screen by code.
func (r *Registry) Screen(code string) (Screen, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	screen, ok := r.screens[code]
	return screen, ok
}

// Lookup is Screen returning ErrUnknownScreen when absent.
func (r *Registry) Lookup(code string) (Screen, error) {
	screen, ok := r.Screen(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScreen, code)
	}
	return screen, nil
}

// Screens returns screens in registration order.
func (r *Registry) Screens() []Screen {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Screen, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.screens[code])
	}
	return out
}

// Definitions returns all definitions sorted by category then name.
func (r *Registry) Definitions() []ScreenDefinition {
	screens := r.Screens()
	defs := make([]ScreenDefinition, 0, len(screens))
	for _, screen := range screens {
		defs = append(defs, screen.Definition())
	}
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Category != defs[j].Category {
			return defs[i].Category < defs[j].Category
		}
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// Manifest returns the manifest the registry was built from, if any.
func (r *Registry) Manifest() *ScreenManifestDocument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.manifest
}

// UseManifest records the manifest whose overrides were applied.
func (r *Registry) UseManifest(doc *ScreenManifestDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifest = doc
}
