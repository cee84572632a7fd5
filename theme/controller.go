package theme

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Store persists the explicit preference.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Controller owns the three-state preference and the presentation mode it
// produces. The OS signal only affects the mode while the preference is
// System.
type Controller struct {
	store  Store
	signal Signal
	log    *slog.Logger

	// selectMu serializes Select so the stored key always matches the
	// last preference applied in memory.
	selectMu sync.Mutex

	mu          sync.RWMutex
	pref        Preference
	mode        Mode
	listeners   map[int]func(Mode)
	nextID      int
	unsubscribe func()
}

// NewController reads the stored preference (System when absent) and
// subscribes to signal. Call Close to release the subscription.
func NewController(ctx context.Context, store Store, signal Signal, log *slog.Logger) (*Controller, error) {
	c := &Controller{
		store:     store,
		signal:    signal,
		log:       log,
		pref:      System,
		listeners: make(map[int]func(Mode)),
	}

	stored, ok, err := store.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load theme preference: %w", err)
	}
	if ok {
		switch p := Preference(stored); p {
		case Light, Dark:
			c.pref = p
		default:
			log.Warn("ignoring invalid stored theme preference", "value", stored)
			if err := store.Delete(ctx, StorageKey); err != nil {
				log.Warn("failed to clear invalid theme preference", "error", err)
			}
		}
	}

	c.mode = Resolve(c.pref, signal.Dark())
	c.unsubscribe = signal.Subscribe(c.handleSignal)

	log.Debug("theme controller ready", "preference", c.pref, "mode", c.mode)
	return c, nil
}

// Preference returns the current preference.
func (c *Controller) Preference() Preference {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pref
}

// Mode returns the current presentation mode.
func (c *Controller) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Select moves to pref. Light and Dark are persisted; System removes the
// persisted key. The in-memory state changes even when storage fails.
func (c *Controller) Select(ctx context.Context, pref Preference) error {
	pref, err := ParsePreference(string(pref))
	if err != nil {
		return err
	}

	c.selectMu.Lock()
	defer c.selectMu.Unlock()

	c.mu.Lock()
	c.pref = pref
	changed, fns := c.setModeLocked(Resolve(pref, c.signal.Dark()))
	c.mu.Unlock()

	if pref == System {
		err = c.store.Delete(ctx, StorageKey)
	} else {
		err = c.store.Set(ctx, StorageKey, string(pref))
	}
	if err != nil {
		c.log.Error("failed to persist theme preference", "preference", pref, "error", err)
		err = fmt.Errorf("persist theme preference: %w", err)
	}

	c.log.Info("theme selected", "preference", pref, "mode", c.Mode())
	if changed {
		c.notify(fns)
	}
	return err
}

// OnChange registers fn to run after every presentation mode change and
// returns a function that removes it.
func (c *Controller) OnChange(fn func(Mode)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Close releases the OS signal subscription. Safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// handleSignal re-reads the signal under c.mu so out-of-order deliveries
// settle on the signal's current value.
func (c *Controller) handleSignal(bool) {
	c.mu.Lock()
	if c.pref != System {
		c.mu.Unlock()
		return
	}
	dark := c.signal.Dark()
	changed, fns := c.setModeLocked(Resolve(System, dark))
	c.mu.Unlock()

	if changed {
		c.log.Debug("os color scheme changed", "dark", dark)
		c.notify(fns)
	}
}

// setModeLocked must be called with c.mu held. It returns whether the mode
// changed and, if so, the listeners to notify.
func (c *Controller) setModeLocked(m Mode) (bool, []func(Mode)) {
	if c.mode == m {
		return false, nil
	}
	c.mode = m
	fns := make([]func(Mode), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	return true, fns
}

func (c *Controller) notify(fns []func(Mode)) {
	m := c.Mode()
	for _, fn := range fns {
		fn(m)
	}
}
