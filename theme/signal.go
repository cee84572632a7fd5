package theme

import "sync"

// Signal is the platform's color-scheme preference plus change
// notifications.
type Signal interface {
	// Dark reports whether the platform currently prefers dark.
	Dark() bool
	// Subscribe registers fn for every change and returns a function that
	// removes it.
	Subscribe(fn func(dark bool)) (unsubscribe func())
}

// ReportedSignal is a Signal whose value is pushed in from outside, e.g. by a
// browser reporting its prefers-color-scheme media query.
type ReportedSignal struct {
	mu        sync.Mutex
	dark      bool
	listeners map[int]func(bool)
	nextID    int
}

// NewReportedSignal returns a signal starting at dark.
func NewReportedSignal(dark bool) *ReportedSignal {
	return &ReportedSignal{
		dark:      dark,
		listeners: make(map[int]func(bool)),
	}
}

// Dark implements Signal.
func (s *ReportedSignal) Dark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Subscribe implements Signal.
func (s *ReportedSignal) Subscribe(fn func(dark bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Report sets the current value. Listeners run only when the value changes,
// synchronously, in no particular order.
func (s *ReportedSignal) Report(dark bool) {
	s.mu.Lock()
	if s.dark == dark {
		s.mu.Unlock()
		return
	}
	s.dark = dark
	fns := make([]func(bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
}

// Listeners returns the number of active subscriptions.
func (s *ReportedSignal) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
