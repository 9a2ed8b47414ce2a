package solver

import "sync"

// IterationObserver receives every iterate produced by a solver.
// Implementations shared between goroutines must be safe for concurrent use.
type IterationObserver interface {
	// Observe is called after each iteration with the 1-based iteration
	// number and the new iterate (the bracket midpoint for bisection).
	Observe(stage Stage, iteration int, value float64)
}

// ObserverFunc adapts a function to the IterationObserver interface.
type ObserverFunc func(stage Stage, iteration int, value float64)

// Observe calls f.
func (f ObserverFunc) Observe(stage Stage, iteration int, value float64) {
	f(stage, iteration, value)
}

// Subject fans iterates out to a set of observers. It is itself an
// IterationObserver and is safe for concurrent use.
type Subject struct {
	observers []IterationObserver
	mu        sync.RWMutex
}

// NewSubject creates an empty subject.
func NewSubject() *Subject {
	return &Subject{
		observers: make([]IterationObserver, 0),
	}
}

// Register adds an observer. Nil observers are ignored.
func (s *Subject) Register(observer IterationObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Observe notifies all registered observers in registration order.
func (s *Subject) Observe(stage Stage, iteration int, value float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, observer := range s.observers {
		observer.Observe(stage, iteration, value)
	}
}

// ObserverCount returns the number of registered observers.
func (s *Subject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}
