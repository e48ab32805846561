package field

import "time"

// Observer receives validation pass lifecycle events. Implementations must be
// safe for concurrent use; hooks run on whichever goroutine drives the pass,
// never while the controller's lock is held, so they may read the controller.
type Observer interface {
	PassStarted(field string, generation uint64)
	PassCommitted(field string, generation uint64, valid bool, elapsed time.Duration)
	PassDiscarded(field string, generation uint64)
	RuleException(field string, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) PassStarted(string, uint64)                        {}
func (NopObserver) PassCommitted(string, uint64, bool, time.Duration) {}
func (NopObserver) PassDiscarded(string, uint64)                      {}
func (NopObserver) RuleException(string, error)                       {}
