package field

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Controller owns one field's value and validation pipeline. All methods are
// safe for concurrent use. Callbacks registered through OnValueChange and
// OnValidationChange run synchronously on the goroutine that committed the
// change, never while the controller's lock is held.
type Controller[T any] struct {
	cfg    config[T]
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	value      T
	initial    T
	touched    bool
	visited    bool
	message    string
	invalid    bool
	validating bool
	disposed   bool

	// generation advances on every pass start, Reset and Dispose. A pass may
	// only commit while it holds the current generation.
	generation uint64
	timer      *time.Timer
	pending    int
	settled    chan struct{}
}

// pass captures the inputs of one validation run.
type pass[T any] struct {
	generation uint64
	value      T
	started    time.Time
}

// New constructs a controller.
func New[T any](opts ...Option[T]) *Controller[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(cfg.ctx)
	logger := cfg.logger
	if cfg.name != "" {
		logger = logger.With(zap.String("field", cfg.name))
	}

	return &Controller[T]{
		cfg:     cfg,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		value:   cfg.initial,
		initial: cfg.initial,
	}
}

// Name returns the configured field name.
func (c *Controller[T]) Name() string {
	return c.cfg.name
}

// Value returns the current value.
func (c *Controller[T]) Value() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Err returns the committed error message, or "" when the field is not
// invalid.
func (c *Controller[T]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.invalid {
		return ""
	}
	return c.message
}

// State returns a snapshot with derived flags computed.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller[T]) stateLocked() State[T] {
	dirty := !c.cfg.equal(c.value, c.initial)
	s := State[T]{
		Value:      c.value,
		Initial:    c.initial,
		Touched:    c.touched,
		Visited:    c.visited,
		Dirty:      dirty,
		Pristine:   !dirty,
		Invalid:    c.invalid,
		Validating: c.validating,
	}
	if c.invalid {
		s.Error = c.message
	}
	s.Valid = !s.Invalid && !s.Validating
	return s
}

// OnChange stores value (after the transform) and, when change validation is
// enabled, schedules a validation pass honouring the debounce.
func (c *Controller[T]) OnChange(value T) {
	value = c.apply(value)

	c.mu.Lock()
	c.value = value
	if c.cfg.validateOnChange {
		c.scheduleLocked(false)
	}
	c.mu.Unlock()

	c.notifyValue(value)
}

// SetValue stores value (after the transform) without triggering change
// validation. Used for programmatic fills.
func (c *Controller[T]) SetValue(value T) {
	value = c.apply(value)

	c.mu.Lock()
	c.value = value
	c.mu.Unlock()

	c.notifyValue(value)
}

// OnBlur marks the field touched and, when blur validation is enabled, starts
// a pass immediately, bypassing the debounce.
func (c *Controller[T]) OnBlur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = true
	if c.cfg.validateOnBlur {
		c.scheduleLocked(true)
	}
}

// OnFocus marks the field visited.
func (c *Controller[T]) OnFocus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visited = true
}

// SetTouched overrides the touched flag.
func (c *Controller[T]) SetTouched(touched bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = touched
}

// SetError injects an error, e.g. from a cross-field check or a server
// response. An empty message clears the error.
func (c *Controller[T]) SetError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = message
	c.invalid = message != ""
}

// ClearError removes any committed or injected error.
func (c *Controller[T]) ClearError() {
	c.SetError("")
}

// Validate runs a pass against the current value on the calling goroutine,
// marks the field touched and reports whether the field is valid. When a
// newer pass supersedes this one before it commits, the current validity is
// reported instead (false while the newer pass is still running).
func (c *Controller[T]) Validate(ctx context.Context) bool {
	if ctx == nil {
		ctx = c.ctx
	}

	c.mu.Lock()
	c.touched = true
	c.stopTimerLocked()
	p := c.startPassLocked()
	c.addPendingLocked()
	c.mu.Unlock()

	defer c.donePending()

	c.cfg.observer.PassStarted(c.cfg.name, p.generation)
	valid, committed := c.run(ctx, p)
	if committed {
		return valid
	}
	return c.State().Valid
}

// Reset restores the construction-time state and invalidates any pass in
// flight.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(c.initial)
}

// ResetTo behaves like Reset but first replaces the dirty-comparison
// baseline with initial.
func (c *Controller[T]) ResetTo(initial T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(initial)
}

func (c *Controller[T]) resetLocked(initial T) {
	c.stopTimerLocked()
	c.generation++
	c.initial = initial
	c.value = initial
	c.touched = false
	c.visited = false
	c.message = ""
	c.invalid = false
	c.validating = false
}

// Settle blocks until no debounced timer or validation pass is pending.
func (c *Controller[T]) Settle(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.pending == 0 {
			c.mu.Unlock()
			return nil
		}
		ch := c.settled
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Dispose cancels the pending debounce timer and the context handed to
// background passes. In-flight passes become stale. State remains readable;
// no further passes are scheduled by OnChange or OnBlur.
func (c *Controller[T]) Dispose() {
	c.mu.Lock()
	c.disposed = true
	c.stopTimerLocked()
	c.generation++
	c.validating = false
	c.mu.Unlock()

	c.cancel()
}

func (c *Controller[T]) apply(value T) T {
	if c.cfg.transform != nil {
		return c.cfg.transform(value)
	}
	return value
}

func (c *Controller[T]) notifyValue(value T) {
	if c.cfg.onValueChange != nil {
		c.cfg.onValueChange(value)
	}
}

// scheduleLocked starts a pass right away or arms the debounce timer. Any
// pending timer is stopped first.
func (c *Controller[T]) scheduleLocked(immediate bool) {
	c.stopTimerLocked()
	if c.disposed {
		return
	}

	if !immediate && c.cfg.debounce > 0 {
		c.addPendingLocked()
		var timer *time.Timer
		timer = time.AfterFunc(c.cfg.debounce, func() {
			c.mu.Lock()
			if c.timer != timer {
				// stopped too late to prevent the callback; release its slot here
				c.releasePendingLocked()
				c.mu.Unlock()
				return
			}
			c.timer = nil
			p := c.startPassLocked()
			c.mu.Unlock()

			c.cfg.observer.PassStarted(c.cfg.name, p.generation)
			c.run(c.ctx, p)
			c.donePending()
		})
		c.timer = timer
		return
	}

	p := c.startPassLocked()
	c.addPendingLocked()
	go func() {
		defer c.donePending()
		c.cfg.observer.PassStarted(c.cfg.name, p.generation)
		c.run(c.ctx, p)
	}()
}

func (c *Controller[T]) stopTimerLocked() {
	if c.timer == nil {
		return
	}
	if c.timer.Stop() {
		c.releasePendingLocked()
	}
	c.timer = nil
}

func (c *Controller[T]) startPassLocked() pass[T] {
	c.generation++
	if len(c.cfg.rules) > 0 {
		c.validating = true
	}
	p := pass[T]{
		generation: c.generation,
		value:      c.value,
		started:    time.Now(),
	}
	return p
}

func (c *Controller[T]) addPendingLocked() {
	if c.pending == 0 {
		c.settled = make(chan struct{})
	}
	c.pending++
}

func (c *Controller[T]) releasePendingLocked() {
	c.pending--
	if c.pending == 0 {
		close(c.settled)
		c.settled = nil
	}
}

func (c *Controller[T]) donePending() {
	c.mu.Lock()
	c.releasePendingLocked()
	c.mu.Unlock()
}

// run evaluates the rules for p in order and commits the outcome. It reports
// the committed validity and whether the pass was allowed to commit.
func (c *Controller[T]) run(ctx context.Context, p pass[T]) (bool, bool) {
	for idx, rule := range c.cfg.rules {
		result, err := c.evaluate(ctx, rule, p.value)
		if err != nil {
			if c.stale(p) {
				c.discard(p)
				return false, false
			}
			c.cfg.observer.RuleException(c.cfg.name, err)
			c.logger.Warn("validation rule failed",
				zap.Int("rule", idx),
				zap.Uint64("generation", p.generation),
				zap.Error(err),
			)
			return c.commit(p, c.cfg.exceptionMessage, true)
		}
		if result.Failed() {
			message := result.Message()
			if message == "" {
				message = c.cfg.failureMessage
			}
			return c.commit(p, message, true)
		}
		if c.stale(p) {
			c.discard(p)
			return false, false
		}
	}
	return c.commit(p, "", false)
}

func (c *Controller[T]) evaluate(ctx context.Context, rule Rule[T], value T) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("field: rule panicked: %v", r)
		}
	}()
	return rule(ctx, value)
}

func (c *Controller[T]) stale(p pass[T]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return p.generation != c.generation
}

func (c *Controller[T]) discard(p pass[T]) {
	c.cfg.observer.PassDiscarded(c.cfg.name, p.generation)
	c.logger.Debug("discarded stale validation pass", zap.Uint64("generation", p.generation))
}

func (c *Controller[T]) commit(p pass[T], message string, invalid bool) (bool, bool) {
	c.mu.Lock()
	if p.generation != c.generation {
		c.mu.Unlock()
		c.discard(p)
		return false, false
	}
	c.message = message
	c.invalid = invalid
	c.validating = false
	c.mu.Unlock()

	valid := !invalid
	c.cfg.observer.PassCommitted(c.cfg.name, p.generation, valid, time.Since(p.started))
	if c.cfg.onValidation != nil {
		c.cfg.onValidation(valid, message)
	}
	return valid, true
}
