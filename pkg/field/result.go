package field

import "context"

// Result is the outcome of a single rule: either a pass or a failure with a
// message. The zero value is a pass.
type Result struct {
	failed  bool
	message string
}

// Pass reports that the rule accepted the value.
func Pass() Result {
	return Result{}
}

// Fail reports that the rule rejected the value with the given message. An
// empty message is replaced with the controller's default failure message
// when committed.
func Fail(message string) Result {
	return Result{failed: true, message: message}
}

// Failed reports whether the rule rejected the value.
func (r Result) Failed() bool {
	return r.failed
}

// Message returns the failure message, or "" for a pass.
func (r Result) Message() string {
	if !r.failed {
		return ""
	}
	return r.message
}

// Rule validates a value. Returning a non-nil error signals an unexpected
// failure (network outage, bad expression) rather than a rejected value;
// the controller converts it to a generic message. Rules may block; they are
// evaluated one at a time and receive a context that is cancelled when the
// controller is disposed.
type Rule[T any] func(ctx context.Context, value T) (Result, error)

// Check adapts a synchronous predicate that returns an empty string on
// success and a message on failure.
func Check[T any](fn func(value T) string) Rule[T] {
	return func(_ context.Context, value T) (Result, error) {
		if msg := fn(value); msg != "" {
			return Fail(msg), nil
		}
		return Pass(), nil
	}
}
