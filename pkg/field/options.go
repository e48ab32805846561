package field

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultExceptionMessage is committed when a rule returns an error or
	// panics.
	DefaultExceptionMessage = "validation error occurred"
	// DefaultFailureMessage replaces empty messages returned through Fail.
	DefaultFailureMessage = "Invalid value"
)

// Option configures a Controller.
type Option[T any] func(*config[T])

type config[T any] struct {
	name             string
	initial          T
	rules            []Rule[T]
	validateOnChange bool
	validateOnBlur   bool
	debounce         time.Duration
	transform        func(T) T
	equal            func(a, b T) bool
	onValueChange    func(T)
	onValidation     func(valid bool, message string)
	exceptionMessage string
	failureMessage   string
	logger           *zap.Logger
	observer         Observer
	ctx              context.Context
}

func defaultConfig[T any]() config[T] {
	return config[T]{
		validateOnChange: true,
		validateOnBlur:   true,
		equal:            defaultEqual[T],
		exceptionMessage: DefaultExceptionMessage,
		failureMessage:   DefaultFailureMessage,
		logger:           zap.NewNop(),
		observer:         NopObserver{},
		ctx:              context.Background(),
	}
}

// WithName labels the controller in logs, metrics and error payload mapping.
func WithName[T any](name string) Option[T] {
	return func(cfg *config[T]) {
		cfg.name = strings.TrimSpace(name)
	}
}

// WithInitial sets the starting value and the dirty-comparison baseline.
// Defaults to the zero value of T.
func WithInitial[T any](value T) Option[T] {
	return func(cfg *config[T]) {
		cfg.initial = value
	}
}

// WithRules appends validation rules. Rules run in the order given.
func WithRules[T any](rules ...Rule[T]) Option[T] {
	return func(cfg *config[T]) {
		for _, rule := range rules {
			if rule != nil {
				cfg.rules = append(cfg.rules, rule)
			}
		}
	}
}

// WithValidateOnChange toggles validation after every OnChange (default true).
func WithValidateOnChange[T any](enabled bool) Option[T] {
	return func(cfg *config[T]) {
		cfg.validateOnChange = enabled
	}
}

// WithValidateOnBlur toggles immediate validation on OnBlur (default true).
func WithValidateOnBlur[T any](enabled bool) Option[T] {
	return func(cfg *config[T]) {
		cfg.validateOnBlur = enabled
	}
}

// WithDebounce coalesces change-triggered validation. Zero validates right
// away.
func WithDebounce[T any](d time.Duration) Option[T] {
	return func(cfg *config[T]) {
		if d < 0 {
			d = 0
		}
		cfg.debounce = d
	}
}

// WithTransform applies fn to every incoming value before it is stored.
func WithTransform[T any](fn func(T) T) Option[T] {
	return func(cfg *config[T]) {
		cfg.transform = fn
	}
}

// WithCompare overrides the dirty check. The default uses == for comparable
// values and reflect.DeepEqual otherwise.
func WithCompare[T any](fn func(a, b T) bool) Option[T] {
	return func(cfg *config[T]) {
		if fn != nil {
			cfg.equal = fn
		}
	}
}

// OnValueChange registers a callback fired after every committed value.
func OnValueChange[T any](fn func(T)) Option[T] {
	return func(cfg *config[T]) {
		cfg.onValueChange = fn
	}
}

// OnValidationChange registers a callback fired once per committed
// validation pass. message is "" when valid is true.
func OnValidationChange[T any](fn func(valid bool, message string)) Option[T] {
	return func(cfg *config[T]) {
		cfg.onValidation = fn
	}
}

// WithErrorMessage overrides the message committed for rule exceptions.
func WithErrorMessage[T any](message string) Option[T] {
	return func(cfg *config[T]) {
		if trimmed := strings.TrimSpace(message); trimmed != "" {
			cfg.exceptionMessage = trimmed
		}
	}
}

// WithLogger routes rule exceptions and discarded passes to logger.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(cfg *config[T]) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithObserver attaches pass lifecycle hooks (see pkg/metrics).
func WithObserver[T any](observer Observer) Option[T] {
	return func(cfg *config[T]) {
		if observer != nil {
			cfg.observer = observer
		}
	}
}

// WithContext sets the parent context for background validation passes.
// Dispose cancels the derived context.
func WithContext[T any](ctx context.Context) Option[T] {
	return func(cfg *config[T]) {
		if ctx != nil {
			cfg.ctx = ctx
		}
	}
}
