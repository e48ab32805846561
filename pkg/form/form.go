// Package form groups independent field controllers for submission gating,
// value collection and server error mapping. Fields never share state; a
// form only fans calls out to them.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formfield/pkg/field"
)

var (
	// ErrFieldNameRequired is returned when adding a field without a name.
	ErrFieldNameRequired = errors.New("form: field name is required")
	// ErrDuplicateField is returned when a field name is registered twice.
	ErrDuplicateField = errors.New("form: duplicate field")
)

// Option configures a Form.
type Option func(*Form)

// WithName labels the form in logs.
func WithName(name string) Option {
	return func(f *Form) {
		f.name = strings.TrimSpace(name)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Form is an ordered set of named fields.
type Form struct {
	name   string
	logger *zap.Logger

	mu     sync.RWMutex
	fields []field.Field
	index  map[string]field.Field
}

// New constructs an empty form.
func New(options ...Option) *Form {
	f := &Form{
		logger: zap.NewNop(),
		index:  make(map[string]field.Field),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Name returns the form name.
func (f *Form) Name() string {
	return f.name
}

// Add registers fields in order. Names may use dots to nest values
// ("author.email").
func (f *Form) Add(fields ...field.Field) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fld := range fields {
		if fld == nil {
			continue
		}
		name := strings.TrimSpace(fld.Name())
		if name == "" {
			return ErrFieldNameRequired
		}
		if _, exists := f.index[name]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
		f.index[name] = fld
		f.fields = append(f.fields, fld)
	}
	return nil
}

// MustAdd is like Add but panics on error.
func (f *Form) MustAdd(fields ...field.Field) *Form {
	if err := f.Add(fields...); err != nil {
		panic(err)
	}
	return f
}

// Field returns the field registered under name.
func (f *Form) Field(name string) (field.Field, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fld, ok := f.index[name]
	return fld, ok
}

// Fields returns the registered fields in order.
func (f *Form) Fields() []field.Field {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]field.Field(nil), f.fields...)
}

// Validate validates every field concurrently and reports whether all of
// them are valid. Each field keeps its own pipeline; the form only waits.
func (f *Form) Validate(ctx context.Context) bool {
	fields := f.Fields()
	results := make([]bool, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for idx, fld := range fields {
		g.Go(func() error {
			results[idx] = fld.Validate(gctx)
			return nil
		})
	}
	_ = g.Wait()

	valid := true
	for idx, ok := range results {
		if !ok {
			valid = false
			f.logger.Debug("field invalid",
				zap.String("form", f.name),
				zap.String("field", fields[idx].Name()),
			)
		}
	}
	return valid
}

// Valid reports whether every field is currently valid without running
// validation.
func (f *Form) Valid() bool {
	for _, fld := range f.Fields() {
		if !fld.Snapshot().Valid {
			return false
		}
	}
	return true
}

// Dirty reports whether any field differs from its initial value.
func (f *Form) Dirty() bool {
	for _, fld := range f.Fields() {
		if fld.Snapshot().Dirty {
			return true
		}
	}
	return false
}

// Errors returns the committed error of every invalid field keyed by name.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string)
	for _, fld := range f.Fields() {
		if snap := fld.Snapshot(); snap.Invalid {
			out[fld.Name()] = snap.Error
		}
	}
	return out
}

// Snapshots returns every field snapshot in order.
func (f *Form) Snapshots() []field.Snapshot {
	fields := f.Fields()
	out := make([]field.Snapshot, 0, len(fields))
	for _, fld := range fields {
		out = append(out, fld.Snapshot())
	}
	return out
}

// Reset resets every field.
func (f *Form) Reset() {
	for _, fld := range f.Fields() {
		fld.Reset()
	}
}

// Settle waits until no field has validation pending.
func (f *Form) Settle(ctx context.Context) error {
	for _, fld := range f.Fields() {
		if err := fld.Settle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Dispose disposes every field.
func (f *Form) Dispose() {
	for _, fld := range f.Fields() {
		fld.Dispose()
	}
}
