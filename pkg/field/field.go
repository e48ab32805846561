package field

import "context"

// Field is the type-erased view of a controller used by forms and renderers.
type Field interface {
	Name() string
	Snapshot() Snapshot
	OnFocus()
	OnBlur()
	SetTouched(touched bool)
	SetError(message string)
	Validate(ctx context.Context) bool
	Settle(ctx context.Context) error
	Reset()
	Dispose()
}

// TextField is a Field whose value can be assigned from text, as submitted by
// HTML forms or typed into a terminal prompt.
type TextField interface {
	Field
	OnChange(value string)
	SetValue(value string)
	Value() string
}

// Snapshot is a State with the value boxed.
type Snapshot struct {
	Name       string
	Value      any
	Touched    bool
	Visited    bool
	Dirty      bool
	Pristine   bool
	Error      string
	Invalid    bool
	Validating bool
	Valid      bool
}

// ShowError mirrors State.ShowError.
func (s Snapshot) ShowError() bool {
	return s.Touched && s.Invalid && s.Error != ""
}

// Status mirrors State.Status.
func (s Snapshot) Status() Status {
	if s.Touched && s.Invalid {
		return StatusError
	}
	return StatusNone
}

// Snapshot returns the current state with the value boxed.
func (c *Controller[T]) Snapshot() Snapshot {
	s := c.State()
	return Snapshot{
		Name:       c.cfg.name,
		Value:      s.Value,
		Touched:    s.Touched,
		Visited:    s.Visited,
		Dirty:      s.Dirty,
		Pristine:   s.Pristine,
		Error:      s.Error,
		Invalid:    s.Invalid,
		Validating: s.Validating,
		Valid:      s.Valid,
	}
}

var (
	_ Field     = (*Controller[int])(nil)
	_ TextField = (*Controller[string])(nil)
)
