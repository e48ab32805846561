package field

import "net/url"

// Status is the visual status flag exposed to bound controls.
type Status string

const (
	StatusNone    Status = ""
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Props is the generic binding shape for any control.
type Props[T any] struct {
	Value    T
	OnChange func(T)
	OnBlur   func()
	OnFocus  func()
}

// Bind returns props wired to c. Value reflects the state at call time.
func Bind[T any](c *Controller[T]) Props[T] {
	return Props[T]{
		Value:    c.Value(),
		OnChange: c.OnChange,
		OnBlur:   c.OnBlur,
		OnFocus:  c.OnFocus,
	}
}

// InputTarget mirrors the element that raised an input event.
type InputTarget struct {
	Name  string
	Value string
}

// InputEvent is the payload delivered by text inputs.
type InputEvent struct {
	Target InputTarget
}

// InputProps binds a string controller to a text input.
type InputProps struct {
	Name    string
	Value   string
	OnInput func(InputEvent)
	OnBlur  func()
	OnFocus func()
}

// FromValues feeds the submitted value for p.Name through OnInput. It reports
// false when the form did not carry the field.
func (p InputProps) FromValues(values url.Values) bool {
	if p.OnInput == nil || p.Name == "" {
		return false
	}
	raw, ok := values[p.Name]
	if !ok {
		return false
	}
	value := ""
	if len(raw) > 0 {
		value = raw[0]
	}
	p.OnInput(InputEvent{Target: InputTarget{Name: p.Name, Value: value}})
	return true
}

// BindInput returns input props that extract event.Target.Value.
func BindInput(c *Controller[string]) InputProps {
	return InputProps{
		Name:  c.Name(),
		Value: c.Value(),
		OnInput: func(ev InputEvent) {
			c.OnChange(ev.Target.Value)
		},
		OnBlur:  c.OnBlur,
		OnFocus: c.OnFocus,
	}
}

// StatusProps extends InputProps with the error status flag.
type StatusProps struct {
	InputProps
	Status Status
}

// BindStatus returns input props plus StatusError when the field is touched
// and invalid.
func BindStatus(c *Controller[string]) StatusProps {
	return StatusProps{
		InputProps: BindInput(c),
		Status:     c.State().Status(),
	}
}
