package field

import "reflect"

// State is a point-in-time snapshot of a controller.
type State[T any] struct {
	Value   T
	Initial T
	// Touched is set once the field has been blurred.
	Touched bool
	// Visited is set once the field has been focused.
	Visited bool
	// Dirty reports Value != Initial under the configured comparison.
	Dirty    bool
	Pristine bool
	// Error holds the committed failure message; meaningful only when
	// Invalid is true.
	Error      string
	Invalid    bool
	Validating bool
	Valid      bool
}

// ShowError reports whether an error should be presented to the user. Errors
// stay hidden until the field has been touched.
func (s State[T]) ShowError() bool {
	return s.Touched && s.Invalid && s.Error != ""
}

// Status returns the visual status flag for the snapshot.
func (s State[T]) Status() Status {
	if s.Touched && s.Invalid {
		return StatusError
	}
	return StatusNone
}

func defaultEqual[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	if reflect.TypeOf(av).Comparable() && reflect.TypeOf(bv).Comparable() {
		if equal, ok := compareInterfaces(av, bv); ok {
			return equal
		}
	}
	return reflect.DeepEqual(av, bv)
}

// compareInterfaces applies ==, reporting ok=false when the dynamic values
// turn out not to be comparable (an interface field holding a slice).
func compareInterfaces(a, b any) (equal, ok bool) {
	defer func() {
		if recover() != nil {
			equal, ok = false, false
		}
	}()
	return a == b, true
}
