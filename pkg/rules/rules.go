// Package rules provides reusable validation rules for field controllers.
//
// Format rules (Email, Match, MinLen, ...) accept the empty string so that
// optional fields stay valid until a value is entered; pair them with
// Required when the field is mandatory.
package rules

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formfield/pkg/field"
)

// RequiredMessage is the default message reported by Required.
const RequiredMessage = "This field is required"

// Required rejects blank strings.
func Required() field.Rule[string] {
	return field.Check(func(value string) string {
		if strings.TrimSpace(value) == "" {
			return RequiredMessage
		}
		return ""
	})
}

// NotZero rejects the zero value of T.
func NotZero[T comparable]() field.Rule[T] {
	return field.Check(func(value T) string {
		var zero T
		if value == zero {
			return RequiredMessage
		}
		return ""
	})
}

// Email rejects strings that don't look like email addresses.
func Email() field.Rule[string] {
	return field.Check(func(value string) string {
		if value == "" {
			return ""
		}
		at := strings.LastIndex(value, "@")
		if at <= 0 || at == len(value)-1 {
			return "Invalid email address"
		}
		domain := value[at+1:]
		if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
			return "Invalid email address"
		}
		if strings.ContainsAny(value, " \t\r\n") {
			return "Invalid email address"
		}
		return ""
	})
}

// MinLen rejects non-empty strings shorter than n characters.
func MinLen(n int) field.Rule[string] {
	return field.Check(func(value string) string {
		if value == "" {
			return ""
		}
		if utf8.RuneCountInString(value) < n {
			return fmt.Sprintf("Must be at least %d characters", n)
		}
		return ""
	})
}

// MaxLen rejects strings longer than n characters.
func MaxLen(n int) field.Rule[string] {
	return field.Check(func(value string) string {
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("Must be at most %d characters", n)
		}
		return ""
	})
}

// Match rejects non-empty strings that don't match pattern. It panics when
// pattern does not compile; use MatchRegexp for precompiled expressions.
func Match(pattern string) field.Rule[string] {
	return MatchRegexp(regexp.MustCompile(pattern))
}

// MatchRegexp rejects non-empty strings that don't match re.
func MatchRegexp(re *regexp.Regexp) field.Rule[string] {
	return field.Check(func(value string) string {
		if value == "" {
			return ""
		}
		if !re.MatchString(value) {
			return "Invalid format"
		}
		return ""
	})
}

// OneOf rejects non-empty strings outside allowed.
func OneOf(allowed ...string) field.Rule[string] {
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	message := "Must be one of: " + strings.Join(allowed, ", ")
	return field.Check(func(value string) string {
		if value == "" {
			return ""
		}
		if _, ok := set[value]; !ok {
			return message
		}
		return ""
	})
}

// EqualTo rejects values that differ from the committed value of other, for
// confirmation fields such as "repeat password".
func EqualTo(other *field.Controller[string], message string) field.Rule[string] {
	if message == "" {
		message = "Values do not match"
	}
	return field.Check(func(value string) string {
		if other == nil {
			return ""
		}
		if value != other.Value() {
			return message
		}
		return ""
	})
}

// Async adapts a blocking check (for example a uniqueness lookup against a
// remote service). check reports whether value is acceptable; an error is
// treated as a rule exception.
func Async(check func(ctx context.Context, value string) (bool, error), message string) field.Rule[string] {
	return func(ctx context.Context, value string) (field.Result, error) {
		if err := ctx.Err(); err != nil {
			return field.Pass(), err
		}
		ok, err := check(ctx, value)
		if err != nil {
			return field.Pass(), err
		}
		if !ok {
			return field.Fail(message), nil
		}
		return field.Pass(), nil
	}
}

// Lift adapts validators written as func(string) error; the error text
// becomes the failure message.
func Lift(fn func(string) error) field.Rule[string] {
	return func(_ context.Context, value string) (field.Result, error) {
		if err := fn(value); err != nil {
			return field.Fail(err.Error()), nil
		}
		return field.Pass(), nil
	}
}

// Message replaces the failure message reported by rule. Exceptions are
// passed through untouched.
func Message[T any](rule field.Rule[T], message string) field.Rule[T] {
	return func(ctx context.Context, value T) (field.Result, error) {
		result, err := rule(ctx, value)
		if err != nil || !result.Failed() {
			return result, err
		}
		return field.Fail(message), nil
	}
}
