// Package field manages the live state of a single form field.
//
// A Controller owns a value, its focus/blur history and a sequential
// validation pipeline. Rules run in declaration order and stop at the first
// failure. Every validation pass takes a generation number when it starts;
// a pass only commits its outcome while its generation is still the newest,
// so slow rules evaluated against an outdated value never overwrite the
// result for the current one.
//
// usage:
//
//	email := field.New(
//	    field.WithName[string]("email"),
//	    field.WithRules(rules.Required(), rules.Email()),
//	    field.WithTransform(strings.TrimSpace),
//	    field.WithDebounce[string](300*time.Millisecond),
//	)
//	defer email.Dispose()
//
//	email.OnFocus()
//	email.OnChange(" someone@example.com ")
//	email.OnBlur()
//	ok := email.Validate(ctx)
package field
