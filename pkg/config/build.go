package config

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfield/pkg/field"
	"github.com/goliatone/go-formfield/pkg/form"
	"github.com/goliatone/go-formfield/pkg/rules"
)

var (
	// ErrUnknownRule is returned for rule kinds the builder does not know.
	ErrUnknownRule = errors.New("config: unknown rule kind")
	// ErrUnknownCheck is returned when an async rule names an unregistered check.
	ErrUnknownCheck = errors.New("config: unknown check")
	// ErrSchemaUnavailable is returned for schema rules without an OpenAPI document.
	ErrSchemaUnavailable = errors.New("config: schema rule requires an OpenAPI document")
)

// Check is a named blocking validation that definitions reference through
// `{kind: async, check: NAME}`.
type Check func(ctx context.Context, value string) (bool, error)

// BuildOption configures Build.
type BuildOption func(*builder)

type builder struct {
	logger   *zap.Logger
	observer field.Observer
	ctx      context.Context
	checks   map[string]Check
	openapi  *openapi3.T
}

// WithLogger passes logger to the form and every controller.
func WithLogger(logger *zap.Logger) BuildOption {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithObserver attaches a pass observer to every controller.
func WithObserver(observer field.Observer) BuildOption {
	return func(b *builder) {
		b.observer = observer
	}
}

// WithContext sets the parent context of every controller.
func WithContext(ctx context.Context) BuildOption {
	return func(b *builder) {
		if ctx != nil {
			b.ctx = ctx
		}
	}
}

// WithCheck registers a named async check.
func WithCheck(name string, check Check) BuildOption {
	return func(b *builder) {
		if name = strings.TrimSpace(name); name != "" && check != nil {
			b.checks[name] = check
		}
	}
}

// WithOpenAPI supplies the document used to resolve schema rules.
func WithOpenAPI(doc *openapi3.T) BuildOption {
	return func(b *builder) {
		b.openapi = doc
	}
}

// Built is a form constructed from a definition.
type Built struct {
	Def         FormDef
	Form        *form.Form
	controllers map[string]*field.Controller[string]
}

// Controller returns the controller for the named field.
func (b *Built) Controller(name string) (*field.Controller[string], bool) {
	c, ok := b.controllers[name]
	return c, ok
}

// FieldDef returns the definition for the named field.
func (b *Built) FieldDef(name string) (FieldDef, bool) {
	for _, def := range b.Def.Fields {
		if def.Name == name {
			return def, true
		}
	}
	return FieldDef{}, false
}

// Build constructs controllers for every field in def.
func Build(def FormDef, options ...BuildOption) (*Built, error) {
	b := &builder{
		logger: zap.NewNop(),
		ctx:    context.Background(),
		checks: make(map[string]Check),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}

	built := &Built{
		Def:         def,
		Form:        form.New(form.WithName(def.Name), form.WithLogger(b.logger)),
		controllers: make(map[string]*field.Controller[string], len(def.Fields)),
	}

	// cross-field rules resolve their peer lazily, so peers may be declared
	// after the field that references them
	lookup := func(name string) (*field.Controller[string], bool) {
		c, ok := built.controllers[name]
		return c, ok
	}

	for _, fd := range def.Fields {
		controller, err := b.buildField(fd, lookup)
		if err != nil {
			built.Form.Dispose()
			return nil, fmt.Errorf("config: form %q field %q: %w", def.Name, fd.Name, err)
		}
		built.controllers[fd.Name] = controller
		if err := built.Form.Add(controller); err != nil {
			built.Form.Dispose()
			return nil, err
		}
	}

	for _, fd := range def.Fields {
		for _, rd := range fd.Rules {
			if strings.EqualFold(rd.Kind, "equalTo") {
				if _, ok := built.controllers[rd.Field]; !ok {
					built.Form.Dispose()
					return nil, fmt.Errorf("config: form %q field %q: equalTo references unknown field %q", def.Name, fd.Name, rd.Field)
				}
			}
		}
	}

	return built, nil
}

func (b *builder) buildField(fd FieldDef, lookup func(string) (*field.Controller[string], bool)) (*field.Controller[string], error) {
	fieldRules := make([]field.Rule[string], 0, len(fd.Rules))
	for idx, rd := range fd.Rules {
		built, err := b.buildRules(rd, lookup)
		if err != nil {
			return nil, fmt.Errorf("rule #%d: %w", idx, err)
		}
		fieldRules = append(fieldRules, built...)
	}

	transform, err := buildTransform(fd.Transform)
	if err != nil {
		return nil, err
	}
	compare, err := buildCompare(fd.Compare)
	if err != nil {
		return nil, err
	}

	opts := []field.Option[string]{
		field.WithName[string](fd.Name),
		field.WithInitial(fd.Initial),
		field.WithRules(fieldRules...),
		field.WithDebounce[string](fd.Debounce.Std()),
		field.WithLogger[string](b.logger),
		field.WithObserver[string](b.observer),
		field.WithContext[string](b.ctx),
		field.WithErrorMessage[string](fd.ErrorMessage),
	}
	if fd.ValidateOnChange != nil {
		opts = append(opts, field.WithValidateOnChange[string](*fd.ValidateOnChange))
	}
	if fd.ValidateOnBlur != nil {
		opts = append(opts, field.WithValidateOnBlur[string](*fd.ValidateOnBlur))
	}
	if transform != nil {
		opts = append(opts, field.WithTransform(transform))
	}
	if compare != nil {
		opts = append(opts, field.WithCompare(compare))
	}
	return field.New(opts...), nil
}

func (b *builder) buildRules(rd RuleDef, lookup func(string) (*field.Controller[string], bool)) ([]field.Rule[string], error) {
	var rule field.Rule[string]
	switch strings.ToLower(strings.TrimSpace(rd.Kind)) {
	case "required":
		rule = rules.Required()
	case "email":
		rule = rules.Email()
	case "min", "minlength":
		rule = rules.MinLen(rd.Value)
	case "max", "maxlength":
		rule = rules.MaxLen(rd.Value)
	case "match", "pattern":
		re, err := regexp.Compile(rd.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", rd.Pattern, err)
		}
		rule = rules.MatchRegexp(re)
	case "oneof", "enum":
		rule = rules.OneOf(rd.Values...)
	case "equalto":
		peer := rd.Field
		message := rd.Message
		if message == "" {
			message = "Values do not match"
		}
		return []field.Rule[string]{field.Check(func(value string) string {
			other, ok := lookup(peer)
			if ok && value != other.Value() {
				return message
			}
			return ""
		})}, nil
	case "cel":
		compiled, err := rules.CEL(rd.Expr, rd.Message)
		if err != nil {
			return nil, err
		}
		return []field.Rule[string]{compiled}, nil
	case "async":
		check, ok := b.checks[rd.Check]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCheck, rd.Check)
		}
		message := rd.Message
		if message == "" {
			message = field.DefaultFailureMessage
		}
		return []field.Rule[string]{rules.Async(check, message)}, nil
	case "schema":
		return b.schemaRules(rd.Schema)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, rd.Kind)
	}

	if rd.Message != "" {
		rule = rules.Message(rule, rd.Message)
	}
	return []field.Rule[string]{rule}, nil
}

// schemaRules resolves refs of the form
// "#/components/schemas/<Schema>/properties/<property>".
func (b *builder) schemaRules(ref string) ([]field.Rule[string], error) {
	if b.openapi == nil {
		return nil, ErrSchemaUnavailable
	}
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(ref), "#/"), "/")
	if len(parts) != 5 || parts[0] != "components" || parts[1] != "schemas" || parts[3] != "properties" {
		return nil, fmt.Errorf("config: unsupported schema ref %q", ref)
	}
	if b.openapi.Components == nil {
		return nil, fmt.Errorf("config: schema ref %q: document has no components", ref)
	}
	parent, ok := b.openapi.Components.Schemas[parts[2]]
	if !ok || parent == nil || parent.Value == nil {
		return nil, fmt.Errorf("config: schema ref %q: unknown schema %q", ref, parts[2])
	}
	return rules.FromSchemaProperty(parent.Value, parts[4])
}

func buildTransform(names []string) (func(string) string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	steps := make([]func(string) string, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "trim":
			steps = append(steps, strings.TrimSpace)
		case "lower":
			steps = append(steps, strings.ToLower)
		case "upper":
			steps = append(steps, strings.ToUpper)
		case "collapse-space":
			steps = append(steps, func(s string) string {
				return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
			})
		default:
			return nil, fmt.Errorf("config: unknown transform %q", name)
		}
	}
	return func(value string) string {
		for _, step := range steps {
			value = step(value)
		}
		return value
	}, nil
}

func buildCompare(name string) (func(a, b string) bool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exact":
		return nil, nil
	case "case-insensitive":
		return strings.EqualFold, nil
	case "trimmed":
		return func(a, b string) bool {
			return strings.TrimSpace(a) == strings.TrimSpace(b)
		}, nil
	case "unordered-csv":
		return unorderedCSV, nil
	default:
		return nil, fmt.Errorf("config: unknown compare %q", name)
	}
}

func unorderedCSV(a, b string) bool {
	split := func(s string) []string {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		sort.Strings(out)
		return out
	}
	as, bs := split(a), split(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
