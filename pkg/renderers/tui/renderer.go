package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfield/pkg/field"
	"github.com/goliatone/go-formfield/pkg/form"
)

// FieldMeta carries the presentation hints for one prompt.
type FieldMeta struct {
	Label     string
	Help      string
	Secret    bool
	Multiline bool
	// Options turns the prompt into a single-choice select.
	Options []string
}

// Renderer walks a form in a terminal session, feeding every answer through
// the field's controller and re-prompting until the field validates.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
	confirmSubmit     bool
	logger            *zap.Logger
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{InfoPrefix: "→ ", ErrorPrefix: "✗ "},
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil, nil)
	}
	return r
}

// ContentType reports the serialization format used by Run.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Run prompts every text field of f in order and returns the serialized
// values once all of them validate. meta is keyed by field name.
func (r *Renderer) Run(ctx context.Context, f *form.Form, meta map[string]FieldMeta) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New("tui: form is nil")
	}

	for _, fld := range f.Fields() {
		tf, ok := fld.(field.TextField)
		if !ok {
			r.logger.Debug("skipping non-text field", zap.String("field", fld.Name()))
			continue
		}
		if err := r.promptField(ctx, tf, meta[fld.Name()]); err != nil {
			return nil, err
		}
	}

	if err := f.Settle(ctx); err != nil {
		return nil, err
	}
	if !f.Valid() {
		// a peer changed after an earlier field validated, e.g. a confirmation
		for name, msg := range f.Errors() {
			_ = r.driver.Notify(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, name, msg))
		}
		return nil, fmt.Errorf("tui: form %q is invalid", f.Name())
	}

	if r.confirmSubmit {
		ok, err := r.driver.Confirm(ctx, "Submit?", true)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotSubmitted
		}
	}

	values := f.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) promptField(ctx context.Context, tf field.TextField, meta FieldMeta) error {
	name := tf.Name()
	label := strings.TrimSpace(meta.Label)
	if label == "" {
		label = name
	}

	tf.OnFocus()
	for attempt := 1; ; attempt++ {
		response, err := r.ask(ctx, label, tf.Value(), meta)
		if err != nil {
			return err
		}

		tf.OnChange(response)
		tf.OnBlur()
		if tf.Validate(ctx) {
			r.logger.Debug("field accepted", zap.String("field", name), zap.Int("attempt", attempt))
			if stored := tf.Value(); stored != response && !meta.Secret {
				return r.driver.Notify(ctx, fmt.Sprintf("%s%s stored as %q", r.theme.InfoPrefix, label, stored))
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		message := tf.Snapshot().Error
		if err := r.driver.Notify(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, label, message)); err != nil {
			return err
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, name)
		}
	}
}

func (r *Renderer) ask(ctx context.Context, label, current string, meta FieldMeta) (string, error) {
	q := Question{Label: label, Help: meta.Help, Default: current, Options: meta.Options}
	switch {
	case len(meta.Options) > 0:
		idx, err := r.driver.Choose(ctx, q)
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(meta.Options) {
			return "", nil
		}
		return meta.Options[idx], nil
	case meta.Secret:
		q.Default = ""
		return r.driver.AskSecret(ctx, q)
	case meta.Multiline:
		return r.driver.AskMultiline(ctx, q)
	default:
		return r.driver.Ask(ctx, q)
	}
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}
