package form

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ApplyErrors injects server-side validation messages into matching fields
// through SetError and marks them touched so they render. Paths may be JSON
// pointers ("/body/owner/email"), dotted ("body.owner.email") or bracketed
// ("$.tags[0]"); wrapper segments such as body/request/payload are ignored
// and the longest registered field prefix wins. Messages whose path matches
// no field are returned as form-level errors.
//
// Each targeted field is settled first so a pass still in flight cannot
// commit over the injected message. A settle error (ctx done) is returned
// with nothing injected for that field or any field after it.
func (f *Form) ApplyErrors(ctx context.Context, payload map[string][]string) ([]string, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	fieldPaths := make(map[string]struct{})
	for _, fld := range f.Fields() {
		fieldPaths[fld.Name()] = struct{}{}
	}

	perField := make(map[string][]string)
	var formLevel []string
	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		mapped, isForm := mapErrorPath(rawPath, fieldPaths)
		if isForm || mapped == "" {
			formLevel = append(formLevel, normalized...)
			continue
		}
		perField[mapped] = append(perField[mapped], normalized...)
	}

	for _, fld := range f.Fields() {
		messages, ok := perField[fld.Name()]
		if !ok {
			continue
		}
		if err := fld.Settle(ctx); err != nil {
			return nil, fmt.Errorf("form: settle %q before applying errors: %w", fld.Name(), err)
		}
		fld.SetError(strings.Join(normalizeMessages(messages), "; "))
		fld.SetTouched(true)
	}

	return normalizeMessages(formLevel), nil
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, fieldPaths map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	best := ""
	for _, variant := range buildSegmentVariants(segments) {
		path := longestMatchingPath(variant, fieldPaths)
		if path != "" && (best == "" || strings.Count(path, ".") > strings.Count(best, ".")) {
			best = path
		}
	}

	if best != "" {
		return best, false
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func buildSegmentVariants(segments []string) [][]string {
	var variants [][]string
	seen := make(map[string]struct{}, 4)

	appendVariant := func(candidate []string) {
		if len(candidate) == 0 {
			return
		}
		key := strings.Join(candidate, ".")
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, append([]string(nil), candidate...))
	}

	noWrappers := dropWrapperSegments(segments)
	appendVariant(segments)
	appendVariant(noWrappers)
	appendVariant(stripNumericSegments(segments))
	appendVariant(stripNumericSegments(noWrappers))
	return variants
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestMatchingPath(segments []string, fieldPaths map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := fieldPaths[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
