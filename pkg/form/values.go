package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Values returns field values as a nested map. Dotted names create nested
// maps; numeric segments create slices ("tags.0").
func (f *Form) Values() map[string]any {
	out := make(map[string]any)
	for _, fld := range f.Fields() {
		if err := setPath(out, fld.Name(), fld.Snapshot().Value); err != nil {
			f.logger.Sugar().Warnw("skipping field value", "field", fld.Name(), "error", err)
		}
	}
	return out
}

// FlatValues returns field values keyed by field name.
func (f *Form) FlatValues() map[string]any {
	out := make(map[string]any)
	for _, fld := range f.Fields() {
		out[fld.Name()] = fld.Snapshot().Value
	}
	return out
}

// setPath writes value at a dotted path, creating intermediate maps and
// slices. Slices are reassigned into their parent after growing.
func setPath(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("form: root map is nil")
	}
	segments := strings.Split(path, ".")

	var assign func(container any, idx int) (any, error)
	assign = func(container any, idx int) (any, error) {
		segment := segments[idx]
		last := idx == len(segments)-1

		switch node := container.(type) {
		case map[string]any:
			if last {
				node[segment] = value
				return node, nil
			}
			child := node[segment]
			if child == nil {
				child = newContainer(segments[idx+1])
			}
			updated, err := assign(child, idx+1)
			if err != nil {
				return nil, err
			}
			node[segment] = updated
			return node, nil

		case []any:
			pos, err := strconv.Atoi(segment)
			if err != nil {
				return nil, fmt.Errorf("form: expected numeric segment, got %q", segment)
			}
			if pos < 0 {
				return nil, fmt.Errorf("form: negative index in path %q", path)
			}
			if len(node) <= pos {
				node = append(node, make([]any, pos+1-len(node))...)
			}
			if last {
				node[pos] = value
				return node, nil
			}
			child := node[pos]
			if child == nil {
				child = newContainer(segments[idx+1])
			}
			updated, err := assign(child, idx+1)
			if err != nil {
				return nil, err
			}
			node[pos] = updated
			return node, nil

		default:
			return nil, fmt.Errorf("form: unexpected container for segment %q", segment)
		}
	}

	_, err := assign(root, 0)
	return err
}

func newContainer(nextSegment string) any {
	if _, err := strconv.Atoi(nextSegment); err == nil {
		return []any{}
	}
	return make(map[string]any)
}
