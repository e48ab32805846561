// Package config loads declarative form definitions from JSON or YAML files
// and builds field controllers from them.
package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk layout of a definitions file.
type Document struct {
	Forms map[string]FormDef `yaml:"forms"`
}

// FormDef describes one form.
type FormDef struct {
	Name   string     `yaml:"-"`
	Title  string     `yaml:"title"`
	Source string     `yaml:"-"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef describes one string field.
type FieldDef struct {
	Name             string    `yaml:"name"`
	Label            string    `yaml:"label"`
	Help             string    `yaml:"help"`
	Placeholder      string    `yaml:"placeholder"`
	Initial          string    `yaml:"initial"`
	Secret           bool      `yaml:"secret"`
	ValidateOnChange *bool     `yaml:"validateOnChange"`
	ValidateOnBlur   *bool     `yaml:"validateOnBlur"`
	Debounce         Duration  `yaml:"debounce"`
	Transform        []string  `yaml:"transform"`
	Compare          string    `yaml:"compare"`
	ErrorMessage     string    `yaml:"errorMessage"`
	Rules            []RuleDef `yaml:"rules"`
}

// DisplayLabel returns Label or a humanised Name.
func (f FieldDef) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	name := f.Name
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// RuleDef describes one validation rule. Kind selects which of the other
// attributes are read.
type RuleDef struct {
	Kind    string   `yaml:"kind"`
	Message string   `yaml:"message"`
	Value   int      `yaml:"value"`
	Pattern string   `yaml:"pattern"`
	Values  []string `yaml:"values"`
	Field   string   `yaml:"field"`
	Expr    string   `yaml:"expr"`
	Check   string   `yaml:"check"`
	Schema  string   `yaml:"schema"`
}

// Duration accepts Go duration strings ("300ms") or integer milliseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var ms int64
	if err := node.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("config: duration: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
