package config

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store holds form definitions keyed by name.
type Store struct {
	forms map[string]FormDef
}

// LoadFS walks fsys and parses every JSON/YAML definitions file. Form names
// must be unique across files.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]FormDef)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		return store.add(data, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse loads definitions from a single document.
func Parse(data []byte, source string) (*Store, error) {
	store := &Store{forms: make(map[string]FormDef)}
	if err := store.add(data, source); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) add(data []byte, source string) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("config: file %s is empty", source)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse %s: %w", source, err)
	}

	for rawName, def := range doc.Forms {
		name := strings.TrimSpace(rawName)
		if name == "" {
			return fmt.Errorf("config: file %s defines an empty form name", source)
		}
		if _, exists := s.forms[name]; exists {
			return fmt.Errorf("config: duplicate form %q (file %s)", name, source)
		}
		if err := validateForm(def, name, source); err != nil {
			return err
		}
		def.Name = name
		def.Source = source
		s.forms[name] = def
	}
	return nil
}

// Form returns the definition registered under name.
func (s *Store) Form(name string) (FormDef, bool) {
	if s == nil {
		return FormDef{}, false
	}
	def, ok := s.forms[name]
	return def, ok
}

// Names lists the registered forms in lexical order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.forms))
	for name := range s.forms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateForm(def FormDef, name, source string) error {
	seen := make(map[string]struct{}, len(def.Fields))
	for idx, fld := range def.Fields {
		fieldName := strings.TrimSpace(fld.Name)
		if fieldName == "" {
			return fmt.Errorf("config: form %q field #%d has no name (file %s)", name, idx, source)
		}
		if _, dup := seen[fieldName]; dup {
			return fmt.Errorf("config: form %q declares field %q twice (file %s)", name, fieldName, source)
		}
		seen[fieldName] = struct{}{}
	}
	return nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
