package uischema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type documentFile struct {
	UI map[string]FormOverlay `json:"ui" yaml:"ui"`
}

// LoadFS walks the provided filesystem and parses JSON/YAML overlay files.
// Files without a top-level "ui" key are skipped, so overlays may live next
// to form declarations. A nil fsys yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]FormOverlay)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawID, overlay := range doc.UI {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return fmt.Errorf("uischema: file %s defines an empty form id", path)
			}
			if _, exists := store.forms[id]; exists {
				return fmt.Errorf("uischema: duplicate form %q (file %s)", id, path)
			}
			if err := validateOverlay(overlay); err != nil {
				return fmt.Errorf("uischema: form %q (file %s): %w", id, path, err)
			}
			overlay.ID = id
			overlay.Source = path
			store.forms[id] = overlay
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Merge returns a store holding the overlays of s replaced, per form, by the
// overlays of other.
func (s *Store) Merge(other *Store) *Store {
	out := &Store{forms: make(map[string]FormOverlay)}
	for _, src := range []*Store{s, other} {
		if src == nil {
			continue
		}
		for id, overlay := range src.forms {
			out.forms[id] = overlay
		}
	}
	return out
}

// Without returns a copy of s lacking the overlays for ids.
func (s *Store) Without(ids ...string) *Store {
	out := s.Merge(nil)
	for _, id := range ids {
		delete(out.forms, id)
	}
	return out
}

// Form returns the overlay for the supplied form id.
func (s *Store) Form(id string) (FormOverlay, bool) {
	if s == nil {
		return FormOverlay{}, false
	}
	overlay, ok := s.forms[id]
	return overlay, ok
}

// IDs returns the form ids with overlays in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store has any overlays.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func validateOverlay(overlay FormOverlay) error {
	check := func(path string, cfg FieldConfig) error {
		if cfg.Rows < 0 || cfg.Rows > 20 {
			return fmt.Errorf("field %q: rows must be between 1 and 20", path)
		}
		return nil
	}
	for name, cfg := range overlay.Fields {
		if err := check(name, cfg); err != nil {
			return err
		}
	}
	for listName, list := range overlay.Lists {
		for name, cfg := range list.Fields {
			if err := check(listName+"."+name, cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("uischema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("uischema: parse %s: invalid JSON or YAML", source)
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
