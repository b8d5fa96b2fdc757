package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/stubdb/pkg/mapping"
)

// MappingFiles expands the configured mapping globs. Each glob's matches are
// sorted and a file matched by several globs is only listed once.
func (c *Config) MappingFiles() ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range c.Mappings {
		matches, err := doublestar.FilepathGlob(c.Resolve(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("mappings pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no file matches %q", ErrFileNotFound, pattern)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// LoadMappings reads every mapping file in order into one set.
func (c *Config) LoadMappings() (mapping.Set, error) {
	files, err := c.MappingFiles()
	if err != nil {
		return nil, err
	}
	var set mapping.Set
	for _, f := range files {
		ms, err := LoadMappingFile(f)
		if err != nil {
			return nil, err
		}
		set = append(set, ms...)
	}
	return set, nil
}

// LoadMappingFile reads a YAML or JSON array of mappings. Mappings without an
// id are named "<file>#<index>".
func LoadMappingFile(path string) (mapping.Set, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var set mapping.Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidYAML, path, err)
	}

	name := filepath.Base(path)
	var errs []error
	for i, m := range set {
		if m == nil {
			errs = append(errs, fmt.Errorf("%w: %s#%d: empty entry", ErrInvalidMapping, name, i))
			continue
		}
		if m.ID == "" {
			m.ID = fmt.Sprintf("%s#%d", name, i)
		}
		m.Source = path
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidMapping, m.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return set, nil
}
