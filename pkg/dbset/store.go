package dbset

import (
	"maps"
	"slices"
)

// Store is an immutable set of tables, addressable by dataset name or file name.
type Store struct {
	tables map[string]*Table // by file name
	names  map[string]string // dataset name -> file name
}

// NewStore indexes tables. When two files share a dataset name, the first one
// in the argument order keeps the short name; both stay reachable by file name.
func NewStore(tables ...*Table) *Store {
	s := &Store{
		tables: make(map[string]*Table, len(tables)),
		names:  make(map[string]string, len(tables)),
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		s.tables[t.file] = t
		if _, taken := s.names[t.name]; !taken {
			s.names[t.name] = t.file
		}
	}
	return s
}

// Table returns the table with the given dataset name or file name.
func (s *Store) Table(name string) (*Table, bool) {
	if s == nil {
		return nil, false
	}
	if t, ok := s.tables[name]; ok {
		return t, true
	}
	if file, ok := s.names[name]; ok {
		return s.tables[file], true
	}
	return nil, false
}

// Lookup returns the field of the row keyed by key in dataset name.
// The boolean is false when the dataset, the row or the field does not exist.
func (s *Store) Lookup(name, key, field string) (string, bool) {
	t, ok := s.Table(name)
	if !ok {
		return "", false
	}
	return t.Get(key, field)
}

// Names returns the dataset names, sorted.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.names))
}

// Tables returns every table ordered by file name.
func (s *Store) Tables() []*Table {
	if s == nil {
		return nil
	}
	files := slices.Sorted(maps.Keys(s.tables))
	out := make([]*Table, 0, len(files))
	for _, f := range files {
		out = append(out, s.tables[f])
	}
	return out
}
