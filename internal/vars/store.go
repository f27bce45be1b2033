// Package vars persists script variables as namespaced sets backed by a
// single JSON file. Scripts read them through the env(..) builtin; the CLI
// mutates them with the env subcommands.
package vars

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
)

const (
	FileName         = ".env.rd.json"
	DefaultNamespace = "default"
)

// Store holds namespace -> name -> value. The default namespace always
// exists; every mutation rewrites the whole backing file.
type Store struct {
	path       string
	selected   string
	namespaces map[string]map[string]string
	mu         sync.RWMutex
}

// Open reads the store at path. A missing or unreadable-as-JSON file yields
// a fresh store with an empty default namespace rather than an error, so a
// first run in a new workspace just works.
func Open(path string) (*Store, error) {
	s := &Store{
		path:       path,
		namespaces: map[string]map[string]string{DefaultNamespace: {}},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "read variables file %s", path)
	}

	var loaded map[string]map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil || loaded == nil {
		return s, nil
	}
	if _, ok := loaded[DefaultNamespace]; !ok {
		loaded[DefaultNamespace] = map[string]string{}
	}
	for name, values := range loaded {
		if values == nil {
			loaded[name] = map[string]string{}
		}
	}
	s.namespaces = loaded
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// SelectNamespace switches which namespace Lookup and Set operate on. The
// namespace does not have to exist yet; lookups in a missing namespace
// simply find nothing and Set reports it.
func (s *Store) SelectNamespace(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = name
}

func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedLocked()
}

func (s *Store) selectedLocked() string {
	if s.selected == "" {
		return DefaultNamespace
	}
	return s.selected
}

// Lookup finds a variable in the selected namespace only. Namespaces do not
// inherit from default; selecting a namespace replaces the variable set
// wholesale.
func (s *Store) Lookup(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.namespaces[s.selectedLocked()]
	if !ok {
		return "", false
	}
	value, ok := values[name]
	return value, ok
}

// Set writes a variable into the selected namespace and persists the store.
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.selectedLocked()
	values, ok := s.namespaces[ns]
	if !ok {
		return errdef.New(
			errdef.CodeScript,
			"can't set variable %q: undefined namespace %q",
			name,
			ns,
		)
	}
	values[name] = value
	return s.persistLocked()
}

func (s *Store) AddNamespace(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[name]; !ok {
		s.namespaces[name] = map[string]string{}
	}
	return s.persistLocked()
}

// RemoveNamespace deletes a namespace and its variables. Removing default
// just empties it; the namespace itself stays.
func (s *Store) RemoveNamespace(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == DefaultNamespace {
		s.namespaces[DefaultNamespace] = map[string]string{}
	} else {
		delete(s.namespaces, name)
	}
	return s.persistLocked()
}

func (s *Store) Namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns a copy of one namespace's variables, nil when the
// namespace does not exist.
func (s *Store) Values(namespace string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.namespaces[namespace]
	if !ok {
		return nil
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return copied
}

func (s *Store) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create variables dir")
	}

	data, err := json.MarshalIndent(s.namespaces, "", "  ")
	if err != nil {
		return errdef.Wrap(errdef.CodeScript, err, "encode variables")
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write variables tmp")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "replace variables file %s", s.path)
	}
	return nil
}

// HomePath is the fallback store location shared by every workspace.
func HomePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errdef.Wrap(errdef.CodeFilesystem, err, "resolve home dir")
	}
	return filepath.Join(home, FileName), nil
}

// OpenFromDir opens the store inside dir, erroring when no variables file
// exists there. Use OpenNearest when a home fallback is wanted.
func OpenFromDir(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errdef.New(errdef.CodeFilesystem, "not a directory: %s", dir)
	}

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "no %s in %s", FileName, dir)
	}
	return Open(path)
}

// OpenNearest prefers the variables file next to the script and falls back
// to the one in the home directory. An empty dir skips straight to home.
func OpenNearest(dir string) (*Store, error) {
	if dir != "" {
		if store, err := OpenFromDir(dir); err == nil {
			return store, nil
		}
	}
	path, err := HomePath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}
