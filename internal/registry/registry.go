// Package registry keeps the benchmark tests the orchestrator can dispatch:
// a mapping from test name to the command that runs one isolated iteration.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Definition describes how to run one test.
type Definition struct {
	// Name is the key the test is selected and reported by.
	Name string
	// Path is the file that implements the test.
	Path string
	// Command is the argv prefix; the target URL flag is appended to it.
	Command []string
}

// Argv returns the full command line for one iteration against url.
func (d Definition) Argv(url string) []string {
	argv := make([]string, 0, len(d.Command)+1)
	argv = append(argv, d.Command...)
	return append(argv, "--url="+url)
}

// Registry manages the known test definitions
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// New creates an empty registry
func New() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition. Names must be unique.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("test name cannot be empty")
	}
	if len(def.Command) == 0 {
		return fmt.Errorf("test %q has no command", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("test %q is already registered (%s)", def.Name, existing.Path)
	}
	r.defs[def.Name] = def
	return nil
}

// RegisterBuiltins registers adapters compiled into exe. Each one runs as
// `exe probe <name>`.
func (r *Registry) RegisterBuiltins(exe string, names []string) error {
	for _, name := range names {
		def := Definition{
			Name:    name,
			Path:    exe,
			Command: []string{exe, "probe", name},
		}
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Discover scans dir (not recursively) and registers every file whose
// extension has an entry in runtimes, keyed by its lowercase file name
// without extension. An empty runtime means the file is executed directly.
// Directories, dotfiles and unknown extensions are skipped. When two files
// share a name, the last one in directory order wins.
func (r *Registry) Discover(dir string, runtimes map[string]string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve tests directory: %w", err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return fmt.Errorf("failed to read tests directory: %w", err)
	}

	var found []Definition
	index := make(map[string]int)
	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() || strings.HasPrefix(filename, ".") {
			continue
		}

		ext := filepath.Ext(filename)
		runtime, ok := runtimes[strings.ToLower(ext)]
		if !ok {
			continue
		}

		path := filepath.Join(absDir, filename)
		command := []string{path}
		if runtime != "" {
			command = []string{runtime, path}
		}

		def := Definition{
			Name:    strings.ToLower(strings.TrimSuffix(filename, ext)),
			Path:    path,
			Command: command,
		}
		if i, ok := index[def.Name]; ok {
			log.Warnf("Test %s in %s replaces %s", def.Name, filename, filepath.Base(found[i].Path))
			found[i] = def
			continue
		}
		index[def.Name] = len(found)
		found = append(found, def)
	}

	for _, def := range found {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the definition registered under name
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names returns every registered name, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tests
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Select returns the sorted names matched by sel
func (r *Registry) Select(sel Selector) []string {
	var selected []string
	for _, name := range r.Names() {
		if sel.Matches(name) {
			selected = append(selected, name)
		}
	}
	return selected
}

// Selector picks the tests a run executes. The zero value selects all tests.
type Selector struct {
	name    string
	pattern *regexp.Regexp
}

// All selects every test.
func All() Selector {
	return Selector{}
}

// Exact selects the test named name. An empty name selects every test.
func Exact(name string) Selector {
	return Selector{name: name}
}

// Match selects the tests whose name matches pattern.
func Match(pattern *regexp.Regexp) Selector {
	return Selector{pattern: pattern}
}

// Matches reports whether name is selected.
func (s Selector) Matches(name string) bool {
	switch {
	case s.pattern != nil:
		return s.pattern.MatchString(name)
	case s.name != "":
		return s.name == name
	default:
		return true
	}
}

func (s Selector) String() string {
	switch {
	case s.pattern != nil:
		return "/" + s.pattern.String() + "/"
	case s.name != "":
		return s.name
	default:
		return "*"
	}
}
