package pkginfo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/hsm/pkg/jsonpath"
)

// NPMSource resolves script test dependencies from a package.json and the
// manifests installed under node_modules.
type NPMSource struct {
	manifest   string
	modulesDir string
	declared   map[string]bool
}

// NewNPMSource reads the dependencies declared by the package.json at
// manifest. modulesDir is where they are installed.
func NewNPMSource(manifest, modulesDir string) (*NPMSource, error) {
	data, err := os.ReadFile(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to read package manifest: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("package manifest %s is not valid JSON", manifest)
	}

	s := &NPMSource{
		manifest:   manifest,
		modulesDir: modulesDir,
		declared:   make(map[string]bool),
	}

	deps, err := jsonpath.Get(string(data), "$.dependencies")
	if err != nil {
		// no dependencies at all
		return s, nil
	}
	deps.ForEach(func(key, _ gjson.Result) bool {
		s.declared[key.String()] = true
		return true
	})
	return s, nil
}

// Lookup implements Source. The name has to be declared before the installed
// manifest is read.
func (s *NPMSource) Lookup(name string) (Info, error) {
	if !s.declared[name] {
		return Info{}, &UnknownDependencyError{Name: name, Manifest: filepath.Base(s.manifest)}
	}

	path := filepath.Join(s.modulesDir, filepath.FromSlash(name), "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to read manifest of '%s': %w", name, err)
	}
	manifest := string(data)

	info := Info{Name: name}
	if v, err := jsonpath.String(manifest, "$.name"); err == nil {
		info.Name = v
	}
	if info.Version, err = jsonpath.String(manifest, "$.version"); err != nil {
		return Info{}, fmt.Errorf("manifest of '%s' has no version: %w", name, err)
	}
	if repo, err := jsonpath.FirstString(manifest, "$.repository", "$.repository.url"); err == nil {
		info.Repository = NormalizeRepository(repo)
	}
	return info, nil
}
