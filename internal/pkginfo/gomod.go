package pkginfo

import (
	"fmt"
	"go/build"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

const goRepository = "https://github.com/golang/go"

// ModuleSource resolves Go package paths against a module's requirements.
// Standard library packages resolve to the Go toolchain and packages of the
// main module to its development version.
type ModuleSource struct {
	manifest  string
	main      string
	goVersion string
	requires  map[string]string
}

// NewModuleSource reads the requirements of the go.mod at path
func NewModuleSource(path string) (*ModuleSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}
	return ParseModFile(path, data)
}

// ParseModFile builds a ModuleSource from go.mod contents
func ParseModFile(path string, data []byte) (*ModuleSource, error) {
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}
	if f.Module == nil {
		return nil, fmt.Errorf("%s has no module directive", path)
	}

	s := &ModuleSource{
		manifest:  path,
		main:      f.Module.Mod.Path,
		goVersion: runtime.Version(),
		requires:  make(map[string]string, len(f.Require)),
	}
	for _, req := range f.Require {
		s.requires[req.Mod.Path] = req.Mod.Version
	}
	return s, nil
}

// NewBuildInfoSource uses the dependencies compiled into the running binary
func NewBuildInfoSource() (*ModuleSource, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, fmt.Errorf("build info is not available")
	}

	s := &ModuleSource{
		manifest:  "the build info",
		main:      bi.Main.Path,
		goVersion: bi.GoVersion,
		requires:  make(map[string]string, len(bi.Deps)),
	}
	for _, dep := range bi.Deps {
		mod := dep
		if dep.Replace != nil {
			mod = dep.Replace
		}
		s.requires[dep.Path] = mod.Version
	}
	return s, nil
}

// Lookup implements Source
func (s *ModuleSource) Lookup(name string) (Info, error) {
	if isStd(name) {
		return Info{Name: name, Version: s.goVersion, Repository: goRepository}, nil
	}

	if s.main != "" && within(name, s.main) {
		return Info{
			Name:       displayName(s.main, name),
			Version:    "devel",
			Repository: NormalizeRepository(s.main),
		}, nil
	}

	modPath, version, ok := s.requirement(name)
	if !ok {
		return Info{}, &UnknownDependencyError{Name: name, Manifest: s.manifest}
	}

	return Info{
		Name:       displayName(modPath, modPath),
		Version:    version,
		Repository: NormalizeRepository(modPath),
	}, nil
}

// requirement returns the longest required module path containing name
func (s *ModuleSource) requirement(name string) (string, string, bool) {
	var best string
	for modPath := range s.requires {
		if within(name, modPath) && len(modPath) > len(best) {
			best = modPath
		}
	}
	if best == "" {
		return "", "", false
	}
	return best, s.requires[best], true
}

// displayName is the last element of name without the major version suffix
// of modPath.
func displayName(modPath, name string) string {
	if name == modPath {
		if prefix, _, ok := module.SplitPathVersion(modPath); ok {
			name = prefix
		}
	}
	return path.Base(name)
}

func within(name, modPath string) bool {
	return name == modPath || strings.HasPrefix(name, modPath+"/")
}

// stdRoots are the top level directories of the standard library, for
// binaries running where no GOROOT is installed.
var stdRoots = map[string]bool{
	"archive": true, "bufio": true, "builtin": true, "bytes": true,
	"cmp": true, "compress": true, "container": true, "context": true,
	"crypto": true, "database": true, "debug": true, "embed": true,
	"encoding": true, "errors": true, "expvar": true, "flag": true,
	"fmt": true, "go": true, "hash": true, "html": true,
	"image": true, "index": true, "io": true, "iter": true,
	"log": true, "maps": true, "math": true, "mime": true,
	"net": true, "os": true, "path": true, "plugin": true,
	"reflect": true, "regexp": true, "runtime": true, "slices": true,
	"sort": true, "strconv": true, "strings": true, "structs": true,
	"sync": true, "syscall": true, "testing": true, "text": true,
	"time": true, "unicode": true, "unique": true, "unsafe": true,
	"weak": true,
}

// isStd reports whether name is a standard library import path. Without a
// GOROOT source tree only the first path element is checked, against
// stdRoots.
func isStd(name string) bool {
	first, _, _ := strings.Cut(name, "/")
	if first == "" || strings.Contains(first, ".") {
		return false
	}

	src := filepath.Join(build.Default.GOROOT, "src")
	if build.Default.GOROOT == "" || !isDir(src) {
		return stdRoots[first]
	}
	return isDir(filepath.Join(src, filepath.FromSlash(name)))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
