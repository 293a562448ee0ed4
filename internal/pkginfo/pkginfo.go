// Package pkginfo resolves the package a test exercises into the name,
// version and repository shown next to its results.
package pkginfo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/module"
)

// Info describes one installed dependency
type Info struct {
	Name       string
	Version    string
	Repository string
}

// Label is the text results are listed under
func (i Info) Label() string {
	return i.Name + "@" + i.Version
}

// Source looks up dependency metadata by name
type Source interface {
	Lookup(name string) (Info, error)
}

// UnknownDependencyError is returned for names that are not declared as a
// dependency by the source's manifest.
type UnknownDependencyError struct {
	Name     string
	Manifest string
}

func (e *UnknownDependencyError) Error() string {
	manifest := e.Manifest
	if manifest == "" {
		manifest = "the declared dependencies"
	}
	return fmt.Sprintf("there's no info about '%s' on %s", e.Name, manifest)
}

// Chain tries each source in order. Unknown names fall through to the next
// source; any other error stops the lookup.
type Chain []Source

// Lookup implements Source
func (c Chain) Lookup(name string) (Info, error) {
	var manifests []string
	for _, source := range c {
		info, err := source.Lookup(name)
		if err == nil {
			return info, nil
		}

		var unknown *UnknownDependencyError
		if !errors.As(err, &unknown) {
			return Info{}, err
		}
		if unknown.Manifest != "" {
			manifests = append(manifests, unknown.Manifest)
		}
	}
	return Info{}, &UnknownDependencyError{Name: name, Manifest: strings.Join(manifests, " or ")}
}

var gitPlusHTTPS = regexp.MustCompile(`(?i)git\+https`)

// NormalizeRepository turns a repository reference into an absolute HTTPS
// URL. A bare owner/repo is a GitHub repository and a host qualified module
// path loses its major version suffix. A trailing .git is removed and
// git+https becomes https.
func NormalizeRepository(repository string) string {
	url := strings.TrimSpace(repository)
	if url == "" {
		return ""
	}

	if !strings.Contains(url, "://") {
		first, _, _ := strings.Cut(url, "/")
		if strings.Contains(first, ".") {
			if prefix, _, ok := module.SplitPathVersion(url); ok {
				url = prefix
			}
			url = "https://" + url
		} else {
			url = "https://github.com/" + url
		}
	}

	if strings.HasSuffix(strings.ToLower(url), ".git") {
		url = url[:len(url)-len(".git")]
	}
	return gitPlusHTTPS.ReplaceAllString(url, "https")
}
