// Package adapters holds the HTTP client adapters compiled into hsm. Each
// adapter exercises one client library under the timing contract and is run
// in its own process through `hsm probe <name>`.
package adapters

import (
	"fmt"
	"sort"

	"github.com/wesleyorama2/hsm/internal/timing"
)

// Factory creates a fresh adapter.
type Factory func() timing.Adapter

var factories = map[string]Factory{
	"nethttp":   func() timing.Adapter { return &NetHTTP{} },
	"httptrace": func() timing.Adapter { return &HTTPTrace{} },
	"resty":     func() timing.Adapter { return &Resty{} },
	"fasthttp":  func() timing.Adapter { return &FastHTTP{} },
}

// Names returns the registered adapter names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the adapter registered under name.
func New(name string) (timing.Adapter, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown adapter %q (available: %v)", name, Names())
	}
	return factory(), nil
}

func checkStatus(code int, status string) error {
	if code < 200 || code >= 300 {
		return fmt.Errorf("unexpected status %s", status)
	}
	return nil
}
