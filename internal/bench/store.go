package bench

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/hsm/pkg/jsonschema"
)

var payloadSchema = jsonschema.MustCompile("payload.json", `{
	"type": "object",
	"properties": {
		"test": { "type": "string", "minLength": 1 }
	},
	"minProperties": 1
}`)

var mockSchema = jsonschema.MustCompile("mock.json", `{
	"type": "object",
	"additionalProperties": {
		"type": "array",
		"items": {
			"type": "object",
			"properties": {
				"test": { "type": "string" }
			}
		}
	}
}`)

// Iteration is the output of one isolated run of a test
type Iteration struct {
	// Test is the name the test reported for itself
	Test string
	// Timings holds the numeric fields of the payload, in milliseconds
	Timings map[string]float64
}

// MarshalJSON writes the iteration in the payload format
func (it Iteration) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(it.Timings)+1)
	for mode, ms := range it.Timings {
		fields[mode] = ms
	}
	if it.Test != "" {
		fields["test"] = it.Test
	}
	return json.Marshal(fields)
}

// ParseIteration parses the line a test prints on success. Fields that are
// not numbers, other than the test name, are dropped.
func ParseIteration(data []byte) (Iteration, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Iteration{}, fmt.Errorf("empty output")
	}
	if !gjson.ValidBytes(data) {
		return Iteration{}, fmt.Errorf("output is not valid JSON: %q", data)
	}
	if err := payloadSchema.Validate(data); err != nil {
		return Iteration{}, fmt.Errorf("unexpected output %s: %w", data, err)
	}

	it := iterationFrom(gjson.ParseBytes(data))
	if len(it.Timings) == 0 {
		return Iteration{}, fmt.Errorf("output has no timings: %s", data)
	}
	return it, nil
}

func iterationFrom(result gjson.Result) Iteration {
	it := Iteration{Timings: make(map[string]float64)}
	result.ForEach(func(key, value gjson.Result) bool {
		switch {
		case key.Str == "test" && value.Type == gjson.String:
			it.Test = value.Str
		case value.Type == gjson.Number:
			it.Timings[key.Str] = value.Num
		}
		return true
	})
	return it
}

// Store maps a test name to its iterations
type Store map[string][]Iteration

// Names returns the test names, sorted
func (s Store) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of iterations stored for test
func (s Store) Len(test string) int {
	return len(s[test])
}

// LoadMock reads a store saved in the mock file format
func LoadMock(path string) (Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MockLoadError{Path: path, Err: err}
	}
	store, err := ParseMock(data)
	if err != nil {
		return nil, &MockLoadError{Path: path, Err: err}
	}
	return store, nil
}

// ParseMock parses mock file contents
func ParseMock(data []byte) (Store, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	if err := mockSchema.Validate(data); err != nil {
		return nil, err
	}

	store := make(Store)
	gjson.ParseBytes(data).ForEach(func(test, iterations gjson.Result) bool {
		list := make([]Iteration, 0, len(iterations.Array()))
		iterations.ForEach(func(_, value gjson.Result) bool {
			list = append(list, iterationFrom(value))
			return true
		})
		store[test.Str] = list
		return true
	})
	return store, nil
}

// Save writes the store in the mock file format
func (s Store) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
