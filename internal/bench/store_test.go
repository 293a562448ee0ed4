package bench

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIteration(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected Iteration
		errMsg   string
	}{
		{
			name:   "timings",
			output: `{"test":"got","raw":1386,"json":1347}` + "\n",
			expected: Iteration{
				Test:    "got",
				Timings: map[string]float64{"raw": 1386, "json": 1347},
			},
		},
		{
			name:   "non numeric fields are dropped",
			output: `{"test":"axios","json":12.5,"note":"warm"}`,
			expected: Iteration{
				Test:    "axios",
				Timings: map[string]float64{"json": 12.5},
			},
		},
		{
			name:   "without test name",
			output: `{"raw":10}`,
			expected: Iteration{
				Timings: map[string]float64{"raw": 10},
			},
		},
		{name: "empty", output: "  \n", errMsg: "empty output"},
		{name: "not json", output: "Error: ECONNREFUSED", errMsg: "not valid JSON"},
		{name: "not an object", output: `[1, 2]`, errMsg: "unexpected output"},
		{name: "empty test name", output: `{"test":"","raw":1}`, errMsg: "unexpected output"},
		{name: "no timings", output: `{"test":"got"}`, errMsg: "no timings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := ParseIteration([]byte(tt.output))
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, it)
		})
	}
}

func TestLoadMock(t *testing.T) {
	store, err := LoadMock(filepath.Join("testdata", "mock.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{"axios", "got"}, store.Names())
	assert.Equal(t, 2, store.Len("axios"))
	assert.Equal(t, 1, store.Len("got"))
	assert.Equal(t, 0, store.Len("request"))
	assert.Equal(t, map[string]float64{"json": 201, "raw": 120}, store["axios"][1].Timings)
}

func TestLoadMock_Errors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"got": [`), 0644))
	wrongShape := filepath.Join(dir, "shape.json")
	require.NoError(t, os.WriteFile(wrongShape, []byte(`{"got": {"raw": 1}}`), 0644))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.json")},
		{"invalid json", invalid},
		{"wrong shape", wrongShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMock(tt.path)
			require.Error(t, err)

			var mockErr *MockLoadError
			require.True(t, errors.As(err, &mockErr))
			assert.Equal(t, tt.path, mockErr.Path)
			assert.Contains(t, err.Error(), "failed to load mock results from "+tt.path)
		})
	}
}

func TestStore_SaveRoundTrip(t *testing.T) {
	store := Store{
		"got": {
			{Test: "got", Timings: map[string]float64{"raw": 1386, "json": 1347}},
			{Test: "got", Timings: map[string]float64{"raw": 1200, "json": 1100.5}},
		},
	}

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, store.Save(path))

	loaded, err := LoadMock(path)
	require.NoError(t, err)
	assert.Equal(t, store, loaded)
}
