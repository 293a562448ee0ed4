package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/hsm/internal/bench"
)

func TestCreateSampleStore(t *testing.T) {
	store := createSampleStore(3)
	require.Len(t, store, len(samples))

	for test, base := range samples {
		require.Equal(t, 3, store.Len(test))
		for _, it := range store[test] {
			assert.Equal(t, test, it.Test)
			assert.InDelta(t, base[0], it.Timings["raw"], base[0]*0.11)
			assert.InDelta(t, base[1], it.Timings["json"], base[1]*0.11)
		}
	}

	path := filepath.Join(t.TempDir(), "mock.json")
	require.NoError(t, store.Save(path))
	loaded, err := bench.LoadMock(path)
	require.NoError(t, err)
	assert.Equal(t, store, loaded)
}
