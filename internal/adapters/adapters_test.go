package adapters

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/hsm/internal/timing"
)

// recordingServer answers with body and remembers every User-Agent it saw.
func recordingServer(t *testing.T, status int, body string) (*httptest.Server, func() []string) {
	t.Helper()

	var mu sync.Mutex
	var agents []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), agents...)
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"fasthttp", "httptrace", "nethttp", "resty"}, Names())
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("axios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown adapter "axios"`)
}

func TestAdapters_Measure(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			server, agents := recordingServer(t, http.StatusOK, `[{"name":"hsm"}]`)

			adapter, err := New(name)
			require.NoError(t, err)

			h, err := timing.NewHarness(adapter, server.URL)
			require.NoError(t, err)

			result, err := h.Measure(context.Background())
			require.NoError(t, err)
			assert.Equal(t, adapter.Name(), result.Test)
			assert.GreaterOrEqual(t, result.Raw, int64(0))
			assert.GreaterOrEqual(t, result.JSON, int64(0))

			seen := agents()
			require.Len(t, seen, 2)
			for _, agent := range seen {
				assert.Equal(t, "HsmTest: "+adapter.Name(), agent)
			}
		})
	}
}

func TestAdapters_RejectErrorStatus(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			server, _ := recordingServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

			adapter, err := New(name)
			require.NoError(t, err)

			h, err := timing.NewHarness(adapter, server.URL)
			require.NoError(t, err)

			_, err = h.Measure(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "[HsmTest] "+adapter.Name()+": unexpected status")
		})
	}
}

func TestAdapters_RejectInvalidJSON(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			server, _ := recordingServer(t, http.StatusOK, `<html>not json</html>`)

			adapter, err := New(name)
			require.NoError(t, err)

			sw := timing.NewStopwatch(nil)
			target := timing.Target{URL: server.URL, UserAgent: timing.UserAgent(adapter)}
			err = adapter.TestJSON(context.Background(), target, sw)
			assert.Error(t, err)
			assert.NotEqual(t, timing.Finished, sw.State())
		})
	}
}

func TestHTTPTrace_LogsPhases(t *testing.T) {
	var buf bytes.Buffer
	level, out := log.GetLevel(), log.StandardLogger().Out
	log.SetLevel(log.DebugLevel)
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetLevel(level)
		log.SetOutput(out)
	})

	server, _ := recordingServer(t, http.StatusOK, `[{"name":"hsm"}]`)
	adapter := &HTTPTrace{}
	target := timing.Target{URL: server.URL, UserAgent: timing.UserAgent(adapter)}

	require.NoError(t, adapter.Test(context.Background(), target, timing.NewStopwatch(nil)))
	require.NoError(t, adapter.TestJSON(context.Background(), target, timing.NewStopwatch(nil)))

	logged := buf.String()
	assert.Equal(t, 2, strings.Count(logged, "Request phases"))
	assert.Contains(t, logged, "mode=raw")
	assert.Contains(t, logged, "mode=json")
	assert.Contains(t, logged, "ttfb=")
	assert.Contains(t, logged, "total=")
}
