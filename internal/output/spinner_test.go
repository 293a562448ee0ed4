package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_TTY(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(SpinnerConfig{
		Text:     "Making the requests %s",
		Writer:   &buf,
		Interval: time.Millisecond,
		NoColor:  true,
		ForceTTY: true,
	})
	assert.True(t, s.isTTY)

	s.Start()
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Making the requests |")
	assert.True(t, strings.HasSuffix(out, clearLine+showCursor), "the line is cleared on stop")
	assert.Equal(t, 1, strings.Count(out, hideCursor))
}

func TestSpinner_NotATerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(SpinnerConfig{Text: "Making the requests %s", Writer: &buf})
	assert.False(t, s.isTTY)

	s.Start()
	s.Stop()
	assert.Empty(t, buf.String())
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	s := NewSpinner(SpinnerConfig{Writer: &bytes.Buffer{}, ForceTTY: true})

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without Start")
	}
}
