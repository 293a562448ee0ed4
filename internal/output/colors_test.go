package output

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorSchemes(t *testing.T) {
	for name, scheme := range map[string]*ColorScheme{
		"default": DefaultColorScheme(),
		"none":    NoColorScheme(),
	} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, scheme.Title)
			assert.NotNil(t, scheme.Muted)
		})
	}

	assert.Equal(t, "Title", NoColorScheme().Title.Sprint("Title"))
}

func TestIcons(t *testing.T) {
	assert.Equal(t, "✓", SuccessIcon(true))
	assert.Equal(t, "✗", ErrorIcon(true))
	assert.NotEmpty(t, SuccessIcon(false))
	assert.NotEmpty(t, ErrorIcon(false))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("magenta")
	require.NoError(t, err)
	c.EnableColor()
	assert.Equal(t, "\x1b[35mx\x1b[0m", c.Sprint("x"))

	_, err = ParseColor("ultraviolet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown color "ultraviolet"`)

	assert.True(t, IsColor("grey"))
	assert.False(t, IsColor("Red"))
	assert.Contains(t, ColorNames(), "cyan")
}

func TestColorCycle_Wraps(t *testing.T) {
	cycle, err := NewColorCycle([]string{"red", "green"}, true)
	require.NoError(t, err)

	var got []string
	for i := 0; i < 5; i++ {
		name, _ := cycle.Next()
		got = append(got, name)
	}
	assert.Equal(t, []string{"red", "green", "red", "green", "red"}, got)
}

func TestColorCycle_SingleColor(t *testing.T) {
	cycle, err := NewColorCycle([]string{"cyan"}, false)
	require.NoError(t, err)

	_, first := cycle.Next()
	for i := 0; i < 4; i++ {
		name, c := cycle.Next()
		assert.Equal(t, "cyan", name)
		assert.Same(t, first, c)
	}
}

func TestColorCycle_NoColor(t *testing.T) {
	cycle, err := NewColorCycle(DefaultPalette, true)
	require.NoError(t, err)

	_, c := cycle.Next()
	assert.Equal(t, "plain", c.Sprint("plain"))
}

func TestNewColorCycle_Errors(t *testing.T) {
	_, err := NewColorCycle(nil, false)
	assert.Error(t, err)

	_, err = NewColorCycle([]string{"red", "nope"}, false)
	assert.Error(t, err)
}

func TestVisibleWidth(t *testing.T) {
	c := color.New(color.FgRed)
	c.EnableColor()
	colored := c.Sprint("got@11.8.6")

	assert.Equal(t, 10, VisibleWidth(colored))
	assert.Equal(t, 3, VisibleWidth("███"))
	assert.Equal(t, colored+"  ", PadRight(colored, 12))
	assert.Equal(t, "long", PadRight("long", 2))
}
