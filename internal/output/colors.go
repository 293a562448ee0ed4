package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// ColorScheme defines the colors used for the fixed parts of the chart
type ColorScheme struct {
	Title *color.Color
	Muted *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title: color.New(color.Underline, color.Bold),
		Muted: color.New(color.Faint),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	scheme.Title.DisableColor()
	scheme.Muted.DisableColor()

	return scheme
}

// Scheme picks the default or the disabled scheme
func Scheme(noColor bool) *ColorScheme {
	if noColor {
		return NoColorScheme()
	}
	return DefaultColorScheme()
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	if noColor {
		return "✓"
	}
	return color.New(color.FgGreen).Sprint("✓")
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(noColor bool) string {
	if noColor {
		return "✗"
	}
	return color.New(color.FgRed).Sprint("✗")
}

// DefaultPalette is the list of colors result lines cycle through
var DefaultPalette = []string{"red", "green", "yellow", "blue", "magenta", "cyan", "white"}

var colorAttributes = map[string]color.Attribute{
	"black":         color.FgBlack,
	"red":           color.FgRed,
	"green":         color.FgGreen,
	"yellow":        color.FgYellow,
	"blue":          color.FgBlue,
	"magenta":       color.FgMagenta,
	"cyan":          color.FgCyan,
	"white":         color.FgWhite,
	"gray":          color.FgHiBlack,
	"grey":          color.FgHiBlack,
	"redBright":     color.FgHiRed,
	"greenBright":   color.FgHiGreen,
	"yellowBright":  color.FgHiYellow,
	"blueBright":    color.FgHiBlue,
	"magentaBright": color.FgHiMagenta,
	"cyanBright":    color.FgHiCyan,
	"whiteBright":   color.FgHiWhite,
}

// ColorNames returns the supported palette color names, sorted
func ColorNames() []string {
	names := make([]string, 0, len(colorAttributes))
	for name := range colorAttributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsColor reports whether name can be used in a palette
func IsColor(name string) bool {
	_, ok := colorAttributes[name]
	return ok
}

// ParseColor returns the color for a palette name
func ParseColor(name string) (*color.Color, error) {
	attr, ok := colorAttributes[name]
	if !ok {
		return nil, fmt.Errorf("unknown color %q (available: %s)", name, strings.Join(ColorNames(), ", "))
	}
	return color.New(attr), nil
}

// ColorCycle hands out palette colors in order, wrapping to the first one
// when it runs out. Not safe for concurrent use.
type ColorCycle struct {
	names  []string
	colors []*color.Color
	next   int
}

// NewColorCycle creates a cycle over the named colors
func NewColorCycle(names []string, noColor bool) (*ColorCycle, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("color palette cannot be empty")
	}

	cycle := &ColorCycle{names: names}
	for _, name := range names {
		c, err := ParseColor(name)
		if err != nil {
			return nil, err
		}
		if noColor {
			c.DisableColor()
		}
		cycle.colors = append(cycle.colors, c)
	}
	return cycle, nil
}

// Next returns the name and color of the next palette entry
func (c *ColorCycle) Next() (string, *color.Color) {
	if c.next >= len(c.colors) {
		c.next = 0
	}
	i := c.next
	c.next++
	return c.names[i], c.colors[i]
}
