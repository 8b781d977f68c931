// Package style resolves template identifiers into concrete typography,
// color and layout settings.
package style

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Layout variants.
const (
	LayoutClassic   = "classic"
	LayoutCentered  = "centered"
	LayoutCompact   = "compact"
	LayoutAccentBar = "accent-bar"
)

// Generic font families used when the web font is unavailable.
const (
	FallbackSans  = "sans-serif"
	FallbackSerif = "serif"
	FallbackMono  = "monospace"
)

// DefaultID names the entry unknown template ids resolve to.
const DefaultID = "classic"

// Config is the resolved style for one template. It is derived from a
// template id and never stored.
type Config struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	FontName           string  `json:"fontName"`
	FontFamilyFallback string  `json:"fontFamilyFallback"`
	FontWeights        []int   `json:"fontWeights"`
	AccentColor        string  `json:"accentColor"`
	Layout             string  `json:"layoutVariant"`
	BaseFontSizePt     float64 `json:"baseFontSizePt"`
}

var registry = []Config{
	{
		ID:                 "classic",
		Name:               "Classic",
		FontName:           "Inter",
		FontFamilyFallback: FallbackSans,
		FontWeights:        []int{400, 600, 700},
		AccentColor:        "#2563eb",
		Layout:             LayoutClassic,
		BaseFontSizePt:     10.5,
	},
	{
		ID:                 "modern",
		Name:               "Modern",
		FontName:           "Poppins",
		FontFamilyFallback: FallbackSans,
		FontWeights:        []int{400, 500, 700},
		AccentColor:        "#7c3aed",
		Layout:             LayoutAccentBar,
		BaseFontSizePt:     10,
	},
	{
		ID:                 "elegant",
		Name:               "Elegant",
		FontName:           "Playfair Display",
		FontFamilyFallback: FallbackSerif,
		FontWeights:        []int{400, 700},
		AccentColor:        "#b45309",
		Layout:             LayoutCentered,
		BaseFontSizePt:     10.5,
	},
	{
		ID:                 "minimal",
		Name:               "Minimal",
		FontName:           "Roboto",
		FontFamilyFallback: FallbackSans,
		FontWeights:        []int{400, 500, 700},
		AccentColor:        "#111827",
		Layout:             LayoutCompact,
		BaseFontSizePt:     9.5,
	},
	{
		ID:                 "technical",
		Name:               "Technical",
		FontName:           "JetBrains Mono",
		FontFamilyFallback: FallbackMono,
		FontWeights:        []int{400, 700},
		AccentColor:        "#059669",
		Layout:             LayoutClassic,
		BaseFontSizePt:     9.5,
	},
	{
		ID:                 "executive",
		Name:               "Executive",
		FontName:           "Merriweather",
		FontFamilyFallback: FallbackSerif,
		FontWeights:        []int{400, 700},
		AccentColor:        "#1e3a8a",
		Layout:             LayoutCentered,
		BaseFontSizePt:     10,
	},
}

// Resolve returns the style for templateID. Unknown and empty ids resolve
// to the default entry; the result is always fully populated.
func Resolve(templateID string) Config {
	id := strings.ToLower(strings.TrimSpace(templateID))
	for _, c := range registry {
		if c.ID == id {
			return c.clone()
		}
	}
	return Default()
}

// Default returns the fallback entry.
func Default() Config {
	for _, c := range registry {
		if c.ID == DefaultID {
			return c.clone()
		}
	}
	panic("style: default template missing from registry")
}

// Known reports whether templateID names a registry entry.
func Known(templateID string) bool {
	id := strings.ToLower(strings.TrimSpace(templateID))
	for _, c := range registry {
		if c.ID == id {
			return true
		}
	}
	return false
}

// All lists every entry in registry order.
func All() []Config {
	out := make([]Config, 0, len(registry))
	for _, c := range registry {
		out = append(out, c.clone())
	}
	return out
}

func (c Config) clone() Config {
	c.FontWeights = append([]int(nil), c.FontWeights...)
	return c
}

// FontStack is the CSS font-family value, web font first.
func (c Config) FontStack() string {
	return fmt.Sprintf("'%s', %s", c.FontName, c.FontFamilyFallback)
}

// WebFontURL is the Google Fonts stylesheet that serves FontName in the
// configured weights.
func (c Config) WebFontURL() string {
	weights := make([]string, 0, len(c.FontWeights))
	for _, w := range c.FontWeights {
		weights = append(weights, strconv.Itoa(w))
	}
	return "https://fonts.googleapis.com/css2?family=" + url.QueryEscape(c.FontName) + ":wght@" + strings.Join(weights, ";") + "&display=swap"
}

// BoldWeight is the heaviest configured weight.
func (c Config) BoldWeight() int {
	w := 700
	if len(c.FontWeights) > 0 {
		w = c.FontWeights[len(c.FontWeights)-1]
	}
	return w
}

// AccentRGB decodes AccentColor. Malformed colors decode to black.
func (c Config) AccentRGB() (r, g, b int) {
	s := strings.TrimPrefix(c.AccentColor, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
