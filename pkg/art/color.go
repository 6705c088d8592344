package art

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Colors is the resolved color pair for one cell. Patterns that need a
// single color use Primary only.
type Colors struct {
	Primary   color.NRGBA
	Secondary color.NRGBA
}

// ParseColor parses a palette entry.
//
// Accepted forms are "#rgb", "#rrggbb" and "#rrggbbaa" (the leading '#' is
// optional, hex digits are case-insensitive) and CSS/SVG color names such
// as "teal". Surrounding whitespace is ignored.
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}, true
	}
	s = strings.TrimPrefix(s, "#")
	if !isHex(s) {
		return color.NRGBA{}, false
	}
	switch len(s) {
	case 3, 6:
		c, err := colorful.Hex("#" + s)
		if err != nil {
			return color.NRGBA{}, false
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, true
	case 8:
		c, err := colorful.Hex("#" + s[:6])
		if err != nil {
			return color.NRGBA{}, false
		}
		a, err := strconv.ParseUint(s[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: uint8(a)}, true
	}
	return color.NRGBA{}, false
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !('0' <= r && r <= '9' || 'a' <= r && r <= 'f') {
			return false
		}
	}
	return true
}

// Hex formats c as "#RRGGBB", or "#RRGGBBAA" when it is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// ResolveColors maps a cell index to its colors under mode.
//
// alternating_fixed and solid_block depend on the index alone and never
// touch g. alternating_random consumes exactly one value from g per call.
// palette must be non-empty, which [Normalize] guarantees.
func ResolveColors(index int, mode ColorStrategy, palette []color.NRGBA, g *Generator) Colors {
	n := len(palette)
	switch mode {
	case ColorAlternatingRandom:
		k := min(int(g.Next()*float64(n)), n-1)
		return Colors{Primary: palette[k], Secondary: palette[(k+1)%n]}
	case ColorSolidBlock:
		return Colors{Primary: palette[0], Secondary: palette[0]}
	default:
		i := index % n
		if i < 0 {
			i += n
		}
		return Colors{Primary: palette[i], Secondary: palette[(i+1)%n]}
	}
}
