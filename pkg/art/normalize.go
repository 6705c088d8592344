package art

import (
	"encoding/json"
	"image/color"
	"math"
	"strings"
)

// Params is a fully validated parameter record. Every downstream component
// assumes these invariants:
//   - Grid, Pattern, Variation and ColorMode hold known values
//   - Cols and Rows are in [1, MaxGrid] for uniform grids and 0 otherwise
//   - Palette has at least one entry
//   - Sharpness is in [0, 1]
type Params struct {
	Grid      GridKind
	Cols      int
	Rows      int
	Pattern   PatternKind
	Variation Variation
	ColorMode ColorStrategy
	Palette   []color.NRGBA
	Sharpness float64
}

// Raw converts p back to its canonical ArtParams form, with hex colors.
// Normalizing the result yields p again.
func (p Params) Raw() ArtParams {
	raw := ArtParams{
		GridType:         string(p.Grid),
		PatternType:      string(p.Pattern),
		PatternVariation: string(p.Variation),
		ColorApplication: string(p.ColorMode),
		Colors:           make([]string, len(p.Palette)),
		LineSharpness:    Num(p.Sharpness),
	}
	if p.Grid == GridUniform {
		raw.GridCols = Num(float64(p.Cols))
		raw.GridRows = Num(float64(p.Rows))
	}
	for i, c := range p.Palette {
		raw.Colors[i] = Hex(c)
	}
	return raw
}

// MarshalJSON encodes p in its canonical ArtParams form.
func (p Params) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Raw())
}

// UnmarshalJSON decodes any parameter document and normalizes it with the
// default policy.
func (p *Params) UnmarshalJSON(data []byte) error {
	var raw ArtParams
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Normalize(raw)
	return nil
}

// Normalize validates raw with the default policy. It never fails.
func Normalize(raw ArtParams) Params {
	return defaultEngine.Normalize(raw)
}

// Normalize validates and clamps raw into a Params, substituting policy
// defaults for anything missing, out of range or unknown. It never fails.
func (e *Engine) Normalize(raw ArtParams) Params {
	p := Params{
		Grid:      matchEnum(raw.GridType, GridKinds, GridUniform),
		Pattern:   matchEnum(raw.PatternType, PatternKinds, PatternSolidBlocks),
		Variation: matchEnum(raw.PatternVariation, Variations, VariationNone),
		ColorMode: matchEnum(raw.ColorApplication, ColorStrategies, ColorAlternatingFixed),
		Palette:   e.normalizePalette(raw.Colors),
		Sharpness: normalizeSharpness(raw.LineSharpness),
	}
	if p.Grid == GridUniform {
		p.Cols = e.normalizeCount(raw.GridCols)
		p.Rows = e.normalizeCount(raw.GridRows)
	}
	return p
}

// matchEnum finds s among known after trimming, lowercasing and mapping
// '-' and ' ' to '_'. Unknown values yield def.
func matchEnum[T ~string](s string, known []T, def T) T {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	for _, k := range known {
		if string(k) == s {
			return k
		}
	}
	return def
}

func (e *Engine) normalizeCount(v *float64) int {
	if v == nil || math.IsNaN(*v) {
		return e.policy.DefaultGrid
	}
	n := math.Round(*v)
	if n < 1 {
		return 1
	}
	if n > float64(e.policy.MaxGrid) {
		return e.policy.MaxGrid
	}
	return int(n)
}

func normalizeSharpness(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 1
	}
	return max(0, min(*v, 1))
}

// normalizePalette keeps entry positions so alternating strategies see the
// order the model chose; entries that do not parse become the fallback.
func (e *Engine) normalizePalette(entries []string) []color.NRGBA {
	palette := make([]color.NRGBA, len(entries))
	valid := 0
	for i, s := range entries {
		if c, ok := ParseColor(s); ok {
			palette[i] = c
			valid++
		} else {
			palette[i] = e.fallback
		}
	}
	if valid == 0 {
		return []color.NRGBA{e.fallback}
	}
	return palette
}
