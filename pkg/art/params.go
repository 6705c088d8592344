package art

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GridKind selects how the surface is partitioned into cells.
type GridKind string

// Grid kinds.
const (
	GridUniform      GridKind = "uniform"
	GridHierarchical GridKind = "hierarchical"
)

// PatternKind selects what is drawn inside each cell.
type PatternKind string

// Pattern kinds.
const (
	PatternAlternatingTriangles PatternKind = "alternating_triangles"
	PatternSolidBlocks          PatternKind = "solid_blocks"
	PatternGeometricShapes      PatternKind = "geometric_shapes"
)

// Variation modifies a pattern's geometry.
type Variation string

// Variations.
const (
	VariationNone                  Variation = "none"
	VariationRandomizedScale       Variation = "randomized_scale"
	VariationRandomizedOrientation Variation = "randomized_orientation"
	VariationFractal               Variation = "fractal"
)

// ColorStrategy maps a cell to palette colors.
type ColorStrategy string

// Color-application strategies.
const (
	ColorAlternatingFixed  ColorStrategy = "alternating_fixed"
	ColorAlternatingRandom ColorStrategy = "alternating_random"
	ColorSolidBlock        ColorStrategy = "solid_block"
)

// Known values per enum, used by the normalizer and by CLI/API help text.
var (
	GridKinds       = []GridKind{GridUniform, GridHierarchical}
	PatternKinds    = []PatternKind{PatternAlternatingTriangles, PatternSolidBlocks, PatternGeometricShapes}
	Variations      = []Variation{VariationNone, VariationRandomizedScale, VariationRandomizedOrientation, VariationFractal}
	ColorStrategies = []ColorStrategy{ColorAlternatingFixed, ColorAlternatingRandom, ColorSolidBlock}
)

// ArtParams is the parameter record as produced by the generative model.
//
// Nothing about it is trusted: enum fields may hold anything, numeric
// fields may be absent, and colors may not parse. Pass it through
// [Normalize] before use. Decoding JSON into an ArtParams never fails on
// field types; see [ParamsFromMap].
type ArtParams struct {
	GridType         string   `json:"grid_type" toml:"grid_type" yaml:"grid_type" bson:"grid_type"`
	GridCols         *float64 `json:"grid_cols,omitempty" toml:"grid_cols,omitempty" yaml:"grid_cols,omitempty" bson:"grid_cols,omitempty"`
	GridRows         *float64 `json:"grid_rows,omitempty" toml:"grid_rows,omitempty" yaml:"grid_rows,omitempty" bson:"grid_rows,omitempty"`
	PatternType      string   `json:"pattern_type" toml:"pattern_type" yaml:"pattern_type" bson:"pattern_type"`
	PatternVariation string   `json:"pattern_variation" toml:"pattern_variation" yaml:"pattern_variation" bson:"pattern_variation"`
	ColorApplication string   `json:"color_application" toml:"color_application" yaml:"color_application" bson:"color_application"`
	Colors           []string `json:"colors" toml:"colors" yaml:"colors" bson:"colors"`
	LineSharpness    *float64 `json:"line_sharpness,omitempty" toml:"line_sharpness,omitempty" yaml:"line_sharpness,omitempty" bson:"line_sharpness,omitempty"`
}

// Num returns a pointer to v, for building ArtParams literals.
func Num(v float64) *float64 { return &v }

// UnmarshalJSON decodes any JSON object leniently via [ParamsFromMap].
// Only malformed JSON or a non-object document is an error.
func (p *ArtParams) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*p = ParamsFromMap(m)
	return nil
}

// ParamsFromMap builds an ArtParams from a loosely typed document, as
// decoded from JSON, TOML or YAML.
//
// Keys are matched in snake_case or camelCase. Numbers may arrive as any
// numeric type or as numeric strings; anything else leaves the field
// absent. Colors may be a list of strings, a list of mixed values (non-string
// entries become invalid colors) or one comma-separated string.
func ParamsFromMap(m map[string]any) ArtParams {
	return ArtParams{
		GridType:         textField(m, "grid_type", "gridType"),
		GridCols:         numberField(m, "grid_cols", "gridCols"),
		GridRows:         numberField(m, "grid_rows", "gridRows"),
		PatternType:      textField(m, "pattern_type", "patternType"),
		PatternVariation: textField(m, "pattern_variation", "patternVariation"),
		ColorApplication: textField(m, "color_application", "colorApplication"),
		Colors:           colorsField(m, "colors", "palette"),
		LineSharpness:    numberField(m, "line_sharpness", "lineSharpness"),
	}
}

func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func textField(m map[string]any, keys ...string) string {
	v, ok := lookup(m, keys...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func numberField(m map[string]any, keys ...string) *float64 {
	v, ok := lookup(m, keys...)
	if !ok {
		return nil
	}
	if f, ok := toNumber(v); ok {
		return &f
	}
	return nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func colorsField(m map[string]any, keys ...string) []string {
	v, ok := lookup(m, keys...)
	if !ok {
		return nil
	}
	switch c := v.(type) {
	case []string:
		return append([]string(nil), c...)
	case []any:
		out := make([]string, len(c))
		for i, e := range c {
			if s, ok := e.(string); ok {
				out[i] = s
			} else {
				out[i] = fmt.Sprintf("!%v", e)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(c, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}
