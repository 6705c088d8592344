package art

import "math"

// Policy collects the engine's tunable constants. The zero value is not
// useful; start from [DefaultPolicy]. Out-of-range values are pulled back
// into their documented ranges by [New], so a Policy read from a config
// file cannot break the engine either.
type Policy struct {
	// MaxGrid bounds uniform column and row counts to [1, MaxGrid]. Default 16.
	MaxGrid int `toml:"max_grid" json:"max_grid"`

	// DefaultGrid is used when a count is absent. Default 3.
	DefaultGrid int `toml:"default_grid" json:"default_grid"`

	// MaxDepth is the deepest hierarchical subdivision level. Default 4.
	MaxDepth int `toml:"max_depth" json:"max_depth"`

	// MinAreaFraction stops subdivision of cells smaller than this share of
	// the surface. Default 0.02.
	MinAreaFraction float64 `toml:"min_area_fraction" json:"min_area_fraction"`

	// StopStep is the per-depth probability of leaving a cell whole, so the
	// chance of stopping at depth d is d*StopStep. Default 0.2.
	StopStep float64 `toml:"stop_step" json:"stop_step"`

	// BinaryShare is the share of splits that cut in two rather than four.
	// Default 0.5.
	BinaryShare float64 `toml:"binary_share" json:"binary_share"`

	// ScaleJitter is the randomized_scale range around nominal size.
	// Default 0.3 (±30%).
	ScaleJitter float64 `toml:"scale_jitter" json:"scale_jitter"`

	// FractalDepth is the number of nested fractal levels. Default 3.
	FractalDepth int `toml:"fractal_depth" json:"fractal_depth"`

	// FractalChance is the probability that a quadrant receives a copy.
	// Default 0.5.
	FractalChance float64 `toml:"fractal_chance" json:"fractal_chance"`

	// ShapeFraction sizes geometric shapes relative to the cell's smaller
	// side. Default 0.8.
	ShapeFraction float64 `toml:"shape_fraction" json:"shape_fraction"`

	// FeatherRatio is the blur radius at sharpness 0, relative to the
	// cell's smaller pixel side. Default 0.08.
	FeatherRatio float64 `toml:"feather_ratio" json:"feather_ratio"`

	// Background is painted under every cell. Default "#0A0A0A".
	Background string `toml:"background" json:"background"`

	// Fallback replaces palette entries that do not parse. Default "#000000".
	Fallback string `toml:"fallback" json:"fallback"`
}

// DefaultPolicy returns the default engine constants.
func DefaultPolicy() Policy {
	return Policy{
		MaxGrid:         16,
		DefaultGrid:     3,
		MaxDepth:        4,
		MinAreaFraction: 0.02,
		StopStep:        0.2,
		BinaryShare:     0.5,
		ScaleJitter:     0.3,
		FractalDepth:    3,
		FractalChance:   0.5,
		ShapeFraction:   0.8,
		FeatherRatio:    0.08,
		Background:      "#0A0A0A",
		Fallback:        "#000000",
	}
}

// sanitize clamps every field into its supported range, substituting the
// default for values that are unset or non-finite.
func (p Policy) sanitize() Policy {
	d := DefaultPolicy()
	p.MaxGrid = clampInt(p.MaxGrid, 1, 64, d.MaxGrid)
	p.DefaultGrid = clampInt(p.DefaultGrid, 1, p.MaxGrid, min(d.DefaultGrid, p.MaxGrid))
	p.MaxDepth = clampInt(p.MaxDepth, 0, 8, d.MaxDepth)
	p.MinAreaFraction = clampFloat(p.MinAreaFraction, 0, 1, d.MinAreaFraction)
	p.StopStep = clampFloat(p.StopStep, 0, 1, d.StopStep)
	p.BinaryShare = clampFloat(p.BinaryShare, 0, 1, d.BinaryShare)
	p.ScaleJitter = clampFloat(p.ScaleJitter, 0, 0.9, d.ScaleJitter)
	p.FractalDepth = clampInt(p.FractalDepth, 0, 5, d.FractalDepth)
	p.FractalChance = clampFloat(p.FractalChance, 0, 1, d.FractalChance)
	p.ShapeFraction = clampFloat(p.ShapeFraction, 0.05, 1, d.ShapeFraction)
	p.FeatherRatio = clampFloat(p.FeatherRatio, 0, 0.5, d.FeatherRatio)
	if _, ok := ParseColor(p.Background); !ok {
		p.Background = d.Background
	}
	if _, ok := ParseColor(p.Fallback); !ok {
		p.Fallback = d.Fallback
	}
	return p
}

// clampInt treats 0 as unset for fields whose minimum is positive.
func clampInt(v, lo, hi, def int) int {
	if v == 0 && lo > 0 {
		return def
	}
	return max(lo, min(v, hi))
}

func clampFloat(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return max(lo, min(v, hi))
}
