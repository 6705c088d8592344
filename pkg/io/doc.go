// Package io reads parameter documents and writes render outputs.
//
// # Parameter Documents
//
// A parameter document is an object holding the fields of
// [art.ArtParams], in JSON, TOML or YAML:
//
//	{
//	  "grid_type": "hierarchical",
//	  "pattern_type": "geometric_shapes",
//	  "pattern_variation": "fractal",
//	  "color_application": "alternating_random",
//	  "colors": ["#264653", "#2A9D8F", "#E9C46A"],
//	  "line_sharpness": 0.7
//	}
//
// The same fields may instead appear under a "params" key next to a title
// and description, which is how a generated design is stored. Use
// [ImportParams] for files and [ReadParams] for any io.Reader. Field values
// are accepted leniently: numbers may be strings, and unknown or mistyped
// fields are left for the normalizer to default. Only syntax errors fail.
//
// # Plan Export
//
// [WritePlanJSON] writes a [PlanDocument]: the normalized parameters, the
// grid and, per cell, its normalized rectangle, pixel rectangle, resolved
// colors and variation choices. It describes a render without any pixels,
// for inspection and for external tools.
//
// [WriteParams] writes a normalized record back as JSON, TOML or YAML, with
// hex colors and canonical enum names. Reading it back normalizes to the
// same record.
//
// [art.ArtParams]: github.com/matzehuels/tapestry/pkg/art.ArtParams
package io
