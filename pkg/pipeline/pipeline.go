// Package pipeline provides the render pipeline shared by the CLI and the
// HTTP server.
//
// This package wraps the engine in pkg/art with everything a caller needs
// around it: input defaults and validation, caching of encoded outputs,
// concurrent preview and export renders, and observability hooks. By
// centralizing this logic, every entry point renders a piece the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Plan: normalize the parameters and lay out every cell (no pixels)
//  2. Render: rasterize and encode the requested formats
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Params:  raw,
//	    Seed:    0.42,
//	    Formats: []string{pipeline.FormatPNG, pipeline.FormatExport},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	preview := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tapestry/pkg/art"
	"github.com/matzehuels/tapestry/pkg/cache"
	apperr "github.com/matzehuels/tapestry/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default preview width in pixels.
	DefaultWidth = 800

	// DefaultHeight is the default preview height in pixels.
	DefaultHeight = 800

	// DefaultScale is the export size relative to the preview.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatPNG    = "png"    // preview-size image
	FormatExport = "export" // image at Scale times the preview size
	FormatJSON   = "json"   // render plan
	FormatDOT    = "dot"    // subdivision tree as Graphviz source
	FormatSVG    = "svg"    // subdivision tree rendered by Graphviz
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:    true,
	FormatExport: true,
	FormatJSON:   true,
	FormatDOT:    true,
	FormatSVG:    true,
}

// Extension returns the file extension conventionally used for a format.
func Extension(format string) string {
	switch format {
	case FormatPNG, FormatExport:
		return ".png"
	default:
		return "." + format
	}
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatPNG, FormatExport:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "text/vnd.graphviz"
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one render.
// This struct supports JSON serialization for API requests.
type Options struct {
	Params art.ArtParams `json:"params"`
	Seed   float64       `json:"seed"`

	// Surface options
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Scale  float64 `json:"scale,omitempty"`

	// Output options
	Formats []string `json:"formats,omitempty"`
	Refresh bool     `json:"refresh,omitempty"` // bypass cache reads

	// Runtime options (not serialized)
	Policy *art.Policy `json:"-"`
	Logger *log.Logger `json:"-"`
	engine *art.Engine `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Plan is the preview-size render plan.
	Plan *art.Plan

	// ParamsHash is the content hash of the normalized parameters.
	ParamsHash string

	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CellCount  int
	Draws      int
	PlanTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for the render stage.
type CacheInfo struct {
	RenderHit bool            // Whether all artifacts came from cache
	Hits      map[string]bool // Per-format cache hits
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, export, json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates every field.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := apperr.ValidateSeed(o.Seed); err != nil {
		return err
	}
	if err := apperr.ValidateSurface(o.Width, o.Height); err != nil {
		return err
	}
	if err := apperr.ValidateScale(o.Scale); err != nil {
		return err
	}
	if o.Wants(FormatExport) {
		w, h := o.ExportSize()
		if err := apperr.ValidateSurface(w, h); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidScale, err, "export at %gx", o.Scale)
		}
	}
	return ValidateFormats(o.Formats)
}

// Wants reports whether format was requested.
func (o *Options) Wants(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// ExportSize returns the export surface size, the preview size times
// Scale rounded to whole pixels.
func (o *Options) ExportSize() (int, int) {
	return int(math.Round(float64(o.Width) * o.Scale)), int(math.Round(float64(o.Height) * o.Scale))
}

// Engine returns the engine for these options, built once from Policy.
func (o *Options) Engine() *art.Engine {
	if o.engine == nil {
		if o.Policy != nil {
			o.engine = art.New(art.WithPolicy(*o.Policy))
		} else {
			o.engine = art.New()
		}
	}
	return o.engine
}

// ParamsHash returns the content hash of the normalized parameters.
func (o *Options) ParamsHash() string {
	data, _ := json.Marshal(o.Engine().Normalize(o.Params))
	return cache.Hash(data)
}

// PolicyHash returns the content hash of the engine policy.
func (o *Options) PolicyHash() string {
	data, _ := json.Marshal(o.Engine().Policy())
	return cache.Hash(data)
}

// PlanKeyOpts returns cache key options for the plan document.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		Seed:   o.Seed,
		Width:  o.Width,
		Height: o.Height,
		Policy: o.PolicyHash(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format: format,
		Seed:   o.Seed,
		Width:  o.Width,
		Height: o.Height,
		Policy: o.PolicyHash(),
	}
	if format == FormatExport {
		opts.Scale = o.Scale
	}
	return opts
}

// String summarizes the options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("%dx%d seed=%g formats=%s", o.Width, o.Height, o.Seed, strings.Join(o.Formats, ","))
}
