package art

import (
	stderrors "errors"
	"image"
	"image/color"
	"image/draw"
	"reflect"

	apperr "github.com/matzehuels/tapestry/pkg/errors"
)

// ErrInvalidSurface is returned when the target surface is nil (or a nil
// pointer) or has a non-positive size. The returned error also carries
// [apperr.ErrCodeInvalidSurface].
var ErrInvalidSurface = stderrors.New("invalid surface")

// Engine renders parameter records under one [Policy]. An Engine holds no
// per-render state and is safe for concurrent use; each render owns its
// own [Generator].
type Engine struct {
	policy     Policy
	background color.NRGBA
	fallback   color.NRGBA
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy replaces the engine constants. Out-of-range fields are
// clamped.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// New returns an Engine using [DefaultPolicy] unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(e)
	}
	e.policy = e.policy.sanitize()
	e.background, _ = ParseColor(e.policy.Background)
	e.fallback, _ = ParseColor(e.policy.Fallback)
	return e
}

// Policy returns the sanitized constants the engine runs with.
func (e *Engine) Policy() Policy { return e.policy }

var defaultEngine = New()

// CellPlan is everything needed to paint one cell.
type CellPlan struct {
	Cell

	// Pixels is the integer rectangle the cell owns on the surface.
	Pixels image.Rectangle

	// Box is the unrounded pixel rectangle shapes are built from.
	Box Box

	Colors  Colors
	Variant Variant
	Shapes  []Shape
}

// Plan is a render computed up to, but not including, pixel writes.
type Plan struct {
	Width, Height int
	Params        Params
	Grid          Grid
	Cells         []CellPlan

	// Draws is the number of values consumed from the generator.
	Draws int
}

// Plan normalizes raw and lays out every cell of a width x height
// surface using a fresh generator for seed.
func (e *Engine) Plan(raw ArtParams, seed float64, width, height int) (*Plan, error) {
	return e.PlanWith(raw, NewGenerator(seed), width, height)
}

// PlanWith is Plan with a caller-supplied generator. Consumption order
// is the grid build, then for each cell in traversal order its color
// draw followed by its variation draws.
func (e *Engine) PlanWith(raw ArtParams, g *Generator, width, height int) (*Plan, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	start := g.Draws()
	p := e.Normalize(raw)
	grid := e.BuildGrid(p, width, height, g)

	cells := make([]CellPlan, len(grid.Cells))
	for i, c := range grid.Cells {
		cells[i] = e.PlanCell(p, c, width, height, g)
	}
	return &Plan{
		Width:  width,
		Height: height,
		Params: p,
		Grid:   grid,
		Cells:  cells,
		Draws:  g.Draws() - start,
	}, nil
}

// PlanCell resolves the colors, variation and geometry of one cell of a
// width x height surface. It consumes the color draw first, then the
// variation draws.
func (e *Engine) PlanCell(p Params, c Cell, width, height int, g *Generator) CellPlan {
	box := c.Box(width, height)
	colors := ResolveColors(c.Index, p.ColorMode, p.Palette, g)
	v := e.drawVariant(p, c.Index, g)
	return CellPlan{
		Cell:    c,
		Pixels:  c.Pixels(width, height),
		Box:     box,
		Colors:  colors,
		Variant: v,
		Shapes:  e.cellShapes(p, c.Index, box, colors, v, g),
	}
}

// DrawCell plans one cell against the size of dst and paints it. Drawing
// every cell of a grid in traversal order with one generator gives the
// same pixels as [Engine.RenderWith].
func (e *Engine) DrawCell(dst draw.Image, p Params, c Cell, g *Generator) (CellPlan, error) {
	if err := checkSurface(dst); err != nil {
		return CellPlan{}, err
	}
	b := dst.Bounds()
	cp := e.PlanCell(p, c, b.Dx(), b.Dy(), g)
	e.paintCell(dst, &cp, p.Sharpness)
	return cp, nil
}

// Render paints raw onto dst with the default engine.
func Render(dst draw.Image, raw ArtParams, seed float64) error {
	return defaultEngine.Render(dst, raw, seed)
}

// Render paints raw onto dst using a fresh generator for seed. Equal
// inputs always produce equal pixels, and a proportionally resized
// surface reproduces the same layout, colors and variation choices.
func (e *Engine) Render(dst draw.Image, raw ArtParams, seed float64) error {
	return e.RenderWith(dst, raw, NewGenerator(seed))
}

// RenderWith paints raw onto dst, consuming g.
func (e *Engine) RenderWith(dst draw.Image, raw ArtParams, g *Generator) error {
	if err := checkSurface(dst); err != nil {
		return err
	}
	b := dst.Bounds()
	plan, err := e.PlanWith(raw, g, b.Dx(), b.Dy())
	if err != nil {
		return err
	}
	return e.Rasterize(dst, plan)
}

// checkSurface rejects nil surfaces, typed nil pointers included, and
// surfaces without positive dimensions. There is no upper bound here:
// callers that allocate the surface cap its size.
func checkSurface(dst draw.Image) error {
	if isNil(dst) {
		return apperr.Wrap(apperr.ErrCodeInvalidSurface, ErrInvalidSurface, "surface is nil")
	}
	b := dst.Bounds()
	return checkSize(b.Dx(), b.Dy())
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return apperr.Wrap(apperr.ErrCodeInvalidSurface, ErrInvalidSurface,
			"surface must have positive dimensions (got %dx%d)", width, height)
	}
	return nil
}

func isNil(dst draw.Image) bool {
	if dst == nil {
		return true
	}
	v := reflect.ValueOf(dst)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
