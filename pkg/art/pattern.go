package art

import (
	"image/color"
	"math"
)

// Point is a position in surface pixel space.
type Point struct {
	X, Y float64
}

// Box is an unrounded rectangle in surface pixel space.
type Box struct {
	X0, Y0, X1, Y1 float64
}

// W returns the box width.
func (b Box) W() float64 { return b.X1 - b.X0 }

// H returns the box height.
func (b Box) H() float64 { return b.Y1 - b.Y0 }

// Center returns the box midpoint.
func (b Box) Center() Point { return Point{(b.X0 + b.X1) / 2, (b.Y0 + b.Y1) / 2} }

// quadrants returns the four half-size boxes in TL, TR, BL, BR order.
func (b Box) quadrants() [4]Box {
	c := b.Center()
	return [4]Box{
		{b.X0, b.Y0, c.X, c.Y},
		{c.X, b.Y0, b.X1, c.Y},
		{b.X0, c.Y, c.X, b.Y1},
		{c.X, c.Y, b.X1, b.Y1},
	}
}

// Shape is a closed filled polygon.
type Shape struct {
	Points []Point
	Color  color.NRGBA
}

// ShapeKind is the figure a geometric_shapes cell draws.
type ShapeKind uint8

// Shape kinds, cycled by cell index.
const (
	ShapeEllipse ShapeKind = iota
	ShapeSquare
	ShapeTriangle
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSquare:
		return "square"
	case ShapeTriangle:
		return "triangle"
	default:
		return "ellipse"
	}
}

// ShapeFor returns the geometric shape drawn by the cell at index.
func ShapeFor(index int) ShapeKind {
	return ShapeKind(((index % 3) + 3) % 3)
}

// ellipseSegments is the polygon resolution of an ellipse outline.
const ellipseSegments = 64

// ellipseAspect is the minor/major axis ratio, which keeps rotation visible.
const ellipseAspect = 0.7

// Variant holds the variation choices applied to one cell.
type Variant struct {
	// Scale multiplies shape size around the cell center. 1 when unscaled.
	Scale float64

	// Angle rotates shapes around the cell center, in radians.
	Angle float64

	// Arrangement picks the triangle layout: 0 and 1 are the TL-BR and
	// TR-BL diagonals with primary first, 2 and 3 the same with the halves
	// swapped.
	Arrangement int
}

// drawVariant consumes the generator for the per-cell variation draw.
// Fractal draws happen later, while shapes are built.
func (e *Engine) drawVariant(p Params, index int, g *Generator) Variant {
	v := Variant{Scale: 1, Arrangement: index & 1}
	switch p.Variation {
	case VariationRandomizedScale:
		v.Scale = 1 + (2*g.Next()-1)*e.policy.ScaleJitter
	case VariationRandomizedOrientation:
		r := g.Next()
		if p.Pattern == PatternAlternatingTriangles {
			v.Arrangement = min(int(r*4), 3)
		} else {
			v.Angle = r * 2 * math.Pi
		}
	}
	return v
}

// cellShapes builds the polygons for one cell, back to front. Fractal
// variations recurse into quadrants, drawing one value per quadrant.
func (e *Engine) cellShapes(p Params, index int, box Box, colors Colors, v Variant, g *Generator) []Shape {
	shapes := e.patternShapes(p.Pattern, index, box, colors, v)
	if p.Variation == VariationFractal {
		shapes = e.fractal(shapes, p.Pattern, index, box, colors, v, 0, g)
	}
	return shapes
}

func (e *Engine) fractal(shapes []Shape, kind PatternKind, index int, box Box, colors Colors, v Variant, level int, g *Generator) []Shape {
	if level >= e.policy.FractalDepth {
		return shapes
	}
	swapped := Colors{Primary: colors.Secondary, Secondary: colors.Primary}
	for _, q := range box.quadrants() {
		if g.Next() >= e.policy.FractalChance {
			continue
		}
		shapes = append(shapes, e.patternShapes(kind, index, q, swapped, v)...)
		shapes = e.fractal(shapes, kind, index, q, swapped, v, level+1, g)
	}
	return shapes
}

// patternShapes returns the base pattern for box without consuming draws.
func (e *Engine) patternShapes(kind PatternKind, index int, box Box, colors Colors, v Variant) []Shape {
	c := box.Center()
	switch kind {
	case PatternAlternatingTriangles:
		a, b := trianglePair(box, v.Arrangement)
		first, second := colors.Primary, colors.Secondary
		if v.Arrangement >= 2 {
			first, second = second, first
		}
		return []Shape{
			{Points: transform(a, c, v.Scale, 0), Color: first},
			{Points: transform(b, c, v.Scale, 0), Color: second},
		}

	case PatternGeometricShapes:
		side := min(box.W(), box.H()) * e.policy.ShapeFraction
		var pts []Point
		switch ShapeFor(index) {
		case ShapeSquare:
			pts = rectangle(Box{c.X - side/2, c.Y - side/2, c.X + side/2, c.Y + side/2})
		case ShapeTriangle:
			pts = isosceles(c, side)
		default:
			pts = ellipse(c, side/2, side/2*ellipseAspect)
		}
		return []Shape{{Points: transform(pts, c, v.Scale, v.Angle), Color: colors.Primary}}

	default:
		return []Shape{{Points: transform(rectangle(box), c, v.Scale, v.Angle), Color: colors.Primary}}
	}
}

func rectangle(b Box) []Point {
	return []Point{{b.X0, b.Y0}, {b.X1, b.Y0}, {b.X1, b.Y1}, {b.X0, b.Y1}}
}

// trianglePair splits b along one diagonal. Even arrangements use the
// TL-BR diagonal, odd ones TR-BL.
func trianglePair(b Box, arrangement int) ([]Point, []Point) {
	tl, tr := Point{b.X0, b.Y0}, Point{b.X1, b.Y0}
	bl, br := Point{b.X0, b.Y1}, Point{b.X1, b.Y1}
	if arrangement&1 == 0 {
		return []Point{tl, tr, br}, []Point{tl, br, bl}
	}
	return []Point{tl, tr, bl}, []Point{tr, br, bl}
}

// isosceles returns an upward-pointing triangle inscribed in the side x
// side square centered on c.
func isosceles(c Point, side float64) []Point {
	h := side / 2
	return []Point{{c.X, c.Y - h}, {c.X + h, c.Y + h}, {c.X - h, c.Y + h}}
}

func ellipse(c Point, rx, ry float64) []Point {
	pts := make([]Point, ellipseSegments)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / ellipseSegments
		pts[i] = Point{c.X + rx*math.Cos(t), c.Y + ry*math.Sin(t)}
	}
	return pts
}

// transform scales and then rotates pts around c.
func transform(pts []Point, c Point, scale, angle float64) []Point {
	if scale == 1 && angle == 0 {
		return pts
	}
	sin, cos := math.Sincos(angle)
	out := make([]Point, len(pts))
	for i, p := range pts {
		dx, dy := (p.X-c.X)*scale, (p.Y-c.Y)*scale
		out[i] = Point{c.X + dx*cos - dy*sin, c.Y + dx*sin + dy*cos}
	}
	return out
}
