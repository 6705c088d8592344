package art

import (
	"image"
	"math"
)

// Rect is an axis-aligned rectangle in normalized surface coordinates,
// where the whole surface is [0,1]x[0,1]. Edges are stored rather than
// sizes so that neighbouring cells share their common edge bit-for-bit.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// W returns the normalized width.
func (r Rect) W() float64 { return r.X1 - r.X0 }

// H returns the normalized height.
func (r Rect) H() float64 { return r.Y1 - r.Y0 }

// Area returns the normalized area.
func (r Rect) Area() float64 { return r.W() * r.H() }

// Box scales r to a width x height surface without rounding.
func (r Rect) Box(width, height int) Box {
	w, h := float64(width), float64(height)
	return Box{X0: r.X0 * w, Y0: r.Y0 * h, X1: r.X1 * w, Y1: r.Y1 * h}
}

// Pixels returns the integer pixel rectangle r covers on a width x height
// surface. Rounding is applied per edge, so cells that share an edge share
// a pixel boundary and the rectangles tile the surface.
func (r Rect) Pixels(width, height int) image.Rectangle {
	w, h := float64(width), float64(height)
	return image.Rect(
		int(math.Round(r.X0*w)), int(math.Round(r.Y0*h)),
		int(math.Round(r.X1*w)), int(math.Round(r.Y1*h)),
	)
}

// Cell is one rectangular region produced by the grid builder.
type Cell struct {
	Rect

	// Index is the cell's position in traversal order, starting at 0.
	Index int

	// Depth is the subdivision depth (0 for uniform grids).
	Depth int

	// Parent indexes Grid.Nodes, or is -1. It is a lookup key only.
	Parent int
}

// Split records how a hierarchical node was divided.
type Split uint8

// Split kinds.
const (
	SplitLeaf Split = iota
	SplitVertical
	SplitHorizontal
	SplitQuad
)

func (s Split) String() string {
	switch s {
	case SplitVertical:
		return "vertical"
	case SplitHorizontal:
		return "horizontal"
	case SplitQuad:
		return "quad"
	default:
		return "leaf"
	}
}

// Node is one visited region of a hierarchical subdivision.
type Node struct {
	Rect
	Depth  int
	Parent int   // index into Grid.Nodes, -1 for the root
	Split  Split // how the node was divided, SplitLeaf for cells
	Cell   int   // index into Grid.Cells for leaves, -1 otherwise
}

// Grid is the flat result of a grid build: the leaf cells in traversal
// order and, for hierarchical grids, every visited node in pre-order.
type Grid struct {
	Kind  GridKind
	Cols  int
	Rows  int
	Cells []Cell
	Nodes []Node
}

// BuildGrid builds the cell layout for p on a width x height surface,
// consuming g for hierarchical grids.
func BuildGrid(p Params, width, height int, g *Generator) Grid {
	return defaultEngine.BuildGrid(p, width, height, g)
}

// BuildGrid builds the cell layout for p on a width x height surface.
//
// Uniform grids are cols x rows equal cells in row-major order and draw
// nothing from g. Hierarchical grids subdivide the surface recursively in
// pre-order, drawing every decision from g. Surface size only enters
// through its aspect ratio, which picks the longer axis of a cell; any
// proportional resize yields the same layout.
func (e *Engine) BuildGrid(p Params, width, height int, g *Generator) Grid {
	if p.Grid == GridHierarchical {
		b := gridBuilder{policy: &e.policy, aspect: float64(width) / float64(height), gen: g}
		b.visit(Rect{X1: 1, Y1: 1}, 0, -1)
		return Grid{Kind: GridHierarchical, Cells: b.cells, Nodes: b.nodes}
	}
	return uniformGrid(p.Cols, p.Rows)
}

func uniformGrid(cols, rows int) Grid {
	cells := make([]Cell, 0, cols*rows)
	for r := range rows {
		y0, y1 := float64(r)/float64(rows), float64(r+1)/float64(rows)
		for c := range cols {
			cells = append(cells, Cell{
				Rect:   Rect{X0: float64(c) / float64(cols), Y0: y0, X1: float64(c+1) / float64(cols), Y1: y1},
				Index:  len(cells),
				Parent: -1,
			})
		}
	}
	return Grid{Kind: GridUniform, Cols: cols, Rows: rows, Cells: cells}
}

type gridBuilder struct {
	policy *Policy
	aspect float64
	gen    *Generator
	cells  []Cell
	nodes  []Node
}

func (b *gridBuilder) visit(r Rect, depth, parent int) {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Rect: r, Depth: depth, Parent: parent, Cell: -1})

	split, children := b.decide(r, depth)
	b.nodes[id].Split = split
	if split == SplitLeaf {
		b.nodes[id].Cell = len(b.cells)
		b.cells = append(b.cells, Cell{Rect: r, Index: len(b.cells), Depth: depth, Parent: parent})
		return
	}
	for _, child := range children {
		b.visit(child, depth+1, id)
	}
}

// decide draws the subdivision choice for r. Leaves forced by depth or
// area draw nothing; a stop decision draws once; a quad split draws once;
// a binary split draws three times (decision, axis, cut position).
func (b *gridBuilder) decide(r Rect, depth int) (Split, []Rect) {
	if depth >= b.policy.MaxDepth || r.Area() < b.policy.MinAreaFraction {
		return SplitLeaf, nil
	}

	stop := float64(depth) * b.policy.StopStep
	d := b.gen.Next()
	if d < stop {
		return SplitLeaf, nil
	}

	if (d-stop)/(1-stop) >= b.policy.BinaryShare {
		mx, my := (r.X0+r.X1)/2, (r.Y0+r.Y1)/2
		return SplitQuad, []Rect{
			{X0: r.X0, Y0: r.Y0, X1: mx, Y1: my},
			{X0: mx, Y0: r.Y0, X1: r.X1, Y1: my},
			{X0: r.X0, Y0: my, X1: mx, Y1: r.Y1},
			{X0: mx, Y0: my, X1: r.X1, Y1: r.Y1},
		}
	}

	axis := b.gen.Next()
	t := 0.35 + 0.3*b.gen.Next()

	// Compare physical lengths; nearly square cells let the draw pick.
	pw, ph := r.W()*b.aspect, r.H()
	vertical := axis < 0.5
	switch {
	case pw > ph*1.25:
		vertical = true
	case ph > pw*1.25:
		vertical = false
	}

	if vertical {
		x := r.X0 + r.W()*t
		return SplitVertical, []Rect{
			{X0: r.X0, Y0: r.Y0, X1: x, Y1: r.Y1},
			{X0: x, Y0: r.Y0, X1: r.X1, Y1: r.Y1},
		}
	}
	y := r.Y0 + r.H()*t
	return SplitHorizontal, []Rect{
		{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: y},
		{X0: r.X0, Y0: y, X1: r.X1, Y1: r.Y1},
	}
}
