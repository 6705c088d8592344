package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/tapestry/pkg/art"
)

// Options configures split-tree rendering.
type Options struct {
	// Detailed adds the normalized rectangle and depth to every label.
	// When false, leaves show their cell index and inner nodes their split.
	Detailed bool
}

// ToDOT converts a render plan to Graphviz DOT describing how the surface
// was divided. Hierarchical plans produce the subdivision tree; uniform
// plans a single root with one child per cell. Leaves are filled with the
// cell's primary color.
//
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(plan *art.Plan, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	if plan.Grid.Kind == art.GridHierarchical && len(plan.Grid.Nodes) > 0 {
		writeTree(&buf, plan, opts)
	} else {
		writeUniform(&buf, plan, opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeTree(buf *bytes.Buffer, plan *art.Plan, opts Options) {
	for i, n := range plan.Grid.Nodes {
		var attrs []string
		if n.Split == art.SplitLeaf {
			cp := plan.Cells[n.Cell]
			label := fmt.Sprintf("#%d", n.Cell)
			if opts.Detailed {
				label += "\n" + fmtRect(n.Rect, n.Depth)
			}
			attrs = leafAttrs(label, cp.Colors.Primary)
		} else {
			label := n.Split.String()
			if opts.Detailed {
				label += "\n" + fmtRect(n.Rect, n.Depth)
			}
			attrs = []string{fmt.Sprintf("label=%q", label), "shape=ellipse", "style=solid"}
		}
		fmt.Fprintf(buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i, n := range plan.Grid.Nodes {
		if n.Parent >= 0 {
			fmt.Fprintf(buf, "  n%d -> n%d;\n", n.Parent, i)
		}
	}
}

func writeUniform(buf *bytes.Buffer, plan *art.Plan, opts Options) {
	fmt.Fprintf(buf, "  root [label=%q, shape=ellipse, style=solid];\n",
		fmt.Sprintf("%d x %d", plan.Grid.Cols, plan.Grid.Rows))
	for _, cp := range plan.Cells {
		label := fmt.Sprintf("#%d", cp.Index)
		if opts.Detailed {
			label += "\n" + fmtRect(cp.Rect, cp.Depth)
		}
		fmt.Fprintf(buf, "  c%d [%s];\n", cp.Index, strings.Join(leafAttrs(label, cp.Colors.Primary), ", "))
	}

	buf.WriteString("\n")
	for _, cp := range plan.Cells {
		fmt.Fprintf(buf, "  root -> c%d;\n", cp.Index)
	}
}

func fmtRect(r art.Rect, depth int) string {
	return fmt.Sprintf("[%.3f,%.3f]-[%.3f,%.3f] d=%d", r.X0, r.Y0, r.X1, r.Y1, depth)
}

func leafAttrs(label string, fill color.NRGBA) []string {
	return []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", art.Hex(fill)),
		fmt.Sprintf("fontcolor=%q", textColor(fill)),
	}
}

// textColor picks black or white text for a fill by its CIE lightness.
func textColor(c color.NRGBA) string {
	l, _, _ := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Lab()
	if l > 0.6 {
		return "black"
	}
	return "white"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// pixel-sized one so the tree scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}
