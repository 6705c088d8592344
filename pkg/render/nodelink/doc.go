// Package nodelink renders the cell layout of a plan as a node-link tree.
//
// # Overview
//
// A hierarchical grid is a tree of splits: the surface is cut in two or
// four, and each part may be cut again. This package draws that tree with
// Graphviz, inner nodes labelled with their split and leaves filled with
// the color their cell received. Uniform grids draw as a single root with
// one leaf per cell.
//
// # Usage
//
//	plan, _ := art.New().Plan(raw, seed, 800, 600)
//	dot := nodelink.ToDOT(plan, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
